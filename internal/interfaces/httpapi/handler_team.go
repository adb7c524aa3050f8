package httpapi

import (
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/usecase"
)

func (h *Handler) GetGameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameTeam")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	team, err := h.teamService.GetGameTeam(ctx, gameTeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game team failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameTeamToDTO(team))
}

func (h *Handler) ListGameEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameEvents")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	events, err := h.teamService.ListGameEvents(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list game events failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTOs(events))
}

type setFormationRequest struct {
	Formation        string `json:"formation" validate:"required,max=20"`
	Period           string `json:"period"`
	PeriodSecond     int    `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) SetFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetFormation")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req setFormationRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	change, err := h.teamService.SetFormation(ctx, usecase.SetFormationInput{
		GameTeamID:       gameTeamID,
		Formation:        req.Formation,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set formation failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(change))
}
