package httpapi

import (
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/usecase"
)

type addToRosterRequest struct {
	Player           identityDTO `json:"player" validate:"required"`
	Position         string      `json:"position"`
	Period           string      `json:"period"`
	PeriodSecond     int         `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string      `json:"recordedByUserId"`
}

type addToRosterResponse struct {
	Entry     eventDTO          `json:"entry"`
	Duplicate bool              `json:"duplicate"`
	Conflict  *conflictGroupDTO `json:"conflict,omitempty"`
}

func (h *Handler) AddToGameRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddToGameRoster")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req addToRosterRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rosterService.Add(ctx, usecase.AddToRosterInput{
		GameTeamID:       gameTeamID,
		Player:           req.Player.toDomain(),
		Position:         req.Position,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add to game roster failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := addToRosterResponse{
		Entry:     eventToDTO(result.Entry),
		Duplicate: result.Duplicate,
	}
	if result.Conflict != nil {
		conflict := conflictGroupToDTO(*result.Conflict)
		resp.Conflict = &conflict
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, resp)
}
