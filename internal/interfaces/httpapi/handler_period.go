package httpapi

import (
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/usecase"
)

type lineupEntryRequest struct {
	Player   identityDTO `json:"player" validate:"required"`
	Position string      `json:"position"`
}

func lineupEntriesToDomain(entries []lineupEntryRequest) []usecase.LineupEntry {
	out := make([]usecase.LineupEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, usecase.LineupEntry{
			Player:   entry.Player.toDomain(),
			Position: entry.Position,
		})
	}
	return out
}

type startPeriodRequest struct {
	Lineup           []lineupEntryRequest `json:"lineup" validate:"dive"`
	RecordedByUserID string               `json:"recordedByUserId"`
}

func (h *Handler) StartPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartPeriod")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	period := strings.TrimSpace(r.PathValue("period"))
	var req startPeriodRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.periodService.StartPeriod(ctx, usecase.StartPeriodInput{
		GameTeamID:       gameTeamID,
		Period:           period,
		Lineup:           lineupEntriesToDomain(req.Lineup),
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start period failed", "game_team_id", gameTeamID, "period", period, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, periodResultToDTO(result))
}

type endPeriodRequest struct {
	EndSecond        int    `json:"endSecond" validate:"min=0,max=5999"`
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) EndPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndPeriod")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	period := strings.TrimSpace(r.PathValue("period"))
	var req endPeriodRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.periodService.EndPeriod(ctx, usecase.EndPeriodInput{
		GameTeamID:       gameTeamID,
		Period:           period,
		EndSecond:        req.EndSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "end period failed", "game_team_id", gameTeamID, "period", period, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, periodResultToDTO(result))
}

type ensureSecondHalfRequest struct {
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) EnsureSecondHalfLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnsureSecondHalfLineup")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req ensureSecondHalfRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.periodService.EnsureSecondHalfLineup(ctx, gameTeamID, req.RecordedByUserID)
	if err != nil {
		h.logger.WarnContext(ctx, "ensure second half lineup failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, periodResultToDTO(result))
}

type setSecondHalfLineupRequest struct {
	Lineup           []lineupEntryRequest `json:"lineup" validate:"required,min=1,dive"`
	RecordedByUserID string               `json:"recordedByUserId"`
}

func (h *Handler) SetSecondHalfLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSecondHalfLineup")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req setSecondHalfLineupRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.periodService.SetSecondHalfLineup(ctx, usecase.SetSecondHalfLineupInput{
		GameTeamID:       gameTeamID,
		Lineup:           lineupEntriesToDomain(req.Lineup),
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set second half lineup failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, periodResultToDTO(result))
}

type linkStartersResponse struct {
	LinkedCount int `json:"linkedCount"`
}

func (h *Handler) LinkStartersToPeriodStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LinkStartersToPeriodStart")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	period := strings.TrimSpace(r.PathValue("period"))

	linked, err := h.periodService.LinkStartersToPeriodStart(ctx, gameTeamID, period)
	if err != nil {
		h.logger.WarnContext(ctx, "link starters failed", "game_team_id", gameTeamID, "period", period, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, linkStartersResponse{LinkedCount: linked})
}
