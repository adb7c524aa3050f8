package httpapi

import (
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/usecase"
)

type recordGoalRequest struct {
	Scorer           identityDTO  `json:"scorer" validate:"required"`
	Assister         *identityDTO `json:"assister"`
	Period           string       `json:"period" validate:"required"`
	PeriodSecond     int          `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string       `json:"recordedByUserId"`
}

type recordGoalResponse struct {
	Goal      eventDTO          `json:"goal"`
	Assist    *eventDTO         `json:"assist,omitempty"`
	Duplicate bool              `json:"duplicate"`
	Conflict  *conflictGroupDTO `json:"conflict,omitempty"`
}

func (h *Handler) RecordGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordGoal")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req recordGoalRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.RecordGoalInput{
		GameTeamID:       gameTeamID,
		Scorer:           req.Scorer.toDomain(),
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	}
	if req.Assister != nil {
		assister := req.Assister.toDomain()
		input.Assister = &assister
	}

	result, err := h.goalService.Record(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "record goal failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := recordGoalResponse{
		Goal:      eventToDTO(result.Goal),
		Duplicate: result.Duplicate,
	}
	if result.Assist != nil {
		assist := eventToDTO(*result.Assist)
		resp.Assist = &assist
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

type updateGoalRequest struct {
	Scorer        *identityDTO `json:"scorer"`
	Assister      *identityDTO `json:"assister"`
	ClearAssister bool         `json:"clearAssister"`
	Period        *string      `json:"period"`
	PeriodSecond  *int         `json:"periodSecond"`
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGoal")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	var req updateGoalRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	update := usecase.GoalUpdate{
		ClearAssister: req.ClearAssister,
		Period:        req.Period,
		PeriodSecond:  req.PeriodSecond,
	}
	if req.Scorer != nil {
		scorer := req.Scorer.toDomain()
		update.Scorer = &scorer
	}
	if req.Assister != nil {
		assister := req.Assister.toDomain()
		update.Assister = &assister
	}

	goal, err := h.goalService.Update(ctx, eventID, update)
	if err != nil {
		h.logger.WarnContext(ctx, "update goal failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(goal))
}
