package httpapi

import (
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/usecase"
)

type fieldPlayerDTO struct {
	Player   identityDTO `json:"player"`
	Position string      `json:"position,omitempty"`
	EventID  string      `json:"eventId"`
}

type benchPlayerDTO struct {
	Player        identityDTO `json:"player"`
	LastPosition  string      `json:"lastPosition,omitempty"`
	RosterEventID string      `json:"rosterEventId,omitempty"`
}

type lineupDTO struct {
	Roster               []eventDTO       `json:"roster"`
	Starters             []eventDTO       `json:"starters"`
	OnField              []fieldPlayerDTO `json:"onField"`
	Bench                []benchPlayerDTO `json:"bench"`
	PreviousPeriodLineup []eventDTO       `json:"previousPeriodLineup"`
}

func lineupToDTO(v usecase.Lineup) lineupDTO {
	onField := make([]fieldPlayerDTO, 0, len(v.OnField))
	for _, p := range v.OnField {
		onField = append(onField, fieldPlayerDTO{
			Player:   identityToDTO(p.Player),
			Position: p.Position,
			EventID:  p.EventID,
		})
	}
	bench := make([]benchPlayerDTO, 0, len(v.Bench))
	for _, p := range v.Bench {
		bench = append(bench, benchPlayerDTO{
			Player:        identityToDTO(p.Player),
			LastPosition:  p.LastPosition,
			RosterEventID: p.RosterEventID,
		})
	}

	return lineupDTO{
		Roster:               eventsToDTOs(v.Roster),
		Starters:             eventsToDTOs(v.Starters),
		OnField:              onField,
		Bench:                bench,
		PreviousPeriodLineup: eventsToDTOs(v.PreviousPeriodLineup),
	}
}

func (h *Handler) GetGameLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameLineup")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	lineup, err := h.lineupService.GetGameLineup(ctx, gameTeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game lineup failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(lineup))
}

type bringPlayerRequest struct {
	Player           identityDTO `json:"player" validate:"required"`
	Position         string      `json:"position"`
	Period           string      `json:"period" validate:"required"`
	PeriodSecond     int         `json:"periodSecond" validate:"min=0,max=5999"`
	Reason           string      `json:"reason"`
	Notes            string      `json:"notes"`
	RecordedByUserID string      `json:"recordedByUserId"`
}

func (h *Handler) BringPlayerOntoField(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BringPlayerOntoField")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req bringPlayerRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.lineupService.BringPlayerOntoField(ctx, usecase.BringPlayerInput{
		GameTeamID:       gameTeamID,
		Player:           req.Player.toDomain(),
		Position:         req.Position,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		Reason:           req.Reason,
		Notes:            req.Notes,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "bring player onto field failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(entry))
}

type removePlayerRequest struct {
	PlayerEventID    string `json:"playerEventId" validate:"required"`
	Period           string `json:"period" validate:"required"`
	PeriodSecond     int    `json:"periodSecond" validate:"min=0,max=5999"`
	Reason           string `json:"reason"`
	Notes            string `json:"notes"`
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) RemovePlayerFromField(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayerFromField")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req removePlayerRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	exit, err := h.lineupService.RemovePlayerFromField(ctx, usecase.RemovePlayerInput{
		GameTeamID:       gameTeamID,
		PlayerEventID:    req.PlayerEventID,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		Reason:           req.Reason,
		Notes:            req.Notes,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "remove player from field failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(exit))
}

type substituteRequest struct {
	PlayerOutEventID string      `json:"playerOutEventId" validate:"required"`
	Incoming         identityDTO `json:"incoming" validate:"required"`
	Position         string      `json:"position"`
	Period           string      `json:"period" validate:"required"`
	PeriodSecond     int         `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string      `json:"recordedByUserId"`
}

func (h *Handler) SubstitutePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubstitutePlayer")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req substituteRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pair, err := h.lineupService.SubstitutePlayer(ctx, usecase.SubstituteInput{
		GameTeamID:       gameTeamID,
		PlayerOutEventID: req.PlayerOutEventID,
		Incoming:         req.Incoming.toDomain(),
		Position:         req.Position,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "substitute player failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventsToDTOs(pair))
}

type changePositionRequest struct {
	PlayerEventID    string `json:"playerEventId" validate:"required"`
	Position         string `json:"position" validate:"required"`
	Period           string `json:"period" validate:"required"`
	PeriodSecond     int    `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) ChangePosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ChangePosition")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req changePositionRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	change, err := h.lineupService.ChangePosition(ctx, usecase.ChangePositionInput{
		GameTeamID:       gameTeamID,
		PlayerEventID:    req.PlayerEventID,
		Position:         req.Position,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "change position failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(change))
}

type swapPositionsRequest struct {
	Event1ID         string `json:"event1Id" validate:"required"`
	Event2ID         string `json:"event2Id" validate:"required"`
	Period           string `json:"period" validate:"required"`
	PeriodSecond     int    `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string `json:"recordedByUserId"`
}

func (h *Handler) SwapPositions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwapPositions")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req swapPositionsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pair, err := h.lineupService.SwapPositions(ctx, usecase.SwapPositionsInput{
		GameTeamID:       gameTeamID,
		Event1ID:         req.Event1ID,
		Event2ID:         req.Event2ID,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "swap positions failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventsToDTOs(pair))
}

type batchSubstitutionRequest struct {
	PlayerOutEventID string      `json:"playerOutEventId" validate:"required"`
	Incoming         identityDTO `json:"incoming" validate:"required"`
	Position         string      `json:"position"`
}

type batchSwapRefRequest struct {
	EventID           string `json:"eventId"`
	SubstitutionIndex *int   `json:"substitutionIndex"`
}

type batchSwapRequest struct {
	First  batchSwapRefRequest `json:"first" validate:"required"`
	Second batchSwapRefRequest `json:"second" validate:"required"`
}

type batchChangesRequest struct {
	Substitutions    []batchSubstitutionRequest `json:"substitutions" validate:"dive"`
	Swaps            []batchSwapRequest         `json:"swaps" validate:"dive"`
	Period           string                     `json:"period" validate:"required"`
	PeriodSecond     int                        `json:"periodSecond" validate:"min=0,max=5999"`
	RecordedByUserID string                     `json:"recordedByUserId"`
}

func (h *Handler) BatchChanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BatchChanges")
	defer span.End()

	gameTeamID := strings.TrimSpace(r.PathValue("gameTeamID"))
	var req batchChangesRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.BatchChangesInput{
		GameTeamID:       gameTeamID,
		Period:           req.Period,
		PeriodSecond:     req.PeriodSecond,
		RecordedByUserID: req.RecordedByUserID,
	}
	for _, sub := range req.Substitutions {
		input.Substitutions = append(input.Substitutions, usecase.BatchSubstitution{
			PlayerOutEventID: sub.PlayerOutEventID,
			Incoming:         sub.Incoming.toDomain(),
			Position:         sub.Position,
		})
	}
	for _, swap := range req.Swaps {
		input.Swaps = append(input.Swaps, usecase.BatchSwap{
			First:  usecase.BatchSwapRef{EventID: swap.First.EventID, SubstitutionIndex: swap.First.SubstitutionIndex},
			Second: usecase.BatchSwapRef{EventID: swap.Second.EventID, SubstitutionIndex: swap.Second.SubstitutionIndex},
		})
	}

	events, err := h.lineupService.BatchChanges(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "batch changes failed", "game_team_id", gameTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventsToDTOs(events))
}
