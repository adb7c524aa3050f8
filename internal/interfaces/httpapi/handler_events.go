package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtrask/scorebook/internal/domain/event"
)

type dependentEventDTO struct {
	Event  eventDTO `json:"event"`
	Reason string   `json:"reason"`
}

type dependentSetDTO struct {
	Events         []dependentEventDTO `json:"events"`
	Count          int                 `json:"count"`
	CanDelete      bool                `json:"canDelete"`
	WarningMessage string              `json:"warningMessage,omitempty"`
}

func (h *Handler) FindDependentEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FindDependentEvents")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	set, err := h.cascadeService.FindDependents(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "find dependent events failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := dependentSetDTO{
		Events:         make([]dependentEventDTO, 0, len(set.Events)),
		Count:          set.Count,
		CanDelete:      set.CanDelete,
		WarningMessage: set.WarningMessage,
	}
	for _, dep := range set.Events {
		dto.Events = append(dto.Events, dependentEventDTO{
			Event:  eventToDTO(dep.Event),
			Reason: dep.Reason,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) DeleteEventWithCascade(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteEventWithCascade")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	kind := event.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))

	if err := h.cascadeService.DeleteWithCascade(ctx, eventID, kind); err != nil {
		h.logger.WarnContext(ctx, "delete event with cascade failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deletedEventId": eventID})
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGoal")
	defer span.End()

	h.deleteByKind(ctx, w, r, h.cascadeService.DeleteGoal, "delete goal failed")
}

func (h *Handler) DeleteSubstitution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSubstitution")
	defer span.End()

	h.deleteByKind(ctx, w, r, h.cascadeService.DeleteSubstitution, "delete substitution failed")
}

func (h *Handler) DeletePositionSwap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePositionSwap")
	defer span.End()

	h.deleteByKind(ctx, w, r, h.cascadeService.DeletePositionSwap, "delete position swap failed")
}

func (h *Handler) DeleteStarterEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteStarterEntry")
	defer span.End()

	h.deleteByKind(ctx, w, r, h.cascadeService.DeleteStarterEntry, "delete starter entry failed")
}

func (h *Handler) deleteByKind(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	remove func(context.Context, string) error,
	failureMsg string,
) {
	eventID := strings.TrimSpace(r.PathValue("eventID"))
	if err := remove(ctx, eventID); err != nil {
		h.logger.WarnContext(ctx, failureMsg, "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deletedEventId": eventID})
}
