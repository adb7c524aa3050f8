package httpapi

import (
	"net/http"
	"strings"
)

type resolveConflictRequest struct {
	SelectedEventID string `json:"selectedEventId"`
	KeepAll         bool   `json:"keepAll"`
}

func (h *Handler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveConflict")
	defer span.End()

	conflictID := strings.TrimSpace(r.PathValue("conflictID"))
	var req resolveConflictRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	survivor, err := h.conflictService.Resolve(ctx, conflictID, req.SelectedEventID, req.KeepAll)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve conflict failed", "conflict_id", conflictID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(survivor))
}

func (h *Handler) ListConflictEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListConflictEvents")
	defer span.End()

	conflictID := strings.TrimSpace(r.PathValue("conflictID"))
	events, err := h.conflictService.Members(ctx, conflictID)
	if err != nil {
		h.logger.WarnContext(ctx, "list conflict events failed", "conflict_id", conflictID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, conflictGroupDTO{
		ConflictID: conflictID,
		Events:     eventsToDTOs(events),
	})
}
