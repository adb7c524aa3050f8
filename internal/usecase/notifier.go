package usecase

import (
	"context"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// ChangeAction labels what a change message describes. Duplicate and conflict
// detections are successful outcomes, not errors; they only differ in action.
type ChangeAction string

const (
	ActionCreated           ChangeAction = "CREATED"
	ActionUpdated           ChangeAction = "UPDATED"
	ActionDeleted           ChangeAction = "DELETED"
	ActionDuplicateDetected ChangeAction = "DUPLICATE_DETECTED"
	ActionConflictDetected  ChangeAction = "CONFLICT_DETECTED"
)

// ConflictGroup carries the full set of events sharing one conflict id.
type ConflictGroup struct {
	ConflictID string
	Events     []event.GameEvent
}

// ChangeMessage is published once per mutation on the owning game's channel so
// concurrently connected scorekeepers converge without polling.
type ChangeMessage struct {
	Action         ChangeAction
	GameID         string
	Event          *event.GameEvent
	DeletedEventID string
	Conflict       *ConflictGroup
}

// Notifier publishes change messages. Publish failures never fail the mutation
// that produced them; callers log and move on.
type Notifier interface {
	Publish(ctx context.Context, msg ChangeMessage) error
}

// NopNotifier drops every message. Used when no feed transport is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, ChangeMessage) error { return nil }

func notify(ctx context.Context, n Notifier, logger *logging.Logger, msg ChangeMessage) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, msg); err != nil {
		if logger == nil {
			logger = logging.Default()
		}
		logger.WarnContext(ctx, "publish change notification failed",
			"action", string(msg.Action),
			"game_id", msg.GameID,
			"error", err,
		)
	}
}

func created(e event.GameEvent) ChangeMessage {
	copied := e.Clone()
	return ChangeMessage{Action: ActionCreated, GameID: e.GameID, Event: &copied}
}

func updated(e event.GameEvent) ChangeMessage {
	copied := e.Clone()
	return ChangeMessage{Action: ActionUpdated, GameID: e.GameID, Event: &copied}
}

func deleted(e event.GameEvent) ChangeMessage {
	return ChangeMessage{Action: ActionDeleted, GameID: e.GameID, DeletedEventID: e.ID}
}
