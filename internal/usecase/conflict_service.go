package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// ConflictService resolves conflict groups. Resolution is human-driven: the
// detector only flags, a scorekeeper decides.
type ConflictService struct {
	events   event.Repository
	notifier Notifier
	logger   *logging.Logger
}

func NewConflictService(events event.Repository, notifier Notifier, logger *logging.Logger) *ConflictService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &ConflictService{
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// Members lists the events sharing a conflict id.
func (s *ConflictService) Members(ctx context.Context, conflictID string) ([]event.GameEvent, error) {
	conflictID = strings.TrimSpace(conflictID)
	if conflictID == "" {
		return nil, fmt.Errorf("%w: conflict id is required", ErrInvalidInput)
	}

	members, err := s.events.ListByConflict(ctx, conflictID)
	if err != nil {
		return nil, fmt.Errorf("list conflict members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: conflict=%s", ErrNotFound, conflictID)
	}
	return members, nil
}

// Resolve settles a conflict group. keepAll clears the group marker from every
// member; otherwise every member except the selected one is removed with
// kind-aware deletion, so score counters and child events stay correct, and
// the survivor's marker is cleared.
func (s *ConflictService) Resolve(ctx context.Context, conflictID, selectedEventID string, keepAll bool) (event.GameEvent, error) {
	conflictID = strings.TrimSpace(conflictID)
	selectedEventID = strings.TrimSpace(selectedEventID)
	if conflictID == "" {
		return event.GameEvent{}, fmt.Errorf("%w: conflict id is required", ErrInvalidInput)
	}

	members, err := s.events.ListByConflict(ctx, conflictID)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("list conflict members: %w", err)
	}
	if len(members) == 0 {
		return event.GameEvent{}, fmt.Errorf("%w: conflict=%s", ErrNotFound, conflictID)
	}

	var selected *event.GameEvent
	for i := range members {
		if members[i].ID == selectedEventID {
			selected = &members[i]
			break
		}
	}

	if keepAll {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		if err := s.events.SetConflictID(ctx, ids, ""); err != nil {
			return event.GameEvent{}, fmt.Errorf("clear conflict group: %w", err)
		}
		for _, m := range members {
			m.ConflictID = ""
			notify(ctx, s.notifier, s.logger, updated(m))
		}
		if selected != nil {
			survivor := selected.Clone()
			survivor.ConflictID = ""
			return survivor, nil
		}
		kept := members[0].Clone()
		kept.ConflictID = ""
		return kept, nil
	}

	if selected == nil {
		return event.GameEvent{}, fmt.Errorf("%w: event %s is not a member of conflict %s", ErrInvalidInput, selectedEventID, conflictID)
	}

	del := deleter{events: s.events}
	for _, member := range members {
		if member.ID == selected.ID {
			continue
		}
		removed, err := del.deleteGroup(ctx, member)
		if err != nil {
			return event.GameEvent{}, fmt.Errorf("delete conflict member %s: %w", member.ID, err)
		}
		for _, gone := range removed {
			notify(ctx, s.notifier, s.logger, deleted(gone))
		}
	}

	if err := s.events.SetConflictID(ctx, []string{selected.ID}, ""); err != nil {
		return event.GameEvent{}, fmt.Errorf("clear survivor conflict id: %w", err)
	}

	survivor := selected.Clone()
	survivor.ConflictID = ""
	notify(ctx, s.notifier, s.logger, updated(survivor))

	return survivor, nil
}
