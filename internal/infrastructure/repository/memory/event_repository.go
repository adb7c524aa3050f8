package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dtrask/scorebook/internal/domain/event"
)

// EventRepository keeps the ledger in process memory. It holds a reference to
// the game-team repository so the scoring operations can move the final score
// under the same lock discipline a database transaction would give.
type EventRepository struct {
	mu    sync.RWMutex
	items map[string]event.GameEvent
	teams *GameTeamRepository
}

func NewEventRepository(teams *GameTeamRepository) *EventRepository {
	return &EventRepository{
		items: make(map[string]event.GameEvent),
		teams: teams,
	}
}

func (r *EventRepository) Create(_ context.Context, e event.GameEvent) (event.GameEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.insertLocked(e)
	if err != nil {
		return event.GameEvent{}, err
	}

	return stored.Clone(), nil
}

func (r *EventRepository) CreateBatch(_ context.Context, events []event.GameEvent) ([]event.GameEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := make([]string, 0, len(events))
	out := make([]event.GameEvent, 0, len(events))
	for _, e := range events {
		stored, err := r.insertLocked(e)
		if err != nil {
			for _, id := range inserted {
				delete(r.items, id)
			}
			return nil, err
		}
		inserted = append(inserted, stored.ID)
		out = append(out, stored.Clone())
	}

	return out, nil
}

func (r *EventRepository) Update(_ context.Context, e event.GameEvent) (event.GameEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[e.ID]
	if !ok {
		return event.GameEvent{}, fmt.Errorf("event %s not found", e.ID)
	}

	updated := e.Clone()
	updated.CreatedAt = existing.CreatedAt
	r.items[e.ID] = updated

	return updated.Clone(), nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *EventRepository) DeleteBatch(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}

func (r *EventRepository) CreateScoring(_ context.Context, goal event.GameEvent, assist *event.GameEvent) (event.GameEvent, *event.GameEvent, error) {
	r.mu.Lock()
	storedGoal, err := r.insertLocked(goal)
	if err != nil {
		r.mu.Unlock()
		return event.GameEvent{}, nil, err
	}

	var storedAssist *event.GameEvent
	if assist != nil {
		stored, err := r.insertLocked(*assist)
		if err != nil {
			delete(r.items, storedGoal.ID)
			r.mu.Unlock()
			return event.GameEvent{}, nil, err
		}
		clone := stored.Clone()
		storedAssist = &clone
	}
	r.mu.Unlock()

	if err := r.teams.adjustScore(goal.GameTeamID, 1); err != nil {
		r.mu.Lock()
		delete(r.items, storedGoal.ID)
		if storedAssist != nil {
			delete(r.items, storedAssist.ID)
		}
		r.mu.Unlock()
		return event.GameEvent{}, nil, fmt.Errorf("increment score: %w", err)
	}

	return storedGoal.Clone(), storedAssist, nil
}

func (r *EventRepository) DeleteScoring(_ context.Context, goal event.GameEvent, childIDs []string) error {
	r.mu.Lock()
	if _, ok := r.items[goal.ID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("event %s not found", goal.ID)
	}
	delete(r.items, goal.ID)
	for _, id := range childIDs {
		delete(r.items, id)
	}
	r.mu.Unlock()

	if err := r.teams.adjustScore(goal.GameTeamID, -1); err != nil {
		return fmt.Errorf("decrement score: %w", err)
	}

	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (event.GameEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return event.GameEvent{}, false, nil
	}

	return item.Clone(), true, nil
}

func (r *EventRepository) ListByGameTeam(_ context.Context, gameTeamID string) ([]event.GameEvent, error) {
	return r.listWhere(func(e event.GameEvent) bool { return e.GameTeamID == gameTeamID }), nil
}

func (r *EventRepository) ListByGame(_ context.Context, gameID string) ([]event.GameEvent, error) {
	return r.listWhere(func(e event.GameEvent) bool { return e.GameID == gameID }), nil
}

func (r *EventRepository) ListChildren(_ context.Context, parentEventID string) ([]event.GameEvent, error) {
	return r.listWhere(func(e event.GameEvent) bool { return e.ParentEventID == parentEventID }), nil
}

func (r *EventRepository) ListByConflict(_ context.Context, conflictID string) ([]event.GameEvent, error) {
	return r.listWhere(func(e event.GameEvent) bool { return conflictID != "" && e.ConflictID == conflictID }), nil
}

func (r *EventRepository) ListAtTime(_ context.Context, gameTeamID string, kind event.Kind, period string, periodSecond int) ([]event.GameEvent, error) {
	return r.listWhere(func(e event.GameEvent) bool {
		return e.GameTeamID == gameTeamID &&
			e.Kind == kind &&
			e.Period == period &&
			e.PeriodSecond == periodSecond
	}), nil
}

func (r *EventRepository) SetConflictID(_ context.Context, ids []string, conflictID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		item, ok := r.items[id]
		if !ok {
			return fmt.Errorf("event %s not found", id)
		}
		item.ConflictID = conflictID
		r.items[id] = item
	}

	return nil
}

func (r *EventRepository) insertLocked(e event.GameEvent) (event.GameEvent, error) {
	if e.ID == "" {
		return event.GameEvent{}, fmt.Errorf("event id is required")
	}
	if _, exists := r.items[e.ID]; exists {
		return event.GameEvent{}, fmt.Errorf("event %s already exists", e.ID)
	}

	stored := e.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.items[e.ID] = stored

	return stored, nil
}

func (r *EventRepository) listWhere(match func(event.GameEvent) bool) []event.GameEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.GameEvent, 0)
	for _, item := range r.items {
		if match(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return event.Before(out[i], out[j]) })

	return out
}
