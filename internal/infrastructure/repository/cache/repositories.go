package cache

import (
	"context"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	basecache "github.com/dtrask/scorebook/internal/platform/cache"
)

// GameTeamRepository caches game-team reads. Ledger reads are never cached:
// scorekeepers must see their own writes immediately, so only the slow-moving
// game-team rows go through the store.
type GameTeamRepository struct {
	next  gameteam.Repository
	cache *basecache.Store
}

func NewGameTeamRepository(next gameteam.Repository, cache *basecache.Store) *GameTeamRepository {
	return &GameTeamRepository{next: next, cache: cache}
}

func (r *GameTeamRepository) GetByID(ctx context.Context, id string) (gameteam.GameTeam, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, gameTeamByIDKey(id), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedGameTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return gameteam.GameTeam{}, false, err
	}

	cached, _ := v.(cachedGameTeamByID)
	return cached.value, cached.exists, nil
}

func (r *GameTeamRepository) ListByTeam(ctx context.Context, teamID string) ([]gameteam.GameTeam, error) {
	key := gameTeamListPrefix + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return append([]gameteam.GameTeam(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]gameteam.GameTeam)
	return append([]gameteam.GameTeam(nil), items...), nil
}

func (r *GameTeamRepository) Create(ctx context.Context, team gameteam.GameTeam) error {
	if err := r.next.Create(ctx, team); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameTeamByIDKey(team.ID))
	r.cache.Delete(ctx, gameTeamListPrefix+team.TeamID)
	return nil
}

func (r *GameTeamRepository) UpdateFormation(ctx context.Context, id, formation string) error {
	if err := r.next.UpdateFormation(ctx, id, formation); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameTeamByIDKey(id))
	r.cache.DeletePrefix(ctx, gameTeamListPrefix)
	return nil
}

type cachedGameTeamByID struct {
	value  gameteam.GameTeam
	exists bool
}

const gameTeamListPrefix = "game-team:list:team:"

func gameTeamByIDKey(id string) string {
	return "game-team:id:" + id
}

// EventRepository passes ledger operations straight through and keeps the
// game-team cache honest: scoring writes move final_score on the team row, so
// they evict the affected entries.
type EventRepository struct {
	next  event.Repository
	cache *basecache.Store
}

func NewEventRepository(next event.Repository, cache *basecache.Store) *EventRepository {
	return &EventRepository{next: next, cache: cache}
}

func (r *EventRepository) Create(ctx context.Context, e event.GameEvent) (event.GameEvent, error) {
	return r.next.Create(ctx, e)
}

func (r *EventRepository) CreateBatch(ctx context.Context, events []event.GameEvent) ([]event.GameEvent, error) {
	return r.next.CreateBatch(ctx, events)
}

func (r *EventRepository) Update(ctx context.Context, e event.GameEvent) (event.GameEvent, error) {
	return r.next.Update(ctx, e)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.next.Delete(ctx, id)
}

func (r *EventRepository) DeleteBatch(ctx context.Context, ids []string) error {
	return r.next.DeleteBatch(ctx, ids)
}

func (r *EventRepository) CreateScoring(ctx context.Context, goal event.GameEvent, assist *event.GameEvent) (event.GameEvent, *event.GameEvent, error) {
	created, createdAssist, err := r.next.CreateScoring(ctx, goal, assist)
	if err != nil {
		return event.GameEvent{}, nil, err
	}
	r.evictGameTeam(ctx, created.GameTeamID)
	return created, createdAssist, nil
}

func (r *EventRepository) DeleteScoring(ctx context.Context, goal event.GameEvent, childIDs []string) error {
	if err := r.next.DeleteScoring(ctx, goal, childIDs); err != nil {
		return err
	}
	r.evictGameTeam(ctx, goal.GameTeamID)
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (event.GameEvent, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *EventRepository) ListByGameTeam(ctx context.Context, gameTeamID string) ([]event.GameEvent, error) {
	return r.next.ListByGameTeam(ctx, gameTeamID)
}

func (r *EventRepository) ListByGame(ctx context.Context, gameID string) ([]event.GameEvent, error) {
	return r.next.ListByGame(ctx, gameID)
}

func (r *EventRepository) ListChildren(ctx context.Context, parentEventID string) ([]event.GameEvent, error) {
	return r.next.ListChildren(ctx, parentEventID)
}

func (r *EventRepository) ListByConflict(ctx context.Context, conflictID string) ([]event.GameEvent, error) {
	return r.next.ListByConflict(ctx, conflictID)
}

func (r *EventRepository) ListAtTime(ctx context.Context, gameTeamID string, kind event.Kind, period string, periodSecond int) ([]event.GameEvent, error) {
	return r.next.ListAtTime(ctx, gameTeamID, kind, period, periodSecond)
}

func (r *EventRepository) SetConflictID(ctx context.Context, ids []string, conflictID string) error {
	return r.next.SetConflictID(ctx, ids, conflictID)
}

func (r *EventRepository) evictGameTeam(ctx context.Context, gameTeamID string) {
	r.cache.Delete(ctx, gameTeamByIDKey(gameTeamID))
	r.cache.DeletePrefix(ctx, gameTeamListPrefix)
}
