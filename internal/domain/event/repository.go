package event

import "context"

// Repository exposes ledger persistence operations. Batch and scoring variants
// run all of their writes inside one store transaction.
type Repository interface {
	Create(ctx context.Context, e GameEvent) (GameEvent, error)
	CreateBatch(ctx context.Context, events []GameEvent) ([]GameEvent, error)
	Update(ctx context.Context, e GameEvent) (GameEvent, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) error

	// CreateScoring persists a goal and its optional assist child and
	// increments the owning team's final score, atomically.
	CreateScoring(ctx context.Context, goal GameEvent, assist *GameEvent) (GameEvent, *GameEvent, error)
	// DeleteScoring removes a goal together with the given child ids and
	// decrements the owning team's final score, atomically.
	DeleteScoring(ctx context.Context, goal GameEvent, childIDs []string) error

	GetByID(ctx context.Context, id string) (GameEvent, bool, error)
	ListByGameTeam(ctx context.Context, gameTeamID string) ([]GameEvent, error)
	ListByGame(ctx context.Context, gameID string) ([]GameEvent, error)
	ListChildren(ctx context.Context, parentEventID string) ([]GameEvent, error)
	ListByConflict(ctx context.Context, conflictID string) ([]GameEvent, error)
	ListAtTime(ctx context.Context, gameTeamID string, kind Kind, period string, periodSecond int) ([]GameEvent, error)

	// SetConflictID stamps (or, with an empty id, clears) the conflict group
	// on every listed event in one transaction.
	SetConflictID(ctx context.Context, ids []string, conflictID string) error
}
