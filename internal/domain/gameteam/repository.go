package gameteam

import "context"

// Repository exposes game-team persistence operations. The final score is not
// writable here: it moves only inside the ledger's scoring transactions.
type Repository interface {
	GetByID(ctx context.Context, id string) (GameTeam, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]GameTeam, error)
	Create(ctx context.Context, team GameTeam) error
	UpdateFormation(ctx context.Context, id, formation string) error
}
