package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo game teams when the table is empty, so a fresh
// database accepts event submissions immediately. Event kinds are seeded by
// the migrations, not here.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM game_teams WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count game teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, gt := range memory.SeedGameTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO game_teams (public_id, game_public_id, team_public_id, name, formation, final_score, played_at)
VALUES (:public_id, :game_public_id, :team_public_id, :name, :formation, :final_score, :played_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      gt.ID,
			"game_public_id": gt.GameID,
			"team_public_id": gt.TeamID,
			"name":           gt.Name,
			"formation":      gt.Formation,
			"final_score":    gt.FinalScore,
			"played_at":      gt.PlayedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed game team %s query: %w", gt.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed game team %s: %w", gt.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
