package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dtrask/scorebook/internal/domain/gameteam"
	qb "github.com/dtrask/scorebook/internal/platform/querybuilder"
)

type GameTeamRepository struct {
	db *sqlx.DB
}

func NewGameTeamRepository(db *sqlx.DB) *GameTeamRepository {
	return &GameTeamRepository{db: db}
}

func (r *GameTeamRepository) GetByID(ctx context.Context, id string) (gameteam.GameTeam, bool, error) {
	query, args, err := gameTeamBaseSelectBuilder().
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return gameteam.GameTeam{}, false, fmt.Errorf("build get game team query: %w", err)
	}

	var row gameTeamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gameteam.GameTeam{}, false, nil
		}
		return gameteam.GameTeam{}, false, fmt.Errorf("get game team: %w", err)
	}

	return gameTeamFromRow(row), true, nil
}

func (r *GameTeamRepository) ListByTeam(ctx context.Context, teamID string) ([]gameteam.GameTeam, error) {
	query, args, err := gameTeamBaseSelectBuilder().
		Where(
			qb.Eq("team_public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("played_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list game teams query: %w", err)
	}

	var rows []gameTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list game teams: %w", err)
	}

	out := make([]gameteam.GameTeam, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameTeamFromRow(row))
	}
	return out, nil
}

func (r *GameTeamRepository) Create(ctx context.Context, team gameteam.GameTeam) error {
	insertModel := gameTeamInsertModel{
		PublicID:   team.ID,
		GameID:     team.GameID,
		TeamID:     team.TeamID,
		Name:       team.Name,
		Formation:  nullString(team.Formation),
		FinalScore: team.FinalScore,
		PlayedAt:   team.PlayedAt,
	}
	query, args, err := qb.InsertModel("game_teams", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert game team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert game team: %w", err)
	}
	return nil
}

func (r *GameTeamRepository) UpdateFormation(ctx context.Context, id, formation string) error {
	query, args, err := qb.Update("game_teams").
		Set("formation", formation).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update formation query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update formation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("update formation: game team %s not found", id)
	}
	return nil
}

func gameTeamBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("game_teams")
}
