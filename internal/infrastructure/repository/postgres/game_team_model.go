package postgres

import (
	"database/sql"
	"time"

	"github.com/dtrask/scorebook/internal/domain/gameteam"
)

type gameTeamTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	GameID     string         `db:"game_public_id"`
	TeamID     string         `db:"team_public_id"`
	Name       string         `db:"name"`
	Formation  sql.NullString `db:"formation"`
	FinalScore int            `db:"final_score"`
	PlayedAt   time.Time      `db:"played_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}

type gameTeamInsertModel struct {
	PublicID   string         `db:"public_id"`
	GameID     string         `db:"game_public_id"`
	TeamID     string         `db:"team_public_id"`
	Name       string         `db:"name"`
	Formation  sql.NullString `db:"formation"`
	FinalScore int            `db:"final_score"`
	PlayedAt   time.Time      `db:"played_at"`
}

func gameTeamFromRow(row gameTeamTableModel) gameteam.GameTeam {
	return gameteam.GameTeam{
		ID:         row.PublicID,
		GameID:     row.GameID,
		TeamID:     row.TeamID,
		Name:       row.Name,
		Formation:  row.Formation.String,
		FinalScore: row.FinalScore,
		PlayedAt:   row.PlayedAt,
	}
}
