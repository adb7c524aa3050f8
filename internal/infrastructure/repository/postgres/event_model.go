package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/dtrask/scorebook/internal/domain/event"
)

type eventTableModel struct {
	ID               int64          `db:"id"`
	PublicID         string         `db:"public_id"`
	GameID           string         `db:"game_public_id"`
	GameTeamID       string         `db:"game_team_public_id"`
	KindID           int64          `db:"kind_id"`
	PlayerID         sql.NullString `db:"player_public_id"`
	ExternalName     sql.NullString `db:"external_name"`
	ExternalNumber   sql.NullString `db:"external_number"`
	Position         sql.NullString `db:"position"`
	Period           string         `db:"period"`
	PeriodRank       int            `db:"period_rank"`
	PeriodSecond     int            `db:"period_second"`
	RecordedByUserID sql.NullString `db:"recorded_by_user_id"`
	ParentEventID    sql.NullString `db:"parent_event_public_id"`
	ConflictID       sql.NullString `db:"conflict_public_id"`
	Metadata         []byte         `db:"metadata"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

type eventInsertModel struct {
	PublicID         string         `db:"public_id"`
	GameID           string         `db:"game_public_id"`
	GameTeamID       string         `db:"game_team_public_id"`
	KindID           int64          `db:"kind_id"`
	PlayerID         sql.NullString `db:"player_public_id"`
	ExternalName     sql.NullString `db:"external_name"`
	ExternalNumber   sql.NullString `db:"external_number"`
	Position         sql.NullString `db:"position"`
	Period           string         `db:"period"`
	PeriodRank       int            `db:"period_rank"`
	PeriodSecond     int            `db:"period_second"`
	RecordedByUserID sql.NullString `db:"recorded_by_user_id"`
	ParentEventID    sql.NullString `db:"parent_event_public_id"`
	ConflictID       sql.NullString `db:"conflict_public_id"`
	Metadata         []byte         `db:"metadata"`
	CreatedAt        time.Time      `db:"created_at"`
}

func eventInsertRow(e event.GameEvent, catalog *event.Catalog) (eventInsertModel, error) {
	kindID, err := catalog.IDFor(e.Kind)
	if err != nil {
		return eventInsertModel{}, err
	}
	rank, ok := event.PeriodRank(e.Period)
	if !ok {
		return eventInsertModel{}, fmt.Errorf("period %q is malformed", e.Period)
	}

	var metadata []byte
	if len(e.Metadata) > 0 {
		metadata, err = sonic.Marshal(e.Metadata)
		if err != nil {
			return eventInsertModel{}, fmt.Errorf("encode event metadata: %w", err)
		}
	}

	return eventInsertModel{
		PublicID:         e.ID,
		GameID:           e.GameID,
		GameTeamID:       e.GameTeamID,
		KindID:           kindID,
		PlayerID:         nullString(e.Player.PlayerID),
		ExternalName:     nullString(e.Player.ExternalName),
		ExternalNumber:   nullString(e.Player.ExternalNumber),
		Position:         nullString(e.Position),
		Period:           e.Period,
		PeriodRank:       rank,
		PeriodSecond:     e.PeriodSecond,
		RecordedByUserID: nullString(e.RecordedByUserID),
		ParentEventID:    nullString(e.ParentEventID),
		ConflictID:       nullString(e.ConflictID),
		Metadata:         metadata,
		CreatedAt:        e.CreatedAt,
	}, nil
}

func eventFromRow(row eventTableModel, catalog *event.Catalog) (event.GameEvent, error) {
	kind, err := catalog.KindFor(row.KindID)
	if err != nil {
		return event.GameEvent{}, err
	}

	var metadata map[string]string
	if len(row.Metadata) > 0 {
		if err := sonic.Unmarshal(row.Metadata, &metadata); err != nil {
			return event.GameEvent{}, fmt.Errorf("decode event metadata: %w", err)
		}
	}

	return event.GameEvent{
		ID:         row.PublicID,
		GameID:     row.GameID,
		GameTeamID: row.GameTeamID,
		Kind:       kind,
		Player: event.Identity{
			PlayerID:       row.PlayerID.String,
			ExternalName:   row.ExternalName.String,
			ExternalNumber: row.ExternalNumber.String,
		},
		Position:         row.Position.String,
		Period:           row.Period,
		PeriodSecond:     row.PeriodSecond,
		RecordedByUserID: row.RecordedByUserID.String,
		ParentEventID:    row.ParentEventID.String,
		ConflictID:       row.ConflictID.String,
		Metadata:         metadata,
		CreatedAt:        row.CreatedAt,
	}, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
