package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dtrask/scorebook/internal/domain/event"
	qb "github.com/dtrask/scorebook/internal/platform/querybuilder"
)

// EventRepository persists the game-event ledger. Rows are soft-deleted so a
// removed event leaves an audit trail; every read filters deleted_at.
type EventRepository struct {
	db      *sqlx.DB
	catalog *event.Catalog
}

func NewEventRepository(db *sqlx.DB, catalog *event.Catalog) *EventRepository {
	return &EventRepository{db: db, catalog: catalog}
}

func (r *EventRepository) Create(ctx context.Context, e event.GameEvent) (event.GameEvent, error) {
	return r.insertEvent(ctx, r.db, e)
}

func (r *EventRepository) CreateBatch(ctx context.Context, events []event.GameEvent) ([]event.GameEvent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx create event batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	out := make([]event.GameEvent, 0, len(events))
	for _, e := range events {
		stored, err := r.insertEvent(ctx, tx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create event batch tx: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, e event.GameEvent) (event.GameEvent, error) {
	kindID, err := r.catalog.IDFor(e.Kind)
	if err != nil {
		return event.GameEvent{}, err
	}
	rank, ok := event.PeriodRank(e.Period)
	if !ok {
		return event.GameEvent{}, fmt.Errorf("period %q is malformed", e.Period)
	}

	row, err := eventInsertRow(e, r.catalog)
	if err != nil {
		return event.GameEvent{}, err
	}

	query, args, err := qb.Update("game_events").
		Set("kind_id", kindID).
		Set("player_public_id", row.PlayerID).
		Set("external_name", row.ExternalName).
		Set("external_number", row.ExternalNumber).
		Set("position", row.Position).
		Set("period", e.Period).
		Set("period_rank", rank).
		Set("period_second", e.PeriodSecond).
		Set("parent_event_public_id", row.ParentEventID).
		Set("conflict_public_id", row.ConflictID).
		Set("metadata", row.Metadata).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", e.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("build update event query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return event.GameEvent{}, fmt.Errorf("update event: %s not found", e.ID)
	}

	stored, exists, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return event.GameEvent{}, err
	}
	if !exists {
		return event.GameEvent{}, fmt.Errorf("update event: %s not found", e.ID)
	}
	return stored, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.softDelete(ctx, r.db, []string{id})
}

func (r *EventRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.softDelete(ctx, r.db, ids)
}

func (r *EventRepository) CreateScoring(ctx context.Context, goal event.GameEvent, assist *event.GameEvent) (event.GameEvent, *event.GameEvent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("begin tx create scoring: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	storedGoal, err := r.insertEvent(ctx, tx, goal)
	if err != nil {
		return event.GameEvent{}, nil, err
	}

	var storedAssist *event.GameEvent
	if assist != nil {
		stored, err := r.insertEvent(ctx, tx, *assist)
		if err != nil {
			return event.GameEvent{}, nil, err
		}
		storedAssist = &stored
	}

	if err := adjustFinalScore(ctx, tx, goal.GameTeamID, "final_score + 1"); err != nil {
		return event.GameEvent{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("commit create scoring tx: %w", err)
	}
	return storedGoal, storedAssist, nil
}

func (r *EventRepository) DeleteScoring(ctx context.Context, goal event.GameEvent, childIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete scoring: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ids := append([]string{goal.ID}, childIDs...)
	if err := r.softDelete(ctx, tx, ids); err != nil {
		return err
	}
	if err := adjustFinalScore(ctx, tx, goal.GameTeamID, "GREATEST(final_score - 1, 0)"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete scoring tx: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (event.GameEvent, bool, error) {
	query, args, err := eventBaseSelectBuilder().
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.GameEvent{}, false, fmt.Errorf("build get event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.GameEvent{}, false, nil
		}
		return event.GameEvent{}, false, fmt.Errorf("get event: %w", err)
	}

	e, err := eventFromRow(row, r.catalog)
	if err != nil {
		return event.GameEvent{}, false, err
	}
	return e, true, nil
}

func (r *EventRepository) ListByGameTeam(ctx context.Context, gameTeamID string) ([]event.GameEvent, error) {
	return r.listEvents(ctx, "list events by game team", qb.Eq("game_team_public_id", gameTeamID))
}

func (r *EventRepository) ListByGame(ctx context.Context, gameID string) ([]event.GameEvent, error) {
	return r.listEvents(ctx, "list events by game", qb.Eq("game_public_id", gameID))
}

func (r *EventRepository) ListChildren(ctx context.Context, parentEventID string) ([]event.GameEvent, error) {
	return r.listEvents(ctx, "list child events", qb.Eq("parent_event_public_id", parentEventID))
}

func (r *EventRepository) ListByConflict(ctx context.Context, conflictID string) ([]event.GameEvent, error) {
	if conflictID == "" {
		return []event.GameEvent{}, nil
	}
	return r.listEvents(ctx, "list conflict events", qb.Eq("conflict_public_id", conflictID))
}

func (r *EventRepository) ListAtTime(ctx context.Context, gameTeamID string, kind event.Kind, period string, periodSecond int) ([]event.GameEvent, error) {
	kindID, err := r.catalog.IDFor(kind)
	if err != nil {
		return nil, err
	}
	return r.listEvents(ctx, "list events at time",
		qb.Eq("game_team_public_id", gameTeamID),
		qb.Eq("kind_id", kindID),
		qb.Eq("period", period),
		qb.Eq("period_second", periodSecond),
	)
}

func (r *EventRepository) SetConflictID(ctx context.Context, ids []string, conflictID string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := qb.Update("game_events").
		Set("conflict_public_id", nullString(conflictID)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.In("public_id", anyStrings(ids)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set conflict id query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set conflict id: %w", err)
	}
	return nil
}

func (r *EventRepository) insertEvent(ctx context.Context, execer sqlx.ExtContext, e event.GameEvent) (event.GameEvent, error) {
	stored := e.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	insertModel, err := eventInsertRow(stored, r.catalog)
	if err != nil {
		return event.GameEvent{}, err
	}
	query, args, err := qb.InsertModel("game_events", insertModel, "")
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("build insert event query: %w", err)
	}
	if _, err := execer.ExecContext(ctx, query, args...); err != nil {
		return event.GameEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return stored, nil
}

func (r *EventRepository) softDelete(ctx context.Context, execer sqlx.ExtContext, ids []string) error {
	query, args, err := qb.Update("game_events").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.In("public_id", anyStrings(ids)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete events query: %w", err)
	}
	if _, err := execer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

func (r *EventRepository) listEvents(ctx context.Context, label string, conditions ...qb.Condition) ([]event.GameEvent, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := eventBaseSelectBuilder().
		Where(conditions...).
		OrderBy("period_rank", "period_second", "created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	out := make([]event.GameEvent, 0, len(rows))
	for _, row := range rows {
		e, err := eventFromRow(row, r.catalog)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func adjustFinalScore(ctx context.Context, execer sqlx.ExtContext, gameTeamID, expr string) error {
	query, args, err := qb.Update("game_teams").
		SetExpr("final_score", expr).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", gameTeamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust final score query: %w", err)
	}
	if _, err := execer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adjust final score: %w", err)
	}
	return nil
}

func eventBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("game_events")
}
