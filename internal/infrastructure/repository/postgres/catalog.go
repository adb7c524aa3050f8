package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dtrask/scorebook/internal/domain/event"
	qb "github.com/dtrask/scorebook/internal/platform/querybuilder"
)

type eventKindTableModel struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
}

// LoadCatalog reads the event_kinds relation into an immutable kind catalog.
// It fails when the relation is missing a kind the domain knows about, which
// is the signal that migrations have not run.
func LoadCatalog(ctx context.Context, db *sqlx.DB) (*event.Catalog, error) {
	query, args, err := qb.Select("id", "code").From("event_kinds").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build load event kinds query: %w", err)
	}

	var rows []eventKindTableModel
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load event kinds: %w", err)
	}

	idByKind := make(map[event.Kind]int64, len(rows))
	for _, row := range rows {
		idByKind[event.Kind(row.Code)] = row.ID
	}

	catalog, err := event.NewCatalog(idByKind)
	if err != nil {
		return nil, fmt.Errorf("build event kind catalog: %w", err)
	}
	return catalog, nil
}
