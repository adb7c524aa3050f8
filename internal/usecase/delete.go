package usecase

import (
	"context"
	"fmt"

	"github.com/dtrask/scorebook/internal/domain/event"
)

// deleter removes one event together with the causally-linked group it belongs
// to: a goal takes its assist children and the score contribution, a paired
// substitution takes both halves, a swap takes both swap rows. Linked rows are
// always resolved through store queries, never in-memory pointers.
type deleter struct {
	events event.Repository
}

// deleteGroup removes e and its linked partners, dispatching on kind. It
// returns every event actually deleted so callers can notify and track them.
func (d deleter) deleteGroup(ctx context.Context, e event.GameEvent) ([]event.GameEvent, error) {
	switch e.Kind {
	case event.KindGoal:
		return d.deleteGoal(ctx, e)
	case event.KindSubstitutionIn, event.KindSubstitutionOut:
		return d.deleteSubstitution(ctx, e)
	case event.KindPositionSwap:
		return d.deleteSwap(ctx, e)
	default:
		return d.deleteSingle(ctx, e)
	}
}

// deleteGoal removes the goal, its assist children, and its score
// contribution in one transaction.
func (d deleter) deleteGoal(ctx context.Context, goal event.GameEvent) ([]event.GameEvent, error) {
	children, err := d.events.ListChildren(ctx, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("list goal children: %w", err)
	}

	childIDs := make([]string, 0, len(children))
	for _, child := range children {
		childIDs = append(childIDs, child.ID)
	}

	if err := d.events.DeleteScoring(ctx, goal, childIDs); err != nil {
		return nil, fmt.Errorf("delete goal with score: %w", err)
	}

	return append(children, goal), nil
}

// deleteSubstitution removes a paired in/out together. Unbalanced entries and
// exits (injury, red card, period starters) have no pair and go alone.
func (d deleter) deleteSubstitution(ctx context.Context, e event.GameEvent) ([]event.GameEvent, error) {
	group := []event.GameEvent{e}

	switch e.Kind {
	case event.KindSubstitutionIn:
		// The in links to its out via parent; the parent may instead be a
		// PERIOD_START/END boundary, which never deletes with the sub.
		if e.ParentEventID != "" {
			parent, ok, err := d.events.GetByID(ctx, e.ParentEventID)
			if err != nil {
				return nil, fmt.Errorf("load substitution parent: %w", err)
			}
			if ok && parent.Kind == event.KindSubstitutionOut {
				group = append(group, parent)
			}
		}
	case event.KindSubstitutionOut:
		children, err := d.events.ListChildren(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("list substitution children: %w", err)
		}
		for _, child := range children {
			if child.Kind == event.KindSubstitutionIn {
				group = append(group, child)
			}
		}
	}

	ids := make([]string, 0, len(group))
	for _, member := range group {
		ids = append(ids, member.ID)
	}
	if err := d.events.DeleteBatch(ctx, ids); err != nil {
		return nil, fmt.Errorf("delete substitution group: %w", err)
	}

	return group, nil
}

// deleteSwap removes both rows of a swap pair; the second row links to the
// first via parent.
func (d deleter) deleteSwap(ctx context.Context, e event.GameEvent) ([]event.GameEvent, error) {
	group := []event.GameEvent{e}

	if e.ParentEventID != "" {
		parent, ok, err := d.events.GetByID(ctx, e.ParentEventID)
		if err != nil {
			return nil, fmt.Errorf("load swap parent: %w", err)
		}
		if ok && parent.Kind == event.KindPositionSwap {
			group = append(group, parent)
		}
	}

	children, err := d.events.ListChildren(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("list swap children: %w", err)
	}
	for _, child := range children {
		if child.Kind == event.KindPositionSwap {
			group = append(group, child)
		}
	}

	ids := make([]string, 0, len(group))
	for _, member := range group {
		ids = append(ids, member.ID)
	}
	if err := d.events.DeleteBatch(ctx, ids); err != nil {
		return nil, fmt.Errorf("delete swap pair: %w", err)
	}

	return group, nil
}

func (d deleter) deleteSingle(ctx context.Context, e event.GameEvent) ([]event.GameEvent, error) {
	if err := d.events.Delete(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return []event.GameEvent{e}, nil
}
