package usecase

import (
	"context"
	"fmt"

	"github.com/dtrask/scorebook/internal/domain/event"
	idgen "github.com/dtrask/scorebook/internal/platform/id"
)

// conflictCheck classifies an incoming GOAL or GAME_ROSTER submission against
// events already stored at the same game time. It is a heuristic, not a lock:
// two writes racing past it before either commits produce a conflict group
// instead of a hard duplicate, which resolution cleans up later.
type conflictCheck struct {
	Duplicate *event.GameEvent
	// ConflictsWith holds same-time, same-kind events recorded for a
	// different player. Empty means the submission is plain new.
	ConflictsWith []event.GameEvent
}

func classifySubmission(
	ctx context.Context,
	events event.Repository,
	gameTeamID string,
	kind event.Kind,
	player event.Identity,
	period string,
	periodSecond int,
) (conflictCheck, error) {
	existing, err := events.ListAtTime(ctx, gameTeamID, kind, period, periodSecond)
	if err != nil {
		return conflictCheck{}, fmt.Errorf("list %s events at %s+%ds: %w", kind, period, periodSecond, err)
	}

	var check conflictCheck
	for i := range existing {
		if existing[i].Player.SamePlayer(player) {
			duplicate := existing[i].Clone()
			check.Duplicate = &duplicate
			return check, nil
		}
		check.ConflictsWith = append(check.ConflictsWith, existing[i])
	}

	return check, nil
}

// groupConflict stamps a shared conflict id across the new event and every
// member it collides with, reusing an id the members already carry.
func groupConflict(
	ctx context.Context,
	events event.Repository,
	ids idgen.Generator,
	newEvent event.GameEvent,
	members []event.GameEvent,
) (ConflictGroup, error) {
	conflictID := ""
	for _, m := range members {
		if m.ConflictID != "" {
			conflictID = m.ConflictID
			break
		}
	}
	if conflictID == "" {
		generated, err := ids.NewID()
		if err != nil {
			return ConflictGroup{}, fmt.Errorf("generate conflict id: %w", err)
		}
		conflictID = generated
	}

	memberIDs := make([]string, 0, len(members)+1)
	for _, m := range members {
		if m.ConflictID != conflictID {
			memberIDs = append(memberIDs, m.ID)
		}
	}
	memberIDs = append(memberIDs, newEvent.ID)

	if err := events.SetConflictID(ctx, memberIDs, conflictID); err != nil {
		return ConflictGroup{}, fmt.Errorf("stamp conflict id: %w", err)
	}

	group, err := events.ListByConflict(ctx, conflictID)
	if err != nil {
		return ConflictGroup{}, fmt.Errorf("load conflict group: %w", err)
	}

	return ConflictGroup{ConflictID: conflictID, Events: group}, nil
}
