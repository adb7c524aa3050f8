package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

func TestRosterService_Add_NewPlayer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rosterService()

	result, err := svc.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-ava"),
		Position:   "GK",
	})
	if err != nil {
		t.Fatalf("add to roster: %v", err)
	}

	if result.Entry.Kind != event.KindGameRoster {
		t.Fatalf("unexpected entry kind: %s", result.Entry.Kind)
	}
	if result.Entry.Period != "1" {
		t.Fatalf("roster entries default to period 1, got %s", result.Entry.Period)
	}
	if result.Duplicate || result.Conflict != nil {
		t.Fatal("a fresh roster entry must be neither duplicate nor conflicted")
	}
}

func TestRosterService_Add_SamePlayerSameTimeIsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rosterService()

	input := AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     externalPlayer("Maya", "7"),
	}
	first, err := svc.Add(t.Context(), input)
	if err != nil {
		t.Fatalf("add first entry: %v", err)
	}
	second, err := svc.Add(t.Context(), input)
	if err != nil {
		t.Fatalf("add duplicate entry: %v", err)
	}

	if !second.Duplicate {
		t.Fatal("expected duplicate detection")
	}
	if second.Entry.ID != first.Entry.ID {
		t.Fatalf("duplicate must return the stored entry: got=%s want=%s", second.Entry.ID, first.Entry.ID)
	}
	if !env.feed.has(ActionDuplicateDetected) {
		t.Fatalf("expected DUPLICATE_DETECTED, got %v", env.feed.actions())
	}
}

func TestRosterService_Add_SamePlayerOtherTimeIsRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rosterService()

	if _, err := svc.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-ava"),
	}); err != nil {
		t.Fatalf("add first entry: %v", err)
	}

	_, err := svc.Add(t.Context(), AddToRosterInput{
		GameTeamID:   memory.GameTeamIDHome,
		Player:       player("p-ava"),
		Period:       "2",
		PeriodSecond: 30,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for re-rostering, got %v", err)
	}
}

func TestRosterService_Add_DifferentPlayerSameTimeConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rosterService()

	if _, err := svc.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-ava"),
	}); err != nil {
		t.Fatalf("add first entry: %v", err)
	}

	result, err := svc.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-bella"),
	})
	if err != nil {
		t.Fatalf("add conflicting entry: %v", err)
	}

	if result.Conflict == nil {
		t.Fatal("expected a conflict group")
	}
	if len(result.Conflict.Events) != 2 {
		t.Fatalf("unexpected conflict member count: got=%d want=2", len(result.Conflict.Events))
	}
}

func TestRosterService_Add_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rosterService()

	_, err := svc.Add(t.Context(), AddToRosterInput{GameTeamID: memory.GameTeamIDHome})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
