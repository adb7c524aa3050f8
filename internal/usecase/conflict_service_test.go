package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

// conflictedGoals records two same-time goals by different scorers and returns
// the resulting conflict group.
func conflictedGoals(t *testing.T, env *testEnv) ConflictGroup {
	t.Helper()
	svc := env.goalService()

	if _, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "1",
		PeriodSecond: 600,
	}); err != nil {
		t.Fatalf("record first goal: %v", err)
	}
	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-bella"),
		Period:       "1",
		PeriodSecond: 600,
	})
	if err != nil {
		t.Fatalf("record conflicting goal: %v", err)
	}
	if result.Conflict == nil {
		t.Fatal("expected a conflict group")
	}
	return *result.Conflict
}

func TestConflictService_Members(t *testing.T) {
	env := newTestEnv(t)
	group := conflictedGoals(t, env)
	svc := env.conflictService()

	members, err := svc.Members(t.Context(), group.ConflictID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("unexpected member count: got=%d want=2", len(members))
	}
}

func TestConflictService_Members_NotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.conflictService()

	_, err := svc.Members(t.Context(), "conflict-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConflictService_Resolve_KeepAllClearsMarkers(t *testing.T) {
	env := newTestEnv(t)
	group := conflictedGoals(t, env)
	svc := env.conflictService()

	if _, err := svc.Resolve(t.Context(), group.ConflictID, "", true); err != nil {
		t.Fatalf("resolve keep-all: %v", err)
	}

	for _, member := range group.Events {
		stored, exists, err := env.events.GetByID(t.Context(), member.ID)
		if err != nil || !exists {
			t.Fatalf("member %s must survive: exists=%v err=%v", member.ID, exists, err)
		}
		if stored.ConflictID != "" {
			t.Fatalf("member %s still carries a conflict id", member.ID)
		}
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 2 {
		t.Fatalf("keep-all must not move the score: got=%d want=2", got)
	}
}

func TestConflictService_Resolve_SelectDeletesLosers(t *testing.T) {
	env := newTestEnv(t)
	group := conflictedGoals(t, env)
	svc := env.conflictService()

	selected := group.Events[0]
	survivor, err := svc.Resolve(t.Context(), group.ConflictID, selected.ID, false)
	if err != nil {
		t.Fatalf("resolve with selection: %v", err)
	}
	if survivor.ID != selected.ID || survivor.ConflictID != "" {
		t.Fatalf("unexpected survivor: %+v", survivor)
	}

	for _, member := range group.Events {
		_, exists, err := env.events.GetByID(t.Context(), member.ID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if member.ID == selected.ID && !exists {
			t.Fatal("selected member must survive")
		}
		if member.ID != selected.ID && exists {
			t.Fatalf("losing member %s must be deleted", member.ID)
		}
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 1 {
		t.Fatalf("losing goal must roll its score back: got=%d want=1", got)
	}
}

func TestConflictService_Resolve_RejectsNonMemberSelection(t *testing.T) {
	env := newTestEnv(t)
	group := conflictedGoals(t, env)
	svc := env.conflictService()

	_, err := svc.Resolve(t.Context(), group.ConflictID, "ev-outsider", false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
