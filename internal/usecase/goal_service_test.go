package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

func TestGoalService_Record_GoalWithAssist(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	assister := player("p-bella")
	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 600,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}

	if result.Goal.Kind != event.KindGoal {
		t.Fatalf("unexpected goal kind: %s", result.Goal.Kind)
	}
	if result.Assist == nil {
		t.Fatal("expected an assist event")
	}
	if result.Assist.ParentEventID != result.Goal.ID {
		t.Fatalf("assist parent: got=%s want=%s", result.Assist.ParentEventID, result.Goal.ID)
	}
	if result.Assist.Period != "1" || result.Assist.PeriodSecond != 600 {
		t.Fatalf("assist must share the goal's time, got %s+%d", result.Assist.Period, result.Assist.PeriodSecond)
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 1 {
		t.Fatalf("unexpected score after goal: got=%d want=1", got)
	}
	if !env.feed.has(ActionCreated) {
		t.Fatalf("expected a CREATED change message, got %v", env.feed.actions())
	}
}

func TestGoalService_Record_DuplicateIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	input := RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "1",
		PeriodSecond: 600,
	}
	first, err := svc.Record(t.Context(), input)
	if err != nil {
		t.Fatalf("record first goal: %v", err)
	}
	second, err := svc.Record(t.Context(), input)
	if err != nil {
		t.Fatalf("record duplicate goal: %v", err)
	}

	if !second.Duplicate {
		t.Fatal("expected duplicate detection")
	}
	if second.Goal.ID != first.Goal.ID {
		t.Fatalf("duplicate must return the stored goal: got=%s want=%s", second.Goal.ID, first.Goal.ID)
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 1 {
		t.Fatalf("duplicate must not move the score: got=%d want=1", got)
	}
	if !env.feed.has(ActionDuplicateDetected) {
		t.Fatalf("expected DUPLICATE_DETECTED, got %v", env.feed.actions())
	}
}

func TestGoalService_Record_SameTimeDifferentScorerConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	if _, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "2",
		PeriodSecond: 300,
	}); err != nil {
		t.Fatalf("record first goal: %v", err)
	}

	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       externalPlayer("Maya", "7"),
		Period:       "2",
		PeriodSecond: 300,
	})
	if err != nil {
		t.Fatalf("record conflicting goal: %v", err)
	}

	if result.Conflict == nil {
		t.Fatal("expected a conflict group")
	}
	if len(result.Conflict.Events) != 2 {
		t.Fatalf("unexpected conflict member count: got=%d want=2", len(result.Conflict.Events))
	}
	for _, member := range result.Conflict.Events {
		if member.ConflictID != result.Conflict.ConflictID {
			t.Fatalf("member %s missing the shared conflict id", member.ID)
		}
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 2 {
		t.Fatalf("both conflicted goals must count until resolution: got=%d want=2", got)
	}
	if !env.feed.has(ActionConflictDetected) {
		t.Fatalf("expected CONFLICT_DETECTED, got %v", env.feed.actions())
	}
}

func TestGoalService_Record_RejectsSelfAssist(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	assister := player("p-ava")
	_, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 10,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGoalService_Record_UnknownTeam(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	_, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   "gt-missing",
		Scorer:       player("p-ava"),
		Period:       "1",
		PeriodSecond: 10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalService_Update_MovesAssistWithGoal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	assister := player("p-bella")
	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 600,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}

	newSecond := 900
	updated, err := svc.Update(t.Context(), result.Goal.ID, GoalUpdate{PeriodSecond: &newSecond})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.PeriodSecond != 900 {
		t.Fatalf("unexpected goal second: got=%d want=900", updated.PeriodSecond)
	}

	children, err := env.events.ListChildren(t.Context(), result.Goal.ID)
	if err != nil {
		t.Fatalf("list goal children: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("unexpected child count: got=%d want=1", len(children))
	}
	if children[0].PeriodSecond != 900 {
		t.Fatalf("assist must follow the goal's time: got=%d want=900", children[0].PeriodSecond)
	}
}

func TestGoalService_Update_ClearAssister(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	assister := player("p-bella")
	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 600,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}

	if _, err := svc.Update(t.Context(), result.Goal.ID, GoalUpdate{ClearAssister: true}); err != nil {
		t.Fatalf("clear assister: %v", err)
	}

	children, err := env.events.ListChildren(t.Context(), result.Goal.ID)
	if err != nil {
		t.Fatalf("list goal children: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("assist must be deleted: got=%d children", len(children))
	}
	if !env.feed.has(ActionDeleted) {
		t.Fatalf("expected DELETED for the assist, got %v", env.feed.actions())
	}
}

func TestGoalService_Update_AddsAssisterToUnassistedGoal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	result, err := svc.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "1",
		PeriodSecond: 600,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}

	assister := player("p-bella")
	if _, err := svc.Update(t.Context(), result.Goal.ID, GoalUpdate{Assister: &assister}); err != nil {
		t.Fatalf("set assister: %v", err)
	}

	children, err := env.events.ListChildren(t.Context(), result.Goal.ID)
	if err != nil {
		t.Fatalf("list goal children: %v", err)
	}
	if len(children) != 1 || children[0].Kind != event.KindAssist {
		t.Fatalf("expected one assist child, got %d", len(children))
	}
	if !children[0].Player.SamePlayer(assister) {
		t.Fatalf("unexpected assister: %+v", children[0].Player)
	}
}

func TestGoalService_Update_RejectsSetAndClearTogether(t *testing.T) {
	env := newTestEnv(t)
	svc := env.goalService()

	assister := player("p-bella")
	_, err := svc.Update(t.Context(), "ev-any", GoalUpdate{Assister: &assister, ClearAssister: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGoalService_Update_RejectsNonGoal(t *testing.T) {
	env := newTestEnv(t)
	roster := env.rosterService()
	svc := env.goalService()

	added, err := roster.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-ava"),
	})
	if err != nil {
		t.Fatalf("add to roster: %v", err)
	}

	_, err = svc.Update(t.Context(), added.Entry.ID, GoalUpdate{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
