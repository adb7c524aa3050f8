package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

func TestCascadeService_FindDependents_GoalIncludesAssistAndLaterEvents(t *testing.T) {
	env := newTestEnv(t)
	goals := env.goalService()
	cascade := env.cascadeService()

	assister := player("p-bella")
	first, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 300,
	})
	if err != nil {
		t.Fatalf("record first goal: %v", err)
	}
	later, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "2",
		PeriodSecond: 100,
	})
	if err != nil {
		t.Fatalf("record later goal: %v", err)
	}

	set, err := cascade.FindDependents(t.Context(), first.Goal.ID)
	if err != nil {
		t.Fatalf("find dependents: %v", err)
	}
	if !set.CanDelete {
		t.Fatal("deletion is always permitted")
	}
	if set.Count != 2 {
		t.Fatalf("unexpected dependent count: got=%d want=2", set.Count)
	}

	found := map[string]bool{}
	for _, dep := range set.Events {
		found[dep.Event.ID] = true
	}
	if !found[first.Assist.ID] {
		t.Fatal("assist child missing from dependents")
	}
	if !found[later.Goal.ID] {
		t.Fatal("later goal for the same scorer missing from dependents")
	}
	if set.WarningMessage == "" {
		t.Fatal("expected a warning message when dependents exist")
	}
}

func TestCascadeService_FindDependents_SubstitutionOutTracksIncomingPlayer(t *testing.T) {
	env := newTestEnv(t)
	lineup := env.lineupService()
	goals := env.goalService()
	cascade := env.cascadeService()

	source := bringOn(t, lineup, player("p-ava"), "ST", 0)
	pair, err := lineup.SubstitutePlayer(t.Context(), SubstituteInput{
		GameTeamID:       memory.GameTeamIDHome,
		PlayerOutEventID: source.ID,
		Incoming:         player("p-bella"),
		Period:           "1",
		PeriodSecond:     600,
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	incomingGoal, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-bella"),
		Period:       "1",
		PeriodSecond: 900,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}

	set, err := cascade.FindDependents(t.Context(), pair[0].ID)
	if err != nil {
		t.Fatalf("find dependents: %v", err)
	}

	found := map[string]bool{}
	for _, dep := range set.Events {
		found[dep.Event.ID] = true
	}
	if !found[pair[1].ID] {
		t.Fatal("the paired substitution-in must depend on the out")
	}
	if !found[incomingGoal.Goal.ID] {
		t.Fatal("the incoming player's later goal must depend on the out")
	}
}

func TestCascadeService_DeleteWithCascade_RemovesGroupAndScore(t *testing.T) {
	env := newTestEnv(t)
	goals := env.goalService()
	cascade := env.cascadeService()

	assister := player("p-bella")
	first, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 300,
	})
	if err != nil {
		t.Fatalf("record first goal: %v", err)
	}
	if _, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "2",
		PeriodSecond: 100,
	}); err != nil {
		t.Fatalf("record later goal: %v", err)
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 2 {
		t.Fatalf("setup score: got=%d want=2", got)
	}

	if err := cascade.DeleteWithCascade(t.Context(), first.Goal.ID, event.KindGoal); err != nil {
		t.Fatalf("delete with cascade: %v", err)
	}

	if events := env.listTeamEvents(t, memory.GameTeamIDHome); len(events) != 0 {
		t.Fatalf("cascade must remove the goal, its assist and the later goal: %d left", len(events))
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 0 {
		t.Fatalf("score must roll back with the goals: got=%d want=0", got)
	}
}

func TestCascadeService_DeleteAssist_KeepsGoalAndScore(t *testing.T) {
	env := newTestEnv(t)
	goals := env.goalService()
	cascade := env.cascadeService()

	assister := player("p-bella")
	scored, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Assister:     &assister,
		Period:       "1",
		PeriodSecond: 300,
	})
	if err != nil {
		t.Fatalf("record goal: %v", err)
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 1 {
		t.Fatalf("setup score: got=%d want=1", got)
	}

	if err := cascade.DeleteWithCascade(t.Context(), scored.Assist.ID, event.KindAssist); err != nil {
		t.Fatalf("delete assist: %v", err)
	}

	if _, exists, err := env.events.GetByID(t.Context(), scored.Assist.ID); err != nil || exists {
		t.Fatalf("assist must be gone: exists=%v err=%v", exists, err)
	}
	if _, exists, err := env.events.GetByID(t.Context(), scored.Goal.ID); err != nil || !exists {
		t.Fatalf("the goal must survive its assist: exists=%v err=%v", exists, err)
	}
	if children, err := env.events.ListChildren(t.Context(), scored.Goal.ID); err != nil || len(children) != 0 {
		t.Fatalf("goal must have no children left: n=%d err=%v", len(children), err)
	}
	if got := env.teamScore(t, memory.GameTeamIDHome); got != 1 {
		t.Fatalf("deleting an assist must not touch the score: got=%d want=1", got)
	}
}

func TestCascadeService_DeleteWithCascade_RejectsKindMismatch(t *testing.T) {
	env := newTestEnv(t)
	roster := env.rosterService()
	cascade := env.cascadeService()

	added, err := roster.Add(t.Context(), AddToRosterInput{
		GameTeamID: memory.GameTeamIDHome,
		Player:     player("p-ava"),
	})
	if err != nil {
		t.Fatalf("add to roster: %v", err)
	}

	err = cascade.DeleteWithCascade(t.Context(), added.Entry.ID, event.KindGoal)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCascadeService_DeleteSubstitution_RemovesPair(t *testing.T) {
	env := newTestEnv(t)
	lineup := env.lineupService()
	cascade := env.cascadeService()

	source := bringOn(t, lineup, player("p-ava"), "ST", 0)
	pair, err := lineup.SubstitutePlayer(t.Context(), SubstituteInput{
		GameTeamID:       memory.GameTeamIDHome,
		PlayerOutEventID: source.ID,
		Incoming:         player("p-bella"),
		Period:           "1",
		PeriodSecond:     600,
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}

	if err := cascade.DeleteSubstitution(t.Context(), pair[1].ID); err != nil {
		t.Fatalf("delete substitution: %v", err)
	}

	for _, id := range []string{pair[0].ID, pair[1].ID} {
		if _, exists, err := env.events.GetByID(t.Context(), id); err != nil {
			t.Fatalf("get event: %v", err)
		} else if exists {
			t.Fatalf("event %s must be gone with its pair", id)
		}
	}
	if _, exists, err := env.events.GetByID(t.Context(), source.ID); err != nil || !exists {
		t.Fatalf("the original entry must survive: exists=%v err=%v", exists, err)
	}
}

func TestCascadeService_DeleteStarterEntry_KeepsBoundary(t *testing.T) {
	env := newTestEnv(t)
	periods := env.periodService()
	cascade := env.cascadeService()

	started, err := periods.StartPeriod(t.Context(), StartPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		Lineup:     []LineupEntry{{Player: player("p-ava"), Position: "GK"}},
	})
	if err != nil {
		t.Fatalf("start period: %v", err)
	}

	if err := cascade.DeleteStarterEntry(t.Context(), started.Entries[0].ID); err != nil {
		t.Fatalf("delete starter entry: %v", err)
	}

	if _, exists, err := env.events.GetByID(t.Context(), started.Entries[0].ID); err != nil || exists {
		t.Fatalf("starter must be gone: exists=%v err=%v", exists, err)
	}
	if _, exists, err := env.events.GetByID(t.Context(), started.Boundary.ID); err != nil || !exists {
		t.Fatalf("boundary must survive: exists=%v err=%v", exists, err)
	}
}

func TestCascadeService_DeletePositionSwap_RemovesBothRows(t *testing.T) {
	env := newTestEnv(t)
	lineup := env.lineupService()
	cascade := env.cascadeService()

	first := bringOn(t, lineup, player("p-ava"), "GK", 0)
	second := bringOn(t, lineup, player("p-bella"), "ST", 0)
	pair, err := lineup.SwapPositions(t.Context(), SwapPositionsInput{
		GameTeamID:   memory.GameTeamIDHome,
		Event1ID:     first.ID,
		Event2ID:     second.ID,
		Period:       "1",
		PeriodSecond: 300,
	})
	if err != nil {
		t.Fatalf("swap positions: %v", err)
	}

	if err := cascade.DeletePositionSwap(t.Context(), pair[0].ID); err != nil {
		t.Fatalf("delete position swap: %v", err)
	}

	for _, id := range []string{pair[0].ID, pair[1].ID} {
		if _, exists, err := env.events.GetByID(t.Context(), id); err != nil {
			t.Fatalf("get event: %v", err)
		} else if exists {
			t.Fatalf("swap row %s must be gone", id)
		}
	}
}

func TestCascadeService_FindDependents_NotFound(t *testing.T) {
	env := newTestEnv(t)
	cascade := env.cascadeService()

	_, err := cascade.FindDependents(t.Context(), "ev-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
