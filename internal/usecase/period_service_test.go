package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

func startFirstHalf(t *testing.T, svc *PeriodService) PeriodResult {
	t.Helper()
	result, err := svc.StartPeriod(t.Context(), StartPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		Lineup: []LineupEntry{
			{Player: player("p-ava"), Position: "GK"},
			{Player: player("p-bella"), Position: "ST"},
		},
	})
	if err != nil {
		t.Fatalf("start first half: %v", err)
	}
	return result
}

func TestPeriodService_StartPeriod_CreatesBoundaryAndStarters(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	result := startFirstHalf(t, svc)

	if result.Boundary.Kind != event.KindPeriodStart || result.Boundary.Period != "1" {
		t.Fatalf("unexpected boundary: %s %s", result.Boundary.Kind, result.Boundary.Period)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("unexpected starter count: got=%d want=2", len(result.Entries))
	}
	for _, entry := range result.Entries {
		if entry.Kind != event.KindSubstitutionIn {
			t.Fatalf("starter must be a substitution-in, got %s", entry.Kind)
		}
		if entry.ParentEventID != result.Boundary.ID {
			t.Fatalf("starter must link to the boundary: got=%s want=%s", entry.ParentEventID, result.Boundary.ID)
		}
		if entry.PeriodSecond != 0 {
			t.Fatalf("starters enter at second 0, got %d", entry.PeriodSecond)
		}
	}

	lineup := ProjectLineup(env.listTeamEvents(t, memory.GameTeamIDHome))
	if len(lineup.Starters) != 2 || len(lineup.OnField) != 2 {
		t.Fatalf("unexpected projection: starters=%d onField=%d", len(lineup.Starters), len(lineup.OnField))
	}
}

func TestPeriodService_StartPeriod_RejectsRestart(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)

	_, err := svc.StartPeriod(t.Context(), StartPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
	})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestPeriodService_EndPeriod_SweepsField(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)

	result, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		EndSecond:  1500,
	})
	if err != nil {
		t.Fatalf("end first half: %v", err)
	}

	if result.Boundary.Kind != event.KindPeriodEnd {
		t.Fatalf("unexpected boundary kind: %s", result.Boundary.Kind)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("everyone on the field sweeps out: got=%d want=2", len(result.Entries))
	}
	for _, exit := range result.Entries {
		if exit.Kind != event.KindSubstitutionOut || exit.ParentEventID != result.Boundary.ID {
			t.Fatalf("exit must be a substitution-out child of the boundary: %+v", exit)
		}
	}

	lineup := ProjectLineup(env.listTeamEvents(t, memory.GameTeamIDHome))
	if len(lineup.OnField) != 0 {
		t.Fatalf("field must be empty after the period ends, got %+v", lineup.OnField)
	}
	if len(lineup.PreviousPeriodLineup) != 2 {
		t.Fatalf("previous-period lineup must hold the swept exits: got=%d", len(lineup.PreviousPeriodLineup))
	}
}

func TestPeriodService_EndPeriod_RequiresStart(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	_, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
	})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestPeriodService_EndPeriod_RejectsDoubleEnd(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)
	if _, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		EndSecond:  1500,
	}); err != nil {
		t.Fatalf("end first half: %v", err)
	}

	_, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		EndSecond:  1500,
	})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestPeriodService_EnsureSecondHalfLineup_CarriesFirstHalfExits(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)
	if _, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		EndSecond:  1500,
	}); err != nil {
		t.Fatalf("end first half: %v", err)
	}

	result, err := svc.EnsureSecondHalfLineup(t.Context(), memory.GameTeamIDHome, "")
	if err != nil {
		t.Fatalf("ensure second-half lineup: %v", err)
	}
	if result.Boundary.Kind != event.KindPeriodStart || result.Boundary.Period != "2" {
		t.Fatalf("unexpected boundary: %s %s", result.Boundary.Kind, result.Boundary.Period)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("unexpected carried starter count: got=%d want=2", len(result.Entries))
	}

	positions := map[string]string{}
	for _, entry := range result.Entries {
		key, _ := entry.Player.Key()
		positions[key] = entry.Position
	}
	if positions["p:p-ava"] != "GK" || positions["p:p-bella"] != "ST" {
		t.Fatalf("positions must carry over unchanged: %+v", positions)
	}

	before := len(env.listTeamEvents(t, memory.GameTeamIDHome))
	again, err := svc.EnsureSecondHalfLineup(t.Context(), memory.GameTeamIDHome, "")
	if err != nil {
		t.Fatalf("repeat ensure: %v", err)
	}
	if len(again.Entries) != 2 {
		t.Fatalf("repeat must return the existing starters: got=%d", len(again.Entries))
	}
	if after := len(env.listTeamEvents(t, memory.GameTeamIDHome)); after != before {
		t.Fatalf("repeat must not create events: before=%d after=%d", before, after)
	}
}

func TestPeriodService_EnsureSecondHalfLineup_NoopBeforeHalftime(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)

	result, err := svc.EnsureSecondHalfLineup(t.Context(), memory.GameTeamIDHome, "")
	if err != nil {
		t.Fatalf("ensure second-half lineup: %v", err)
	}
	if result.Boundary.ID != "" || len(result.Entries) != 0 {
		t.Fatalf("must be a no-op before period 1 ends, got %+v", result)
	}
}

func TestPeriodService_SetSecondHalfLineup_ReplacesAutoLineup(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)
	if _, err := svc.EndPeriod(t.Context(), EndPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
		EndSecond:  1500,
	}); err != nil {
		t.Fatalf("end first half: %v", err)
	}
	if _, err := svc.EnsureSecondHalfLineup(t.Context(), memory.GameTeamIDHome, ""); err != nil {
		t.Fatalf("ensure second-half lineup: %v", err)
	}

	result, err := svc.SetSecondHalfLineup(t.Context(), SetSecondHalfLineupInput{
		GameTeamID: memory.GameTeamIDHome,
		Lineup: []LineupEntry{
			{Player: player("p-cora"), Position: "GK"},
		},
	})
	if err != nil {
		t.Fatalf("set second-half lineup: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("unexpected starter count: got=%d want=1", len(result.Entries))
	}

	var secondHalfStarters []event.GameEvent
	for _, e := range env.listTeamEvents(t, memory.GameTeamIDHome) {
		if e.Kind == event.KindSubstitutionIn && e.Period == "2" {
			secondHalfStarters = append(secondHalfStarters, e)
		}
	}
	if len(secondHalfStarters) != 1 {
		t.Fatalf("stale auto starters must be deleted: got=%d want=1", len(secondHalfStarters))
	}
	if !secondHalfStarters[0].Player.SamePlayer(player("p-cora")) {
		t.Fatalf("unexpected surviving starter: %+v", secondHalfStarters[0].Player)
	}
}

func TestPeriodService_SetSecondHalfLineup_RequiresHalftime(t *testing.T) {
	env := newTestEnv(t)
	svc := env.periodService()

	startFirstHalf(t, svc)

	_, err := svc.SetSecondHalfLineup(t.Context(), SetSecondHalfLineupInput{
		GameTeamID: memory.GameTeamIDHome,
		Lineup:     []LineupEntry{{Player: player("p-cora"), Position: "GK"}},
	})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestPeriodService_LinkStartersToPeriodStart(t *testing.T) {
	env := newTestEnv(t)
	periods := env.periodService()
	lineup := env.lineupService()

	started, err := periods.StartPeriod(t.Context(), StartPeriodInput{
		GameTeamID: memory.GameTeamIDHome,
		Period:     "1",
	})
	if err != nil {
		t.Fatalf("start period: %v", err)
	}

	// An ad hoc entry at the boundary second, recorded without a parent.
	adHoc, err := lineup.BringPlayerOntoField(t.Context(), BringPlayerInput{
		GameTeamID:   memory.GameTeamIDHome,
		Player:       player("p-ava"),
		Position:     "GK",
		Period:       "1",
		PeriodSecond: 0,
	})
	if err != nil {
		t.Fatalf("bring player onto field: %v", err)
	}

	linked, err := periods.LinkStartersToPeriodStart(t.Context(), memory.GameTeamIDHome, "1")
	if err != nil {
		t.Fatalf("link starters: %v", err)
	}
	if linked != 1 {
		t.Fatalf("unexpected linked count: got=%d want=1", linked)
	}

	stored, exists, err := env.events.GetByID(t.Context(), adHoc.ID)
	if err != nil || !exists {
		t.Fatalf("reload ad hoc entry: exists=%v err=%v", exists, err)
	}
	if stored.ParentEventID != started.Boundary.ID {
		t.Fatalf("entry must link to the boundary: got=%s want=%s", stored.ParentEventID, started.Boundary.ID)
	}

	again, err := periods.LinkStartersToPeriodStart(t.Context(), memory.GameTeamIDHome, "1")
	if err != nil {
		t.Fatalf("repeat link: %v", err)
	}
	if again != 0 {
		t.Fatalf("repeat link must find nothing: got=%d", again)
	}
}
