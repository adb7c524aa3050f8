package usecase

import (
	"errors"
	"testing"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
)

func TestTeamService_GetGameTeam(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()

	team, err := svc.GetGameTeam(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("get game team: %v", err)
	}
	if team.Name != "Thunder U12" {
		t.Fatalf("unexpected team name: %s", team.Name)
	}
}

func TestTeamService_GetGameTeam_NotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()

	_, err := svc.GetGameTeam(t.Context(), "gt-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeamService_ListGameEvents_SpansBothTeams(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()
	goals := env.goalService()

	if _, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDHome,
		Scorer:       player("p-ava"),
		Period:       "1",
		PeriodSecond: 600,
	}); err != nil {
		t.Fatalf("record home goal: %v", err)
	}
	if _, err := goals.Record(t.Context(), RecordGoalInput{
		GameTeamID:   memory.GameTeamIDAway,
		Scorer:       player("p-zoe"),
		Period:       "1",
		PeriodSecond: 200,
	}); err != nil {
		t.Fatalf("record away goal: %v", err)
	}

	events, err := svc.ListGameEvents(t.Context(), memory.GameIDOpener)
	if err != nil {
		t.Fatalf("list game events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("unexpected event count: got=%d want=2", len(events))
	}
	if events[0].GameTeamID != memory.GameTeamIDAway || events[1].GameTeamID != memory.GameTeamIDHome {
		t.Fatalf("events must come back in ledger order across teams: %s, %s", events[0].GameTeamID, events[1].GameTeamID)
	}

	if other, err := svc.ListGameEvents(t.Context(), "game-unknown"); err != nil || len(other) != 0 {
		t.Fatalf("unknown game must list nothing: n=%d err=%v", len(other), err)
	}
}

func TestTeamService_ListGameEvents_RequiresGameID(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()

	_, err := svc.ListGameEvents(t.Context(), " ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTeamService_SetFormation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()

	change, err := svc.SetFormation(t.Context(), SetFormationInput{
		GameTeamID:   memory.GameTeamIDHome,
		Formation:    "3-2-1",
		Period:       "2",
		PeriodSecond: 120,
	})
	if err != nil {
		t.Fatalf("set formation: %v", err)
	}

	if change.Kind != event.KindFormationChange {
		t.Fatalf("unexpected event kind: %s", change.Kind)
	}
	if change.Metadata["previous_formation"] != "2-3-1" {
		t.Fatalf("unexpected previous formation: %s", change.Metadata["previous_formation"])
	}
	if change.Metadata["new_formation"] != "3-2-1" {
		t.Fatalf("unexpected new formation: %s", change.Metadata["new_formation"])
	}

	team, err := svc.GetGameTeam(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("get game team: %v", err)
	}
	if team.Formation != "3-2-1" {
		t.Fatalf("formation not updated: %s", team.Formation)
	}
}

func TestTeamService_SetFormation_RequiresFormation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.teamService()

	_, err := svc.SetFormation(t.Context(), SetFormationInput{GameTeamID: memory.GameTeamIDHome})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
