package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
	basecache "github.com/dtrask/scorebook/internal/platform/cache"
)

// countingTeams counts how often reads fall through to the backing store.
type countingTeams struct {
	next    gameteam.Repository
	getByID int
	lists   int
}

func (c *countingTeams) GetByID(ctx context.Context, id string) (gameteam.GameTeam, bool, error) {
	c.getByID++
	return c.next.GetByID(ctx, id)
}

func (c *countingTeams) ListByTeam(ctx context.Context, teamID string) ([]gameteam.GameTeam, error) {
	c.lists++
	return c.next.ListByTeam(ctx, teamID)
}

func (c *countingTeams) Create(ctx context.Context, team gameteam.GameTeam) error {
	return c.next.Create(ctx, team)
}

func (c *countingTeams) UpdateFormation(ctx context.Context, id, formation string) error {
	return c.next.UpdateFormation(ctx, id, formation)
}

func cachedFixture(t *testing.T) (*GameTeamRepository, *EventRepository, *countingTeams) {
	t.Helper()

	backing := memory.NewGameTeamRepository()
	for _, gt := range memory.SeedGameTeams() {
		if err := backing.Create(t.Context(), gt); err != nil {
			t.Fatalf("seed game team %s: %v", gt.ID, err)
		}
	}
	counting := &countingTeams{next: backing}
	store := basecache.NewStore(time.Minute)

	return NewGameTeamRepository(counting, store),
		NewEventRepository(memory.NewEventRepository(backing), store),
		counting
}

func TestGameTeamRepository_GetByID_ReadThrough(t *testing.T) {
	teams, _, counting := cachedFixture(t)

	for i := 0; i < 3; i++ {
		team, exists, err := teams.GetByID(t.Context(), memory.GameTeamIDHome)
		if err != nil {
			t.Fatalf("get game team: %v", err)
		}
		if !exists || team.ID != memory.GameTeamIDHome {
			t.Fatalf("unexpected team: exists=%v id=%s", exists, team.ID)
		}
	}

	if counting.getByID != 1 {
		t.Fatalf("repeat reads must hit the cache: loads=%d want=1", counting.getByID)
	}
}

func TestGameTeamRepository_GetByID_CachesMisses(t *testing.T) {
	teams, _, counting := cachedFixture(t)

	for i := 0; i < 2; i++ {
		_, exists, err := teams.GetByID(t.Context(), "gt-missing")
		if err != nil {
			t.Fatalf("get missing team: %v", err)
		}
		if exists {
			t.Fatal("team must not exist")
		}
	}

	if counting.getByID != 1 {
		t.Fatalf("misses cache too: loads=%d want=1", counting.getByID)
	}
}

func TestGameTeamRepository_UpdateFormation_Evicts(t *testing.T) {
	teams, _, counting := cachedFixture(t)

	if _, _, err := teams.GetByID(t.Context(), memory.GameTeamIDHome); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if _, err := teams.ListByTeam(t.Context(), memory.TeamIDThunder); err != nil {
		t.Fatalf("warm list cache: %v", err)
	}

	if err := teams.UpdateFormation(t.Context(), memory.GameTeamIDHome, "3-2-1"); err != nil {
		t.Fatalf("update formation: %v", err)
	}

	team, _, err := teams.GetByID(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("reload team: %v", err)
	}
	if team.Formation != "3-2-1" {
		t.Fatalf("stale formation served from cache: %s", team.Formation)
	}
	if counting.getByID != 2 {
		t.Fatalf("write must evict the id key: loads=%d want=2", counting.getByID)
	}

	if _, err := teams.ListByTeam(t.Context(), memory.TeamIDThunder); err != nil {
		t.Fatalf("reload list: %v", err)
	}
	if counting.lists != 2 {
		t.Fatalf("write must evict the list keys: loads=%d want=2", counting.lists)
	}
}

func TestEventRepository_CreateScoring_EvictsGameTeam(t *testing.T) {
	teams, events, counting := cachedFixture(t)

	before, _, err := teams.GetByID(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if before.FinalScore != 0 {
		t.Fatalf("unexpected starting score: %d", before.FinalScore)
	}

	goal := event.GameEvent{
		ID:           "ev-goal",
		GameID:       memory.GameIDOpener,
		GameTeamID:   memory.GameTeamIDHome,
		Kind:         event.KindGoal,
		Player:       event.Identity{PlayerID: "p-ava"},
		Period:       "1",
		PeriodSecond: 600,
	}
	stored, _, err := events.CreateScoring(t.Context(), goal, nil)
	if err != nil {
		t.Fatalf("create scoring: %v", err)
	}

	after, _, err := teams.GetByID(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("reload team: %v", err)
	}
	if after.FinalScore != 1 {
		t.Fatalf("scoring write served a stale team row: score=%d want=1", after.FinalScore)
	}
	if counting.getByID != 2 {
		t.Fatalf("scoring must evict the team key: loads=%d want=2", counting.getByID)
	}

	if err := events.DeleteScoring(t.Context(), stored, nil); err != nil {
		t.Fatalf("delete scoring: %v", err)
	}
	rolled, _, err := teams.GetByID(t.Context(), memory.GameTeamIDHome)
	if err != nil {
		t.Fatalf("reload team: %v", err)
	}
	if rolled.FinalScore != 0 {
		t.Fatalf("score rollback served stale: score=%d want=0", rolled.FinalScore)
	}
}
