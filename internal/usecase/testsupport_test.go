package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// seqIDs hands out deterministic ids so tests can assert on parent links and
// ordering tiebreaks.
type seqIDs struct {
	prefix string
	next   int
}

func (g *seqIDs) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

// feedRecorder captures every published change message in order.
type feedRecorder struct {
	messages []ChangeMessage
}

func (r *feedRecorder) Publish(_ context.Context, msg ChangeMessage) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *feedRecorder) actions() []ChangeAction {
	out := make([]ChangeAction, 0, len(r.messages))
	for _, msg := range r.messages {
		out = append(out, msg.Action)
	}
	return out
}

func (r *feedRecorder) has(action ChangeAction) bool {
	for _, msg := range r.messages {
		if msg.Action == action {
			return true
		}
	}
	return false
}

type testEnv struct {
	teams  *memory.GameTeamRepository
	events *memory.EventRepository
	ids    *seqIDs
	feed   *feedRecorder
	nowAt  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	teams := memory.NewGameTeamRepository()
	for _, gt := range memory.SeedGameTeams() {
		if err := teams.Create(t.Context(), gt); err != nil {
			t.Fatalf("seed game team %s: %v", gt.ID, err)
		}
	}

	return &testEnv{
		teams:  teams,
		events: memory.NewEventRepository(teams),
		ids:    &seqIDs{prefix: "ev"},
		feed:   &feedRecorder{},
		nowAt:  time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
	}
}

// clock returns a monotonically advancing now() so same-second events still
// get distinct created-at timestamps, like real sequential writes would.
func (env *testEnv) clock() func() time.Time {
	return func() time.Time {
		env.nowAt = env.nowAt.Add(time.Millisecond)
		return env.nowAt
	}
}

func (env *testEnv) goalService() *GoalService {
	svc := NewGoalService(env.events, env.teams, env.ids, env.feed, logging.NewNop())
	svc.now = env.clock()
	return svc
}

func (env *testEnv) rosterService() *RosterService {
	svc := NewRosterService(env.events, env.teams, env.ids, env.feed, logging.NewNop())
	svc.now = env.clock()
	return svc
}

func (env *testEnv) lineupService() *LineupService {
	svc := NewLineupService(env.events, env.teams, env.ids, env.feed, logging.NewNop())
	svc.now = env.clock()
	return svc
}

func (env *testEnv) periodService() *PeriodService {
	svc := NewPeriodService(env.events, env.teams, env.ids, env.feed, logging.NewNop())
	svc.now = env.clock()
	return svc
}

func (env *testEnv) teamService() *TeamService {
	svc := NewTeamService(env.teams, env.events, env.ids, env.feed, logging.NewNop())
	svc.now = env.clock()
	return svc
}

func (env *testEnv) cascadeService() *CascadeService {
	return NewCascadeService(env.events, env.feed, logging.NewNop())
}

func (env *testEnv) conflictService() *ConflictService {
	return NewConflictService(env.events, env.feed, logging.NewNop())
}

func (env *testEnv) statsService() *StatsService {
	return NewStatsService(env.events, env.teams, logging.NewNop())
}

func (env *testEnv) teamScore(t *testing.T, gameTeamID string) int {
	t.Helper()
	team, exists, err := env.teams.GetByID(t.Context(), gameTeamID)
	if err != nil {
		t.Fatalf("get game team %s: %v", gameTeamID, err)
	}
	if !exists {
		t.Fatalf("game team %s not found", gameTeamID)
	}
	return team.FinalScore
}

func (env *testEnv) listTeamEvents(t *testing.T, gameTeamID string) []event.GameEvent {
	t.Helper()
	events, err := env.events.ListByGameTeam(t.Context(), gameTeamID)
	if err != nil {
		t.Fatalf("list team events: %v", err)
	}
	return events
}

func player(id string) event.Identity {
	return event.Identity{PlayerID: id}
}

func externalPlayer(name, number string) event.Identity {
	return event.Identity{ExternalName: name, ExternalNumber: number}
}
