package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// StatsFilter narrows a stats query to one game and/or a played-at window.
// Zero values leave the dimension unbounded.
type StatsFilter struct {
	GameID string
	From   time.Time
	To     time.Time
}

// PlayerStats is the per-player aggregate across the selected games.
type PlayerStats struct {
	Player            event.Identity
	Games             int
	Starts            int
	Goals             int
	Assists           int
	SecondsPlayed     int
	SecondsByPosition map[string]int
}

const statsMaxConcurrentGames = 4

type StatsService struct {
	events event.Repository
	teams  gameteam.Repository
	logger *logging.Logger
}

func NewStatsService(events event.Repository, teams gameteam.Repository, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StatsService{
		events: events,
		teams:  teams,
		logger: logger,
	}
}

// GetPlayerStats replays every selected game's event stream into per-player
// totals. Games fold concurrently; the merge is deterministic because each
// game folds over its own ordered stream.
func (s *StatsService) GetPlayerStats(ctx context.Context, teamID string, filter StatsFilter) ([]PlayerStats, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrInvalidInput)
	}

	gameTeams, err := s.teams.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list game teams: %w", err)
	}

	selected := gameTeams[:0:0]
	for _, gt := range gameTeams {
		if filter.GameID != "" && gt.GameID != filter.GameID {
			continue
		}
		if !filter.From.IsZero() && gt.PlayedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && gt.PlayedAt.After(filter.To) {
			continue
		}
		selected = append(selected, gt)
	}
	if len(selected) == 0 {
		return []PlayerStats{}, nil
	}

	folds := pool.NewWithResults[map[string]*PlayerStats]().
		WithContext(ctx).
		WithMaxGoroutines(statsMaxConcurrentGames)

	for _, gt := range selected {
		gameTeamID := gt.ID
		folds.Go(func(ctx context.Context) (map[string]*PlayerStats, error) {
			events, err := s.events.ListByGameTeam(ctx, gameTeamID)
			if err != nil {
				return nil, fmt.Errorf("list events for game team %s: %w", gameTeamID, err)
			}
			return foldGameStats(events), nil
		})
	}

	results, err := folds.Wait()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*PlayerStats)
	for _, gameStats := range results {
		for key, stats := range gameStats {
			total, ok := merged[key]
			if !ok {
				total = &PlayerStats{Player: stats.Player, SecondsByPosition: map[string]int{}}
				merged[key] = total
			}
			total.Games++
			total.Starts += stats.Starts
			total.Goals += stats.Goals
			total.Assists += stats.Assists
			total.SecondsPlayed += stats.SecondsPlayed
			for position, seconds := range stats.SecondsByPosition {
				total.SecondsByPosition[position] += seconds
			}
		}
	}

	out := make([]PlayerStats, 0, len(merged))
	for _, stats := range merged {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, _ := out[i].Player.Key()
		kj, _ := out[j].Player.Key()
		return ki < kj
	})

	return out, nil
}

type fieldStint struct {
	period   string
	since    int
	position string
	posSince int
}

// foldGameStats replays one game team's ordered events into per-player
// totals for that game. Playing time closes at a substitution out, at the
// period boundary that sweeps the field, or at the last known second of the
// period when no boundary was recorded.
func foldGameStats(events []event.GameEvent) map[string]*PlayerStats {
	stats := make(map[string]*PlayerStats)
	active := make(map[string]*fieldStint)
	periodEnds := make(map[string]int)

	get := func(identity event.Identity) *PlayerStats {
		key, ok := identity.Key()
		if !ok {
			return nil
		}
		ps, found := stats[key]
		if !found {
			ps = &PlayerStats{Player: identity, SecondsByPosition: map[string]int{}}
			stats[key] = ps
		}
		return ps
	}

	// A period ends at its recorded boundary, or at the latest second any
	// event observed when no boundary was recorded.
	for _, e := range events {
		if e.PeriodSecond > periodEnds[e.Period] {
			periodEnds[e.Period] = e.PeriodSecond
		}
	}

	closeStint := func(key string, ps *PlayerStats, stint *fieldStint, atSecond int) {
		end := atSecond
		if end < stint.since {
			end = periodEnds[stint.period]
		}
		if end > stint.since {
			ps.SecondsPlayed += end - stint.since
		}
		if stint.position != "" && end > stint.posSince {
			ps.SecondsByPosition[stint.position] += end - stint.posSince
		}
		delete(active, key)
	}

	for _, e := range events {
		key, hasKey := e.Player.Key()

		switch e.Kind {
		case event.KindGoal:
			if ps := get(e.Player); ps != nil {
				ps.Goals++
			}
		case event.KindAssist:
			if ps := get(e.Player); ps != nil {
				ps.Assists++
			}
		case event.KindSubstitutionIn:
			ps := get(e.Player)
			if ps == nil {
				continue
			}
			if e.Period == "1" && e.PeriodSecond == 0 {
				ps.Starts++
			}
			active[key] = &fieldStint{period: e.Period, since: e.PeriodSecond, position: e.Position, posSince: e.PeriodSecond}
		case event.KindSubstitutionOut:
			if !hasKey {
				continue
			}
			stint, on := active[key]
			if !on {
				continue
			}
			ps := get(e.Player)
			if stint.period == e.Period {
				closeStint(key, ps, stint, e.PeriodSecond)
			} else {
				closeStint(key, ps, stint, periodEnds[stint.period])
			}
		case event.KindPositionSwap, event.KindPositionChange:
			if !hasKey {
				continue
			}
			stint, on := active[key]
			if !on || e.Period != stint.period {
				continue
			}
			ps := get(e.Player)
			if stint.position != "" && e.PeriodSecond > stint.posSince {
				ps.SecondsByPosition[stint.position] += e.PeriodSecond - stint.posSince
			}
			stint.position = e.Position
			stint.posSince = e.PeriodSecond
		case event.KindGameRoster:
			get(e.Player)
		}
	}

	// Anyone still on the field plays out the rest of their period.
	for key, stint := range active {
		ps := stats[key]
		if ps == nil {
			continue
		}
		closeStint(key, ps, stint, periodEnds[stint.period])
	}

	return stats
}
