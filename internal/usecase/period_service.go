package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	idgen "github.com/dtrask/scorebook/internal/platform/id"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// LineupEntry names one player and position for a period's starting lineup.
type LineupEntry struct {
	Player   event.Identity
	Position string
}

type StartPeriodInput struct {
	GameTeamID       string
	Period           string
	Lineup           []LineupEntry
	RecordedByUserID string
}

type EndPeriodInput struct {
	GameTeamID       string
	Period           string
	EndSecond        int
	RecordedByUserID string
}

type SetSecondHalfLineupInput struct {
	GameTeamID       string
	Lineup           []LineupEntry
	RecordedByUserID string
}

// PeriodResult reports the boundary event and the lineup entries a period
// transition created (or, for idempotent repairs, found already in place).
type PeriodResult struct {
	Boundary event.GameEvent
	Entries  []event.GameEvent
}

// PeriodService drives the period state machine. The state is implicit in the
// event stream: a period is "in progress" between its PERIOD_START and
// PERIOD_END, and "awaiting next period" after the end boundary.
type PeriodService struct {
	events   event.Repository
	teams    gameteam.Repository
	ids      idgen.Generator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewPeriodService(
	events event.Repository,
	teams gameteam.Repository,
	ids idgen.Generator,
	notifier Notifier,
	logger *logging.Logger,
) *PeriodService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &PeriodService{
		events:   events,
		teams:    teams,
		ids:      ids,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// StartPeriod opens a period and brings the supplied lineup onto the field as
// SUBSTITUTION_IN children of the boundary, all in one write.
func (s *PeriodService) StartPeriod(ctx context.Context, input StartPeriodInput) (PeriodResult, error) {
	input.Period = strings.TrimSpace(input.Period)
	if input.Period == "" {
		return PeriodResult{}, fmt.Errorf("%w: period is required", ErrInvalidInput)
	}
	for i, entry := range input.Lineup {
		if entry.Player.IsZero() {
			return PeriodResult{}, fmt.Errorf("%w: lineup entry %d is missing a player identity", ErrInvalidInput, i)
		}
		if strings.TrimSpace(entry.Position) == "" {
			return PeriodResult{}, fmt.Errorf("%w: lineup entry %d is missing a position", ErrInvalidInput, i)
		}
	}

	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return PeriodResult{}, err
	}

	all, err := s.events.ListByGameTeam(ctx, team.ID)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("list team events: %w", err)
	}
	if boundary := findBoundary(all, event.KindPeriodStart, input.Period); boundary != nil {
		return PeriodResult{}, fmt.Errorf("%w: period %s has already started", ErrStateConflict, input.Period)
	}

	start, err := s.buildBoundary(team, event.KindPeriodStart, input.Period, 0, input.RecordedByUserID)
	if err != nil {
		return PeriodResult{}, err
	}

	batch := []event.GameEvent{start}
	for _, entry := range input.Lineup {
		in, err := s.buildPeriodEntry(team, event.KindSubstitutionIn, entry.Player, entry.Position, input.Period, 0, start.ID, input.RecordedByUserID)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, in)
	}

	stored, err := s.events.CreateBatch(ctx, batch)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("create period start: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}

	return PeriodResult{Boundary: stored[0], Entries: stored[1:]}, nil
}

// EndPeriod closes a period. Everyone still on the field is substituted out
// as a child of the boundary, so the next period starts from a clean slate.
func (s *PeriodService) EndPeriod(ctx context.Context, input EndPeriodInput) (PeriodResult, error) {
	input.Period = strings.TrimSpace(input.Period)
	if input.Period == "" {
		return PeriodResult{}, fmt.Errorf("%w: period is required", ErrInvalidInput)
	}

	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return PeriodResult{}, err
	}

	all, err := s.events.ListByGameTeam(ctx, team.ID)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("list team events: %w", err)
	}
	if findBoundary(all, event.KindPeriodStart, input.Period) == nil {
		return PeriodResult{}, fmt.Errorf("%w: period %s has not started", ErrStateConflict, input.Period)
	}
	if findBoundary(all, event.KindPeriodEnd, input.Period) != nil {
		return PeriodResult{}, fmt.Errorf("%w: period %s has already ended", ErrStateConflict, input.Period)
	}

	end, err := s.buildBoundary(team, event.KindPeriodEnd, input.Period, input.EndSecond, input.RecordedByUserID)
	if err != nil {
		return PeriodResult{}, err
	}

	lineup := ProjectLineup(all)
	batch := []event.GameEvent{end}
	for _, fp := range lineup.OnField {
		out, err := s.buildPeriodEntry(team, event.KindSubstitutionOut, fp.Player, fp.Position, input.Period, input.EndSecond, end.ID, input.RecordedByUserID)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, out)
	}

	stored, err := s.events.CreateBatch(ctx, batch)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("create period end: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}

	return PeriodResult{Boundary: stored[0], Entries: stored[1:]}, nil
}

// EnsureSecondHalfLineup is the idempotent repair run on the transition into
// period 2: if the second-half starters already exist it does nothing,
// otherwise it carries the period-1 exits over unchanged, positions included.
func (s *PeriodService) EnsureSecondHalfLineup(ctx context.Context, gameTeamID, recordedBy string) (PeriodResult, error) {
	team, err := s.requireTeam(ctx, gameTeamID)
	if err != nil {
		return PeriodResult{}, err
	}

	all, err := s.events.ListByGameTeam(ctx, team.ID)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("list team events: %w", err)
	}

	firstHalfEnd := findBoundary(all, event.KindPeriodEnd, "1")
	if firstHalfEnd == nil {
		return PeriodResult{}, nil
	}

	start2 := findBoundary(all, event.KindPeriodStart, "2")
	if start2 != nil {
		existing := childrenOfKind(all, start2.ID, event.KindSubstitutionIn)
		if len(existing) > 0 {
			return PeriodResult{Boundary: *start2, Entries: existing}, nil
		}
	}

	exits := childrenOfKind(all, firstHalfEnd.ID, event.KindSubstitutionOut)

	var batch []event.GameEvent
	boundary := start2
	if boundary == nil {
		fresh, err := s.buildBoundary(team, event.KindPeriodStart, "2", 0, recordedBy)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, fresh)
		boundary = &fresh
	}

	for _, exit := range exits {
		in, err := s.buildPeriodEntry(team, event.KindSubstitutionIn, exit.Player, exit.Position, "2", 0, boundary.ID, recordedBy)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, in)
	}

	if len(batch) == 0 {
		return PeriodResult{Boundary: *boundary}, nil
	}

	stored, err := s.events.CreateBatch(ctx, batch)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("create second-half lineup: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}

	result := PeriodResult{Boundary: *boundary}
	for _, e := range stored {
		if e.Kind == event.KindSubstitutionIn {
			result.Entries = append(result.Entries, e)
		} else {
			result.Boundary = e
		}
	}

	return result, nil
}

// SetSecondHalfLineup replaces the second-half starters with an explicit
// lineup. The game must be at halftime: period 1 ended, period 2 not yet.
func (s *PeriodService) SetSecondHalfLineup(ctx context.Context, input SetSecondHalfLineupInput) (PeriodResult, error) {
	if len(input.Lineup) == 0 {
		return PeriodResult{}, fmt.Errorf("%w: lineup is required", ErrInvalidInput)
	}
	for i, entry := range input.Lineup {
		if entry.Player.IsZero() {
			return PeriodResult{}, fmt.Errorf("%w: lineup entry %d is missing a player identity", ErrInvalidInput, i)
		}
		if strings.TrimSpace(entry.Position) == "" {
			return PeriodResult{}, fmt.Errorf("%w: lineup entry %d is missing a position", ErrInvalidInput, i)
		}
	}

	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return PeriodResult{}, err
	}

	all, err := s.events.ListByGameTeam(ctx, team.ID)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("list team events: %w", err)
	}
	if findBoundary(all, event.KindPeriodEnd, "1") == nil {
		return PeriodResult{}, fmt.Errorf("%w: first half has not ended", ErrStateConflict)
	}
	if findBoundary(all, event.KindPeriodEnd, "2") != nil {
		return PeriodResult{}, fmt.Errorf("%w: second half has already ended", ErrStateConflict)
	}

	start2 := findBoundary(all, event.KindPeriodStart, "2")

	// Previously auto- or explicitly-created second-half starters go first.
	var stale []string
	for _, e := range all {
		if e.Kind != event.KindSubstitutionIn || e.Period != "2" {
			continue
		}
		if (start2 != nil && e.ParentEventID == start2.ID) || (e.ParentEventID == "" && e.PeriodSecond == 0) {
			stale = append(stale, e.ID)
		}
	}
	if len(stale) > 0 {
		if err := s.events.DeleteBatch(ctx, stale); err != nil {
			return PeriodResult{}, fmt.Errorf("delete stale second-half lineup: %w", err)
		}
		for _, id := range stale {
			notify(ctx, s.notifier, s.logger, ChangeMessage{Action: ActionDeleted, GameID: team.GameID, DeletedEventID: id})
		}
	}

	var batch []event.GameEvent
	boundary := start2
	if boundary == nil {
		fresh, err := s.buildBoundary(team, event.KindPeriodStart, "2", 0, input.RecordedByUserID)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, fresh)
		boundary = &fresh
	}

	for _, entry := range input.Lineup {
		in, err := s.buildPeriodEntry(team, event.KindSubstitutionIn, entry.Player, entry.Position, "2", 0, boundary.ID, input.RecordedByUserID)
		if err != nil {
			return PeriodResult{}, err
		}
		batch = append(batch, in)
	}

	stored, err := s.events.CreateBatch(ctx, batch)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("create second-half lineup: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}

	result := PeriodResult{Boundary: *boundary}
	for _, e := range stored {
		if e.Kind == event.KindSubstitutionIn {
			result.Entries = append(result.Entries, e)
		} else {
			result.Boundary = e
		}
	}

	return result, nil
}

// LinkStartersToPeriodStart attaches parentless SUBSTITUTION_IN events at the
// period boundary to the PERIOD_START, repairing lineups built through ad hoc
// bring-player actions taken before (or without) a formal period start.
// Returns how many events were linked.
func (s *PeriodService) LinkStartersToPeriodStart(ctx context.Context, gameTeamID, period string) (int, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return 0, fmt.Errorf("%w: period is required", ErrInvalidInput)
	}

	team, err := s.requireTeam(ctx, gameTeamID)
	if err != nil {
		return 0, err
	}

	all, err := s.events.ListByGameTeam(ctx, team.ID)
	if err != nil {
		return 0, fmt.Errorf("list team events: %w", err)
	}

	start := findBoundary(all, event.KindPeriodStart, period)
	if start == nil {
		return 0, nil
	}

	linked := 0
	for _, e := range all {
		if e.Kind != event.KindSubstitutionIn || e.Period != period {
			continue
		}
		if e.ParentEventID != "" || e.PeriodSecond != start.PeriodSecond {
			continue
		}
		e.ParentEventID = start.ID
		stored, err := s.events.Update(ctx, e)
		if err != nil {
			return linked, fmt.Errorf("link starter %s: %w", e.ID, err)
		}
		notify(ctx, s.notifier, s.logger, updated(stored))
		linked++
	}

	return linked, nil
}

func (s *PeriodService) requireTeam(ctx context.Context, gameTeamID string) (gameteam.GameTeam, error) {
	gameTeamID = strings.TrimSpace(gameTeamID)
	if gameTeamID == "" {
		return gameteam.GameTeam{}, fmt.Errorf("%w: game_team_id is required", ErrInvalidInput)
	}

	team, exists, err := s.teams.GetByID(ctx, gameTeamID)
	if err != nil {
		return gameteam.GameTeam{}, fmt.Errorf("get game team: %w", err)
	}
	if !exists {
		return gameteam.GameTeam{}, fmt.Errorf("%w: game_team=%s", ErrNotFound, gameTeamID)
	}

	return team, nil
}

func (s *PeriodService) buildBoundary(team gameteam.GameTeam, kind event.Kind, period string, second int, recordedBy string) (event.GameEvent, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("generate boundary id: %w", err)
	}

	boundary := event.GameEvent{
		ID:               id,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             kind,
		Period:           period,
		PeriodSecond:     second,
		RecordedByUserID: recordedBy,
		CreatedAt:        s.now().UTC(),
	}
	if err := boundary.Validate(); err != nil {
		return event.GameEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return boundary, nil
}

func (s *PeriodService) buildPeriodEntry(
	team gameteam.GameTeam,
	kind event.Kind,
	player event.Identity,
	position string,
	period string,
	second int,
	parentID string,
	recordedBy string,
) (event.GameEvent, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("generate event id: %w", err)
	}

	entry := event.GameEvent{
		ID:               id,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             kind,
		Player:           player,
		Position:         strings.TrimSpace(position),
		Period:           period,
		PeriodSecond:     second,
		RecordedByUserID: recordedBy,
		ParentEventID:    parentID,
		CreatedAt:        s.now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return event.GameEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return entry, nil
}

func findBoundary(events []event.GameEvent, kind event.Kind, period string) *event.GameEvent {
	for i := range events {
		if events[i].Kind == kind && events[i].Period == period {
			found := events[i]
			return &found
		}
	}
	return nil
}

func childrenOfKind(events []event.GameEvent, parentID string, kind event.Kind) []event.GameEvent {
	var out []event.GameEvent
	for _, e := range events {
		if e.ParentEventID == parentID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
