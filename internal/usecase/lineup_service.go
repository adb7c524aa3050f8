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
	"github.com/dtrask/scorebook/internal/platform/resilience"
)

const (
	metadataReasonKey = "reason"
	metadataNotesKey  = "notes"
)

type BringPlayerInput struct {
	GameTeamID       string
	Player           event.Identity
	Position         string
	Period           string
	PeriodSecond     int
	Reason           string
	Notes            string
	RecordedByUserID string
}

type RemovePlayerInput struct {
	GameTeamID       string
	PlayerEventID    string
	Period           string
	PeriodSecond     int
	Reason           string
	Notes            string
	RecordedByUserID string
}

type SubstituteInput struct {
	GameTeamID       string
	PlayerOutEventID string
	Incoming         event.Identity
	Position         string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

type ChangePositionInput struct {
	GameTeamID       string
	PlayerEventID    string
	Position         string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

type SwapPositionsInput struct {
	GameTeamID       string
	Event1ID         string
	Event2ID         string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

// BatchSubstitution is one ordered entry of a batch request.
type BatchSubstitution struct {
	PlayerOutEventID string
	Incoming         event.Identity
	Position         string
}

// BatchSwapRef names a swap participant either by an existing event id or by
// the index of a substitution earlier in the same batch, so a client can
// describe "sub X in, then swap X with Y" without round-tripping an id.
type BatchSwapRef struct {
	EventID           string
	SubstitutionIndex *int
}

type BatchSwap struct {
	First  BatchSwapRef
	Second BatchSwapRef
}

type BatchChangesInput struct {
	GameTeamID       string
	Substitutions    []BatchSubstitution
	Swaps            []BatchSwap
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

type LineupService struct {
	events   event.Repository
	teams    gameteam.Repository
	ids      idgen.Generator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
	flight   resilience.SingleFlight
}

func NewLineupService(
	events event.Repository,
	teams gameteam.Repository,
	ids idgen.Generator,
	notifier Notifier,
	logger *logging.Logger,
) *LineupService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &LineupService{
		events:   events,
		teams:    teams,
		ids:      ids,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GetGameLineup recomputes the lineup view from the team's full ordered event
// set. Concurrent identical reads collapse into one fold; nothing is cached
// past the call, so the view always reflects committed state.
func (s *LineupService) GetGameLineup(ctx context.Context, gameTeamID string) (Lineup, error) {
	gameTeamID = strings.TrimSpace(gameTeamID)
	if gameTeamID == "" {
		return Lineup{}, fmt.Errorf("%w: game_team_id is required", ErrInvalidInput)
	}

	if _, exists, err := s.teams.GetByID(ctx, gameTeamID); err != nil {
		return Lineup{}, fmt.Errorf("get game team: %w", err)
	} else if !exists {
		return Lineup{}, fmt.Errorf("%w: game_team=%s", ErrNotFound, gameTeamID)
	}

	value, err, _ := s.flight.Do("lineup::"+gameTeamID, func() (any, error) {
		events, err := s.events.ListByGameTeam(ctx, gameTeamID)
		if err != nil {
			return nil, fmt.Errorf("list team events: %w", err)
		}
		return ProjectLineup(events), nil
	})
	if err != nil {
		return Lineup{}, err
	}

	return value.(Lineup), nil
}

// BringPlayerOntoField records an unbalanced entry (late arrival, injury
// replacement entering without a formal pair). No parent link is created.
func (s *LineupService) BringPlayerOntoField(ctx context.Context, input BringPlayerInput) (event.GameEvent, error) {
	input.Position = strings.TrimSpace(input.Position)
	if input.Player.IsZero() {
		return event.GameEvent{}, fmt.Errorf("%w: player identity is required", ErrInvalidInput)
	}
	if input.Position == "" {
		return event.GameEvent{}, fmt.Errorf("%w: position is required", ErrInvalidInput)
	}

	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return event.GameEvent{}, err
	}

	entry, err := s.buildEvent(team, event.KindSubstitutionIn, input.Player, input.Position, input.Period, input.PeriodSecond, "", input.RecordedByUserID)
	if err != nil {
		return event.GameEvent{}, err
	}
	applyReasonNotes(&entry, input.Reason, input.Notes)

	entry, err = s.events.Create(ctx, entry)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("create substitution-in: %w", err)
	}

	notify(ctx, s.notifier, s.logger, created(entry))
	return entry, nil
}

// RemovePlayerFromField records an unbalanced exit for the player named by an
// on-field event (injury, red card). The exit carries no pair link.
func (s *LineupService) RemovePlayerFromField(ctx context.Context, input RemovePlayerInput) (event.GameEvent, error) {
	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return event.GameEvent{}, err
	}

	source, err := s.loadOnFieldEvent(ctx, team.ID, input.PlayerEventID)
	if err != nil {
		return event.GameEvent{}, err
	}

	exit, err := s.buildEvent(team, event.KindSubstitutionOut, source.Player, source.Position, input.Period, input.PeriodSecond, "", input.RecordedByUserID)
	if err != nil {
		return event.GameEvent{}, err
	}
	applyReasonNotes(&exit, input.Reason, input.Notes)

	exit, err = s.events.Create(ctx, exit)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("create substitution-out: %w", err)
	}

	notify(ctx, s.notifier, s.logger, created(exit))
	return exit, nil
}

// SubstitutePlayer replaces the player named by playerOutEventID with the
// incoming identity. The out is written first; the in links to it via parent.
// The incoming player must not already be on the field.
func (s *LineupService) SubstitutePlayer(ctx context.Context, input SubstituteInput) ([]event.GameEvent, error) {
	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return nil, err
	}

	onField, err := s.onFieldKeys(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if key, ok := input.Incoming.Key(); ok {
		if _, playing := onField[key]; playing {
			return nil, fmt.Errorf("%w: incoming player is already on the field", ErrInvalidInput)
		}
	}

	pair, _, err := s.buildSubstitutionPair(ctx, team, BatchSubstitution{
		PlayerOutEventID: input.PlayerOutEventID,
		Incoming:         input.Incoming,
		Position:         input.Position,
	}, input.Period, input.PeriodSecond, input.RecordedByUserID)
	if err != nil {
		return nil, err
	}

	stored, err := s.events.CreateBatch(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("create substitution pair: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}
	return stored, nil
}

// ChangePosition moves an on-field player to a new position.
func (s *LineupService) ChangePosition(ctx context.Context, input ChangePositionInput) (event.GameEvent, error) {
	input.Position = strings.TrimSpace(input.Position)
	if input.Position == "" {
		return event.GameEvent{}, fmt.Errorf("%w: position is required", ErrInvalidInput)
	}

	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return event.GameEvent{}, err
	}

	source, err := s.loadOnFieldEvent(ctx, team.ID, input.PlayerEventID)
	if err != nil {
		return event.GameEvent{}, err
	}

	change, err := s.buildEvent(team, event.KindPositionChange, source.Player, input.Position, input.Period, input.PeriodSecond, "", input.RecordedByUserID)
	if err != nil {
		return event.GameEvent{}, err
	}
	if change.Metadata == nil {
		change.Metadata = map[string]string{}
	}
	change.Metadata["previous_position"] = source.Position

	change, err = s.events.Create(ctx, change)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("create position change: %w", err)
	}

	notify(ctx, s.notifier, s.logger, created(change))
	return change, nil
}

// SwapPositions exchanges the positions of two on-field players. Two
// POSITION_SWAP events are created; the second links to the first.
func (s *LineupService) SwapPositions(ctx context.Context, input SwapPositionsInput) ([]event.GameEvent, error) {
	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return nil, err
	}

	first, err := s.loadOnFieldEvent(ctx, team.ID, input.Event1ID)
	if err != nil {
		return nil, err
	}
	second, err := s.loadOnFieldEvent(ctx, team.ID, input.Event2ID)
	if err != nil {
		return nil, err
	}

	pair, err := s.buildSwapPair(team, first, second, input.Period, input.PeriodSecond, input.RecordedByUserID)
	if err != nil {
		return nil, err
	}

	stored, err := s.events.CreateBatch(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("create swap pair: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}
	return stored, nil
}

// BatchChanges applies an ordered list of substitutions followed by position
// swaps in one atomic write. Substitutions are resolved first, building an
// index map so swaps can reference the substitution that brought a player on;
// every id is generated up front, so a validation failure anywhere leaves the
// ledger untouched.
func (s *LineupService) BatchChanges(ctx context.Context, input BatchChangesInput) ([]event.GameEvent, error) {
	team, err := s.requireTeam(ctx, input.GameTeamID)
	if err != nil {
		return nil, err
	}
	if len(input.Substitutions) == 0 && len(input.Swaps) == 0 {
		return nil, fmt.Errorf("%w: batch contains no changes", ErrInvalidInput)
	}

	onField, err := s.onFieldKeys(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	batch := make([]event.GameEvent, 0, len(input.Substitutions)*2+len(input.Swaps)*2)
	inBySubIndex := make(map[int]event.GameEvent, len(input.Substitutions))

	for i, sub := range input.Substitutions {
		if key, ok := sub.Incoming.Key(); ok {
			if _, playing := onField[key]; playing {
				return nil, fmt.Errorf("%w: substitution %d: incoming player is already on the field", ErrInvalidInput, i)
			}
			onField[key] = struct{}{}
		}
		pair, in, err := s.buildSubstitutionPair(ctx, team, sub, input.Period, input.PeriodSecond, input.RecordedByUserID)
		if err != nil {
			return nil, fmt.Errorf("substitution %d: %w", i, err)
		}
		batch = append(batch, pair...)
		inBySubIndex[i] = in
	}

	for i, swap := range input.Swaps {
		first, err := s.resolveSwapRef(ctx, team.ID, swap.First, inBySubIndex)
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		second, err := s.resolveSwapRef(ctx, team.ID, swap.Second, inBySubIndex)
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		pair, err := s.buildSwapPair(team, first, second, input.Period, input.PeriodSecond, input.RecordedByUserID)
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		batch = append(batch, pair...)
	}

	stored, err := s.events.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("create batch changes: %w", err)
	}

	for _, e := range stored {
		notify(ctx, s.notifier, s.logger, created(e))
	}
	return stored, nil
}

func (s *LineupService) requireTeam(ctx context.Context, gameTeamID string) (gameteam.GameTeam, error) {
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

// onFieldKeys projects the committed ledger into the identity set currently
// on the field.
func (s *LineupService) onFieldKeys(ctx context.Context, gameTeamID string) (map[string]struct{}, error) {
	all, err := s.events.ListByGameTeam(ctx, gameTeamID)
	if err != nil {
		return nil, fmt.Errorf("list team events: %w", err)
	}
	return ProjectLineup(all).OnFieldKeys(), nil
}

// loadOnFieldEvent fetches an event that currently represents a player on the
// field. Kinds that cannot (goals, roster rows, boundaries) are rejected.
func (s *LineupService) loadOnFieldEvent(ctx context.Context, gameTeamID, eventID string) (event.GameEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.GameEvent{}, fmt.Errorf("%w: player event id is required", ErrInvalidInput)
	}

	e, exists, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.GameEvent{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if e.GameTeamID != gameTeamID {
		return event.GameEvent{}, fmt.Errorf("%w: event %s belongs to another team", ErrInvalidInput, eventID)
	}

	switch e.Kind {
	case event.KindSubstitutionIn, event.KindPositionSwap, event.KindPositionChange:
		return e, nil
	default:
		return event.GameEvent{}, fmt.Errorf("%w: event %s (%s) does not put a player on the field", ErrInvalidInput, eventID, e.Kind)
	}
}

func (s *LineupService) buildSubstitutionPair(
	ctx context.Context,
	team gameteam.GameTeam,
	sub BatchSubstitution,
	period string,
	periodSecond int,
	recordedBy string,
) ([]event.GameEvent, event.GameEvent, error) {
	if sub.Incoming.IsZero() {
		return nil, event.GameEvent{}, fmt.Errorf("%w: incoming identity is required", ErrInvalidInput)
	}

	source, err := s.loadOnFieldEvent(ctx, team.ID, sub.PlayerOutEventID)
	if err != nil {
		return nil, event.GameEvent{}, err
	}

	position := strings.TrimSpace(sub.Position)
	if position == "" {
		position = source.Position
	}

	out, err := s.buildEvent(team, event.KindSubstitutionOut, source.Player, source.Position, period, periodSecond, "", recordedBy)
	if err != nil {
		return nil, event.GameEvent{}, err
	}
	in, err := s.buildEvent(team, event.KindSubstitutionIn, sub.Incoming, position, period, periodSecond, out.ID, recordedBy)
	if err != nil {
		return nil, event.GameEvent{}, err
	}

	return []event.GameEvent{out, in}, in, nil
}

func (s *LineupService) buildSwapPair(
	team gameteam.GameTeam,
	first, second event.GameEvent,
	period string,
	periodSecond int,
	recordedBy string,
) ([]event.GameEvent, error) {
	if strings.TrimSpace(first.Position) == "" || strings.TrimSpace(second.Position) == "" {
		return nil, fmt.Errorf("%w: cannot swap players without positions", ErrInvalidInput)
	}
	if first.Player.SamePlayer(second.Player) {
		return nil, fmt.Errorf("%w: cannot swap a player with themselves", ErrInvalidInput)
	}

	swapA, err := s.buildEvent(team, event.KindPositionSwap, first.Player, second.Position, period, periodSecond, "", recordedBy)
	if err != nil {
		return nil, err
	}
	swapB, err := s.buildEvent(team, event.KindPositionSwap, second.Player, first.Position, period, periodSecond, swapA.ID, recordedBy)
	if err != nil {
		return nil, err
	}

	return []event.GameEvent{swapA, swapB}, nil
}

// resolveSwapRef turns a swap participant reference into the event carrying
// that player's identity and position. Substitution indexes resolve against
// the in-events built earlier in the same batch.
func (s *LineupService) resolveSwapRef(
	ctx context.Context,
	gameTeamID string,
	ref BatchSwapRef,
	inBySubIndex map[int]event.GameEvent,
) (event.GameEvent, error) {
	if ref.SubstitutionIndex != nil {
		in, ok := inBySubIndex[*ref.SubstitutionIndex]
		if !ok {
			return event.GameEvent{}, fmt.Errorf("%w: substitution index %d does not match any substitution in this batch", ErrInvalidInput, *ref.SubstitutionIndex)
		}
		return in, nil
	}
	if strings.TrimSpace(ref.EventID) == "" {
		return event.GameEvent{}, fmt.Errorf("%w: swap reference needs an event id or substitution index", ErrInvalidInput)
	}
	return s.loadOnFieldEvent(ctx, gameTeamID, ref.EventID)
}

func (s *LineupService) buildEvent(
	team gameteam.GameTeam,
	kind event.Kind,
	player event.Identity,
	position string,
	period string,
	periodSecond int,
	parentEventID string,
	recordedBy string,
) (event.GameEvent, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("generate event id: %w", err)
	}

	e := event.GameEvent{
		ID:               id,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             kind,
		Player:           player,
		Position:         strings.TrimSpace(position),
		Period:           strings.TrimSpace(period),
		PeriodSecond:     periodSecond,
		RecordedByUserID: recordedBy,
		ParentEventID:    parentEventID,
		CreatedAt:        s.now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return event.GameEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return e, nil
}

func applyReasonNotes(e *event.GameEvent, reason, notes string) {
	reason = strings.TrimSpace(reason)
	notes = strings.TrimSpace(notes)
	if reason == "" && notes == "" {
		return
	}
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	if reason != "" {
		e.Metadata[metadataReasonKey] = reason
	}
	if notes != "" {
		e.Metadata[metadataNotesKey] = notes
	}
}
