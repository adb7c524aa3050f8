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

type SetFormationInput struct {
	GameTeamID       string
	Formation        string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

type TeamService struct {
	teams    gameteam.Repository
	events   event.Repository
	ids      idgen.Generator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewTeamService(
	teams gameteam.Repository,
	events event.Repository,
	ids idgen.Generator,
	notifier Notifier,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &TeamService{
		teams:    teams,
		events:   events,
		ids:      ids,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *TeamService) GetGameTeam(ctx context.Context, gameTeamID string) (gameteam.GameTeam, error) {
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

// ListGameEvents returns the full ordered ledger for one game, both teams
// included, for game-wide review views.
func (s *TeamService) ListGameEvents(ctx context.Context, gameID string) ([]event.GameEvent, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game_id is required", ErrInvalidInput)
	}

	events, err := s.events.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game events: %w", err)
	}

	return events, nil
}

// SetFormation updates the team's current formation and appends a
// FORMATION_CHANGE event carrying the previous value, so the lineup replay
// can reconstruct the formation at any point in the game.
func (s *TeamService) SetFormation(ctx context.Context, input SetFormationInput) (event.GameEvent, error) {
	input.GameTeamID = strings.TrimSpace(input.GameTeamID)
	input.Formation = strings.TrimSpace(input.Formation)
	if input.GameTeamID == "" {
		return event.GameEvent{}, fmt.Errorf("%w: game_team_id is required", ErrInvalidInput)
	}
	if input.Formation == "" {
		return event.GameEvent{}, fmt.Errorf("%w: formation is required", ErrInvalidInput)
	}
	if input.Period == "" {
		input.Period = "1"
	}

	team, exists, err := s.teams.GetByID(ctx, input.GameTeamID)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("get game team: %w", err)
	}
	if !exists {
		return event.GameEvent{}, fmt.Errorf("%w: game_team=%s", ErrNotFound, input.GameTeamID)
	}

	changeID, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("generate event id: %w", err)
	}

	change := event.GameEvent{
		ID:               changeID,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             event.KindFormationChange,
		Period:           input.Period,
		PeriodSecond:     input.PeriodSecond,
		RecordedByUserID: input.RecordedByUserID,
		Metadata: map[string]string{
			"previous_formation": team.Formation,
			"new_formation":      input.Formation,
		},
		CreatedAt: s.now().UTC(),
	}
	if err := change.Validate(); err != nil {
		return event.GameEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.teams.UpdateFormation(ctx, team.ID, input.Formation); err != nil {
		return event.GameEvent{}, fmt.Errorf("update formation: %w", err)
	}

	stored, err := s.events.Create(ctx, change)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("create formation change: %w", err)
	}

	notify(ctx, s.notifier, s.logger, created(stored))

	return stored, nil
}
