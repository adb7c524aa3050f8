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

type AddToRosterInput struct {
	GameTeamID       string
	Player           event.Identity
	Position         string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

// AddToRosterResult mirrors RecordGoalResult: a roster entry may come back as
// a duplicate no-op or a member of a fresh conflict group.
type AddToRosterResult struct {
	Entry     event.GameEvent
	Duplicate bool
	Conflict  *ConflictGroup
}

type RosterService struct {
	events   event.Repository
	teams    gameteam.Repository
	ids      idgen.Generator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewRosterService(
	events event.Repository,
	teams gameteam.Repository,
	ids idgen.Generator,
	notifier Notifier,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &RosterService{
		events:   events,
		teams:    teams,
		ids:      ids,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Add puts a player on the game roster. Re-submitting the same player at the
// same time is a duplicate no-op; the same player at another time is rejected
// as already rostered; a different player at the same time joins a conflict
// group, since two scorekeepers plausibly recorded the same real entry.
func (s *RosterService) Add(ctx context.Context, input AddToRosterInput) (AddToRosterResult, error) {
	input.GameTeamID = strings.TrimSpace(input.GameTeamID)
	if input.GameTeamID == "" {
		return AddToRosterResult{}, fmt.Errorf("%w: game_team_id is required", ErrInvalidInput)
	}
	if input.Player.IsZero() {
		return AddToRosterResult{}, fmt.Errorf("%w: player identity is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Period) == "" {
		input.Period = "1"
	}

	team, exists, err := s.teams.GetByID(ctx, input.GameTeamID)
	if err != nil {
		return AddToRosterResult{}, fmt.Errorf("get game team: %w", err)
	}
	if !exists {
		return AddToRosterResult{}, fmt.Errorf("%w: game_team=%s", ErrNotFound, input.GameTeamID)
	}

	all, err := s.events.ListByGameTeam(ctx, input.GameTeamID)
	if err != nil {
		return AddToRosterResult{}, fmt.Errorf("list team events: %w", err)
	}
	for _, existing := range all {
		if existing.Kind != event.KindGameRoster || !existing.Player.SamePlayer(input.Player) {
			continue
		}
		if existing.At(input.Period, input.PeriodSecond) {
			duplicate := existing.Clone()
			notify(ctx, s.notifier, s.logger, ChangeMessage{
				Action: ActionDuplicateDetected,
				GameID: duplicate.GameID,
				Event:  &duplicate,
			})
			return AddToRosterResult{Entry: duplicate, Duplicate: true}, nil
		}
		return AddToRosterResult{}, fmt.Errorf("%w: player is already on the game roster", ErrInvalidInput)
	}

	check, err := classifySubmission(ctx, s.events, input.GameTeamID, event.KindGameRoster, input.Player, input.Period, input.PeriodSecond)
	if err != nil {
		return AddToRosterResult{}, err
	}

	entryID, err := s.ids.NewID()
	if err != nil {
		return AddToRosterResult{}, fmt.Errorf("generate roster event id: %w", err)
	}
	entry := event.GameEvent{
		ID:               entryID,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             event.KindGameRoster,
		Player:           input.Player,
		Position:         strings.TrimSpace(input.Position),
		Period:           input.Period,
		PeriodSecond:     input.PeriodSecond,
		RecordedByUserID: input.RecordedByUserID,
		CreatedAt:        s.now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return AddToRosterResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entry, err = s.events.Create(ctx, entry)
	if err != nil {
		return AddToRosterResult{}, fmt.Errorf("create roster event: %w", err)
	}

	result := AddToRosterResult{Entry: entry}

	if len(check.ConflictsWith) > 0 {
		group, err := groupConflict(ctx, s.events, s.ids, entry, check.ConflictsWith)
		if err != nil {
			return AddToRosterResult{}, err
		}
		result.Entry.ConflictID = group.ConflictID
		result.Conflict = &group
		notify(ctx, s.notifier, s.logger, ChangeMessage{
			Action:   ActionConflictDetected,
			GameID:   entry.GameID,
			Conflict: &group,
		})
		return result, nil
	}

	notify(ctx, s.notifier, s.logger, created(entry))
	return result, nil
}
