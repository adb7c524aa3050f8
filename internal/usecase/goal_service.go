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

type RecordGoalInput struct {
	GameTeamID       string
	Scorer           event.Identity
	Assister         *event.Identity
	Period           string
	PeriodSecond     int
	RecordedByUserID string
}

// RecordGoalResult reports what recording actually did: a fresh goal, a no-op
// duplicate returning the already-stored event, or a new conflict group.
type RecordGoalResult struct {
	Goal      event.GameEvent
	Assist    *event.GameEvent
	Duplicate bool
	Conflict  *ConflictGroup
}

type GoalUpdate struct {
	Scorer        *event.Identity
	Assister      *event.Identity
	ClearAssister bool
	Period        *string
	PeriodSecond  *int
}

type GoalService struct {
	events   event.Repository
	teams    gameteam.Repository
	ids      idgen.Generator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewGoalService(
	events event.Repository,
	teams gameteam.Repository,
	ids idgen.Generator,
	notifier Notifier,
	logger *logging.Logger,
) *GoalService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &GoalService{
		events:   events,
		teams:    teams,
		ids:      ids,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Record stores a goal (and optional assist) for a team. Submissions matching
// an existing goal for the same player at the same time are no-ops returning
// the stored event; same-time goals for a different player join a conflict
// group and both stay.
func (s *GoalService) Record(ctx context.Context, input RecordGoalInput) (RecordGoalResult, error) {
	input.GameTeamID = strings.TrimSpace(input.GameTeamID)
	if input.GameTeamID == "" {
		return RecordGoalResult{}, fmt.Errorf("%w: game_team_id is required", ErrInvalidInput)
	}
	if input.Scorer.IsZero() {
		return RecordGoalResult{}, fmt.Errorf("%w: scorer identity is required", ErrInvalidInput)
	}
	if input.Assister != nil && input.Assister.IsZero() {
		return RecordGoalResult{}, fmt.Errorf("%w: assister identity cannot be empty", ErrInvalidInput)
	}
	if input.Assister != nil && input.Assister.SamePlayer(input.Scorer) {
		return RecordGoalResult{}, fmt.Errorf("%w: assister must differ from scorer", ErrInvalidInput)
	}

	team, exists, err := s.teams.GetByID(ctx, input.GameTeamID)
	if err != nil {
		return RecordGoalResult{}, fmt.Errorf("get game team: %w", err)
	}
	if !exists {
		return RecordGoalResult{}, fmt.Errorf("%w: game_team=%s", ErrNotFound, input.GameTeamID)
	}

	check, err := classifySubmission(ctx, s.events, input.GameTeamID, event.KindGoal, input.Scorer, input.Period, input.PeriodSecond)
	if err != nil {
		return RecordGoalResult{}, err
	}
	if check.Duplicate != nil {
		existing := *check.Duplicate
		notify(ctx, s.notifier, s.logger, ChangeMessage{
			Action: ActionDuplicateDetected,
			GameID: existing.GameID,
			Event:  &existing,
		})
		return RecordGoalResult{Goal: existing.Clone(), Duplicate: true}, nil
	}

	goal, assist, err := s.buildGoalEvents(team, input)
	if err != nil {
		return RecordGoalResult{}, err
	}

	goal, assist, err = s.events.CreateScoring(ctx, goal, assist)
	if err != nil {
		return RecordGoalResult{}, fmt.Errorf("create goal: %w", err)
	}

	result := RecordGoalResult{Goal: goal, Assist: assist}

	if len(check.ConflictsWith) > 0 {
		group, err := groupConflict(ctx, s.events, s.ids, goal, check.ConflictsWith)
		if err != nil {
			return RecordGoalResult{}, err
		}
		result.Goal.ConflictID = group.ConflictID
		result.Conflict = &group
		notify(ctx, s.notifier, s.logger, ChangeMessage{
			Action:   ActionConflictDetected,
			GameID:   goal.GameID,
			Conflict: &group,
		})
		return result, nil
	}

	notify(ctx, s.notifier, s.logger, created(goal))
	return result, nil
}

// Update applies scorer/assist/time corrections to a stored goal. The assist
// child follows the goal's time; an assister change rewrites or creates the
// child, ClearAssister removes it.
func (s *GoalService) Update(ctx context.Context, goalEventID string, update GoalUpdate) (event.GameEvent, error) {
	goalEventID = strings.TrimSpace(goalEventID)
	if goalEventID == "" {
		return event.GameEvent{}, fmt.Errorf("%w: goal event id is required", ErrInvalidInput)
	}
	if update.Assister != nil && update.ClearAssister {
		return event.GameEvent{}, fmt.Errorf("%w: cannot both set and clear the assister", ErrInvalidInput)
	}

	goal, exists, err := s.events.GetByID(ctx, goalEventID)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("get goal event: %w", err)
	}
	if !exists {
		return event.GameEvent{}, fmt.Errorf("%w: event=%s", ErrNotFound, goalEventID)
	}
	if goal.Kind != event.KindGoal {
		return event.GameEvent{}, fmt.Errorf("%w: event %s is %s, not a goal", ErrInvalidInput, goalEventID, goal.Kind)
	}

	if update.Scorer != nil {
		if update.Scorer.IsZero() {
			return event.GameEvent{}, fmt.Errorf("%w: scorer identity cannot be empty", ErrInvalidInput)
		}
		goal.Player = *update.Scorer
	}
	if update.Period != nil {
		goal.Period = strings.TrimSpace(*update.Period)
	}
	if update.PeriodSecond != nil {
		goal.PeriodSecond = *update.PeriodSecond
	}
	if err := goal.Validate(); err != nil {
		return event.GameEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	goal, err = s.events.Update(ctx, goal)
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("update goal: %w", err)
	}

	if err := s.syncAssist(ctx, goal, update); err != nil {
		return event.GameEvent{}, err
	}

	notify(ctx, s.notifier, s.logger, updated(goal))
	return goal, nil
}

func (s *GoalService) buildGoalEvents(team gameteam.GameTeam, input RecordGoalInput) (event.GameEvent, *event.GameEvent, error) {
	goalID, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("generate goal id: %w", err)
	}

	now := s.now().UTC()
	goal := event.GameEvent{
		ID:               goalID,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             event.KindGoal,
		Player:           input.Scorer,
		Period:           strings.TrimSpace(input.Period),
		PeriodSecond:     input.PeriodSecond,
		RecordedByUserID: input.RecordedByUserID,
		CreatedAt:        now,
	}
	if err := goal.Validate(); err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if input.Assister == nil {
		return goal, nil, nil
	}

	assistID, err := s.ids.NewID()
	if err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("generate assist id: %w", err)
	}
	assist := event.GameEvent{
		ID:               assistID,
		GameID:           team.GameID,
		GameTeamID:       team.ID,
		Kind:             event.KindAssist,
		Player:           *input.Assister,
		Period:           goal.Period,
		PeriodSecond:     goal.PeriodSecond,
		RecordedByUserID: input.RecordedByUserID,
		ParentEventID:    goal.ID,
		CreatedAt:        now,
	}
	if err := assist.Validate(); err != nil {
		return event.GameEvent{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return goal, &assist, nil
}

func (s *GoalService) syncAssist(ctx context.Context, goal event.GameEvent, update GoalUpdate) error {
	children, err := s.events.ListChildren(ctx, goal.ID)
	if err != nil {
		return fmt.Errorf("list goal children: %w", err)
	}

	var assist *event.GameEvent
	for i := range children {
		if children[i].Kind == event.KindAssist {
			assist = &children[i]
			break
		}
	}

	if update.ClearAssister {
		if assist == nil {
			return nil
		}
		if err := s.events.Delete(ctx, assist.ID); err != nil {
			return fmt.Errorf("delete assist: %w", err)
		}
		notify(ctx, s.notifier, s.logger, deleted(*assist))
		return nil
	}

	if assist != nil {
		changed := false
		if update.Assister != nil && !assist.Player.SamePlayer(*update.Assister) {
			assist.Player = *update.Assister
			changed = true
		}
		if assist.Period != goal.Period || assist.PeriodSecond != goal.PeriodSecond {
			assist.Period = goal.Period
			assist.PeriodSecond = goal.PeriodSecond
			changed = true
		}
		if !changed {
			return nil
		}
		if _, err := s.events.Update(ctx, *assist); err != nil {
			return fmt.Errorf("update assist: %w", err)
		}
		return nil
	}

	if update.Assister == nil {
		return nil
	}

	assistID, err := s.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate assist id: %w", err)
	}
	fresh := event.GameEvent{
		ID:               assistID,
		GameID:           goal.GameID,
		GameTeamID:       goal.GameTeamID,
		Kind:             event.KindAssist,
		Player:           *update.Assister,
		Period:           goal.Period,
		PeriodSecond:     goal.PeriodSecond,
		RecordedByUserID: goal.RecordedByUserID,
		ParentEventID:    goal.ID,
		CreatedAt:        s.now().UTC(),
	}
	if err := fresh.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.events.Create(ctx, fresh); err != nil {
		return fmt.Errorf("create assist: %w", err)
	}

	return nil
}
