package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

// DependentEvent is one event that would be removed together with a source
// event, described for the confirmation UI.
type DependentEvent struct {
	Event  event.GameEvent
	Reason string
}

// DependentSet is the result of the dependent-event scan. Deletion is always
// permitted; the set only exists to warn.
type DependentSet struct {
	Events         []DependentEvent
	Count          int
	CanDelete      bool
	WarningMessage string
}

type CascadeService struct {
	events   event.Repository
	notifier Notifier
	logger   *logging.Logger
}

func NewCascadeService(events event.Repository, notifier Notifier, logger *logging.Logger) *CascadeService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &CascadeService{
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// FindDependents collects the events that deleting the source would take with
// it: its direct children, plus every later event for the identities the
// source releases forward. The forward scan is one pass over later events for
// a fixed identity set, deliberately not a transitive closure: a further
// substitution found in the scan does not pull in its own incoming player's
// later events.
func (s *CascadeService) FindDependents(ctx context.Context, eventID string) (DependentSet, error) {
	source, exists, err := s.events.GetByID(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return DependentSet{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return DependentSet{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	children, err := s.events.ListChildren(ctx, source.ID)
	if err != nil {
		return DependentSet{}, fmt.Errorf("list children: %w", err)
	}

	keys, err := s.continuationKeys(ctx, source, children)
	if err != nil {
		return DependentSet{}, err
	}

	seen := map[string]struct{}{source.ID: {}}
	set := DependentSet{CanDelete: true}
	for _, child := range children {
		seen[child.ID] = struct{}{}
		set.Events = append(set.Events, DependentEvent{Event: child, Reason: dependentReason(child.Kind)})
	}

	if len(keys) > 0 {
		teamEvents, err := s.events.ListByGameTeam(ctx, source.GameTeamID)
		if err != nil {
			return DependentSet{}, fmt.Errorf("list team events: %w", err)
		}
		for _, e := range teamEvents {
			if _, done := seen[e.ID]; done {
				continue
			}
			key, ok := e.Player.Key()
			if !ok {
				continue
			}
			if _, tracked := keys[key]; !tracked {
				continue
			}
			if !event.After(e, source) {
				continue
			}
			seen[e.ID] = struct{}{}
			set.Events = append(set.Events, DependentEvent{Event: e, Reason: dependentReason(e.Kind)})
		}
	}

	set.Count = len(set.Events)
	set.WarningMessage = dependentWarning(source, set.Count)

	return set, nil
}

// DeleteWithCascade removes the source event and everything FindDependents
// discovered, latest first so parent/child ordering is never violated, using
// kind-aware group deletion throughout. The root goes last.
func (s *CascadeService) DeleteWithCascade(ctx context.Context, eventID string, kind event.Kind) error {
	source, exists, err := s.events.GetByID(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if kind != "" && source.Kind != kind {
		return fmt.Errorf("%w: event %s is %s, not %s", ErrInvalidInput, eventID, source.Kind, kind)
	}

	set, err := s.FindDependents(ctx, source.ID)
	if err != nil {
		return err
	}

	dependents := make([]event.GameEvent, 0, len(set.Events))
	for _, dep := range set.Events {
		dependents = append(dependents, dep.Event)
	}
	sort.SliceStable(dependents, func(i, j int) bool {
		return event.Before(dependents[j], dependents[i])
	})

	del := deleter{events: s.events}
	removed := map[string]struct{}{}

	for _, dep := range dependents {
		if _, done := removed[dep.ID]; done {
			continue
		}
		gone, err := del.deleteGroup(ctx, dep)
		if err != nil {
			return fmt.Errorf("delete dependent %s: %w", dep.ID, err)
		}
		for _, g := range gone {
			removed[g.ID] = struct{}{}
			notify(ctx, s.notifier, s.logger, deleted(g))
		}
	}

	if _, done := removed[source.ID]; !done {
		gone, err := del.deleteGroup(ctx, source)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		for _, g := range gone {
			notify(ctx, s.notifier, s.logger, deleted(g))
		}
	}

	return nil
}

// DeleteGoal removes a goal, its assist children, and its score contribution.
func (s *CascadeService) DeleteGoal(ctx context.Context, eventID string) error {
	return s.deleteOfKind(ctx, eventID, event.KindGoal)
}

// DeleteSubstitution removes a substitution together with its paired half.
func (s *CascadeService) DeleteSubstitution(ctx context.Context, eventID string) error {
	source, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if source.Kind != event.KindSubstitutionIn && source.Kind != event.KindSubstitutionOut {
		return fmt.Errorf("%w: event %s is %s, not a substitution", ErrInvalidInput, eventID, source.Kind)
	}

	gone, err := deleter{events: s.events}.deleteSubstitution(ctx, source)
	if err != nil {
		return err
	}
	for _, g := range gone {
		notify(ctx, s.notifier, s.logger, deleted(g))
	}
	return nil
}

// DeleteStarterEntry removes a single period-starter SUBSTITUTION_IN without
// touching its PERIOD_START parent.
func (s *CascadeService) DeleteStarterEntry(ctx context.Context, eventID string) error {
	source, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if source.Kind != event.KindSubstitutionIn {
		return fmt.Errorf("%w: event %s is %s, not a starter entry", ErrInvalidInput, eventID, source.Kind)
	}

	gone, err := deleter{events: s.events}.deleteSingle(ctx, source)
	if err != nil {
		return err
	}
	for _, g := range gone {
		notify(ctx, s.notifier, s.logger, deleted(g))
	}
	return nil
}

// DeletePositionSwap removes both rows of a swap pair.
func (s *CascadeService) DeletePositionSwap(ctx context.Context, eventID string) error {
	return s.deleteOfKind(ctx, eventID, event.KindPositionSwap)
}

func (s *CascadeService) deleteOfKind(ctx context.Context, eventID string, kind event.Kind) error {
	source, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if source.Kind != kind {
		return fmt.Errorf("%w: event %s is %s, not %s", ErrInvalidInput, eventID, source.Kind, kind)
	}

	gone, err := deleter{events: s.events}.deleteGroup(ctx, source)
	if err != nil {
		return err
	}
	for _, g := range gone {
		notify(ctx, s.notifier, s.logger, deleted(g))
	}
	return nil
}

func (s *CascadeService) requireEvent(ctx context.Context, eventID string) (event.GameEvent, error) {
	source, exists, err := s.events.GetByID(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return event.GameEvent{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.GameEvent{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	return source, nil
}

// continuationKeys names the identities "released forward" by the source: for
// a SUBSTITUTION_OUT the paired incoming player, for a POSITION_SWAP both
// players of the pair, otherwise the event's own identity.
func (s *CascadeService) continuationKeys(ctx context.Context, source event.GameEvent, children []event.GameEvent) (map[string]struct{}, error) {
	keys := make(map[string]struct{}, 2)
	add := func(identity event.Identity) {
		if key, ok := identity.Key(); ok {
			keys[key] = struct{}{}
		}
	}

	switch source.Kind {
	case event.KindSubstitutionOut:
		for _, child := range children {
			if child.Kind == event.KindSubstitutionIn {
				add(child.Player)
			}
		}
	case event.KindPositionSwap:
		add(source.Player)
		if source.ParentEventID != "" {
			parent, ok, err := s.events.GetByID(ctx, source.ParentEventID)
			if err != nil {
				return nil, fmt.Errorf("load swap parent: %w", err)
			}
			if ok && parent.Kind == event.KindPositionSwap {
				add(parent.Player)
			}
		}
		for _, child := range children {
			if child.Kind == event.KindPositionSwap {
				add(child.Player)
			}
		}
	case event.KindPeriodStart, event.KindPeriodEnd, event.KindFormationChange:
		// Team-scoped events release no player forward; only direct children
		// depend on them.
	default:
		add(source.Player)
	}

	return keys, nil
}

func dependentReason(kind event.Kind) string {
	switch kind {
	case event.KindGoal:
		return "Goal scored"
	case event.KindAssist:
		return "Assist"
	case event.KindSubstitutionIn:
		return "Substituted in"
	case event.KindSubstitutionOut:
		return "Substituted out"
	case event.KindPositionSwap:
		return "Position swap"
	case event.KindPositionChange:
		return "Position change"
	case event.KindGameRoster:
		return "Added to game roster"
	case event.KindFormationChange:
		return "Formation change"
	case event.KindPeriodStart:
		return "Period start"
	case event.KindPeriodEnd:
		return "Period end"
	default:
		return string(kind)
	}
}

func dependentWarning(source event.GameEvent, count int) string {
	if source.Kind == event.KindAssist {
		if count == 0 {
			return "Deleting this assist does not remove the goal it belongs to."
		}
		return fmt.Sprintf("Deleting this assist also deletes %d later event(s) for this player; the goal it belongs to is kept.", count)
	}
	if count == 0 {
		return ""
	}
	return fmt.Sprintf("Deleting this event also deletes %d dependent event(s).", count)
}
