package usecase

import (
	"github.com/dtrask/scorebook/internal/domain/event"
)

// FieldPlayer is one player currently on the field.
type FieldPlayer struct {
	Player   event.Identity
	Position string
	// EventID is the ledger event that brought the player on.
	EventID string
}

// BenchPlayer is a roster member not currently on the field, annotated with
// the last position they were known to hold.
type BenchPlayer struct {
	Player        event.Identity
	LastPosition  string
	RosterEventID string
}

// Lineup is the derived lineup view for one game team. It is recomputed from
// the full ordered event set on every read; event volume per game is small
// enough that correctness wins over latency.
type Lineup struct {
	Roster   []event.GameEvent
	Starters []event.GameEvent
	OnField  []FieldPlayer
	Bench    []BenchPlayer
	// PreviousPeriodLineup holds the SUBSTITUTION_OUT events closed out by the
	// most recent PERIOD_END; the UI pre-fills the next period's lineup from it.
	PreviousPeriodLineup []event.GameEvent
}

// ProjectLineup folds a team's events, in ledger order, into the current
// lineup view. Replaying the same ordered set always yields the same result.
func ProjectLineup(events []event.GameEvent) Lineup {
	var out Lineup

	onField := make(map[string]*FieldPlayer)
	fieldOrder := make([]string, 0)
	lastPosition := make(map[string]string)
	lastPeriodEndID := ""

	for _, e := range events {
		key, hasKey := e.Player.Key()

		switch e.Kind {
		case event.KindGameRoster:
			out.Roster = append(out.Roster, e)

		case event.KindSubstitutionIn:
			if !hasKey {
				continue
			}
			if _, already := onField[key]; !already {
				fieldOrder = append(fieldOrder, key)
			}
			onField[key] = &FieldPlayer{Player: e.Player, Position: e.Position, EventID: e.ID}
			if e.Position != "" {
				lastPosition[key] = e.Position
			}
			if e.Period == "1" && e.PeriodSecond == 0 {
				out.Starters = append(out.Starters, e)
			}

		case event.KindSubstitutionOut:
			if !hasKey {
				continue
			}
			if fp, ok := onField[key]; ok && fp.Position != "" {
				lastPosition[key] = fp.Position
			}
			delete(onField, key)

		case event.KindPositionSwap, event.KindPositionChange:
			if !hasKey {
				continue
			}
			if fp, ok := onField[key]; ok && e.Position != "" {
				fp.Position = e.Position
				lastPosition[key] = e.Position
			}

		case event.KindPeriodEnd:
			lastPeriodEndID = e.ID
		}
	}

	for _, key := range fieldOrder {
		if fp, ok := onField[key]; ok {
			out.OnField = append(out.OnField, *fp)
		}
	}

	for _, rosterEvent := range out.Roster {
		key, ok := rosterEvent.Player.Key()
		if !ok {
			continue
		}
		if _, playing := onField[key]; playing {
			continue
		}
		position := lastPosition[key]
		if position == "" {
			position = rosterEvent.Position
		}
		out.Bench = append(out.Bench, BenchPlayer{
			Player:        rosterEvent.Player,
			LastPosition:  position,
			RosterEventID: rosterEvent.ID,
		})
	}

	if lastPeriodEndID != "" {
		for _, e := range events {
			if e.Kind == event.KindSubstitutionOut && e.ParentEventID == lastPeriodEndID {
				out.PreviousPeriodLineup = append(out.PreviousPeriodLineup, e)
			}
		}
	}

	return out
}

// OnFieldKeys returns the identity keys currently on the field.
func (l Lineup) OnFieldKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(l.OnField))
	for _, fp := range l.OnField {
		if key, ok := fp.Player.Key(); ok {
			keys[key] = struct{}{}
		}
	}
	return keys
}
