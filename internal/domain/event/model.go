package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what happened in a game.
type Kind string

const (
	KindGameRoster      Kind = "GAME_ROSTER"
	KindSubstitutionIn  Kind = "SUBSTITUTION_IN"
	KindSubstitutionOut Kind = "SUBSTITUTION_OUT"
	KindGoal            Kind = "GOAL"
	KindAssist          Kind = "ASSIST"
	KindFormationChange Kind = "FORMATION_CHANGE"
	KindPositionChange  Kind = "POSITION_CHANGE"
	KindPositionSwap    Kind = "POSITION_SWAP"
	KindPeriodStart     Kind = "PERIOD_START"
	KindPeriodEnd       Kind = "PERIOD_END"
)

// Kinds lists every valid kind in catalog order.
func Kinds() []Kind {
	return []Kind{
		KindGameRoster,
		KindSubstitutionIn,
		KindSubstitutionOut,
		KindGoal,
		KindAssist,
		KindFormationChange,
		KindPositionChange,
		KindPositionSwap,
		KindPeriodStart,
		KindPeriodEnd,
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindGameRoster, KindSubstitutionIn, KindSubstitutionOut, KindGoal,
		KindAssist, KindFormationChange, KindPositionChange, KindPositionSwap,
		KindPeriodStart, KindPeriodEnd:
		return true
	default:
		return false
	}
}

// PlayerScoped reports whether events of this kind must name a player identity.
// FORMATION_CHANGE and period boundaries are team-scoped.
func (k Kind) PlayerScoped() bool {
	switch k {
	case KindFormationChange, KindPeriodStart, KindPeriodEnd:
		return false
	default:
		return true
	}
}

// Identity is the player an event refers to: a managed roster reference or an
// external name+number pair for unmanaged/opponent players.
type Identity struct {
	PlayerID       string
	ExternalName   string
	ExternalNumber string
}

func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.PlayerID) == "" && strings.TrimSpace(i.ExternalName) == ""
}

// Key returns the comparison key for player matching: the managed player id
// when present, otherwise the external name. ok is false when both are absent;
// two keyless identities are never the same player.
func (i Identity) Key() (string, bool) {
	if id := strings.TrimSpace(i.PlayerID); id != "" {
		return "p:" + id, true
	}
	if name := strings.TrimSpace(i.ExternalName); name != "" {
		return "x:" + name, true
	}
	return "", false
}

func (i Identity) SamePlayer(other Identity) bool {
	key, ok := i.Key()
	otherKey, otherOK := other.Key()
	return ok && otherOK && key == otherKey
}

const MaxPeriodSecond = 5999

// GameEvent is the sole persisted unit of the ledger.
type GameEvent struct {
	ID               string
	GameID           string
	GameTeamID       string
	Kind             Kind
	Player           Identity
	Position         string
	Period           string
	PeriodSecond     int
	RecordedByUserID string
	ParentEventID    string
	ConflictID       string
	Metadata         map[string]string
	CreatedAt        time.Time
}

func (e GameEvent) Validate() error {
	if strings.TrimSpace(e.GameID) == "" {
		return fmt.Errorf("event game id is required")
	}
	if strings.TrimSpace(e.GameTeamID) == "" {
		return fmt.Errorf("event game team id is required")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("event kind %q is unknown", e.Kind)
	}
	if strings.TrimSpace(e.Period) == "" {
		return fmt.Errorf("event period is required")
	}
	if _, ok := periodOrder(e.Period); !ok {
		return fmt.Errorf("event period %q is malformed", e.Period)
	}
	if e.PeriodSecond < 0 || e.PeriodSecond > MaxPeriodSecond {
		return fmt.Errorf("event period second %d out of range 0..%d", e.PeriodSecond, MaxPeriodSecond)
	}
	if e.Kind.PlayerScoped() && e.Player.IsZero() {
		return fmt.Errorf("events of kind %s must name a player identity", e.Kind)
	}
	if e.Kind == KindAssist && strings.TrimSpace(e.ParentEventID) == "" {
		return fmt.Errorf("assist events must reference a parent goal")
	}
	return nil
}

// At reports whether the event sits at the given game time.
func (e GameEvent) At(period string, periodSecond int) bool {
	return e.Period == period && e.PeriodSecond == periodSecond
}

// PeriodRank maps a period code to its place in game order. Regulation
// periods ("1", "2", ...) come first, overtime periods ("OT1", "OT2", ...)
// after them. ok is false for codes that fit neither shape.
func PeriodRank(period string) (int, bool) {
	return periodOrder(period)
}

func periodOrder(period string) (int, bool) {
	period = strings.TrimSpace(period)
	if n, err := strconv.Atoi(period); err == nil && n > 0 {
		return n, true
	}
	rest, found := strings.CutPrefix(strings.ToUpper(period), "OT")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return 1000 + n, true
}

// Before orders two events by (period, periodSecond, createdAt, id); the id is
// a final deterministic tiebreak for equal timestamps.
func Before(a, b GameEvent) bool {
	ra, _ := periodOrder(a.Period)
	rb, _ := periodOrder(b.Period)
	if ra != rb {
		return ra < rb
	}
	if a.PeriodSecond != b.PeriodSecond {
		return a.PeriodSecond < b.PeriodSecond
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// After reports whether a sits strictly later in game time than b, ignoring
// insertion order. Used by the dependent-event scan.
func After(a, b GameEvent) bool {
	ra, _ := periodOrder(a.Period)
	rb, _ := periodOrder(b.Period)
	if ra != rb {
		return ra > rb
	}
	return a.PeriodSecond > b.PeriodSecond
}

// Clone returns a copy with its own metadata map.
func (e GameEvent) Clone() GameEvent {
	copied := e
	if e.Metadata != nil {
		copied.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}
