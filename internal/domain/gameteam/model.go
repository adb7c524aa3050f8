package gameteam

import (
	"fmt"
	"time"
)

// GameTeam is one team's participation in one game. Formation and FinalScore
// are the only denormalized fields the ledger mutates: the score moves only on
// goal creation/deletion, never by independent recomputation.
type GameTeam struct {
	ID         string
	GameID     string
	TeamID     string
	Name       string
	Formation  string
	FinalScore int
	PlayedAt   time.Time
}

func (t GameTeam) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("game team id is required")
	}
	if t.GameID == "" {
		return fmt.Errorf("game team game id is required")
	}
	if t.TeamID == "" {
		return fmt.Errorf("game team team id is required")
	}

	return nil
}
