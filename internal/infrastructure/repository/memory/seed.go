package memory

import (
	"time"

	"github.com/dtrask/scorebook/internal/domain/gameteam"
)

const (
	TeamIDThunder  = "team-thunder-u12"
	TeamIDRapids   = "team-rapids-u12"
	GameIDOpener   = "game-2026-03-07-thunder-rapids"
	GameTeamIDHome = "gt-opener-thunder"
	GameTeamIDAway = "gt-opener-rapids"
)

func SeedGameTeams() []gameteam.GameTeam {
	return []gameteam.GameTeam{
		{
			ID:        GameTeamIDHome,
			GameID:    GameIDOpener,
			TeamID:    TeamIDThunder,
			Name:      "Thunder U12",
			Formation: "2-3-1",
			PlayedAt:  time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        GameTeamIDAway,
			GameID:    GameIDOpener,
			TeamID:    TeamIDRapids,
			Name:      "Rapids U12",
			Formation: "3-2-1",
			PlayedAt:  time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		},
	}
}
