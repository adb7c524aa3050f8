package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dtrask/scorebook/internal/usecase"
)

type playerStatsDTO struct {
	Player            identityDTO    `json:"player"`
	Games             int            `json:"games"`
	Starts            int            `json:"starts"`
	Goals             int            `json:"goals"`
	Assists           int            `json:"assists"`
	SecondsPlayed     int            `json:"secondsPlayed"`
	SecondsByPosition map[string]int `json:"secondsByPosition,omitempty"`
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	filter := usecase.StatsFilter{
		GameID: strings.TrimSpace(r.URL.Query().Get("game_id")),
	}

	var err error
	if filter.From, err = parseTimeParam(r, "from"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if filter.To, err = parseTimeParam(r, "to"); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.statsService.GetPlayerStats(ctx, teamID, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "get player stats failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerStatsDTO, 0, len(stats))
	for _, s := range stats {
		items = append(items, playerStatsDTO{
			Player:            identityToDTO(s.Player),
			Games:             s.Games,
			Starts:            s.Starts,
			Goals:             s.Goals,
			Assists:           s.Assists,
			SecondsPlayed:     s.SecondsPlayed,
			SecondsByPosition: s.SecondsByPosition,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339: %v", usecase.ErrInvalidInput, name, err)
	}
	return parsed, nil
}
