package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dtrask/scorebook/internal/domain/gameteam"
)

type GameTeamRepository struct {
	mu    sync.RWMutex
	items map[string]gameteam.GameTeam
}

func NewGameTeamRepository() *GameTeamRepository {
	return &GameTeamRepository{items: make(map[string]gameteam.GameTeam)}
}

func (r *GameTeamRepository) GetByID(_ context.Context, id string) (gameteam.GameTeam, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return gameteam.GameTeam{}, false, nil
	}

	return item, true, nil
}

func (r *GameTeamRepository) ListByTeam(_ context.Context, teamID string) ([]gameteam.GameTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gameteam.GameTeam, 0)
	for _, item := range r.items {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.Before(out[j].PlayedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *GameTeamRepository) Create(_ context.Context, team gameteam.GameTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[team.ID]; exists {
		return fmt.Errorf("game team %s already exists", team.ID)
	}
	r.items[team.ID] = team

	return nil
}

func (r *GameTeamRepository) UpdateFormation(_ context.Context, id, formation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game team %s not found", id)
	}
	item.Formation = formation
	r.items[id] = item

	return nil
}

// adjustScore moves the denormalized final score. Only the event repository's
// scoring transactions call it.
func (r *GameTeamRepository) adjustScore(id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game team %s not found", id)
	}
	item.FinalScore += delta
	if item.FinalScore < 0 {
		item.FinalScore = 0
	}
	r.items[id] = item

	return nil
}
