package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/dtrask/scorebook/internal/domain/gameteam"
	gameteammock "github.com/dtrask/scorebook/internal/mocks/domain/gameteam"
	"github.com/dtrask/scorebook/internal/platform/logging"
)

func TestTeamService_GetGameTeam_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := gameteammock.NewRepository(t)

	svc := NewTeamService(teamRepo, nil, nil, nil, logging.NewNop())
	gameTeamID := "gt-opener-thunder"

	teamRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), gameTeamID).
		Return(gameteam.GameTeam{ID: gameTeamID, Name: "Thunder U12"}, true, nil).
		Once()

	got, err := svc.GetGameTeam(ctx, gameTeamID)
	if err != nil {
		t.Fatalf("get game team: %v", err)
	}
	if got.Name != "Thunder U12" {
		t.Fatalf("unexpected team name: %s", got.Name)
	}
}

func TestTeamService_GetGameTeam_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := gameteammock.NewRepository(t)

	svc := NewTeamService(teamRepo, nil, nil, nil, logging.NewNop())
	gameTeamID := "gt-missing"

	teamRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), gameTeamID).
		Return(gameteam.GameTeam{}, false, nil).
		Once()

	_, err := svc.GetGameTeam(ctx, gameTeamID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeamService_GetGameTeam_StoreErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := gameteammock.NewRepository(t)

	svc := NewTeamService(teamRepo, nil, nil, nil, logging.NewNop())
	storeErr := errors.New("connection reset")

	teamRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "gt-1").
		Return(gameteam.GameTeam{}, false, storeErr).
		Once()

	_, err := svc.GetGameTeam(ctx, "gt-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("store errors must propagate wrapped, got %v", err)
	}
}
