package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dtrask/scorebook/internal/platform/logging"
	"github.com/dtrask/scorebook/internal/usecase"
)

type Handler struct {
	teamService     *usecase.TeamService
	rosterService   *usecase.RosterService
	goalService     *usecase.GoalService
	lineupService   *usecase.LineupService
	periodService   *usecase.PeriodService
	cascadeService  *usecase.CascadeService
	conflictService *usecase.ConflictService
	statsService    *usecase.StatsService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	rosterService *usecase.RosterService,
	goalService *usecase.GoalService,
	lineupService *usecase.LineupService,
	periodService *usecase.PeriodService,
	cascadeService *usecase.CascadeService,
	conflictService *usecase.ConflictService,
	statsService *usecase.StatsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:     teamService,
		rosterService:   rosterService,
		goalService:     goalService,
		lineupService:   lineupService,
		periodService:   periodService,
		cascadeService:  cascadeService,
		conflictService: conflictService,
		statsService:    statsService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
