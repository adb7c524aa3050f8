package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dtrask/scorebook/internal/config"
	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	"github.com/dtrask/scorebook/internal/infrastructure/notify"
	cacherepo "github.com/dtrask/scorebook/internal/infrastructure/repository/cache"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/memory"
	"github.com/dtrask/scorebook/internal/infrastructure/repository/postgres"
	"github.com/dtrask/scorebook/internal/interfaces/httpapi"
	basecache "github.com/dtrask/scorebook/internal/platform/cache"
	idgen "github.com/dtrask/scorebook/internal/platform/id"
	"github.com/dtrask/scorebook/internal/platform/logging"
	"github.com/dtrask/scorebook/internal/platform/resilience"
	"github.com/dtrask/scorebook/internal/usecase"
)

// NewHTTPServer wires repositories, services, and the HTTP router. The
// returned cleanup releases the DB pool and the NATS connection and must run
// after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	events, teams, err := buildRepositories(cfg, logger, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	notifier, err := buildNotifier(cfg, logger, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	ids := idgen.NewRandomGenerator()
	teamSvc := usecase.NewTeamService(teams, events, ids, notifier, logger)
	rosterSvc := usecase.NewRosterService(events, teams, ids, notifier, logger)
	goalSvc := usecase.NewGoalService(events, teams, ids, notifier, logger)
	lineupSvc := usecase.NewLineupService(events, teams, ids, notifier, logger)
	periodSvc := usecase.NewPeriodService(events, teams, ids, notifier, logger)
	cascadeSvc := usecase.NewCascadeService(events, notifier, logger)
	conflictSvc := usecase.NewConflictService(events, notifier, logger)
	statsSvc := usecase.NewStatsService(events, teams, logger)

	handler := httpapi.NewHandler(
		teamSvc,
		rosterSvc,
		goalSvc,
		lineupSvc,
		periodSvc,
		cascadeSvc,
		conflictSvc,
		statsSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger, closers *[]func()) (event.Repository, gameteam.Repository, error) {
	var (
		events event.Repository
		teams  gameteam.Repository
	)

	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories")
		teamRepo := memory.NewGameTeamRepository()
		for _, gt := range memory.SeedGameTeams() {
			if err := teamRepo.Create(context.Background(), gt); err != nil {
				return nil, nil, fmt.Errorf("seed game teams: %w", err)
			}
		}
		events = memory.NewEventRepository(teamRepo)
		teams = teamRepo
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, func() { _ = db.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
		catalog, err := postgres.LoadCatalog(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("load event kind catalog: %w", err)
		}

		events = postgres.NewEventRepository(db, catalog)
		teams = postgres.NewGameTeamRepository(db)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		teams = cacherepo.NewGameTeamRepository(teams, store)
		events = cacherepo.NewEventRepository(events, store)
	}

	return events, teams, nil
}

func buildNotifier(cfg config.Config, logger *logging.Logger, closers *[]func()) (usecase.Notifier, error) {
	if !cfg.NATSEnabled {
		logger.Info("nats disabled, change feed is a no-op", "reason", "NATS_ENABLED=false")
		return usecase.NopNotifier{}, nil
	}

	notifier, err := notify.NewNATSNotifier(notify.NATSNotifierConfig{
		URL:            cfg.NATSURL,
		SubjectPrefix:  cfg.NATSSubjectPrefix,
		Workers:        cfg.NATSPublishWorkers,
		ConnectTimeout: cfg.NATSConnectTimeout,
		Breaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: cfg.NATSCircuitFailureCount,
			OpenTimeout:      cfg.NATSCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NATSCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	*closers = append(*closers, notifier.Close)

	return notifier, nil
}
