package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/nhl-pickem/external/identitytoolkit"
	"github.com/riskibarqy/nhl-pickem/external/statsfeed"
	"github.com/riskibarqy/nhl-pickem/internal/config"
	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
	"github.com/riskibarqy/nhl-pickem/internal/domain/user"
	accountmemory "github.com/riskibarqy/nhl-pickem/internal/infrastructure/account/memory"
	cacherepo "github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/schedule/csvtable"
	"github.com/riskibarqy/nhl-pickem/internal/interfaces/httpapi"
	"github.com/riskibarqy/nhl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nhl-pickem/internal/usecase"
)

// App owns the HTTP server and the resources behind it.
type App struct {
	Server *http.Server

	db     *sqlx.DB
	logger *logging.Logger
}

type stores struct {
	picks    pick.Repository
	profiles profile.Repository
	outcomes outcome.Repository
	// games is set when the schedule lives in postgres.
	games *postgres.GameRepository
}

type schedule struct {
	source   game.Source
	lookup   game.Lookup
	resolver outcome.Resolver
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	st, err := a.buildStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
		st.profiles = cacherepo.NewProfileRepository(st.profiles, store)
	}

	sched, err := buildSchedule(cfg, st, store, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	identity := buildIdentityProvider(cfg, logger)

	accountService := usecase.NewAccountService(identity, st.profiles, logger.Named("account"))
	pickService := usecase.NewPickService(st.picks, sched.source, cfg.Location, logger.Named("picks"))
	scoringService := usecase.NewScoringService(st.picks, st.profiles, sched.resolver, cfg.Location, logger.Named("scoring"))
	outcomeService := usecase.NewOutcomeService(st.outcomes, sched.lookup, logger.Named("outcomes"))

	handler := httpapi.NewHandler(accountService, pickService, scoringService, outcomeService, logger.Named("http"))
	router := httpapi.NewRouter(handler, accountService, logger.Named("http"), httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		ManualOutcomes:     cfg.ScheduleMode == config.ScheduleModeManual,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.Info("application wired",
		"store", cfg.StoreBackend,
		"schedule_mode", cfg.ScheduleMode,
		"identity", cfg.IdentityProvider,
		"cache", cfg.CacheEnabled,
		"timezone", cfg.Location.String(),
	)
	return a, nil
}

// Close releases the database pool. The HTTP server is shut down by the caller.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *App) buildStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreBackend != config.StorePostgres {
		return stores{
			picks:    memory.NewPickRepository(),
			profiles: memory.NewProfileRepository(),
			outcomes: memory.NewOutcomeRepository(),
		}, nil
	}

	db, err := OpenDB(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
	if err != nil {
		return stores{}, err
	}
	a.db = db

	return stores{
		picks:    postgres.NewPickRepository(db),
		profiles: postgres.NewProfileRepository(db),
		outcomes: postgres.NewOutcomeRepository(db),
		games:    postgres.NewGameRepository(db),
	}, nil
}

func buildSchedule(cfg config.Config, st stores, store *cache.Store, logger *logging.Logger) (schedule, error) {
	if cfg.ScheduleMode == config.ScheduleModeFeed {
		var source game.Source = statsfeed.NewClient(statsfeed.ClientConfig{
			HTTPClient:     tracedHTTPClient(cfg.ScheduleFeedTimeout),
			BaseURL:        cfg.ScheduleFeedBaseURL,
			Timeout:        cfg.ScheduleFeedTimeout,
			Retry:          cfg.ScheduleFeedRetry,
			Logger:         logger,
			CircuitBreaker: cfg.ScheduleFeedCircuit,
		})
		if store != nil {
			source = cacherepo.NewScheduleSource(source, store)
		}
		return schedule{
			source:   source,
			resolver: usecase.NewFeedOutcomeResolver(source, cfg.OutcomeWorkers),
		}, nil
	}

	resolver := usecase.NewManualOutcomeResolver(st.outcomes, cfg.OutcomeWorkers)
	if st.games != nil {
		return schedule{source: st.games, lookup: st.games, resolver: resolver}, nil
	}

	games, err := manualGames(cfg, logger)
	if err != nil {
		return schedule{}, err
	}
	table := memory.NewScheduleRepository(games)
	return schedule{source: table, lookup: table, resolver: resolver}, nil
}

// manualGames loads the CSV table, or demo games for the current and next week when no
// table is configured.
func manualGames(cfg config.Config, logger *logging.Logger) ([]game.Game, error) {
	if cfg.ScheduleTablePath != "" {
		games, err := csvtable.LoadFile(cfg.ScheduleTablePath)
		if err != nil {
			return nil, fmt.Errorf("load schedule table: %w", err)
		}
		logger.Info("schedule table loaded", "path", cfg.ScheduleTablePath, "games", len(games))
		return games, nil
	}

	today := pickweek.Date(time.Now(), cfg.Location)
	current := pickweek.CurrentWeekSunday(today)
	games := append(memory.SeedGames(current), memory.SeedGames(current.AddDate(0, 0, 7))...)
	logger.Warn("SCHEDULE_TABLE_PATH is empty, serving demo games", "week_id", pickweek.WeekID(current))
	return games, nil
}

func buildIdentityProvider(cfg config.Config, logger *logging.Logger) user.IdentityProvider {
	if cfg.IdentityProvider == config.IdentityMemory {
		logger.Warn("using in-memory identity provider, accounts are lost on restart")
		return accountmemory.NewIdentityProvider()
	}

	return identitytoolkit.NewClient(identitytoolkit.ClientConfig{
		HTTPClient:     tracedHTTPClient(cfg.IdentityTimeout),
		BaseURL:        cfg.IdentityBaseURL,
		APIKey:         cfg.IdentityAPIKey,
		Timeout:        cfg.IdentityTimeout,
		PrincipalTTL:   cfg.IdentityPrincipalTTL,
		Logger:         logger,
		CircuitBreaker: cfg.IdentityCircuit,
	})
}

func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Shutdown drains the server and then releases the stores.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
