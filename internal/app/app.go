package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/aliuyar1234/finhub/internal/billing"
	"github.com/aliuyar1234/finhub/internal/categories"
	"github.com/aliuyar1234/finhub/internal/config"
	"github.com/aliuyar1234/finhub/internal/db"
	"github.com/aliuyar1234/finhub/internal/metrics"
	"github.com/aliuyar1234/finhub/internal/notify"
	"github.com/aliuyar1234/finhub/internal/retention"
	"github.com/aliuyar1234/finhub/internal/store"
	"github.com/aliuyar1234/finhub/internal/tasks"
	"github.com/aliuyar1234/finhub/internal/teams"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App holds the application state
type App struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Metrics
	Tasks   *tasks.Runner
	Purge   *retention.Job

	server *http.Server
}

// New creates and initializes a new application instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	SetupLogger(cfg.LogLevel)

	log.Info().Msg("Initializing finhub application")
	log.Info().Interface("config", cfg.RedactedValues()).Msg("Configuration loaded")

	log.Info().Msg("Connecting to database...")
	pool, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("Database connection established")

	if cfg.IsDev() {
		log.Info().Msg("Development mode: running migrations automatically")
		if err := db.RunMigrations(ctx, pool); err != nil {
			db.Close(pool)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info().Msg("Production mode: migrations must be run manually")
	}

	app := Build(cfg, pool)

	log.Info().Msg("Application initialized successfully")
	return app, nil
}

// Build wires the stores, gateways and handlers on an open pool.
func Build(cfg *config.Config, pool *pgxpool.Pool) *App {
	m := metrics.New()
	runner := tasks.NewRunner(cfg.TaskTimeout, m)

	plans := billing.NewSQLGateway(db.SQL(pool))
	invites := store.NewInviteStore(pool)
	auditor := audit.NewWriter(pool)

	svc := teams.NewService(teams.Deps{
		Tx:            store.NewTxManager(pool),
		Teams:         store.NewTeamStore(pool),
		Roles:         store.NewRoleStore(pool),
		Members:       store.NewMemberStore(pool),
		Invites:       invites,
		Subscriptions: store.NewSubscriptionStore(pool),
		PlanLookup:    billing.NewCachedGateway(plans, cfg.SubscriptionCacheSize, cfg.SubscriptionCacheTTL),
		Bootstrapper:  categories.NewSeeder(pool),
		Mailer:        notify.NewClient(cfg.MailerURL, cfg.MailerTimeoutMS),
		Tasks:         runner,
		Metrics:       m,
		BaseURL:       cfg.BaseURL,
		InviteTTL:     cfg.InviteTTL(),
	})

	router := NewRouter(RouterDeps{
		Config:      cfg,
		Teams:       svc,
		Auditor:     auditor,
		AuditReader: audit.NewReader(pool),
		Metrics:     m,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, pool)
		},
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Metrics: m,
		Tasks:   runner,
		Purge:   retention.NewJob(invites, m, auditor),
		server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (a *App) Start() error {
	log.Info().Str("addr", a.server.Addr).Msg("Starting HTTP server")

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, waits for background tasks and closes the
// database pool. The pool is closed even if ctx expires first.
func (a *App) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down application")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if a.Tasks != nil {
		log.Info().Msg("Waiting for background tasks")
		if err := a.Tasks.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("background tasks: %w", err))
		}
	}

	if a.DB != nil {
		log.Info().Msg("Closing database connection")
		db.Close(a.DB)
	}
	return errors.Join(errs...)
}

// SetupLogger configures the global logger
func SetupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Debug().Str("level", level).Msg("Logger configured")
}
