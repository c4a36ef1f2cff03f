package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"finops-console/internal/audit"
	"finops-console/internal/config"
	"finops-console/internal/console"
	"finops-console/internal/finops"
	"finops-console/internal/storage"
	"finops-console/internal/telemetry"
	"finops-console/internal/watch"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newTelemetryClient() *telemetry.Client {
	return telemetry.NewClient(telemetry.Options{
		BaseURL:   a.Config.Service.BaseURL,
		Timeout:   a.Config.Service.RequestTimeout,
		UserAgent: a.Config.Service.UserAgent,
		APIToken:  a.Config.Service.APIToken,
	}, a.Logger)
}

func (a *App) newConsole(source console.UsageSource) *console.Service {
	providers := make([]console.Provider, 0, len(a.Config.Providers))
	for _, p := range a.Config.Providers {
		providers = append(providers, console.Provider{ID: p.ID, Name: p.Name})
	}
	return console.New(source, providers, a.Logger)
}

// newAuditSink fans events out to the log, the webhook when enabled, and the
// store when one is open. The store may be nil.
func (a *App) newAuditSink(store *storage.Store) audit.Sink {
	sinks := []audit.Sink{audit.NewLogSink(a.Logger)}

	if a.Config.Audit.Webhook.Enabled {
		webhook := a.Config.Audit.Webhook
		timeout := webhook.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sinks = append(sinks, audit.NewWebhookSink(webhook.URL, timeout, a.Logger))
	}

	if store != nil {
		sinks = append(sinks, store)
	}

	if len(sinks) == 1 {
		return sinks[0]
	}
	return audit.MultiSink(sinks)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Watch executes the long-running alert watcher.
func (a *App) Watch(ctx context.Context, rangeArg string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r, err := finops.ParseRange(rangeArg)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newConsole(a.newTelemetryClient())
	sink := a.newAuditSink(store)

	watcher := watch.New(watch.Options{
		Interval:      a.Config.Watch.Interval,
		AlignToBucket: a.Config.Watch.AlignToBucket,
		StartupDelay:  a.Config.Watch.StartupDelay,
		Range:         r,
	}, svc, sink, a.Logger)

	a.Logger.Info().Msg("starting alert watcher")
	if err := watcher.Tick(ctx); err != nil && ctx.Err() == nil {
		a.Logger.Error().Err(err).Msg("initial refresh failed")
	}

	err = watcher.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watcher terminated with error")
		return err
	}

	a.Logger.Info().Msg("alert watcher stopped")
	return nil
}

// DashboardOptions select the window for the dashboard command.
type DashboardOptions struct {
	Range    string
	Provider string
}

// ExportOptions select the dataset and output targets for the export command.
type ExportOptions struct {
	Range    string
	Provider string
	Dataset  string
	CSVPath  string
	JSONPath string
	PNGPath  string
	MaxRows  int
}

// PlanOptions drive the plan command through its lifecycle.
type PlanOptions struct {
	UpdatePath    string
	Apply         bool
	Yes           bool
	Discard       bool
	CommitMessage string
}

// AuditOptions select what the audit command lists.
type AuditOptions struct {
	Limit int
	Plans bool
}
