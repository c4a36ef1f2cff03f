// Package watch drives a periodic dashboard refresh and pushes newly raised
// warning and error alerts to the audit sinks.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"finops-console/internal/audit"
	"finops-console/internal/console"
	"finops-console/internal/finops"
)

// DashboardSource produces the current dashboard view on demand.
type DashboardSource interface {
	Dashboard(ctx context.Context, q console.Query) (*console.Dashboard, error)
}

// Options tune watcher behaviour.
type Options struct {
	Interval      time.Duration
	AlignToBucket bool
	StartupDelay  time.Duration
	Range         finops.Range
}

// Watcher refreshes the dashboard on an aligned interval and dispatches
// alerts that were not present on the previous tick.
type Watcher struct {
	opts   Options
	source DashboardSource
	sink   audit.Sink
	logger zerolog.Logger

	active map[string]struct{}
}

// New constructs a Watcher. The sink may be nil, in which case alerts are
// only logged.
func New(opts Options, source DashboardSource, sink audit.Sink, logger zerolog.Logger) *Watcher {
	if opts.Interval <= 0 {
		panic("watch interval must be positive")
	}
	return &Watcher{
		opts:   opts,
		source: source,
		sink:   sink,
		logger: logger.With().Str("component", "watch").Logger(),
		active: make(map[string]struct{}),
	}
}

// Run blocks, refreshing at each aligned interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.StartupDelay > 0 {
		timer := time.NewTimer(w.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	next := w.nextTick(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = w.nextTick(time.Now().UTC())
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		w.logger.Debug().Time("next_tick", next).Msg("waiting for next refresh")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		if err := w.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("refresh failed")
		}

		next = next.Add(w.opts.Interval)
	}
}

// Tick performs one refresh and dispatches newly raised alerts. Exposed so
// the first refresh can run eagerly before the loop starts waiting.
func (w *Watcher) Tick(ctx context.Context) error {
	dashboard, err := w.source.Dashboard(ctx, console.Query{Range: w.opts.Range})
	if err != nil {
		return err
	}

	w.logger.Info().
		Float64("total_cost", dashboard.Metrics.TotalCost).
		Int("alerts", len(dashboard.Alerts)).
		Int("hotspots", len(dashboard.Hotspots)).
		Msg("dashboard refreshed")

	for _, warning := range dashboard.Warnings {
		w.logger.Warn().Msg(warning)
	}

	current := make(map[string]struct{})
	for _, alert := range dashboard.Alerts {
		if alert.Kind == finops.AlertInfo {
			continue
		}
		current[alert.ID] = struct{}{}
		if _, held := w.active[alert.ID]; held {
			continue
		}
		w.dispatch(ctx, alert)
	}
	w.active = current

	return nil
}

// dispatch sends one alert to the audit sinks. Delivery failure is logged
// and does not fail the tick.
func (w *Watcher) dispatch(ctx context.Context, alert finops.Alert) {
	w.logger.Warn().
		Str("alert", alert.ID).
		Str("kind", string(alert.Kind)).
		Msg(alert.Title)

	if w.sink == nil {
		return
	}

	event := audit.NewEvent(audit.KindAlertRaised, fmt.Sprintf("%s: %s", alert.Kind, alert.Title))
	event.Detail = alert.Description
	if err := w.sink.Record(ctx, event); err != nil {
		w.logger.Error().Err(err).Str("alert", alert.ID).Msg("failed to deliver alert")
	}
}

func (w *Watcher) nextTick(now time.Time) time.Time {
	if !w.opts.AlignToBucket {
		return now.Add(w.opts.Interval)
	}
	tick := now.Truncate(w.opts.Interval)
	if !tick.After(now) {
		tick = tick.Add(w.opts.Interval)
	}
	return tick
}
