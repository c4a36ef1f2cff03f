// Package console shapes remote telemetry into the dashboard view: dense
// series, KPIs, Pareto ranking, alerts, and hotspots.
package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"finops-console/internal/finops"
	"finops-console/internal/telemetry"
)

// UsageSource is the telemetry surface the console reads from.
type UsageSource interface {
	FetchSeries(ctx context.Context, q telemetry.SeriesQuery) ([]telemetry.DayUsage, error)
	FetchBreakdown(ctx context.Context, q telemetry.SeriesQuery) ([]telemetry.RouteUsage, error)
}

// Provider names one integration visible in the console.
type Provider struct {
	ID   string
	Name string
}

// Query selects the dashboard window. An empty ProviderID means all
// providers combined.
type Query struct {
	Range      finops.Range
	ProviderID string
}

// Dashboard is one fully derived view over the selected window. Everything
// here is recomputed per refresh; nothing is persisted.
type Dashboard struct {
	Window   finops.Window
	Series   []finops.TimeSeriesPoint
	Metrics  finops.AggregatedMetrics
	Pareto   []finops.ParetoEntry
	Lanes    []finops.LaneCost
	Alerts   []finops.Alert
	Hotspots []finops.Hotspot
	Warnings []string
}

// Service orchestrates dashboard refreshes.
type Service struct {
	source    UsageSource
	providers []Provider
	logger    zerolog.Logger
	now       func() time.Time
}

// New constructs a console service over the given providers.
func New(source UsageSource, providers []Provider, logger zerolog.Logger) *Service {
	return &Service{
		source:    source,
		providers: providers,
		logger:    logger.With().Str("component", "console").Logger(),
		now:       time.Now,
	}
}

// Dashboard fetches and derives the full view for the query. A single failed
// provider degrades to a zero series with one aggregate partial-data warning;
// cancellation aborts the refresh without an error surface of its own.
func (s *Service) Dashboard(ctx context.Context, q Query) (*Dashboard, error) {
	window := finops.WindowFor(q.Range, s.now())
	days := q.Range.Days()
	seriesQuery := telemetry.SeriesQuery{Start: window.Start, End: window.End, ProviderID: q.ProviderID}

	var failed []string

	series, seriesFailed, err := s.buildSeries(ctx, q, window, days)
	if err != nil {
		return nil, err
	}
	failed = append(failed, seriesFailed...)

	pareto, lanes, breakdownFailed, err := s.buildBreakdown(ctx, seriesQuery)
	if err != nil {
		return nil, err
	}
	failed = append(failed, breakdownFailed...)

	metrics := finops.Aggregate(series)
	dashboard := &Dashboard{
		Window:   window,
		Series:   series,
		Metrics:  metrics,
		Pareto:   pareto,
		Lanes:    lanes,
		Alerts:   finops.DetectAlerts(series, pareto),
		Hotspots: finops.DetectHotspots(pareto, metrics),
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		dashboard.Warnings = []string{
			fmt.Sprintf("partial data: no telemetry from %s", strings.Join(dedupe(failed), ", ")),
		}
	}

	return dashboard, nil
}

// Drilldown fetches the series for one Pareto row's provider, independently
// of the dashboard refresh so row selection can be cancelled on its own.
func (s *Service) Drilldown(ctx context.Context, r finops.Range, providerID string) ([]finops.TimeSeriesPoint, error) {
	window := finops.WindowFor(r, s.now())
	raw, err := s.source.FetchSeries(ctx, telemetry.SeriesQuery{
		Start:      window.Start,
		End:        window.End,
		ProviderID: providerID,
	})
	if err != nil {
		return nil, err
	}

	samples, err := toDaySamples(raw)
	if err != nil {
		return nil, err
	}
	return finops.BuildSeries(r.Days(), window.End, samples), nil
}

func (s *Service) buildSeries(ctx context.Context, q Query, window finops.Window, days int) ([]finops.TimeSeriesPoint, []string, error) {
	if q.ProviderID != "" || len(s.providers) == 0 {
		query := telemetry.SeriesQuery{Start: window.Start, End: window.End, ProviderID: q.ProviderID}
		series, ok, err := s.fetchProviderSeries(ctx, query, days, window.End)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return series, []string{providerLabel(s.providers, q.ProviderID)}, nil
		}
		return series, nil, nil
	}

	// All-providers view: fan out one fetch per provider and join. A failure
	// in one provider must not cancel the others.
	type result struct {
		samples []finops.DaySample
		err     error
	}

	results := make([]result, len(s.providers))
	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, providerID string) {
			defer wg.Done()
			raw, err := s.source.FetchSeries(ctx, telemetry.SeriesQuery{
				Start:      window.Start,
				End:        window.End,
				ProviderID: providerID,
			})
			if err != nil {
				results[i] = result{err: err}
				return
			}
			samples, err := toDaySamples(raw)
			results[i] = result{samples: samples, err: err}
		}(i, p.ID)
	}
	wg.Wait()

	var failed []string
	perProvider := make([][]finops.TimeSeriesPoint, 0, len(s.providers))
	for i, r := range results {
		if r.err != nil {
			if isCancelled(r.err) {
				return nil, nil, r.err
			}
			s.logger.Warn().Err(r.err).Str("provider", s.providers[i].ID).Msg("series fetch failed; provider degraded to zero")
			failed = append(failed, providerLabel(s.providers, s.providers[i].ID))
			perProvider = append(perProvider, finops.ZeroSeries(days, window.End))
			continue
		}
		perProvider = append(perProvider, finops.BuildSeries(days, window.End, r.samples))
	}

	return finops.Combine(perProvider...), failed, nil
}

// fetchProviderSeries returns the built series and whether the fetch
// actually succeeded; on a non-cancellation failure the series degrades to
// all zeros.
func (s *Service) fetchProviderSeries(ctx context.Context, q telemetry.SeriesQuery, days int, end time.Time) ([]finops.TimeSeriesPoint, bool, error) {
	raw, err := s.source.FetchSeries(ctx, q)
	if err == nil {
		var samples []finops.DaySample
		if samples, err = toDaySamples(raw); err == nil {
			return finops.BuildSeries(days, end, samples), true, nil
		}
	}
	if isCancelled(err) {
		return nil, false, err
	}
	s.logger.Warn().Err(err).Str("provider", q.ProviderID).Msg("series fetch failed; degraded to zero series")
	return finops.ZeroSeries(days, end), false, nil
}

func (s *Service) buildBreakdown(ctx context.Context, q telemetry.SeriesQuery) ([]finops.ParetoEntry, []finops.LaneCost, []string, error) {
	rows, err := s.source.FetchBreakdown(ctx, q)
	if err != nil {
		if isCancelled(err) {
			return nil, nil, nil, err
		}
		s.logger.Warn().Err(err).Msg("breakdown fetch failed; pareto degraded to empty")
		return nil, nil, []string{"route breakdown"}, nil
	}

	breakdown := make([]finops.RouteCostBreakdown, 0, len(rows))
	for _, r := range rows {
		breakdown = append(breakdown, toBreakdown(r))
	}

	return finops.BuildPareto(breakdown), finops.BuildLaneCosts(breakdown), nil, nil
}

func toBreakdown(r telemetry.RouteUsage) finops.RouteCostBreakdown {
	name := r.ProviderName
	if name == "" {
		name = r.ProviderID
	}
	return finops.RouteCostBreakdown{
		ID:             finops.RouteID(r.ProviderID, r.Route),
		ProviderID:     r.ProviderID,
		ProviderName:   name,
		Label:          name + " " + r.Route,
		Lane:           finops.Lane(r.Lane),
		Route:          r.Route,
		CostUSD:        r.CostUSD,
		TokensMillions: r.TokensMillions(),
		Runs:           r.RunCount,
		SuccessRate:    r.SuccessRate,
		AvgLatencyMs:   r.AvgLatencyMs,
	}
}

func toDaySamples(raw []telemetry.DayUsage) ([]finops.DaySample, error) {
	samples := make([]finops.DaySample, 0, len(raw))
	for _, d := range raw {
		day, err := telemetry.ParseDay(d.Day)
		if err != nil {
			return nil, err
		}
		samples = append(samples, finops.DaySample{
			Day:            day,
			CostUSD:        d.CostUSD,
			TokensMillions: d.TokensMillions(),
			AvgLatencyMs:   d.AvgLatencyMs,
		})
	}
	return samples, nil
}

func providerLabel(providers []Provider, id string) string {
	if id == "" {
		return "all providers"
	}
	for _, p := range providers {
		if p.ID == id && p.Name != "" {
			return p.Name
		}
	}
	return id
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
