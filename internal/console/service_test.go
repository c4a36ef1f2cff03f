package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"finops-console/internal/finops"
	"finops-console/internal/telemetry"
)

type fakeSource struct {
	mu sync.Mutex

	seriesByProvider map[string][]telemetry.DayUsage
	seriesErr        map[string]error
	breakdown        []telemetry.RouteUsage
	breakdownErr     error

	seriesCalls []string
}

func (f *fakeSource) FetchSeries(_ context.Context, q telemetry.SeriesQuery) ([]telemetry.DayUsage, error) {
	f.mu.Lock()
	f.seriesCalls = append(f.seriesCalls, q.ProviderID)
	f.mu.Unlock()

	if err := f.seriesErr[q.ProviderID]; err != nil {
		return nil, err
	}
	return f.seriesByProvider[q.ProviderID], nil
}

func (f *fakeSource) FetchBreakdown(context.Context, telemetry.SeriesQuery) ([]telemetry.RouteUsage, error) {
	if f.breakdownErr != nil {
		return nil, f.breakdownErr
	}
	return f.breakdown, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func usageWeek(cost float64) []telemetry.DayUsage {
	var days []telemetry.DayUsage
	for i := 0; i < 7; i++ {
		d := time.Date(2026, time.March, 4+i, 0, 0, 0, 0, time.UTC)
		days = append(days, telemetry.DayUsage{
			Day:          d.Format("2006-01-02"),
			CostUSD:      cost,
			TokensIn:     1_000_000,
			TokensOut:    500_000,
			AvgLatencyMs: 600,
		})
	}
	return days
}

func newTestService(source *fakeSource, providers ...Provider) *Service {
	s := New(source, providers, zerolog.Nop())
	s.now = fixedNow
	return s
}

func TestDashboardAllProvidersFanOut(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{
			"openai":    usageWeek(10),
			"anthropic": usageWeek(4),
		},
		breakdown: []telemetry.RouteUsage{
			{ProviderID: "openai", ProviderName: "OpenAI", Route: "/v1/chat", Lane: "balanced", CostUSD: 70, TokensIn: 7_000_000, RunCount: 100, SuccessRate: 0.99, AvgLatencyMs: 650},
			{ProviderID: "anthropic", ProviderName: "Anthropic", Route: "/v1/messages", Lane: "turbo", CostUSD: 28, TokensIn: 2_000_000, RunCount: 40, SuccessRate: 0.98, AvgLatencyMs: 700},
		},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"}, Provider{ID: "anthropic", Name: "Anthropic"})

	dashboard, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if len(source.seriesCalls) != 2 {
		t.Fatalf("series calls = %v, want one per provider", source.seriesCalls)
	}
	if len(dashboard.Series) != 7 {
		t.Fatalf("series length = %d, want 7", len(dashboard.Series))
	}
	if dashboard.Series[0].CostUSD != 14 {
		t.Fatalf("combined cost = %v, want summed 14", dashboard.Series[0].CostUSD)
	}
	if dashboard.Metrics.TotalCost != 98 {
		t.Fatalf("total cost = %v, want 98", dashboard.Metrics.TotalCost)
	}
	if len(dashboard.Pareto) != 2 || dashboard.Pareto[0].ProviderID != "openai" {
		t.Fatalf("pareto wrong: %+v", dashboard.Pareto)
	}
	if len(dashboard.Alerts) == 0 {
		t.Fatal("alert list must never be empty")
	}
	if len(dashboard.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", dashboard.Warnings)
	}
	if len(dashboard.Lanes) != 2 {
		t.Fatalf("lanes = %+v", dashboard.Lanes)
	}
}

func TestDashboardPartialDataDegradesOneProvider(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{
			"openai": usageWeek(10),
		},
		seriesErr: map[string]error{"anthropic": errors.New("upstream 500")},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"}, Provider{ID: "anthropic", Name: "Anthropic"})

	dashboard, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7})
	if err != nil {
		t.Fatalf("a single provider failure must not abort the view: %v", err)
	}

	// The healthy provider's numbers survive; the failed one contributes zero.
	if dashboard.Series[0].CostUSD != 10 {
		t.Fatalf("combined cost = %v, want 10 from the healthy provider", dashboard.Series[0].CostUSD)
	}
	if len(dashboard.Warnings) != 1 {
		t.Fatalf("want exactly one aggregate warning, got %v", dashboard.Warnings)
	}
	if !strings.Contains(dashboard.Warnings[0], "partial data") || !strings.Contains(dashboard.Warnings[0], "Anthropic") {
		t.Fatalf("warning should name the failed provider: %q", dashboard.Warnings[0])
	}
}

func TestDashboardCancellationIsNotDegraded(t *testing.T) {
	source := &fakeSource{
		seriesErr: map[string]error{"openai": context.Canceled},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"})

	_, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation must propagate, not degrade: %v", err)
	}
}

func TestDashboardSingleProvider(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{
			"openai": usageWeek(10),
		},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"}, Provider{ID: "anthropic", Name: "Anthropic"})

	dashboard, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7, ProviderID: "openai"})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(source.seriesCalls) != 1 || source.seriesCalls[0] != "openai" {
		t.Fatalf("single-provider view should issue one filtered fetch, got %v", source.seriesCalls)
	}
	if dashboard.Series[0].CostUSD != 10 {
		t.Fatalf("cost = %v, want 10", dashboard.Series[0].CostUSD)
	}
}

func TestDashboardBreakdownFailureDegrades(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{"openai": usageWeek(10)},
		breakdownErr:     errors.New("upstream 500"),
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"})

	dashboard, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7})
	if err != nil {
		t.Fatalf("breakdown failure must not abort the view: %v", err)
	}
	if len(dashboard.Pareto) != 0 {
		t.Fatalf("pareto should be empty on breakdown failure, got %+v", dashboard.Pareto)
	}
	if len(dashboard.Warnings) != 1 {
		t.Fatalf("want one aggregate warning, got %v", dashboard.Warnings)
	}
}

func TestDashboardMalformedDayDegrades(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{
			"openai": {{Day: "not-a-day", CostUSD: 1}},
		},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"})

	dashboard, err := svc.Dashboard(context.Background(), Query{Range: finops.Range7})
	if err != nil {
		t.Fatalf("malformed payload must degrade, not abort: %v", err)
	}
	if len(dashboard.Warnings) != 1 {
		t.Fatalf("want one warning, got %v", dashboard.Warnings)
	}
	for _, p := range dashboard.Series {
		if p.CostUSD != 0 {
			t.Fatalf("degraded provider must contribute zero, got %+v", p)
		}
	}
}

func TestDrilldown(t *testing.T) {
	source := &fakeSource{
		seriesByProvider: map[string][]telemetry.DayUsage{"openai": usageWeek(5)},
	}
	svc := newTestService(source, Provider{ID: "openai", Name: "OpenAI"})

	series, err := svc.Drilldown(context.Background(), finops.Range7, "openai")
	if err != nil {
		t.Fatalf("Drilldown: %v", err)
	}
	if len(series) != 7 {
		t.Fatalf("series length = %d, want 7", len(series))
	}
}
