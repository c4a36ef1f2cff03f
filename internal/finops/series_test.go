package finops

import (
	"math"
	"testing"
	"time"
)

func flatSeries(days int, cost, tokens, latency float64) []TimeSeriesPoint {
	series := make([]TimeSeriesPoint, days)
	start := day(2026, time.January, 1)
	for i := range series {
		d := start.AddDate(0, 0, i)
		series[i] = TimeSeriesPoint{
			Date:           d,
			Label:          d.Format("Jan 2"),
			CostUSD:        cost,
			TokensMillions: tokens,
			AvgLatencyMs:   latency,
		}
	}
	return series
}

func TestCombineSumsCostAndAveragesLatency(t *testing.T) {
	a := flatSeries(5, 10, 2, 800)
	b := flatSeries(5, 4, 1, 400)
	c := ZeroSeries(5, day(2026, time.January, 5))

	combined := Combine(a, b, c)
	if len(combined) != 5 {
		t.Fatalf("combined length = %d, want 5", len(combined))
	}
	for i, p := range combined {
		if p.CostUSD != 14 {
			t.Fatalf("day %d cost = %v, want 14", i, p.CostUSD)
		}
		if p.TokensMillions != 3 {
			t.Fatalf("day %d tokens = %v, want 3", i, p.TokensMillions)
		}
		if p.AvgLatencyMs != 400 {
			t.Fatalf("day %d latency = %v, want unweighted mean 400", i, p.AvgLatencyMs)
		}
	}
}

func TestCombineEmpty(t *testing.T) {
	if got := Combine(); got != nil {
		t.Fatalf("combining no series should yield nil, got %v", got)
	}
}

func TestAggregate(t *testing.T) {
	series := []TimeSeriesPoint{
		{CostUSD: 10.125, TokensMillions: 2, AvgLatencyMs: 900},
		{CostUSD: 5.25, TokensMillions: 3, AvgLatencyMs: 1100},
	}

	metrics := Aggregate(series)
	if metrics.TotalCost != 15.38 {
		t.Fatalf("total cost = %v, want 15.38", metrics.TotalCost)
	}
	if metrics.TotalTokens != 5 {
		t.Fatalf("total tokens = %v, want 5", metrics.TotalTokens)
	}
	if metrics.AvgLatencyMs != 1000 {
		t.Fatalf("avg latency = %v, want 1000", metrics.AvgLatencyMs)
	}
	if want := math.Round(15.375/5*100) / 100; metrics.CostPerMillion != want {
		t.Fatalf("cost per million = %v, want %v", metrics.CostPerMillion, want)
	}
}

func TestAggregateZeroTokens(t *testing.T) {
	metrics := Aggregate([]TimeSeriesPoint{{CostUSD: 3}})
	if metrics.CostPerMillion != 0 {
		t.Fatalf("cost per million with zero tokens = %v, want 0", metrics.CostPerMillion)
	}
}

func TestAggregateEmptySeries(t *testing.T) {
	metrics := Aggregate(nil)
	if metrics.TotalCost != 0 || metrics.AvgLatencyMs != 0 || metrics.CostPerMillion != 0 {
		t.Fatalf("empty series should aggregate to zeros, got %+v", metrics)
	}
}
