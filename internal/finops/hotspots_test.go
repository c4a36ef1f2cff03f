package finops

import "testing"

func healthy(id string, cost float64) RouteCostBreakdown {
	return RouteCostBreakdown{
		ID:             id,
		Label:          id,
		CostUSD:        cost,
		TokensMillions: cost, // 1 USD per million keeps the ratio at the fleet average
		Runs:           100,
		SuccessRate:    0.99,
		AvgLatencyMs:   600,
	}
}

func TestDetectHotspotsEmpty(t *testing.T) {
	if got := DetectHotspots(nil, AggregatedMetrics{}); len(got) != 0 {
		t.Fatalf("no entries should produce no hotspots, got %+v", got)
	}

	// Five even routes keep every share below the cost-concentration floor.
	pareto := BuildPareto([]RouteCostBreakdown{
		healthy("a", 20), healthy("b", 20), healthy("c", 20), healthy("d", 20), healthy("e", 20),
	})
	metrics := AggregatedMetrics{CostPerMillion: 1}
	if got := DetectHotspots(pareto, metrics); len(got) != 0 {
		t.Fatalf("healthy fleet should produce no hotspots, got %+v", got)
	}
}

func TestDetectHotspotsCostShareSeverity(t *testing.T) {
	pareto := BuildPareto([]RouteCostBreakdown{healthy("big", 60), healthy("small", 40)})
	hotspots := DetectHotspots(pareto, AggregatedMetrics{CostPerMillion: 1})

	var cost *Hotspot
	for i := range hotspots {
		if hotspots[i].Kind == HotspotCost && hotspots[i].ID == "big-cost" {
			cost = &hotspots[i]
		}
	}
	if cost == nil {
		t.Fatalf("expected cost hotspot for dominant route, got %+v", hotspots)
	}
	if cost.Severity != SeverityCritical {
		t.Fatalf("60%% share should be critical, got %v", cost.Severity)
	}
}

func TestDetectHotspotsOrderingSeverityThenScore(t *testing.T) {
	rows := []RouteCostBreakdown{
		// reliability critical (weight 3)
		{ID: "broken", Label: "broken", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.80, AvgLatencyMs: 600},
		// latency high, 2400ms (weight 2, score 2400)
		{ID: "slow", Label: "slow", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 2400},
		// latency medium, 1600ms (weight 1)
		{ID: "warm", Label: "warm", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 1600},
		{ID: "pad1", Label: "pad1", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 600},
		{ID: "pad2", Label: "pad2", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 600},
	}

	hotspots := DetectHotspots(BuildPareto(rows), AggregatedMetrics{CostPerMillion: 1})
	if len(hotspots) == 0 {
		t.Fatal("expected hotspots")
	}
	if hotspots[0].ID != "broken-reliability" {
		t.Fatalf("critical severity must rank first, got %v", hotspots[0].ID)
	}

	prevWeight := hotspots[0].Severity.Weight()
	for _, h := range hotspots[1:] {
		if h.Severity.Weight() > prevWeight {
			t.Fatalf("hotspots not sorted by severity: %+v", hotspots)
		}
		prevWeight = h.Severity.Weight()
	}

	// Both latency hotspots fire; the higher-severity one sorts ahead.
	idx := map[string]int{}
	for i, h := range hotspots {
		idx[h.ID] = i
	}
	slowIdx, slowOK := idx["slow-latency"]
	warmIdx, warmOK := idx["warm-latency"]
	if slowOK && warmOK && slowIdx > warmIdx {
		t.Fatalf("high severity latency hotspot should outrank medium: %+v", hotspots)
	}
}

func TestDetectHotspotsCapAndUniqueIDs(t *testing.T) {
	var rows []RouteCostBreakdown
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		rows = append(rows, RouteCostBreakdown{
			ID: id, Label: id, CostUSD: 10, TokensMillions: 10,
			Runs: 10, SuccessRate: 0.70, AvgLatencyMs: 2500,
		})
	}

	hotspots := DetectHotspots(BuildPareto(rows), AggregatedMetrics{CostPerMillion: 1})
	if len(hotspots) > 4 {
		t.Fatalf("hotspot list must be capped at 4, got %d", len(hotspots))
	}
	seen := map[string]struct{}{}
	for _, h := range hotspots {
		if _, dup := seen[h.ID]; dup {
			t.Fatalf("duplicate hotspot id %q", h.ID)
		}
		seen[h.ID] = struct{}{}
	}
}

func TestDetectHotspotsEfficiencyRatio(t *testing.T) {
	rows := []RouteCostBreakdown{
		{ID: "pricey", Label: "pricey", CostUSD: 30, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 600},
		{ID: "cheap", Label: "cheap", CostUSD: 10, TokensMillions: 10, Runs: 10, SuccessRate: 0.99, AvgLatencyMs: 600},
	}
	// Fleet average: 40 USD over 20M tokens = 2 per million. Pricey runs at 3.
	metrics := Aggregate([]TimeSeriesPoint{{CostUSD: 40, TokensMillions: 20}})

	hotspots := DetectHotspots(BuildPareto(rows), metrics)
	var eff *Hotspot
	for i := range hotspots {
		if hotspots[i].Kind == HotspotEfficiency {
			eff = &hotspots[i]
		}
	}
	if eff == nil {
		t.Fatalf("expected efficiency hotspot, got %+v", hotspots)
	}
	if eff.ID != "pricey-efficiency" {
		t.Fatalf("efficiency hotspot id = %v", eff.ID)
	}
	if eff.Severity != SeverityHigh {
		t.Fatalf("1.5x ratio should be high severity, got %v", eff.Severity)
	}
}

func TestDetectHotspotsScansTopEightOnly(t *testing.T) {
	var rows []RouteCostBreakdown
	for i := 0; i < 9; i++ {
		rows = append(rows, healthy(string(rune('a'+i)), float64(100-i)))
	}
	// The cheapest row is badly broken but outside the top-8 scan window.
	rows = append(rows, RouteCostBreakdown{
		ID: "tail", Label: "tail", CostUSD: 1, TokensMillions: 1,
		Runs: 10, SuccessRate: 0.50, AvgLatencyMs: 3000,
	})

	hotspots := DetectHotspots(BuildPareto(rows), AggregatedMetrics{CostPerMillion: 1})
	for _, h := range hotspots {
		if h.ID == "tail-reliability" || h.ID == "tail-latency" {
			t.Fatalf("entries beyond the top 8 must not be scanned: %+v", h)
		}
	}
}
