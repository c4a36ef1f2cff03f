package finops

import "testing"

func TestBuildLaneCosts(t *testing.T) {
	rows := []RouteCostBreakdown{
		{Lane: LaneTurbo, CostUSD: 30, TokensMillions: 3, Runs: 10, AvgLatencyMs: 400},
		{Lane: LaneEconomy, CostUSD: 10, TokensMillions: 5, Runs: 50, AvgLatencyMs: 900},
		{Lane: LaneTurbo, CostUSD: 10, TokensMillions: 1, Runs: 10, AvgLatencyMs: 600},
	}

	lanes := BuildLaneCosts(rows)
	if len(lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(lanes))
	}
	if lanes[0].Lane != LaneEconomy || lanes[1].Lane != LaneTurbo {
		t.Fatalf("lane order wrong: %+v", lanes)
	}
	turbo := lanes[1]
	if turbo.CostUSD != 40 || turbo.TokensMillions != 4 || turbo.Runs != 20 {
		t.Fatalf("turbo totals wrong: %+v", turbo)
	}
	if turbo.AvgLatencyMs != 500 {
		t.Fatalf("turbo latency = %v, want mean 500", turbo.AvgLatencyMs)
	}
}

func TestBuildLaneCostsEmpty(t *testing.T) {
	if got := BuildLaneCosts(nil); len(got) != 0 {
		t.Fatalf("expected no lanes, got %+v", got)
	}
}
