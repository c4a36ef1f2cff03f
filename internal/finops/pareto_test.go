package finops

import (
	"math"
	"testing"
)

func breakdown(id string, cost float64) RouteCostBreakdown {
	return RouteCostBreakdown{
		ID:      id,
		Label:   id,
		CostUSD: cost,
	}
}

func TestRouteIDDeterministic(t *testing.T) {
	a := RouteID("openai", "/v1/chat/completions")
	b := RouteID("openai", "/v1/chat/completions")
	if a != b {
		t.Fatalf("route id not stable: %q vs %q", a, b)
	}
	if a != "openai-v1-chat-completions" {
		t.Fatalf("unexpected route id %q", a)
	}
	if RouteID("openai", "/v1/embeddings") == a {
		t.Fatal("distinct routes must not collide")
	}
}

func TestBuildParetoOrderingAndShares(t *testing.T) {
	rows := []RouteCostBreakdown{
		breakdown("small", 10),
		breakdown("big", 60),
		breakdown("mid", 30),
	}

	entries := BuildPareto(rows)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].ID != "big" || entries[1].ID != "mid" || entries[2].ID != "small" {
		t.Fatalf("wrong ordering: %v %v %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	var shareSum float64
	prev := 0.0
	for _, e := range entries {
		shareSum += e.Share
		if e.CumulativeShare < prev {
			t.Fatalf("cumulative share decreased at %s", e.ID)
		}
		prev = e.CumulativeShare
	}
	if math.Abs(shareSum-1) > 1e-9 {
		t.Fatalf("share sum = %v, want 1", shareSum)
	}
	if entries[2].CumulativeShare != 1 {
		t.Fatalf("final cumulative share = %v, want exactly 1", entries[2].CumulativeShare)
	}
}

func TestBuildParetoStableTies(t *testing.T) {
	rows := []RouteCostBreakdown{
		breakdown("first", 20),
		breakdown("second", 20),
	}
	entries := BuildPareto(rows)
	if entries[0].ID != "first" || entries[1].ID != "second" {
		t.Fatal("ties must preserve fetch order")
	}
}

func TestBuildParetoZeroTotal(t *testing.T) {
	entries := BuildPareto([]RouteCostBreakdown{breakdown("a", 0), breakdown("b", 0)})
	for _, e := range entries {
		if e.Share != 0 {
			t.Fatalf("share with zero total = %v, want 0", e.Share)
		}
	}
}

func TestBuildParetoEmpty(t *testing.T) {
	if got := BuildPareto(nil); got != nil {
		t.Fatalf("empty input should yield nil, got %v", got)
	}
}
