package finops

import (
	"strings"
	"testing"
)

func seriesWithRecentCost(days int, baseCost, recentCost float64) []TimeSeriesPoint {
	series := flatSeries(days, baseCost, 1, 500)
	for i := len(series) - trendRecentDays; i < len(series); i++ {
		series[i].CostUSD = recentCost
	}
	return series
}

func TestDetectAlertsSteadyOnFlatSeries(t *testing.T) {
	alerts := DetectAlerts(flatSeries(30, 10, 2, 500), nil)
	if len(alerts) != 1 {
		t.Fatalf("flat series should yield exactly one alert, got %d", len(alerts))
	}
	if alerts[0].ID != "usage-steady" || alerts[0].Kind != AlertInfo {
		t.Fatalf("expected steady info alert, got %+v", alerts[0])
	}
}

func TestDetectAlertsCostSurge(t *testing.T) {
	// Last 7 days average 130% of the preceding 7-day average.
	alerts := DetectAlerts(seriesWithRecentCost(90, 10, 13), nil)

	var surges []Alert
	for _, a := range alerts {
		if a.ID == "cost-surge" {
			surges = append(surges, a)
		}
	}
	if len(surges) != 1 {
		t.Fatalf("expected exactly one cost-surge alert, got %d (%+v)", len(surges), alerts)
	}
	if surges[0].Kind != AlertWarning {
		t.Fatalf("surge kind = %v, want warning", surges[0].Kind)
	}
	if !strings.Contains(surges[0].Description, "30.0%") {
		t.Fatalf("surge percentage should match recent/previous-1, got %q", surges[0].Description)
	}
}

func TestDetectAlertsCostDrop(t *testing.T) {
	alerts := DetectAlerts(seriesWithRecentCost(30, 10, 7), nil)
	if len(alerts) != 1 || alerts[0].ID != "cost-drop" || alerts[0].Kind != AlertInfo {
		t.Fatalf("expected one cost-drop info alert, got %+v", alerts)
	}
}

func TestDetectAlertsTokenDropThresholdLowerThanCost(t *testing.T) {
	// A 22% drop is below the cost threshold but above the token threshold.
	series := flatSeries(30, 10, 10, 500)
	for i := len(series) - trendRecentDays; i < len(series); i++ {
		series[i].TokensMillions = 7.8
	}

	alerts := DetectAlerts(series, nil)
	if len(alerts) != 1 || alerts[0].ID != "token-drop" {
		t.Fatalf("expected only token-drop, got %+v", alerts)
	}
}

func TestDetectAlertsFirstActivity(t *testing.T) {
	// Seven days of data leaves no preceding window at all.
	alerts := DetectAlerts(flatSeries(7, 5, 1, 500), nil)
	if len(alerts) != 1 || alerts[0].ID != "first-activity" || alerts[0].Kind != AlertInfo {
		t.Fatalf("expected presence-only first-activity alert, got %+v", alerts)
	}
}

func TestDetectAlertsShortSeriesNoTrend(t *testing.T) {
	alerts := DetectAlerts(flatSeries(2, 5, 1, 500), nil)
	if len(alerts) != 1 || alerts[0].ID != "usage-steady" {
		t.Fatalf("sub-minimum series should only produce the steady alert, got %+v", alerts)
	}
}

func TestDetectAlertsConcentration(t *testing.T) {
	pareto := BuildPareto([]RouteCostBreakdown{
		{ID: "a", Label: "openai /chat", CostUSD: 70, SuccessRate: 0.99},
		{ID: "b", Label: "anthropic /messages", CostUSD: 30, SuccessRate: 0.99},
	})

	alerts := DetectAlerts(flatSeries(30, 10, 2, 500), pareto)
	var found *Alert
	for i := range alerts {
		if alerts[i].ID == "cost-concentration" {
			found = &alerts[i]
		}
	}
	if found == nil {
		t.Fatalf("expected concentration alert, got %+v", alerts)
	}
	if found.Kind != AlertError {
		t.Fatalf("70%% share should be error severity, got %v", found.Kind)
	}
}

func TestDetectAlertsReliabilityNamesAtMostTwoRoutes(t *testing.T) {
	pareto := BuildPareto([]RouteCostBreakdown{
		{ID: "a", Label: "route-a", CostUSD: 30, SuccessRate: 0.80},
		{ID: "b", Label: "route-b", CostUSD: 30, SuccessRate: 0.85},
		{ID: "c", Label: "route-c", CostUSD: 30, SuccessRate: 0.70},
	})

	alerts := DetectAlerts(flatSeries(30, 10, 2, 500), pareto)
	var found *Alert
	for i := range alerts {
		if alerts[i].ID == "route-reliability" {
			found = &alerts[i]
		}
	}
	if found == nil {
		t.Fatalf("expected reliability alert, got %+v", alerts)
	}
	if found.Kind != AlertError {
		t.Fatalf("reliability alert kind = %v, want error", found.Kind)
	}
	if strings.Count(found.Description, "route-") != 2 {
		t.Fatalf("should name at most two offending routes, got %q", found.Description)
	}
}

func TestDetectAlertsNeverEmpty(t *testing.T) {
	if alerts := DetectAlerts(nil, nil); len(alerts) != 1 {
		t.Fatalf("alert list must never be empty, got %+v", alerts)
	}
}
