package finops

import "time"

// Lane is a routing cost class used to bucket cost and latency.
type Lane string

const (
	LaneEconomy  Lane = "economy"
	LaneBalanced Lane = "balanced"
	LaneTurbo    Lane = "turbo"
)

// DaySample is one day of raw telemetry as fetched from the remote service,
// before gap filling. Day is expected at midnight resolution.
type DaySample struct {
	Day            time.Time
	CostUSD        float64
	TokensMillions float64
	AvgLatencyMs   float64
}

// TimeSeriesPoint is one day of a dense, gap-filled usage series.
type TimeSeriesPoint struct {
	Date           time.Time
	Label          string
	CostUSD        float64
	TokensMillions float64
	AvgLatencyMs   float64
}

// AggregatedMetrics are the summary KPIs reduced from a series.
type AggregatedMetrics struct {
	TotalCost      float64
	TotalTokens    float64
	AvgLatencyMs   int
	CostPerMillion float64
}

// RouteCostBreakdown is one provider x route x lane cost row for the window.
type RouteCostBreakdown struct {
	ID             string
	ProviderID     string
	ProviderName   string
	Label          string
	Lane           Lane
	Route          string
	CostUSD        float64
	TokensMillions float64
	Runs           int
	SuccessRate    float64
	AvgLatencyMs   float64
}

// ParetoEntry is a breakdown row ranked by cost with its share of total spend.
type ParetoEntry struct {
	RouteCostBreakdown
	Share           float64
	CumulativeShare float64
}

// AlertKind classifies an alert's severity.
type AlertKind string

const (
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
	AlertInfo    AlertKind = "info"
)

// Alert is an ephemeral, rule-derived signal over the current window. Alerts
// are regenerated on every evaluation and never persisted by the engine.
type Alert struct {
	ID          string
	Kind        AlertKind
	Title       string
	Description string
}

// HotspotKind names the signal family behind a hotspot.
type HotspotKind string

const (
	HotspotCost        HotspotKind = "cost"
	HotspotLatency     HotspotKind = "latency"
	HotspotReliability HotspotKind = "reliability"
	HotspotEfficiency  HotspotKind = "efficiency"
)

// Severity ranks hotspots.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Weight returns the ordering weight of a severity. Higher sorts first.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	default:
		return 1
	}
}

// Hotspot is a ranked anomaly derived from the current breakdown.
type Hotspot struct {
	ID             string
	Kind           HotspotKind
	Severity       Severity
	Title          string
	Summary        string
	MetricLabel    string
	MetricValue    string
	Recommendation string
}
