// Package manifest models the versioned policy manifest owned by the remote
// service: budgets, alert thresholds, cache/rate-limit and degradation policy.
// The console only ever holds a read-only cached snapshot plus locally
// computed candidates; the remote apply call is the single mutation path.
package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one version of the policy manifest.
type Snapshot struct {
	FinOps    Policy    `json:"finops"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Policy holds the governed FinOps settings.
type Policy struct {
	CostCenter          string       `json:"costCenter"`
	Budgets             []Budget     `json:"budgets"`
	Alerts              []AlertRule  `json:"alerts"`
	Cache               *CachePolicy `json:"cache,omitempty"`
	RateLimit           *RateLimit   `json:"rateLimit,omitempty"`
	GracefulDegradation Degradation  `json:"gracefulDegradation"`
}

// Budget caps spend for one routing tier over a period.
type Budget struct {
	Tier     string          `json:"tier"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Period   string          `json:"period"`
}

// AlertRule triggers a notification when a metric crosses a threshold
// percentage of its budget.
type AlertRule struct {
	Metric       string  `json:"metric"`
	ThresholdPct float64 `json:"thresholdPct"`
}

// CachePolicy configures response caching.
type CachePolicy struct {
	TTLSeconds int `json:"ttlSeconds"`
}

// RateLimit caps request throughput.
type RateLimit struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
}

// Degradation selects behaviour when budgets are exhausted.
type Degradation struct {
	Strategy string `json:"strategy"`
	Message  string `json:"message,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.FinOps.Budgets != nil {
		out.FinOps.Budgets = make([]Budget, len(s.FinOps.Budgets))
		copy(out.FinOps.Budgets, s.FinOps.Budgets)
	}
	if s.FinOps.Alerts != nil {
		out.FinOps.Alerts = make([]AlertRule, len(s.FinOps.Alerts))
		copy(out.FinOps.Alerts, s.FinOps.Alerts)
	}
	if s.FinOps.Cache != nil {
		cache := *s.FinOps.Cache
		out.FinOps.Cache = &cache
	}
	if s.FinOps.RateLimit != nil {
		limit := *s.FinOps.RateLimit
		out.FinOps.RateLimit = &limit
	}
	return out
}

// Canonical renders the snapshot in its deterministic textual form, the input
// to patch generation. Equal snapshots always canonicalise identically.
func (s Snapshot) Canonical() (string, error) {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("canonicalise manifest: %w", err)
	}
	return string(body) + "\n", nil
}
