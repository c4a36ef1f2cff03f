package telemetry

import (
	"encoding/json"
	"time"

	"finops-console/internal/manifest"
)

// SeriesQuery bounds a telemetry request. ProviderID empty means all
// providers.
type SeriesQuery struct {
	Start      time.Time
	End        time.Time
	ProviderID string
}

// DayUsage is one day of usage telemetry as returned by the remote service.
// Ordering in the response is not trusted; callers re-index by Day.
type DayUsage struct {
	Day          string  `json:"day"`
	CostUSD      float64 `json:"cost_usd"`
	TokensIn     int64   `json:"tokens_in"`
	TokensOut    int64   `json:"tokens_out"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// TokensMillions is the combined in+out token count in millions.
func (d DayUsage) TokensMillions() float64 {
	return float64(d.TokensIn+d.TokensOut) / 1e6
}

// RouteUsage is one provider x route x lane cost row for a window.
type RouteUsage struct {
	ProviderID   string  `json:"provider_id"`
	ProviderName string  `json:"provider_name"`
	Route        string  `json:"route"`
	Lane         string  `json:"lane"`
	CostUSD      float64 `json:"cost_usd"`
	TokensIn     int64   `json:"tokens_in"`
	TokensOut    int64   `json:"tokens_out"`
	RunCount     int     `json:"run_count"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// TokensMillions is the combined in+out token count in millions.
func (r RouteUsage) TokensMillions() float64 {
	return float64(r.TokensIn+r.TokensOut) / 1e6
}

// PlanRequest asks the remote service to describe a manifest change as a
// structured plan.
type PlanRequest struct {
	PolicyID string          `json:"policyId"`
	Changes  manifest.Policy `json:"changes"`
}

// PlanResponse echoes the structured plan plus its wire payload.
type PlanResponse struct {
	Plan        Plan            `json:"plan"`
	PlanPayload json.RawMessage `json:"planPayload"`
	Preview     string          `json:"preview,omitempty"`
}

// Plan describes a change as discrete diff segments.
type Plan struct {
	Summary string     `json:"summary"`
	Diffs   []PlanDiff `json:"diffs"`
}

// PlanDiff is one diff segment of a plan. Diff may be empty for paths the
// remote service cannot render.
type PlanDiff struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
	Diff    string `json:"diff,omitempty"`
}

// ApplyRequest submits a reviewed plan for application.
type ApplyRequest struct {
	PlanID        string          `json:"planId"`
	Plan          Plan            `json:"plan"`
	Patch         string          `json:"patch"`
	Actor         string          `json:"actor"`
	ActorEmail    string          `json:"actorEmail"`
	CommitMessage string          `json:"commitMessage"`
	PlanPayload   json.RawMessage `json:"planPayload,omitempty"`
}

// ApplyResponse reports the outcome of an apply call.
type ApplyResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Branch      string `json:"branch,omitempty"`
	BaseBranch  string `json:"baseBranch,omitempty"`
	PullRequest string `json:"pullRequest,omitempty"`
}

// Applied reports whether the apply call succeeded server-side.
func (r ApplyResponse) Applied() bool {
	switch r.Status {
	case "applied", "ok", "success":
		return true
	default:
		return false
	}
}
