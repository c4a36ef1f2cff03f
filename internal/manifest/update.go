package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Update carries raw form input for a manifest change. Optional fields are
// pointers so an omitted field is distinguishable from an explicit zero.
type Update struct {
	CostCenter          string        `json:"costCenter"`
	Budgets             []BudgetInput `json:"budgets"`
	Alerts              []AlertInput  `json:"alerts"`
	CacheTTLSeconds     *string       `json:"cacheTtlSeconds,omitempty"`
	RateLimitPerMinute  *string       `json:"rateLimitPerMinute,omitempty"`
	DegradationStrategy string        `json:"degradationStrategy,omitempty"`
	DegradationMessage  string        `json:"degradationMessage,omitempty"`
}

// BudgetInput is one unvalidated budget row.
type BudgetInput struct {
	Tier     string `json:"tier"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
}

// AlertInput is one unvalidated alert threshold row.
type AlertInput struct {
	Metric       string `json:"metric"`
	ThresholdPct string `json:"thresholdPct"`
}

// NormalizedUpdate is a fully validated update ready to apply to a snapshot.
type NormalizedUpdate struct {
	CostCenter          string
	Budgets             []Budget
	Alerts              []AlertRule
	CacheTTLSeconds     *int
	RateLimitPerMinute  *int
	DegradationStrategy string
	DegradationMessage  string
}

// FieldError scopes a validation failure to one form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates every field failure found in one pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid manifest update: " + strings.Join(msgs, "; ")
}

// Normalize validates the update all-or-nothing, collecting every field error
// before returning. Amounts become decimals, currencies are upper-cased, and
// numeric strings become their typed values.
func (u Update) Normalize() (NormalizedUpdate, error) {
	var errs ValidationErrors
	out := NormalizedUpdate{
		DegradationStrategy: strings.TrimSpace(u.DegradationStrategy),
		DegradationMessage:  strings.TrimSpace(u.DegradationMessage),
	}

	out.CostCenter = strings.TrimSpace(u.CostCenter)
	if out.CostCenter == "" {
		errs = append(errs, FieldError{Field: "costCenter", Message: "must not be empty"})
	}

	for i, b := range u.Budgets {
		field := fmt.Sprintf("budgets[%d]", i)
		budget := Budget{
			Tier:   strings.TrimSpace(b.Tier),
			Period: strings.TrimSpace(b.Period),
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(b.Amount))
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: field + ".amount", Message: "must be a number"})
		case !amount.IsPositive():
			errs = append(errs, FieldError{Field: field + ".amount", Message: "must be greater than zero"})
		default:
			budget.Amount = amount
		}

		budget.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
		if budget.Currency == "" {
			errs = append(errs, FieldError{Field: field + ".currency", Message: "must not be empty"})
		}

		out.Budgets = append(out.Budgets, budget)
	}

	for i, a := range u.Alerts {
		field := fmt.Sprintf("alerts[%d]", i)
		rule := AlertRule{Metric: strings.TrimSpace(a.Metric)}

		threshold, err := strconv.ParseFloat(strings.TrimSpace(a.ThresholdPct), 64)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: field + ".thresholdPct", Message: "must be a number"})
		case threshold < 0 || threshold > 100:
			errs = append(errs, FieldError{Field: field + ".thresholdPct", Message: "must be between 0 and 100"})
		default:
			rule.ThresholdPct = threshold
		}

		out.Alerts = append(out.Alerts, rule)
	}

	if u.CacheTTLSeconds != nil {
		ttl, err := strconv.Atoi(strings.TrimSpace(*u.CacheTTLSeconds))
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "cacheTtlSeconds", Message: "must be an integer"})
		case ttl < 0:
			errs = append(errs, FieldError{Field: "cacheTtlSeconds", Message: "must not be negative"})
		default:
			out.CacheTTLSeconds = &ttl
		}
	}

	if u.RateLimitPerMinute != nil {
		limit, err := strconv.Atoi(strings.TrimSpace(*u.RateLimitPerMinute))
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "rateLimitPerMinute", Message: "must be an integer"})
		case limit <= 0:
			errs = append(errs, FieldError{Field: "rateLimitPerMinute", Message: "must be greater than zero"})
		default:
			out.RateLimitPerMinute = &limit
		}
	}

	if len(errs) > 0 {
		return NormalizedUpdate{}, errs
	}
	return out, nil
}

// Apply produces the candidate snapshot: the update laid over a deep copy of
// the current one. The caller's snapshot is never mutated.
func Apply(current Snapshot, update NormalizedUpdate) Snapshot {
	next := current.Clone()

	next.FinOps.CostCenter = update.CostCenter
	next.FinOps.Budgets = update.Budgets
	next.FinOps.Alerts = update.Alerts

	if update.CacheTTLSeconds != nil {
		next.FinOps.Cache = &CachePolicy{TTLSeconds: *update.CacheTTLSeconds}
	}
	if update.RateLimitPerMinute != nil {
		next.FinOps.RateLimit = &RateLimit{RequestsPerMinute: *update.RateLimitPerMinute}
	}
	if update.DegradationStrategy != "" {
		next.FinOps.GracefulDegradation.Strategy = update.DegradationStrategy
	}
	if update.DegradationMessage != "" {
		next.FinOps.GracefulDegradation.Message = update.DegradationMessage
	}

	return next
}
