package finops

import (
	"sort"
	"strings"
)

// RouteID derives a stable identifier from provider and route so the same
// route maps to the same id across requests.
func RouteID(providerID, route string) string {
	return slug(providerID) + "-" + slug(route)
}

func slug(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	lastDash := true
	for _, r := range strings.ToLower(v) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// BuildPareto ranks breakdown rows by cost descending (stable, so fetch order
// breaks ties) and computes each row's share and running cumulative share of
// total spend. The final cumulative value is clamped to exactly 1 to absorb
// floating-point drift; shares are 0 when total cost is 0.
func BuildPareto(rows []RouteCostBreakdown) []ParetoEntry {
	if len(rows) == 0 {
		return nil
	}

	ranked := make([]RouteCostBreakdown, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CostUSD > ranked[j].CostUSD
	})

	var total float64
	for _, r := range ranked {
		total += r.CostUSD
	}

	entries := make([]ParetoEntry, 0, len(ranked))
	var cumulative float64
	for i, r := range ranked {
		var share float64
		if total > 0 {
			share = r.CostUSD / total
		}
		cumulative += share
		if cumulative > 1 {
			cumulative = 1
		}
		if i == len(ranked)-1 && total > 0 {
			cumulative = 1
		}
		entries = append(entries, ParetoEntry{
			RouteCostBreakdown: r,
			Share:              share,
			CumulativeShare:    cumulative,
		})
	}

	return entries
}
