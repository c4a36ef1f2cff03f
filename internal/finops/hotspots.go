package finops

import (
	"fmt"
	"sort"
)

const (
	hotspotScanEntries = 8
	hotspotMaxResults  = 4

	hotspotShareFloor    = 0.22
	hotspotShareHigh     = 0.35
	hotspotShareCritical = 0.50

	hotspotSuccessFloor    = 0.93
	hotspotSuccessCritical = 0.86

	hotspotLatencyFloorMs = 1500.0
	hotspotLatencyHighMs  = 2200.0

	hotspotCostRatioFloor = 1.20
	hotspotCostRatioHigh  = 1.45
)

type hotspotCandidate struct {
	Hotspot
	score float64
}

// DetectHotspots evaluates four independent signals over the top cost entries
// and returns a severity-ranked, de-duplicated list capped at four results.
// Ordering is (severity weight desc, score desc); severity dominates, score
// breaks ties.
func DetectHotspots(pareto []ParetoEntry, metrics AggregatedMetrics) []Hotspot {
	limit := hotspotScanEntries
	if limit > len(pareto) {
		limit = len(pareto)
	}

	var candidates []hotspotCandidate
	for _, entry := range pareto[:limit] {
		candidates = append(candidates, scanEntry(entry, metrics)...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		wi, wj := candidates[i].Severity.Weight(), candidates[j].Severity.Weight()
		if wi != wj {
			return wi > wj
		}
		return candidates[i].score > candidates[j].score
	})

	seen := make(map[string]struct{}, len(candidates))
	hotspots := make([]Hotspot, 0, hotspotMaxResults)
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		hotspots = append(hotspots, c.Hotspot)
		if len(hotspots) == hotspotMaxResults {
			break
		}
	}

	return hotspots
}

func scanEntry(entry ParetoEntry, metrics AggregatedMetrics) []hotspotCandidate {
	var out []hotspotCandidate

	if entry.Share >= hotspotShareFloor {
		severity := SeverityMedium
		switch {
		case entry.Share >= hotspotShareCritical:
			severity = SeverityCritical
		case entry.Share >= hotspotShareHigh:
			severity = SeverityHigh
		}
		out = append(out, hotspotCandidate{
			Hotspot: Hotspot{
				ID:             entry.ID + "-cost",
				Kind:           HotspotCost,
				Severity:       severity,
				Title:          fmt.Sprintf("%s dominates spend", entry.Label),
				Summary:        fmt.Sprintf("One route carries %.0f%% of window spend across %d runs.", entry.Share*100, entry.Runs),
				MetricLabel:    "cost share",
				MetricValue:    fmt.Sprintf("%.1f%%", entry.Share*100),
				Recommendation: "Split traffic across additional routes or negotiate committed-use pricing for this provider.",
			},
			score: entry.Share,
		})
	}

	if entry.SuccessRate < hotspotSuccessFloor {
		severity := SeverityHigh
		if entry.SuccessRate < hotspotSuccessCritical {
			severity = SeverityCritical
		}
		out = append(out, hotspotCandidate{
			Hotspot: Hotspot{
				ID:             entry.ID + "-reliability",
				Kind:           HotspotReliability,
				Severity:       severity,
				Title:          fmt.Sprintf("%s failing runs", entry.Label),
				Summary:        fmt.Sprintf("Success rate is %.1f%%; failed runs still bill tokens.", entry.SuccessRate*100),
				MetricLabel:    "success rate",
				MetricValue:    fmt.Sprintf("%.1f%%", entry.SuccessRate*100),
				Recommendation: "Add retry budgets and route failing workloads to a fallback lane.",
			},
			score: 1 - entry.SuccessRate,
		})
	}

	if entry.AvgLatencyMs > hotspotLatencyFloorMs {
		severity := SeverityMedium
		if entry.AvgLatencyMs > hotspotLatencyHighMs {
			severity = SeverityHigh
		}
		out = append(out, hotspotCandidate{
			Hotspot: Hotspot{
				ID:             entry.ID + "-latency",
				Kind:           HotspotLatency,
				Severity:       severity,
				Title:          fmt.Sprintf("%s running slow", entry.Label),
				Summary:        fmt.Sprintf("Average latency is %.0f ms over the window.", entry.AvgLatencyMs),
				MetricLabel:    "avg latency",
				MetricValue:    fmt.Sprintf("%.0f ms", entry.AvgLatencyMs),
				Recommendation: "Move latency-sensitive traffic to a turbo lane or a closer region.",
			},
			score: entry.AvgLatencyMs,
		})
	}

	if ratio, ok := costRatio(entry, metrics); ok && ratio >= hotspotCostRatioFloor {
		severity := SeverityMedium
		if ratio >= hotspotCostRatioHigh {
			severity = SeverityHigh
		}
		out = append(out, hotspotCandidate{
			Hotspot: Hotspot{
				ID:             entry.ID + "-efficiency",
				Kind:           HotspotEfficiency,
				Severity:       severity,
				Title:          fmt.Sprintf("%s cost-inefficient", entry.Label),
				Summary:        fmt.Sprintf("Cost per million tokens is %.2fx the fleet average.", ratio),
				MetricLabel:    "cost per 1M tokens",
				MetricValue:    fmt.Sprintf("%.2fx fleet average", ratio),
				Recommendation: "Evaluate an economy lane or cheaper model for this route's workload.",
			},
			score: ratio,
		})
	}

	return out
}

// costRatio compares an entry's cost-per-million against the global reference.
func costRatio(entry ParetoEntry, metrics AggregatedMetrics) (float64, bool) {
	if entry.TokensMillions <= 0 || metrics.CostPerMillion <= 0 {
		return 0, false
	}
	return (entry.CostUSD / entry.TokensMillions) / metrics.CostPerMillion, true
}
