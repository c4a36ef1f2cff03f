package finops

import "math"

// Combine merges per-provider series for the same window into one series:
// cost and tokens are summed per day, latency is the unweighted per-day mean
// across providers. All inputs must be pre-sliced to the same window length;
// a provider without data contributes its zero-filled series.
func Combine(series ...[]TimeSeriesPoint) []TimeSeriesPoint {
	if len(series) == 0 {
		return nil
	}

	base := series[0]
	combined := make([]TimeSeriesPoint, len(base))
	for i, p := range base {
		combined[i] = TimeSeriesPoint{Date: p.Date, Label: p.Label}
	}

	for day := range combined {
		var latencySum float64
		for _, s := range series {
			if day >= len(s) {
				continue
			}
			combined[day].CostUSD += s[day].CostUSD
			combined[day].TokensMillions += s[day].TokensMillions
			latencySum += s[day].AvgLatencyMs
		}
		combined[day].AvgLatencyMs = latencySum / float64(len(series))
	}

	return combined
}

// Aggregate reduces a series into summary KPIs. Latency is the unweighted
// arithmetic mean across the series' days, not per run. Currency values are
// rounded to cents, latency to whole milliseconds.
func Aggregate(series []TimeSeriesPoint) AggregatedMetrics {
	var cost, tokens, latency float64
	for _, p := range series {
		cost += p.CostUSD
		tokens += p.TokensMillions
		latency += p.AvgLatencyMs
	}

	metrics := AggregatedMetrics{
		TotalCost:   round2(cost),
		TotalTokens: round2(tokens),
	}
	if len(series) > 0 {
		metrics.AvgLatencyMs = int(math.Round(latency / float64(len(series))))
	}
	if tokens > 0 {
		metrics.CostPerMillion = round2(cost / tokens)
	}

	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
