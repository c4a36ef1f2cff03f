package finops

// LaneCost aggregates a window's breakdown rows into one row per lane.
type LaneCost struct {
	Lane           Lane
	CostUSD        float64
	TokensMillions float64
	Runs           int
	AvgLatencyMs   float64
}

var laneOrder = []Lane{LaneEconomy, LaneBalanced, LaneTurbo}

// BuildLaneCosts groups breakdown rows by lane in fixed economy, balanced,
// turbo order. Latency is the unweighted mean across the lane's rows. Lanes
// with no rows are omitted.
func BuildLaneCosts(rows []RouteCostBreakdown) []LaneCost {
	totals := make(map[Lane]*LaneCost, len(laneOrder))
	counts := make(map[Lane]int, len(laneOrder))

	for _, r := range rows {
		lc, ok := totals[r.Lane]
		if !ok {
			lc = &LaneCost{Lane: r.Lane}
			totals[r.Lane] = lc
		}
		lc.CostUSD += r.CostUSD
		lc.TokensMillions += r.TokensMillions
		lc.Runs += r.Runs
		lc.AvgLatencyMs += r.AvgLatencyMs
		counts[r.Lane]++
	}

	out := make([]LaneCost, 0, len(totals))
	for _, lane := range laneOrder {
		lc, ok := totals[lane]
		if !ok {
			continue
		}
		lc.CostUSD = round2(lc.CostUSD)
		lc.AvgLatencyMs = lc.AvgLatencyMs / float64(counts[lane])
		out = append(out, *lc)
	}
	return out
}
