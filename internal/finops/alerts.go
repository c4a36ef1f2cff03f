package finops

import (
	"fmt"
	"strings"
)

const (
	trendRecentDays    = 7
	trendMinSeriesDays = 3

	surgeThreshold     = 0.25
	costDropThreshold  = -0.25
	tokenDropThreshold = -0.20

	concentrationWarnShare  = 0.45
	concentrationErrorShare = 0.60

	reliabilityAlertFloor = 0.90
	reliabilityAlertNames = 2
)

// DetectAlerts derives the trend and breakdown rule alerts for the current
// window. The result is never empty: a window with no firing rule yields a
// single "steady" informational alert.
func DetectAlerts(series []TimeSeriesPoint, pareto []ParetoEntry) []Alert {
	alerts := trendAlerts(series)
	alerts = append(alerts, concentrationAlerts(pareto)...)
	alerts = append(alerts, reliabilityAlerts(pareto)...)

	if len(alerts) == 0 {
		alerts = append(alerts, Alert{
			ID:          "usage-steady",
			Kind:        AlertInfo,
			Title:       "Usage steady",
			Description: "Cost and token volume are tracking the preceding period with no anomalies.",
		})
	}

	return alerts
}

// trendAlerts compares the recent trailing sub-window against the equally
// sized preceding window. With no sufficient preceding window but positive
// recent spend, a presence-only first-activity alert is emitted instead of a
// percentage-based one.
func trendAlerts(series []TimeSeriesPoint) []Alert {
	if len(series) < trendMinSeriesDays {
		return nil
	}

	recentLen := trendRecentDays
	if recentLen > len(series) {
		recentLen = len(series)
	}
	recent := series[len(series)-recentLen:]

	prevLen := len(series) - recentLen
	if prevLen > recentLen {
		prevLen = recentLen
	}
	previous := series[len(series)-recentLen-prevLen : len(series)-recentLen]

	minPrev := recentLen / 2
	if minPrev < trendMinSeriesDays {
		minPrev = trendMinSeriesDays
	}

	recentCost := meanCost(recent)
	recentTokens := meanTokens(recent)

	if prevLen < minPrev {
		if recentCost > 0 {
			return []Alert{{
				ID:          "first-activity",
				Kind:        AlertInfo,
				Title:       "First activity in window",
				Description: fmt.Sprintf("Recent spend averages $%.2f/day with no preceding period to compare against.", recentCost),
			}}
		}
		return nil
	}

	var alerts []Alert

	if change, ok := relativeChange(recentCost, meanCost(previous)); ok {
		switch {
		case change >= surgeThreshold:
			alerts = append(alerts, Alert{
				ID:          "cost-surge",
				Kind:        AlertWarning,
				Title:       "Cost surge",
				Description: fmt.Sprintf("Daily cost is up %.1f%% versus the preceding period.", change*100),
			})
		case change <= costDropThreshold:
			alerts = append(alerts, Alert{
				ID:          "cost-drop",
				Kind:        AlertInfo,
				Title:       "Cost drop",
				Description: fmt.Sprintf("Daily cost is down %.1f%% versus the preceding period.", -change*100),
			})
		}
	}

	if change, ok := relativeChange(recentTokens, meanTokens(previous)); ok {
		switch {
		case change >= surgeThreshold:
			alerts = append(alerts, Alert{
				ID:          "token-surge",
				Kind:        AlertWarning,
				Title:       "Token volume surge",
				Description: fmt.Sprintf("Daily token volume is up %.1f%% versus the preceding period.", change*100),
			})
		case change <= tokenDropThreshold:
			alerts = append(alerts, Alert{
				ID:          "token-drop",
				Kind:        AlertInfo,
				Title:       "Token volume drop",
				Description: fmt.Sprintf("Daily token volume is down %.1f%% versus the preceding period.", -change*100),
			})
		}
	}

	return alerts
}

func concentrationAlerts(pareto []ParetoEntry) []Alert {
	if len(pareto) == 0 {
		return nil
	}

	top := pareto[0]
	if top.Share < concentrationWarnShare {
		return nil
	}

	kind := AlertWarning
	if top.Share >= concentrationErrorShare {
		kind = AlertError
	}

	return []Alert{{
		ID:          "cost-concentration",
		Kind:        kind,
		Title:       "Spend concentration",
		Description: fmt.Sprintf("%s carries %.0f%% of window spend.", top.Label, top.Share*100),
	}}
}

func reliabilityAlerts(pareto []ParetoEntry) []Alert {
	var offenders []string
	for _, entry := range pareto {
		if entry.SuccessRate >= reliabilityAlertFloor {
			continue
		}
		if len(offenders) < reliabilityAlertNames {
			offenders = append(offenders, fmt.Sprintf("%s (%.1f%%)", entry.Label, entry.SuccessRate*100))
		}
	}
	if len(offenders) == 0 {
		return nil
	}

	return []Alert{{
		ID:          "route-reliability",
		Kind:        AlertError,
		Title:       "Route reliability degraded",
		Description: fmt.Sprintf("Success rate below %.0f%% on %s.", reliabilityAlertFloor*100, strings.Join(offenders, ", ")),
	}}
}

// relativeChange reports (recent/previous - 1); ok is false when previous is
// zero and no ratio exists.
func relativeChange(recent, previous float64) (float64, bool) {
	if previous <= 0 {
		return 0, false
	}
	return recent/previous - 1, true
}

func meanCost(points []TimeSeriesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.CostUSD
	}
	return sum / float64(len(points))
}

func meanTokens(points []TimeSeriesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.TokensMillions
	}
	return sum / float64(len(points))
}
