package finops

import (
	"fmt"
	"strings"
	"time"
)

// Range selects a trailing window length for the dashboard.
type Range int

const (
	Range7  Range = 7
	Range30 Range = 30
	Range90 Range = 90
)

// Days returns the window length in calendar days.
func (r Range) Days() int {
	return int(r)
}

func (r Range) String() string {
	return fmt.Sprintf("%dd", int(r))
}

// ParseRange accepts "7", "30", "90" with or without a trailing "d".
func ParseRange(v string) (Range, error) {
	switch strings.TrimSuffix(strings.TrimSpace(v), "d") {
	case "7":
		return Range7, nil
	case "30":
		return Range30, nil
	case "90":
		return Range90, nil
	default:
		return 0, fmt.Errorf("invalid range %q (expected 7d, 30d, or 90d)", v)
	}
}

// Window bounds a trailing range in absolute calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor computes the requested window: End is today at midnight local,
// Start is End minus (days-1).
func WindowFor(r Range, now time.Time) Window {
	end := dayStart(now)
	return Window{Start: end.AddDate(0, 0, -(r.Days() - 1)), End: end}
}

// BuildSeries normalises raw daily telemetry into a dense series of exactly
// days points ending at the latest day present in the payload. When the
// payload is empty the requested end anchors the window instead. Days without
// telemetry are zero-filled. Server ordering is not trusted; samples are
// re-indexed by day.
func BuildSeries(days int, end time.Time, samples []DaySample) []TimeSeriesPoint {
	if days <= 0 {
		return nil
	}

	anchor := dayStart(end)
	byDay := make(map[string]DaySample, len(samples))
	var latest time.Time
	for _, s := range samples {
		day := dayStart(s.Day)
		byDay[dayKey(day)] = s
		if day.After(latest) {
			latest = day
		}
	}
	if !latest.IsZero() {
		anchor = latest
	}

	series := make([]TimeSeriesPoint, 0, days)
	start := anchor.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		point := TimeSeriesPoint{Date: day, Label: day.Format("Jan 2")}
		if s, ok := byDay[dayKey(day)]; ok {
			point.CostUSD = s.CostUSD
			point.TokensMillions = s.TokensMillions
			point.AvgLatencyMs = s.AvgLatencyMs
		}
		series = append(series, point)
	}

	return series
}

// ZeroSeries produces an all-zero series for a provider whose fetch failed,
// so the combined view degrades instead of aborting.
func ZeroSeries(days int, end time.Time) []TimeSeriesPoint {
	return BuildSeries(days, end, nil)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
