// Package export renders in-memory dashboard datasets as CSV, JSON, and PNG.
// Field order and header names are a contract for downstream spreadsheet
// tooling and must stay stable across releases.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"finops-console/internal/finops"
)

const dayFormat = "2006-01-02"

var (
	paretoHeader = []string{"rank", "provider_id", "provider", "route", "lane", "cost_usd", "tokens_millions", "runs", "success_rate", "avg_latency_ms", "share", "cumulative_share"}
	seriesHeader = []string{"day", "cost_usd", "tokens_millions", "avg_latency_ms"}
	laneHeader   = []string{"lane", "cost_usd", "tokens_millions", "runs", "avg_latency_ms"}
)

// WriteParetoCSV writes ranked route rows in their Pareto order.
func WriteParetoCSV(w io.Writer, entries []finops.ParetoEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(paretoHeader); err != nil {
		return err
	}
	for i, e := range entries {
		record := []string{
			strconv.Itoa(i + 1),
			e.ProviderID,
			e.ProviderName,
			e.Route,
			string(e.Lane),
			formatCurrency(e.CostUSD),
			formatTokens(e.TokensMillions),
			strconv.Itoa(e.Runs),
			formatRatio(e.SuccessRate),
			formatLatency(e.AvgLatencyMs),
			formatRatio(e.Share),
			formatRatio(e.CumulativeShare),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSeriesCSV writes the dense daily series oldest day first.
func WriteSeriesCSV(w io.Writer, points []finops.TimeSeriesPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(seriesHeader); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{
			p.Date.Format(dayFormat),
			formatCurrency(p.CostUSD),
			formatTokens(p.TokensMillions),
			formatLatency(p.AvgLatencyMs),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLaneCSV writes per-lane totals in the fixed lane order.
func WriteLaneCSV(w io.Writer, lanes []finops.LaneCost) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(laneHeader); err != nil {
		return err
	}
	for _, l := range lanes {
		record := []string{
			string(l.Lane),
			formatCurrency(l.CostUSD),
			formatTokens(l.TokensMillions),
			strconv.Itoa(l.Runs),
			formatLatency(l.AvgLatencyMs),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type paretoRow struct {
	Rank            int     `json:"rank"`
	ProviderID      string  `json:"provider_id"`
	Provider        string  `json:"provider"`
	Route           string  `json:"route"`
	Lane            string  `json:"lane"`
	CostUSD         float64 `json:"cost_usd"`
	TokensMillions  float64 `json:"tokens_millions"`
	Runs            int     `json:"runs"`
	SuccessRate     float64 `json:"success_rate"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"cumulative_share"`
}

type seriesRow struct {
	Day            string  `json:"day"`
	CostUSD        float64 `json:"cost_usd"`
	TokensMillions float64 `json:"tokens_millions"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

type laneRow struct {
	Lane           string  `json:"lane"`
	CostUSD        float64 `json:"cost_usd"`
	TokensMillions float64 `json:"tokens_millions"`
	Runs           int     `json:"runs"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

// WriteParetoJSON writes ranked route rows as an indented JSON array.
func WriteParetoJSON(w io.Writer, entries []finops.ParetoEntry) error {
	rows := make([]paretoRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, paretoRow{
			Rank:            i + 1,
			ProviderID:      e.ProviderID,
			Provider:        e.ProviderName,
			Route:           e.Route,
			Lane:            string(e.Lane),
			CostUSD:         e.CostUSD,
			TokensMillions:  e.TokensMillions,
			Runs:            e.Runs,
			SuccessRate:     e.SuccessRate,
			AvgLatencyMs:    e.AvgLatencyMs,
			Share:           e.Share,
			CumulativeShare: e.CumulativeShare,
		})
	}
	return writeJSON(w, rows)
}

// WriteSeriesJSON writes the dense daily series as an indented JSON array.
func WriteSeriesJSON(w io.Writer, points []finops.TimeSeriesPoint) error {
	rows := make([]seriesRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, seriesRow{
			Day:            p.Date.Format(dayFormat),
			CostUSD:        p.CostUSD,
			TokensMillions: p.TokensMillions,
			AvgLatencyMs:   p.AvgLatencyMs,
		})
	}
	return writeJSON(w, rows)
}

// WriteLaneJSON writes per-lane totals as an indented JSON array.
func WriteLaneJSON(w io.Writer, lanes []finops.LaneCost) error {
	rows := make([]laneRow, 0, len(lanes))
	for _, l := range lanes {
		rows = append(rows, laneRow{
			Lane:           string(l.Lane),
			CostUSD:        l.CostUSD,
			TokensMillions: l.TokensMillions,
			Runs:           l.Runs,
			AvgLatencyMs:   l.AvgLatencyMs,
		})
	}
	return writeJSON(w, rows)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Downsample keeps at most max evenly spaced points, always retaining the
// first and last.
func Downsample(points []finops.TimeSeriesPoint, max int) []finops.TimeSeriesPoint {
	if max <= 0 || len(points) <= max {
		return points
	}

	result := make([]finops.TimeSeriesPoint, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

// WriteChartPNG renders the daily series as a PNG with cost on the primary
// axis and latency on the secondary axis.
func WriteChartPNG(w io.Writer, points []finops.TimeSeriesPoint) error {
	x := make([]time.Time, len(points))
	cost := make([]float64, len(points))
	latency := make([]float64, len(points))

	for i, p := range points {
		x[i] = p.Date
		cost[i] = p.CostUSD
		latency[i] = p.AvgLatencyMs
	}

	costFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "$%.2f")
	}
	latencyFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f ms")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Cost (USD)",
			ValueFormatter: costFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Latency (ms)",
			ValueFormatter: latencyFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Daily cost",
				XValues: x,
				YValues: cost,
			},
			chart.TimeSeries{
				Name:    "Avg latency",
				XValues: x,
				YValues: latency,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

func formatCurrency(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTokens(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatLatency(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}
