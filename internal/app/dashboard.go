package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"finops-console/internal/console"
	"finops-console/internal/finops"
)

// Dashboard fetches and prints the cost dashboard for the selected window.
func (a *App) Dashboard(ctx context.Context, opts DashboardOptions) error {
	r, err := finops.ParseRange(opts.Range)
	if err != nil {
		return err
	}

	svc := a.newConsole(a.newTelemetryClient())
	view, err := svc.Dashboard(ctx, console.Query{Range: r, ProviderID: opts.Provider})
	if err != nil {
		return err
	}

	out := os.Stdout

	fmt.Fprintf(out, "Window: %s to %s (%s)\n",
		view.Window.Start.Format("2006-01-02"),
		view.Window.End.Format("2006-01-02"),
		r,
	)
	fmt.Fprintf(out, "Total cost: $%.2f  Tokens: %.2fM  Avg latency: %dms  Cost/M tokens: $%.2f\n\n",
		view.Metrics.TotalCost,
		view.Metrics.TotalTokens,
		view.Metrics.AvgLatencyMs,
		view.Metrics.CostPerMillion,
	)

	for _, warning := range view.Warnings {
		fmt.Fprintf(out, "! %s\n", warning)
	}
	if len(view.Warnings) > 0 {
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Alerts:")
	for _, alert := range view.Alerts {
		fmt.Fprintf(out, "  [%s] %s: %s\n", alert.Kind, alert.Title, alert.Description)
	}
	fmt.Fprintln(out)

	if len(view.Hotspots) > 0 {
		fmt.Fprintln(out, "Hotspots:")
		for _, h := range view.Hotspots {
			fmt.Fprintf(out, "  [%s] %s: %s (%s %s)\n", h.Severity, h.Title, h.Summary, h.MetricLabel, h.MetricValue)
		}
		fmt.Fprintln(out)
	}

	if len(view.Pareto) > 0 {
		writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "#\tProvider\tRoute\tLane\tCost\tShare\tCum.\tSuccess\tLatency")
		for i, e := range view.Pareto {
			fmt.Fprintf(
				writer,
				"%d\t%s\t%s\t%s\t$%.2f\t%.1f%%\t%.1f%%\t%.1f%%\t%dms\n",
				i+1,
				e.ProviderName,
				e.Route,
				e.Lane,
				e.CostUSD,
				e.Share*100,
				e.CumulativeShare*100,
				e.SuccessRate*100,
				int(e.AvgLatencyMs),
			)
		}
		writer.Flush()
		fmt.Fprintln(out)
	}

	if len(view.Lanes) > 0 {
		parts := make([]string, 0, len(view.Lanes))
		for _, l := range view.Lanes {
			parts = append(parts, fmt.Sprintf("%s $%.2f", l.Lane, l.CostUSD))
		}
		fmt.Fprintf(out, "Lanes: %s\n", strings.Join(parts, "  "))
	}

	return nil
}
