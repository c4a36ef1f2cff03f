package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"finops-console/internal/console"
	"finops-console/internal/export"
	"finops-console/internal/finops"
)

// Datasets the export command can render.
const (
	DatasetSeries = "series"
	DatasetPareto = "pareto"
	DatasetLanes  = "lanes"
)

// Export renders one dashboard dataset as CSV, JSON, and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.JSONPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv, --json, or --png must be provided")
	}
	if opts.PNGPath != "" && opts.Dataset != DatasetSeries {
		return fmt.Errorf("--png only renders the %s dataset", DatasetSeries)
	}

	r, err := finops.ParseRange(opts.Range)
	if err != nil {
		return err
	}

	maxRows := a.Config.ResolveMaxRows(opts.MaxRows)

	svc := a.newConsole(a.newTelemetryClient())
	view, err := svc.Dashboard(ctx, console.Query{Range: r, ProviderID: opts.Provider})
	if err != nil {
		return err
	}

	series := export.Downsample(view.Series, maxRows)
	pareto := view.Pareto
	if maxRows > 0 && len(pareto) > maxRows {
		pareto = pareto[:maxRows]
	}

	a.Logger.Info().
		Str("dataset", opts.Dataset).
		Int("series_points", len(series)).
		Int("pareto_rows", len(pareto)).
		Msg("exporting dashboard data")

	if opts.CSVPath != "" {
		err := writeToFile(opts.CSVPath, func(w io.Writer) error {
			switch opts.Dataset {
			case DatasetPareto:
				return export.WriteParetoCSV(w, pareto)
			case DatasetLanes:
				return export.WriteLaneCSV(w, view.Lanes)
			case DatasetSeries:
				return export.WriteSeriesCSV(w, series)
			default:
				return fmt.Errorf("unknown dataset %q", opts.Dataset)
			}
		})
		if err != nil {
			return err
		}
	}

	if opts.JSONPath != "" {
		err := writeToFile(opts.JSONPath, func(w io.Writer) error {
			switch opts.Dataset {
			case DatasetPareto:
				return export.WriteParetoJSON(w, pareto)
			case DatasetLanes:
				return export.WriteLaneJSON(w, view.Lanes)
			case DatasetSeries:
				return export.WriteSeriesJSON(w, series)
			default:
				return fmt.Errorf("unknown dataset %q", opts.Dataset)
			}
		})
		if err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeToFile(opts.PNGPath, func(w io.Writer) error {
			return export.WriteChartPNG(w, series)
		}); err != nil {
			return err
		}
	}

	return nil
}

func writeToFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return write(file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
