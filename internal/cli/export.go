package cli

import (
	"github.com/spf13/cobra"

	"finops-console/internal/app"
)

var (
	exportRange    string
	exportProvider string
	exportDataset  string
	exportCSVPath  string
	exportJSONPath string
	exportPNGPath  string
	exportMaxRows  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a dashboard dataset as CSV, JSON, and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Range:    exportRange,
			Provider: exportProvider,
			Dataset:  exportDataset,
			CSVPath:  exportCSVPath,
			JSONPath: exportJSONPath,
			PNGPath:  exportPNGPath,
			MaxRows:  exportMaxRows,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRange, "range", "30d", "Window to export (7d, 30d, or 90d)")
	exportCmd.Flags().StringVar(&exportProvider, "provider", "", "Limit the export to one provider id")
	exportCmd.Flags().StringVar(&exportDataset, "dataset", app.DatasetSeries, "Dataset to export (series, pareto, or lanes)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportJSONPath, "json", "", "Path to write JSON data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart (series only)")
	exportCmd.Flags().IntVar(&exportMaxRows, "max-rows", 0, "Maximum rows to export (defaults to config)")
}
