package cli

import (
	"github.com/spf13/cobra"

	"finops-console/internal/app"
)

var (
	dashboardRange    string
	dashboardProvider string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Display the cost dashboard for a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.DashboardOptions{
			Range:    dashboardRange,
			Provider: dashboardProvider,
		}

		return getApp().Dashboard(cmd.Context(), opts)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardRange, "range", "30d", "Window to analyse (7d, 30d, or 90d)")
	dashboardCmd.Flags().StringVar(&dashboardProvider, "provider", "", "Limit the view to one provider id")
}
