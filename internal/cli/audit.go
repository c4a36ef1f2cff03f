package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finops-console/internal/app"
)

var (
	auditLimit int
	auditPlans bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Display recent audit events or plan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.AuditOptions{
			Limit: auditLimit,
			Plans: auditPlans,
		}

		return getApp().Audit(cmd.Context(), opts)
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of records to display")
	auditCmd.Flags().BoolVar(&auditPlans, "plans", false, "List plan history instead of audit events")
}
