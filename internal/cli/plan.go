package cli

import (
	"github.com/spf13/cobra"

	"finops-console/internal/app"
)

var (
	planUpdatePath    string
	planApply         bool
	planYes           bool
	planDiscard       bool
	planCommitMessage string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate, apply, or discard a manifest change plan",
	Long: `Generate a change plan from an update file and print its diff.

Without --apply or --discard the plan is a dry run. Applying requires the
additional --yes confirmation because it mutates the governed manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.PlanOptions{
			UpdatePath:    planUpdatePath,
			Apply:         planApply,
			Yes:           planYes,
			Discard:       planDiscard,
			CommitMessage: planCommitMessage,
		}

		return getApp().Plan(cmd.Context(), opts)
	},
}

func init() {
	planCmd.Flags().StringVar(&planUpdatePath, "update", "", "Path to JSON file describing the manifest update")
	planCmd.Flags().BoolVar(&planApply, "apply", false, "Apply the generated plan")
	planCmd.Flags().BoolVar(&planYes, "yes", false, "Confirm the apply (required with --apply)")
	planCmd.Flags().BoolVar(&planDiscard, "discard", false, "Discard the generated plan and record the discard")
	planCmd.Flags().StringVar(&planCommitMessage, "message", "", "Commit message to attach to the apply")
}
