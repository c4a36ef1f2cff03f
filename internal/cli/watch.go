package cli

import (
	"github.com/spf13/cobra"
)

var watchRange string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the background alert watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), watchRange)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchRange, "range", "7d", "Window to analyse on each refresh (7d, 30d, or 90d)")
}
