package cli

import (
	"github.com/spf13/cobra"

	"crypto-dashboard/internal/app"
)

var (
	analyzeMonths int
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <asset>",
	Short: "Compute the regression channel, statistics and correlations of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Analyze(cmd.Context(), app.AnalyzeOptions{
			Asset:  args[0],
			Months: analyzeMonths,
			JSON:   analyzeJSON,
		})
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List the supported assets and benchmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Assets(cmd.Context())
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMonths, "months", 0, "Look-back period in months (defaults to config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the rounded result as JSON")
}
