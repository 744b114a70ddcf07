package cli

import (
	"github.com/spf13/cobra"

	"crypto-dashboard/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Serve(cmd.Context())
	},
}

var (
	watchAssets []string
	watchMonths int
	watchOnce   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically refresh analyses, export charts and send digests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{
			Assets: watchAssets,
			Months: watchMonths,
			Once:   watchOnce,
		})
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchAssets, "asset", nil, "Asset to watch (repeatable, defaults to config)")
	watchCmd.Flags().IntVar(&watchMonths, "months", 0, "Look-back period in months (defaults to config)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single refresh and exit")
}
