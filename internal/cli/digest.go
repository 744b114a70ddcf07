package cli

import (
	"github.com/spf13/cobra"

	"crypto-dashboard/internal/app"
)

var (
	digestAssets []string
	digestMonths int
)

var digestCmd = &cobra.Command{
	Use:   "send-digest",
	Short: "Analyse the watched assets once and deliver a digest now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SendDigest(cmd.Context(), app.DigestOptions{
			Assets: digestAssets,
			Months: digestMonths,
		})
	},
}

func init() {
	digestCmd.Flags().StringSliceVar(&digestAssets, "asset", nil, "Asset to include (repeatable, defaults to watch.assets)")
	digestCmd.Flags().IntVar(&digestMonths, "months", 0, "Look-back period in months (defaults to watch.months)")
}
