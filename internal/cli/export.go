package cli

import (
	"github.com/spf13/cobra"

	"crypto-dashboard/internal/app"
)

var (
	exportAssets  []string
	exportAll     bool
	exportMonths  int
	exportDir     string
	exportCSV     bool
	exportPNG     bool
	exportWorkers int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analyses as CSV and/or PNG charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Assets:  exportAssets,
			All:     exportAll,
			Months:  exportMonths,
			Dir:     exportDir,
			CSV:     exportCSV,
			PNG:     exportPNG,
			Workers: exportWorkers,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportAssets, "asset", nil, "Asset to export (repeatable)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every catalog asset")
	exportCmd.Flags().IntVar(&exportMonths, "months", 0, "Look-back period in months (defaults to config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (defaults to config)")
	exportCmd.Flags().BoolVar(&exportCSV, "csv", true, "Write the series CSV")
	exportCmd.Flags().BoolVar(&exportPNG, "png", true, "Write PNG charts")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 2, "Number of assets exported concurrently")
}
