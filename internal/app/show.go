package app

import (
	"context"
	"encoding/json"

	"crypto-dashboard/internal/report"
	"crypto-dashboard/internal/service"
)

// Analyze runs one analysis and prints it as a table or JSON.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	dash := a.newDashboard()
	analysis, err := dash.Analyze(ctx, service.Selection{Asset: opts.Asset, Months: a.resolveMonths(opts.Months)})
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.NewView(analysis))
	}
	return report.WriteTable(a.Out, analysis)
}

// Assets prints the configured catalog.
func (a *App) Assets(ctx context.Context) error {
	return report.WriteAssets(a.Out, a.catalog)
}
