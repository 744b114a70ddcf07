package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"crypto-dashboard/internal/catalog"
	"crypto-dashboard/internal/service"
)

// WriteTable prints the statistics and correlation summary of an analysis.
func WriteTable(w io.Writer, a *service.Analysis) error {
	v := NewView(a)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Asset\t%s\n", v.Asset)
	fmt.Fprintf(tw, "Period\t%s .. %s (%d months, %d points)\n", v.Start, v.End, v.Months, v.Points)
	fmt.Fprintf(tw, "Trend\tslope %s  intercept %s  sigma %s\n", v.Slope, v.Intercept, v.Sigma)

	if s := v.Statistics; s != nil {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Metric\tValue")
		fmt.Fprintf(tw, "Calmar Ratio\t%s\n", s.CalmarRatio)
		fmt.Fprintf(tw, "Sortino Ratio\t%s\n", s.SortinoRatio)
		fmt.Fprintf(tw, "Sharpe Ratio\t%s\n", s.SharpeRatio)
		fmt.Fprintf(tw, "Max Drawdown\t%s\n", s.MaxDrawdown)
		fmt.Fprintf(tw, "ATH Return\t%s\n", s.ATHReturn)
		fmt.Fprintf(tw, "Annualized Volatility\t%s\n", s.AnnualizedVolatility)
		fmt.Fprintf(tw, "Total Return\t%s\n", s.TotalReturn)
	}

	if len(v.Correlations) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Correlated Asset\tR²")
		for _, row := range v.Correlations {
			fmt.Fprintf(tw, "%s\t%s\n", row.Asset, row.Score)
		}
	}

	if len(v.Benchmarks) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Benchmark\tR²\tError")
		for _, row := range v.Benchmarks {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Asset, row.Score, sanitizeInline(row.Error))
		}
	}

	for _, warn := range v.Warnings {
		fmt.Fprintf(tw, "warning\t%s\n", sanitizeInline(warn))
	}

	return tw.Flush()
}

// WriteAssets lists the catalog.
func WriteAssets(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tKind\tProvider\tIdentifier")
	for _, group := range [][]catalog.Asset{cat.Assets(), cat.Benchmarks()} {
		for _, a := range group {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Kind, a.Provider, a.Identifier)
		}
	}
	return tw.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
