// Package report turns analysis results into presentation artefacts: rounded
// views, CSV, PNG charts and terminal tables. Rounding happens only here.
package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/service"
)

const displayPlaces int32 = 2

// Options size the rendered charts.
type Options struct {
	Width     int
	Height    int
	MaxPoints int
}

// DefaultOptions matches the export defaults.
func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, MaxPoints: 5000}
}

// StatisticsView is TokenStatistics rounded for display.
type StatisticsView struct {
	CalmarRatio          decimal.Decimal `json:"calmar_ratio"`
	SortinoRatio         decimal.Decimal `json:"sortino_ratio"`
	SharpeRatio          decimal.Decimal `json:"sharpe_ratio"`
	MaxDrawdown          decimal.Decimal `json:"max_drawdown"`
	ATHReturn            decimal.Decimal `json:"ath_return"`
	AnnualizedVolatility decimal.Decimal `json:"annualized_volatility"`
	TotalReturn          decimal.Decimal `json:"total_return"`
}

// ScoreView is a rounded correlation score.
type ScoreView struct {
	Asset string          `json:"asset"`
	Score decimal.Decimal `json:"score"`
	Error string          `json:"error,omitempty"`
}

// View is the rounded summary of an analysis.
type View struct {
	Asset        string          `json:"asset"`
	Months       int             `json:"months"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Points       int             `json:"points"`
	Slope        decimal.Decimal `json:"slope"`
	Intercept    decimal.Decimal `json:"intercept"`
	Sigma        decimal.Decimal `json:"sigma"`
	Statistics   *StatisticsView `json:"statistics,omitempty"`
	Correlations []ScoreView     `json:"correlations,omitempty"`
	Benchmarks   []ScoreView     `json:"benchmarks,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// NewView rounds an analysis for display.
func NewView(a *service.Analysis) View {
	v := View{
		Asset:     a.Asset,
		Months:    a.Months,
		Start:     a.Start.Format(time.DateOnly),
		End:       a.End.Format(time.DateOnly),
		Points:    a.Series.Len(),
		Slope:     Round(a.Channel.Slope),
		Intercept: Round(a.Channel.Intercept),
		Sigma:     Round(a.Channel.Sigma),
		Warnings:  a.Warnings,
	}
	if a.Statistics != nil {
		s := NewStatisticsView(*a.Statistics)
		v.Statistics = &s
	}
	v.Correlations = NewCorrelationViews(a.Correlations)
	for _, b := range a.Benchmarks {
		v.Benchmarks = append(v.Benchmarks, ScoreView{Asset: b.Benchmark, Score: Round(b.Score), Error: b.Error})
	}
	return v
}

// NewStatisticsView rounds every ratio to two places.
func NewStatisticsView(s analytics.TokenStatistics) StatisticsView {
	return StatisticsView{
		CalmarRatio:          Round(s.CalmarRatio),
		SortinoRatio:         Round(s.SortinoRatio),
		SharpeRatio:          Round(s.SharpeRatio),
		MaxDrawdown:          Round(s.MaxDrawdown),
		ATHReturn:            Round(s.ATHReturn),
		AnnualizedVolatility: Round(s.AnnualizedVolatility),
		TotalReturn:          Round(s.TotalReturn),
	}
}

// NewCorrelationViews rounds a ranking, keeping its order.
func NewCorrelationViews(rows []analytics.CorrelationRow) []ScoreView {
	if len(rows) == 0 {
		return nil
	}
	out := make([]ScoreView, len(rows))
	for i, r := range rows {
		out[i] = ScoreView{Asset: r.Asset, Score: Round(r.Score)}
	}
	return out
}

// Round converts a float to a decimal rounded half away from zero.
func Round(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(displayPlaces)
}

// AxisRange pads a value range the way the dashboard charts always have:
// 60% of the minimum to 120% of the maximum.
func AxisRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	lo, hi = lo*0.6, hi*1.2
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

// downsampleIndex picks at most max evenly spaced indices out of n.
func downsampleIndex(n, max int) []int {
	if max <= 1 || n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	result := make([]int, 0, max)
	step := float64(n-1) / float64(max-1)
	for i := 0; i < max; i++ {
		j := int(math.Round(step * float64(i)))
		if j >= n {
			j = n - 1
		}
		result = append(result, j)
	}
	return result
}
