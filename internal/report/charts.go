package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/guregu/null/v6"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/service"
)

var (
	bandStyle  = chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}}
	outerStyle = chart.Style{StrokeColor: chart.ColorAlternateLightGray, StrokeWidth: 1, StrokeDashArray: []float64{2, 4}}
)

// WriteChannelPNG renders cumulative return with its regression channel.
// Close price and the moving averages share the secondary axis when they
// are computed over price.
func WriteChannelPNG(w io.Writer, a *service.Analysis, opts Options) error {
	ch := a.Channel
	if len(ch.Dates) < 2 {
		return &analytics.EmptySeriesError{Asset: a.Asset, Points: len(ch.Dates)}
	}

	idx := downsampleIndex(len(ch.Dates), opts.MaxPoints)
	dates := pickTimes(ch.Dates, idx)
	cumulative := pick(a.Series.CumulativeReturns(), idx)
	closes := pick(a.Series.Closes(), idx)

	primary := append(append([]float64(nil), cumulative...), pick(ch.Upper2, idx)...)
	primary = append(primary, pick(ch.Lower2, idx)...)
	cumMin, cumMax := AxisRange(primary)

	smaAxis := chart.YAxisPrimary
	if ch.SMASource == analytics.SMAOverPrice {
		smaAxis = chart.YAxisSecondary
	}

	series := []chart.Series{
		chart.TimeSeries{Name: "Cumulative return", XValues: dates, YValues: cumulative, Style: chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2}},
		chart.TimeSeries{Name: "Regression", XValues: dates, YValues: pick(ch.Fitted, idx), Style: chart.Style{StrokeColor: chart.ColorBlack, StrokeWidth: 1}},
		chart.TimeSeries{Name: "+1σ", XValues: dates, YValues: pick(ch.Upper1, idx), Style: bandStyle},
		chart.TimeSeries{Name: "-1σ", XValues: dates, YValues: pick(ch.Lower1, idx), Style: bandStyle},
		chart.TimeSeries{Name: "+2σ", XValues: dates, YValues: pick(ch.Upper2, idx), Style: outerStyle},
		chart.TimeSeries{Name: "-2σ", XValues: dates, YValues: pick(ch.Lower2, idx), Style: outerStyle},
		chart.TimeSeries{Name: "Close", XValues: dates, YValues: closes, YAxis: chart.YAxisSecondary, Style: chart.Style{StrokeColor: drawing.ColorFromHex("9e9e9e"), StrokeWidth: 1}},
	}
	if s, ok := smaSeries(fmt.Sprintf("SMA %d", countWindow(ch.SlowSMA)), ch.Dates, ch.SlowSMA, idx, smaAxis, chart.ColorRed); ok {
		series = append(series, s)
	}
	if s, ok := smaSeries(fmt.Sprintf("SMA %d", countWindow(ch.FastSMA)), ch.Dates, ch.FastSMA, idx, smaAxis, chart.ColorOrange); ok {
		series = append(series, s)
	}

	priceMin, priceMax := AxisRange(closes)
	ratioFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s regression channel (%d months)", a.Asset, a.Months),
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Cumulative return",
			ValueFormatter: ratioFormatter,
			Range:          &chart.ContinuousRange{Min: cumMin, Max: cumMax},
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: ratioFormatter,
			Range:          &chart.ContinuousRange{Min: priceMin, Max: priceMax},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// WriteStatisticsPNG renders the risk ratios as a bar chart.
func WriteStatisticsPNG(w io.Writer, a *service.Analysis, opts Options) error {
	if a.Statistics == nil {
		return errors.New("statistics unavailable for " + a.Asset)
	}
	s := a.Statistics
	bars := []chart.Value{
		{Label: "Calmar", Value: s.CalmarRatio},
		{Label: "Sortino", Value: s.SortinoRatio},
		{Label: "Sharpe", Value: s.SharpeRatio},
		{Label: "Max DD", Value: s.MaxDrawdown},
		{Label: "ATH", Value: s.ATHReturn},
		{Label: "Volatility", Value: s.AnnualizedVolatility},
		{Label: "Total", Value: s.TotalReturn},
	}
	return renderBars(w, fmt.Sprintf("%s risk statistics (%d months)", a.Asset, a.Months), bars, opts)
}

// WriteCorrelationPNG renders the correlation ranking as a bar chart.
func WriteCorrelationPNG(w io.Writer, a *service.Analysis, opts Options) error {
	if len(a.Correlations) == 0 {
		return errors.New("correlation ranking unavailable for " + a.Asset)
	}
	bars := make([]chart.Value, 0, len(a.Correlations))
	for _, row := range a.Correlations {
		bars = append(bars, chart.Value{Label: row.Asset, Value: row.Score})
	}
	return renderBars(w, fmt.Sprintf("R² against %s", a.Asset), bars, opts)
}

func renderBars(w io.Writer, title string, bars []chart.Value, opts Options) error {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1

	graph := chart.BarChart{
		Title:        title,
		Width:        opts.Width,
		Height:       opts.Height,
		BarWidth:     barWidth(opts.Width, len(bars)),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	bw := width / (n * 2)
	if bw > 80 {
		bw = 80
	}
	if bw < 10 {
		bw = 10
	}
	return bw
}

func smaSeries(name string, dates []time.Time, values []null.Float, idx []int, axis chart.YAxisType, color drawing.Color) (chart.TimeSeries, bool) {
	var xs []time.Time
	var ys []float64
	for _, i := range idx {
		if values[i].Valid {
			xs = append(xs, dates[i])
			ys = append(ys, values[i].Float64)
		}
	}
	if len(xs) < 2 {
		return chart.TimeSeries{}, false
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		YAxis:   axis,
		Style:   chart.Style{StrokeColor: color, StrokeWidth: 1.5},
	}, true
}

// countWindow recovers the SMA period from its leading undefined entries.
func countWindow(values []null.Float) int {
	for i, v := range values {
		if v.Valid {
			return i + 1
		}
	}
	return len(values) + 1
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func pickTimes(values []time.Time, idx []int) []time.Time {
	out := make([]time.Time, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
