package analytics

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// SMASource selects the column the moving averages are computed over.
type SMASource string

const (
	SMAOverPrice      SMASource = "price"
	SMAOverCumulative SMASource = "cumulative"
)

const (
	DefaultSlowSMA = 200
	DefaultFastSMA = 50

	daysPerYear = 365.25
	epochYear   = 1970
)

// ChannelOptions tune the moving-average overlays of a regression channel.
type ChannelOptions struct {
	SlowWindow int
	FastWindow int
	SMASource  SMASource
}

// DefaultChannelOptions returns 200/50 period averages over price.
func DefaultChannelOptions() ChannelOptions {
	return ChannelOptions{SlowWindow: DefaultSlowSMA, FastWindow: DefaultFastSMA, SMASource: SMAOverPrice}
}

// RegressionChannel is a least-squares trend of cumulative return against
// time, with bands one and two standard deviations wide. Every slice is
// aligned 1:1 with Dates.
type RegressionChannel struct {
	Asset     string       `json:"asset"`
	Slope     float64      `json:"slope"`
	Intercept float64      `json:"intercept"`
	Sigma     float64      `json:"sigma"`
	Dates     []time.Time  `json:"dates"`
	X         []float64    `json:"x"`
	Fitted    []float64    `json:"fitted"`
	Upper1    []float64    `json:"upper_1"`
	Lower1    []float64    `json:"lower_1"`
	Upper2    []float64    `json:"upper_2"`
	Lower2    []float64    `json:"lower_2"`
	SlowSMA   []null.Float `json:"slow_sma"`
	FastSMA   []null.Float `json:"fast_sma"`
	SMASource SMASource    `json:"sma_source"`
}

// YearFraction encodes a date as a continuous year value. The mapping is
// linear in elapsed days, so equal calendar spacing gives equal spacing in x.
func YearFraction(t time.Time) float64 {
	days := Day(t).Sub(time.Unix(0, 0).UTC()).Hours() / 24
	return epochYear + days/daysPerYear
}

// BuildChannel fits the regression channel over a normalized series.
//
// Sigma is the population standard deviation of the cumulative-return
// series itself rather than of the regression residuals. That keeps the
// channel width identical to the dashboard's historical charts.
func BuildChannel(series ReturnSeries, opts ChannelOptions) (RegressionChannel, error) {
	n := series.Len()
	if n == 0 {
		return RegressionChannel{}, &EmptySeriesError{Asset: series.Asset}
	}
	if opts.SlowWindow <= 0 {
		opts.SlowWindow = DefaultSlowSMA
	}
	if opts.FastWindow <= 0 {
		opts.FastWindow = DefaultFastSMA
	}
	if opts.SMASource == "" {
		opts.SMASource = SMAOverPrice
	}

	x := make([]float64, n)
	for i, p := range series.Points {
		x[i] = YearFraction(p.Date)
	}
	y := series.CumulativeReturns()

	var intercept, slope float64
	if n == 1 {
		intercept = y[0]
	} else {
		intercept, slope = stat.LinearRegression(x, y, nil, false)
	}
	_, sigma := stat.PopMeanStdDev(y, nil)

	ch := RegressionChannel{
		Asset:     series.Asset,
		Slope:     slope,
		Intercept: intercept,
		Sigma:     sigma,
		Dates:     series.Dates(),
		X:         x,
		Fitted:    make([]float64, n),
		Upper1:    make([]float64, n),
		Lower1:    make([]float64, n),
		Upper2:    make([]float64, n),
		Lower2:    make([]float64, n),
		SMASource: opts.SMASource,
	}
	for i := range x {
		fitted := intercept + slope*x[i]
		ch.Fitted[i] = fitted
		ch.Upper1[i] = fitted + sigma
		ch.Lower1[i] = fitted - sigma
		ch.Upper2[i] = fitted + 2*sigma
		ch.Lower2[i] = fitted - 2*sigma
	}

	var overlay []float64
	switch opts.SMASource {
	case SMAOverPrice:
		overlay = series.Closes()
	case SMAOverCumulative:
		overlay = y
	default:
		return RegressionChannel{}, fmt.Errorf("unsupported sma source %q", opts.SMASource)
	}
	ch.SlowSMA = SimpleMovingAverage(overlay, opts.SlowWindow)
	ch.FastSMA = SimpleMovingAverage(overlay, opts.FastWindow)

	return ch, nil
}

// SimpleMovingAverage returns the trailing mean over window values. Entries
// before the first full window are left invalid.
func SimpleMovingAverage(values []float64, window int) []null.Float {
	out := make([]null.Float, len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = null.FloatFrom(sum / float64(window))
		}
	}
	return out
}
