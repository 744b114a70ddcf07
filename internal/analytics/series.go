// Package analytics holds the pure quantitative core of the dashboard:
// return normalization, the regression channel, risk statistics and
// correlation rankings. Nothing here performs I/O or logs.
package analytics

import (
	"math"
	"sort"
	"time"
)

// RawSeries is a provider response: calendar date to close price.
type RawSeries map[time.Time]float64

// PricePoint is a single close observation.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// ReturnPoint is one row of a normalized series.
type ReturnPoint struct {
	Date             time.Time `json:"date"`
	Close            float64   `json:"close"`
	DailyReturn      float64   `json:"daily_return"`
	CumulativeReturn float64   `json:"cumulative_return"`
}

// ReturnSeries is an ascending, date-unique series of returns for one asset.
type ReturnSeries struct {
	Asset  string        `json:"asset"`
	Points []ReturnPoint `json:"points"`
}

// Len returns the number of rows.
func (s ReturnSeries) Len() int { return len(s.Points) }

// Dates returns the row dates.
func (s ReturnSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Closes returns the close prices.
func (s ReturnSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// DailyReturns returns the daily percentage changes.
func (s ReturnSeries) DailyReturns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.DailyReturn
	}
	return out
}

// CumulativeReturns returns the compounded growth factors.
func (s ReturnSeries) CumulativeReturns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.CumulativeReturn
	}
	return out
}

// Tail returns the trailing n rows, or the whole series when n exceeds it.
func (s ReturnSeries) Tail(n int) ReturnSeries {
	if n <= 0 || n >= len(s.Points) {
		return s
	}
	return ReturnSeries{Asset: s.Asset, Points: s.Points[len(s.Points)-n:]}
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize cleans a raw provider series and derives daily and cumulative
// returns. The first observation has no return and is dropped, so the result
// holds one row fewer than the cleaned input.
func Normalize(raw RawSeries, asset string) (ReturnSeries, error) {
	prices := cleanPrices(raw)
	if len(prices) < 2 {
		return ReturnSeries{}, &EmptySeriesError{Asset: asset, Points: len(prices)}
	}

	points := make([]ReturnPoint, 0, len(prices)-1)
	cumulative := 1.0
	for i := 1; i < len(prices); i++ {
		daily := prices[i].Close/prices[i-1].Close - 1
		cumulative *= 1 + daily
		points = append(points, ReturnPoint{
			Date:             prices[i].Date,
			Close:            prices[i].Close,
			DailyReturn:      daily,
			CumulativeReturn: cumulative,
		})
	}

	return ReturnSeries{Asset: asset, Points: points}, nil
}

// cleanPrices drops unusable closes and orders the rest by date. Timestamps
// falling on the same UTC day keep the latest one.
func cleanPrices(raw RawSeries) []PricePoint {
	byDay := make(map[time.Time]PricePoint, len(raw))
	for ts, price := range raw {
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			continue
		}
		day := Day(ts)
		if prev, ok := byDay[day]; ok && prev.Date.After(ts) {
			continue
		}
		byDay[day] = PricePoint{Date: ts, Close: price}
	}

	out := make([]PricePoint, 0, len(byDay))
	for day, p := range byDay {
		out = append(out, PricePoint{Date: day, Close: p.Close})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
