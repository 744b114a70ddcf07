package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseDay = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time {
	return baseDay.AddDate(0, 0, n)
}

func rawFromPrices(prices ...float64) RawSeries {
	raw := make(RawSeries, len(prices))
	for i, p := range prices {
		raw[dayN(i)] = p
	}
	return raw
}

func mustNormalize(t *testing.T, asset string, prices ...float64) ReturnSeries {
	t.Helper()
	s, err := Normalize(rawFromPrices(prices...), asset)
	require.NoError(t, err)
	return s
}

// seriesOnDays builds a series whose rows sit on the given day offsets with
// cumulative returns taken verbatim.
func seriesOnDays(asset string, days []int, cumulative []float64) ReturnSeries {
	points := make([]ReturnPoint, len(days))
	prev := 1.0
	for i, d := range days {
		points[i] = ReturnPoint{
			Date:             dayN(d),
			Close:            100 * cumulative[i],
			DailyReturn:      cumulative[i]/prev - 1,
			CumulativeReturn: cumulative[i],
		}
		prev = cumulative[i]
	}
	return ReturnSeries{Asset: asset, Points: points}
}

func sampleStdDev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
