package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExample(t *testing.T) {
	s := mustNormalize(t, "Bitcoin", 100, 110, 99)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Bitcoin", s.Asset)
	assert.InDelta(t, 0.10, s.Points[0].DailyReturn, 1e-12)
	assert.InDelta(t, -0.10, s.Points[1].DailyReturn, 1e-12)
	assert.InDelta(t, 1.10, s.Points[0].CumulativeReturn, 1e-12)
	assert.InDelta(t, 0.99, s.Points[1].CumulativeReturn, 1e-12)
	assert.Equal(t, dayN(1), s.Points[0].Date)
	assert.Equal(t, 110.0, s.Points[0].Close)
}

func TestNormalizeLengthAndSign(t *testing.T) {
	prices := []float64{1, 2, 3, 5, 8, 13, 21, 34}
	s := mustNormalize(t, "Fib", prices...)

	require.Equal(t, len(prices)-1, s.Len())
	for i, p := range s.Points {
		assert.Greater(t, p.CumulativeReturn, 0.0)
		if i > 0 {
			assert.True(t, p.Date.After(s.Points[i-1].Date), "dates must ascend")
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	prices := []float64{42000.5, 43100.25, 41950, 39000.75, 40500, 45000.125}
	s := mustNormalize(t, "Bitcoin", prices...)

	for i, p := range s.Points {
		rebuilt := prices[0] * p.CumulativeReturn
		assert.InDelta(t, prices[i+1], rebuilt, 1e-6)
	}
}

func TestNormalizeSortsAndCleans(t *testing.T) {
	raw := RawSeries{
		dayN(3): 120,
		dayN(0): 100,
		dayN(1): math.NaN(),
		dayN(2): 0,
		dayN(4): math.Inf(1),
		dayN(5): 60,
	}

	s, err := Normalize(raw, "Solana")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, dayN(3), s.Points[0].Date)
	assert.InDelta(t, 0.2, s.Points[0].DailyReturn, 1e-12)
	assert.InDelta(t, -0.5, s.Points[1].DailyReturn, 1e-12)
	assert.InDelta(t, 0.6, s.Points[1].CumulativeReturn, 1e-12)
}

func TestNormalizeCollapsesIntradayTimestamps(t *testing.T) {
	raw := RawSeries{
		dayN(0):                    100,
		dayN(1).Add(2 * time.Hour): 90,
		dayN(1).Add(9 * time.Hour): 110,
	}

	s, err := Normalize(raw, "Cardano")
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, dayN(1), s.Points[0].Date)
	assert.Equal(t, 110.0, s.Points[0].Close)
}

func TestNormalizeEmptySeries(t *testing.T) {
	cases := map[string]RawSeries{
		"empty":      {},
		"single":     {dayN(0): 10},
		"all-zero":   {dayN(0): 0, dayN(1): 0},
		"one usable": {dayN(0): 5, dayN(1): math.NaN()},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(raw, "Mina")
			var empty *EmptySeriesError
			require.ErrorAs(t, err, &empty)
			assert.Equal(t, "Mina", empty.Asset)
		})
	}
}

func TestReturnSeriesTail(t *testing.T) {
	s := mustNormalize(t, "Celo", 1, 2, 3, 4, 5)

	assert.Equal(t, 2, s.Tail(2).Len())
	assert.Equal(t, s.Points[3], s.Tail(2).Points[1])
	assert.Equal(t, s.Len(), s.Tail(100).Len())
	assert.Equal(t, s.Len(), s.Tail(0).Len())
}

func TestDayTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2024, time.March, 2, 3, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Day(ts))
}
