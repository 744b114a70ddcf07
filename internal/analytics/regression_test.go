package analytics

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearFractionLinear(t *testing.T) {
	assert.Equal(t, 1970.0, YearFraction(time.Unix(0, 0)))

	// spacing across a leap-year boundary stays constant
	a := YearFraction(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))
	b := YearFraction(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	c := YearFraction(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, b-a, c-b, 1e-9)
	assert.Less(t, a, b)

	mid := YearFraction(time.Date(2020, time.July, 1, 15, 0, 0, 0, time.UTC))
	assert.InDelta(t, 2020.5, mid, 0.01)
}

func TestBuildChannelBands(t *testing.T) {
	s := mustNormalize(t, "Ethereum", 100, 104, 98, 110, 107, 115, 112, 120, 118, 125)

	ch, err := BuildChannel(s, DefaultChannelOptions())
	require.NoError(t, err)
	require.Len(t, ch.Fitted, s.Len())
	assert.Greater(t, ch.Sigma, 0.0)

	for i := range ch.Fitted {
		assert.InDelta(t, ch.Sigma, ch.Upper1[i]-ch.Fitted[i], 1e-12)
		assert.InDelta(t, ch.Sigma, ch.Fitted[i]-ch.Lower1[i], 1e-12)
		assert.InDelta(t, 2*ch.Sigma, ch.Upper2[i]-ch.Fitted[i], 1e-12)
		assert.InDelta(t, 2*ch.Sigma, ch.Fitted[i]-ch.Lower2[i], 1e-12)
		assert.InDelta(t, ch.Intercept+ch.Slope*ch.X[i], ch.Fitted[i], 1e-9)
	}
	assert.Equal(t, s.Dates(), ch.Dates)
}

func TestBuildChannelExactLine(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	s := mustNormalize(t, "Polygon", prices...)

	ch, err := BuildChannel(s, DefaultChannelOptions())
	require.NoError(t, err)

	// cumulative return grows 0.01 per day
	assert.InDelta(t, 0.01*daysPerYear, ch.Slope, 1e-6)
	for i, p := range s.Points {
		assert.InDelta(t, p.CumulativeReturn, ch.Fitted[i], 1e-6)
	}
}

func TestBuildChannelSigmaIsPopulationStdDevOfCumulative(t *testing.T) {
	s := seriesOnDays("NEAR", []int{0, 1, 2, 3}, []float64{1, 2, 3, 4})

	ch, err := BuildChannel(s, DefaultChannelOptions())
	require.NoError(t, err)
	// population variance of 1..4 is 1.25
	assert.InDelta(t, 1.118033988749895, ch.Sigma, 1e-12)
}

func TestBuildChannelShortSeriesHasNoAverages(t *testing.T) {
	s := mustNormalize(t, "Fantom", 1, 2, 3, 4, 5, 6)

	ch, err := BuildChannel(s, DefaultChannelOptions())
	require.NoError(t, err)
	require.Len(t, ch.SlowSMA, s.Len())
	require.Len(t, ch.FastSMA, s.Len())
	for i := range ch.SlowSMA {
		assert.False(t, ch.SlowSMA[i].Valid)
		assert.False(t, ch.FastSMA[i].Valid)
	}
}

func TestBuildChannelSMASource(t *testing.T) {
	s := mustNormalize(t, "Cosmos", 10, 20, 30, 40)
	opts := ChannelOptions{SlowWindow: 3, FastWindow: 2}

	byPrice, err := BuildChannel(s, opts)
	require.NoError(t, err)
	assert.Equal(t, SMAOverPrice, byPrice.SMASource)
	assert.Equal(t, null.FloatFrom(35), byPrice.FastSMA[2])
	assert.Equal(t, null.FloatFrom(30), byPrice.SlowSMA[2])

	opts.SMASource = SMAOverCumulative
	byCum, err := BuildChannel(s, opts)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, byCum.FastSMA[2].Float64, 1e-12)
	assert.InDelta(t, 3.0, byCum.SlowSMA[2].Float64, 1e-12)

	opts.SMASource = "volume"
	_, err = BuildChannel(s, opts)
	assert.Error(t, err)
}

func TestBuildChannelEmpty(t *testing.T) {
	_, err := BuildChannel(ReturnSeries{Asset: "Algorand"}, DefaultChannelOptions())
	var empty *EmptySeriesError
	assert.ErrorAs(t, err, &empty)
}

func TestSimpleMovingAverage(t *testing.T) {
	got := SimpleMovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []null.Float{{}, null.FloatFrom(1.5), null.FloatFrom(2.5), null.FloatFrom(3.5)}
	assert.Equal(t, want, got)

	assert.Equal(t, make([]null.Float, 3), SimpleMovingAverage([]float64{1, 2, 3}, 4))
	assert.Equal(t, make([]null.Float, 3), SimpleMovingAverage([]float64{1, 2, 3}, 0))
}
