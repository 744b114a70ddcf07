package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// correlatedTable builds a table where B tracks A, C mirrors A and D is a
// noisy oscillation.
func correlatedTable(t *testing.T, rows int) *MultiAssetTable {
	t.Helper()
	days := make([]int, rows)
	a := make([]float64, rows)
	b := make([]float64, rows)
	c := make([]float64, rows)
	d := make([]float64, rows)
	for i := 0; i < rows; i++ {
		days[i] = i
		x := float64(i)
		a[i] = 1 + 0.01*x
		b[i] = 1 + 0.02*x + 0.005*math.Sin(x)
		c[i] = 3 - 0.01*x
		d[i] = 1 + 0.3*math.Sin(x*1.7) + 0.2*math.Cos(x*0.3)
	}
	table, err := JoinOnDate(
		seriesOnDays("A", days, a),
		seriesOnDays("B", days, b),
		seriesOnDays("C", days, c),
		seriesOnDays("D", days, d),
	)
	require.NoError(t, err)
	return table
}

func TestCorrelationRankingProperties(t *testing.T) {
	table := correlatedTable(t, 200)

	rows, err := CorrelationRanking(table, "A", 90)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, row := range rows {
		assert.NotEqual(t, "A", row.Asset)
		assert.GreaterOrEqual(t, row.Score, 0.0)
		assert.LessOrEqual(t, row.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, rows[i-1].Score, row.Score)
		}
	}

	// the mirrored series scores as high as the tracking one; sign is discarded
	byAsset := map[string]float64{}
	for _, row := range rows {
		byAsset[row.Asset] = row.Score
	}
	assert.InDelta(t, 1.0, byAsset["C"], 1e-9)
	assert.Greater(t, byAsset["B"], 0.99)
	assert.Equal(t, "D", rows[0].Asset)
}

func TestCorrelationRankingWindowLargerThanTable(t *testing.T) {
	table := correlatedTable(t, 200)

	all, err := CorrelationRanking(table, "B", 200)
	require.NoError(t, err)
	over, err := CorrelationRanking(table, "B", 400)
	require.NoError(t, err)
	assert.Equal(t, all, over)
}

func TestCorrelationRankingUsesTrailingRows(t *testing.T) {
	table := correlatedTable(t, 200)

	full, err := SquaredCorrelationMatrix(table, 200)
	require.NoError(t, err)
	tail, err := SquaredCorrelationMatrix(table, 30)
	require.NoError(t, err)

	fullAD, _ := full.At("A", "D")
	tailAD, _ := tail.At("A", "D")
	assert.NotEqual(t, fullAD, tailAD)

	self, ok := tail.At("D", "D")
	require.True(t, ok)
	assert.InDelta(t, 1.0, self, 1e-12)
	_, ok = tail.At("A", "Z")
	assert.False(t, ok)
}

func TestCorrelationRankingUnknownAsset(t *testing.T) {
	table := correlatedTable(t, 20)

	_, err := CorrelationRanking(table, "Dogecoin", 10)
	var unknown *UnknownAssetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Dogecoin", unknown.Asset)

	_, err = CorrelationRanking(nil, "A", 10)
	assert.ErrorAs(t, err, &unknown)
}

func TestCorrelationRankingDegenerateWindows(t *testing.T) {
	flat := seriesOnDays("Flat", []int{0, 1, 2, 3}, []float64{1, 1, 1, 1})
	moving := seriesOnDays("Moving", []int{0, 1, 2, 3}, []float64{1, 1.1, 1.05, 1.2})
	table, err := JoinOnDate(flat, moving)
	require.NoError(t, err)

	_, err = CorrelationRanking(table, "Flat", 30)
	var undefined *UndefinedCorrelationError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, []string{"Flat"}, undefined.Assets)

	_, err = SquaredCorrelationMatrix(table, 30)
	require.ErrorAs(t, err, &undefined)

	_, err = CorrelationRanking(table, "Moving", 1)
	var empty *EmptySeriesError
	assert.ErrorAs(t, err, &empty)
}

func TestRankCorrelationsSkipsFlatAssets(t *testing.T) {
	days := make([]int, 60)
	flat := make([]float64, 60)
	for i := range days {
		days[i] = i
		flat[i] = 1
	}
	base := correlatedTable(t, 60)
	series := []ReturnSeries{seriesOnDays("Stale", days, flat)}
	for _, name := range base.Assets {
		series = append(series, base.Series[name])
	}
	table, err := JoinOnDate(series...)
	require.NoError(t, err)

	ranking, err := RankCorrelations(table, "A", 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stale"}, ranking.Undefined)
	require.Len(t, ranking.Rows, 3)
	for _, row := range ranking.Rows {
		assert.NotEqual(t, "Stale", row.Asset)
	}

	rows, err := CorrelationRanking(table, "B", 30)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPairSquaredCorrelation(t *testing.T) {
	a := seriesOnDays("Bitcoin", []int{0, 1, 2, 3, 4, 5}, []float64{1, 1.1, 1.2, 1.3, 1.4, 1.5})
	b := seriesOnDays("SPY", []int{2, 3, 4, 5, 6}, []float64{2, 1.9, 1.8, 1.7, 1.6})

	got, err := PairSquaredCorrelation(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)

	c := seriesOnDays("QQQ", []int{10, 11}, []float64{1, 2})
	_, err = PairSquaredCorrelation(a, c)
	var noOverlap *NoOverlapError
	assert.ErrorAs(t, err, &noOverlap)

	flat := seriesOnDays("ARKK", []int{0, 1, 2}, []float64{1, 1, 1})
	_, err = PairSquaredCorrelation(a, flat)
	var undefined *UndefinedCorrelationError
	assert.ErrorAs(t, err, &undefined)
}
