package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinOnDateInnerJoin(t *testing.T) {
	a := seriesOnDays("A", []int{1, 2, 3, 4, 5}, []float64{1.0, 1.1, 1.2, 1.3, 1.4})
	b := seriesOnDays("B", []int{3, 4, 5, 6, 7}, []float64{0.9, 0.8, 0.7, 0.6, 0.5})

	table, err := JoinOnDate(a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Assets)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, dayN(3), table.Dates[0])
	assert.Equal(t, dayN(5), table.Dates[2])

	colA, ok := table.Column("A")
	require.True(t, ok)
	assert.Equal(t, []float64{1.2, 1.3, 1.4}, colA)
	colB, _ := table.Column("B")
	assert.Equal(t, []float64{0.9, 0.8, 0.7}, colB)

	prices, ok := table.Prices("B")
	require.True(t, ok)
	assert.Len(t, prices, 3)
}

func TestJoinOnDateNoOverlap(t *testing.T) {
	a := seriesOnDays("A", []int{1, 2}, []float64{1, 1.1})
	b := seriesOnDays("B", []int{3, 4}, []float64{1, 0.9})

	_, err := JoinOnDate(a, b)
	var noOverlap *NoOverlapError
	require.ErrorAs(t, err, &noOverlap)
	assert.Equal(t, []string{"A", "B"}, noOverlap.Assets)

	_, err = JoinOnDate()
	assert.ErrorAs(t, err, &noOverlap)
}

func TestTableTail(t *testing.T) {
	a := seriesOnDays("A", []int{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	table, err := JoinOnDate(a)
	require.NoError(t, err)

	tail := table.Tail(2)
	assert.Equal(t, 2, tail.Len())
	col, _ := tail.Column("A")
	assert.Equal(t, []float64{3, 4}, col)
	assert.Same(t, table, table.Tail(10))
	assert.False(t, table.Has("B"))
}
