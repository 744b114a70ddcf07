package analytics

import (
	"sort"
	"time"
)

// MultiAssetTable holds several assets' series aligned on a shared date
// index. Every entry of Series has exactly len(Dates) points.
type MultiAssetTable struct {
	Assets []string                `json:"assets"`
	Dates  []time.Time             `json:"dates"`
	Series map[string]ReturnSeries `json:"series"`
}

// Len returns the number of shared rows.
func (t *MultiAssetTable) Len() int { return len(t.Dates) }

// Has reports whether asset is a column of the table.
func (t *MultiAssetTable) Has(asset string) bool {
	_, ok := t.Series[asset]
	return ok
}

// Column returns one asset's cumulative returns in table order.
func (t *MultiAssetTable) Column(asset string) ([]float64, bool) {
	s, ok := t.Series[asset]
	if !ok {
		return nil, false
	}
	return s.CumulativeReturns(), true
}

// Prices returns one asset's close prices in table order.
func (t *MultiAssetTable) Prices(asset string) ([]float64, bool) {
	s, ok := t.Series[asset]
	if !ok {
		return nil, false
	}
	return s.Closes(), true
}

// Tail returns a view over the trailing n rows, or the whole table when n
// exceeds the available rows.
func (t *MultiAssetTable) Tail(n int) *MultiAssetTable {
	if n <= 0 || n >= len(t.Dates) {
		return t
	}
	out := &MultiAssetTable{
		Assets: t.Assets,
		Dates:  t.Dates[len(t.Dates)-n:],
		Series: make(map[string]ReturnSeries, len(t.Series)),
	}
	for name, s := range t.Series {
		out.Series[name] = s.Tail(n)
	}
	return out
}

// JoinOnDate inner-joins normalized series on date. Only dates present in
// every series survive; each asset keeps its own returns for those dates.
func JoinOnDate(series ...ReturnSeries) (*MultiAssetTable, error) {
	assets := make([]string, len(series))
	for i, s := range series {
		assets[i] = s.Asset
	}
	if len(series) == 0 {
		return nil, &NoOverlapError{}
	}

	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, p := range s.Points {
			counts[p.Date]++
		}
	}

	shared := make([]time.Time, 0, len(counts))
	for day, c := range counts {
		if c == len(series) {
			shared = append(shared, day)
		}
	}
	if len(shared) == 0 {
		return nil, &NoOverlapError{Assets: assets}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].Before(shared[j]) })

	keep := make(map[time.Time]struct{}, len(shared))
	for _, day := range shared {
		keep[day] = struct{}{}
	}

	table := &MultiAssetTable{
		Assets: assets,
		Dates:  shared,
		Series: make(map[string]ReturnSeries, len(series)),
	}
	for _, s := range series {
		points := make([]ReturnPoint, 0, len(shared))
		for _, p := range s.Points {
			if _, ok := keep[p.Date]; ok {
				points = append(points, p)
			}
		}
		table.Series[s.Asset] = ReturnSeries{Asset: s.Asset, Points: points}
	}
	return table, nil
}
