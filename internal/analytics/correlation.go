package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationRow is one asset's score against the ranked target.
type CorrelationRow struct {
	Asset string  `json:"asset"`
	Score float64 `json:"score"`
}

// SquaredCorrelation is a symmetric matrix of squared Pearson coefficients
// keyed by the table's asset order.
type SquaredCorrelation struct {
	Assets []string
	Matrix *mat.SymDense
}

// At returns the score for a pair of assets.
func (c SquaredCorrelation) At(a, b string) (float64, bool) {
	i, j := indexOf(c.Assets, a), indexOf(c.Assets, b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Matrix.At(i, j), true
}

// SquaredCorrelationMatrix correlates the trailing windowDays rows of every
// cumulative-return column and squares each coefficient.
//
// Squaring yields the coefficient of determination and throws the sign
// away, so a perfectly inverse pair scores the same as a perfectly aligned
// one.
func SquaredCorrelationMatrix(table *MultiAssetTable, windowDays int) (SquaredCorrelation, error) {
	window := table.Tail(windowDays)
	rows, cols := window.Len(), len(window.Assets)
	if rows < 2 {
		return SquaredCorrelation{}, &EmptySeriesError{Points: rows}
	}

	data := mat.NewDense(rows, cols, nil)
	var constant []string
	for j, asset := range window.Assets {
		column, _ := window.Column(asset)
		data.SetCol(j, column)
		if isConstant(column) {
			constant = append(constant, asset)
		}
	}
	if len(constant) > 0 {
		return SquaredCorrelation{}, &UndefinedCorrelationError{Assets: constant}
	}

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, data, nil)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			r := corr.At(i, j)
			corr.SetSym(i, j, clampUnit(r*r))
		}
	}

	return SquaredCorrelation{Assets: window.Assets, Matrix: corr}, nil
}

// Ranking is a correlation ranking together with the assets left out of it
// because their correlation is undefined in the window.
type Ranking struct {
	Rows      []CorrelationRow `json:"rows"`
	Undefined []string         `json:"undefined,omitempty"`
}

// CorrelationRanking scores every other asset against target over the
// trailing windowDays rows, ascending by score. A window larger than the
// table uses every row. Assets that are flat in the window are dropped; use
// RankCorrelations to learn which.
func CorrelationRanking(table *MultiAssetTable, target string, windowDays int) ([]CorrelationRow, error) {
	ranking, err := RankCorrelations(table, target, windowDays)
	if err != nil {
		return nil, err
	}
	return ranking.Rows, nil
}

// RankCorrelations is CorrelationRanking that also reports the excluded
// assets. Only a flat target fails the whole ranking.
func RankCorrelations(table *MultiAssetTable, target string, windowDays int) (Ranking, error) {
	if table == nil || !table.Has(target) {
		return Ranking{}, &UnknownAssetError{Asset: target}
	}

	window := table.Tail(windowDays)
	if window.Len() < 2 {
		return Ranking{}, &EmptySeriesError{Points: window.Len()}
	}

	var out Ranking
	defined := make([]string, 0, len(window.Assets))
	for _, asset := range window.Assets {
		column, _ := window.Column(asset)
		if !isConstant(column) {
			defined = append(defined, asset)
			continue
		}
		if asset == target {
			return Ranking{}, &UndefinedCorrelationError{Assets: []string{target}}
		}
		out.Undefined = append(out.Undefined, asset)
	}

	matrix, err := SquaredCorrelationMatrix(&MultiAssetTable{Assets: defined, Dates: window.Dates, Series: window.Series}, windowDays)
	if err != nil {
		return Ranking{}, err
	}

	t := indexOf(matrix.Assets, target)
	out.Rows = make([]CorrelationRow, 0, len(matrix.Assets)-1)
	for j, asset := range matrix.Assets {
		if j == t {
			continue
		}
		out.Rows = append(out.Rows, CorrelationRow{Asset: asset, Score: matrix.Matrix.At(t, j)})
	}
	sort.SliceStable(out.Rows, func(i, j int) bool { return out.Rows[i].Score < out.Rows[j].Score })
	return out, nil
}

// PairSquaredCorrelation correlates the cumulative returns of two series on
// the dates they share and squares the coefficient.
func PairSquaredCorrelation(a, b ReturnSeries) (float64, error) {
	byDate := make(map[time.Time]float64, b.Len())
	for _, p := range b.Points {
		byDate[p.Date] = p.CumulativeReturn
	}

	xs := make([]float64, 0, a.Len())
	ys := make([]float64, 0, a.Len())
	for _, p := range a.Points {
		if v, ok := byDate[p.Date]; ok {
			xs = append(xs, p.CumulativeReturn)
			ys = append(ys, v)
		}
	}
	if len(xs) == 0 {
		return 0, &NoOverlapError{Assets: []string{a.Asset, b.Asset}}
	}
	if len(xs) < 2 {
		return 0, &EmptySeriesError{Asset: a.Asset + "/" + b.Asset, Points: len(xs)}
	}

	var constant []string
	if isConstant(xs) {
		constant = append(constant, a.Asset)
	}
	if isConstant(ys) {
		constant = append(constant, b.Asset)
	}
	if len(constant) > 0 {
		return 0, &UndefinedCorrelationError{Assets: constant}
	}

	r := stat.Correlation(xs, ys, nil)
	return clampUnit(r * r), nil
}

func isConstant(values []float64) bool {
	return floats.Max(values) == floats.Min(values)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
