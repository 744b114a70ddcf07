package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"crypto-dashboard/internal/service"
)

var csvHeader = []string{
	"date", "close", "daily_return", "cumulative_return",
	"fitted", "upper_1", "lower_1", "upper_2", "lower_2",
	"slow_sma", "fast_sma",
}

// WriteCSV writes one row per series point with the channel alongside.
// Values keep full precision; undefined averages are left empty.
func WriteCSV(w io.Writer, a *service.Analysis) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	ch := a.Channel
	for i, p := range a.Series.Points {
		record := []string{
			p.Date.Format(time.DateOnly),
			formatFloat(p.Close),
			formatFloat(p.DailyReturn),
			formatFloat(p.CumulativeReturn),
			formatAt(ch.Fitted, i),
			formatAt(ch.Upper1, i),
			formatAt(ch.Lower1, i),
			formatAt(ch.Upper2, i),
			formatAt(ch.Lower2, i),
			formatNull(ch.SlowSMA, i),
			formatNull(ch.FastSMA, i),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatAt(values []float64, i int) string {
	if i >= len(values) {
		return ""
	}
	return formatFloat(values[i])
}

func formatNull(values []null.Float, i int) string {
	if i >= len(values) || !values[i].Valid {
		return ""
	}
	return formatFloat(values[i].Float64)
}

// CreateFile opens path for writing, creating parent directories.
func CreateFile(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
