package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// EmptySeriesError reports a series too short to derive returns from.
type EmptySeriesError struct {
	Asset  string
	Points int
}

func (e *EmptySeriesError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("series has %d usable points, need at least 2", e.Points)
	}
	return fmt.Sprintf("%s: series has %d usable points, need at least 2", e.Asset, e.Points)
}

// InsufficientDownsideDataError reports a window without enough losing days
// to measure downside volatility or drawdown.
type InsufficientDownsideDataError struct {
	Asset        string
	NegativeDays int
	MaxDrawdown  float64
}

func (e *InsufficientDownsideDataError) Error() string {
	return fmt.Sprintf("%s: insufficient downside data (%d negative days, max drawdown %g)", e.label(), e.NegativeDays, e.MaxDrawdown)
}

func (e *InsufficientDownsideDataError) label() string {
	if e.Asset == "" {
		return "series"
	}
	return e.Asset
}

// UnknownAssetError reports an asset that is not part of the catalog or table.
type UnknownAssetError struct {
	Asset string
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("unknown asset %q", e.Asset)
}

// ProviderFetchError wraps a failure returned by the market-data provider.
type ProviderFetchError struct {
	Asset    string
	Provider string
	Err      error
}

func (e *ProviderFetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Asset, e.Provider, e.Err)
}

func (e *ProviderFetchError) Unwrap() error { return e.Err }

// PartialDataError names every asset whose series could not be loaded.
type PartialDataError struct {
	Assets []string
	Errs   []error
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("load aborted, failed assets: %s: %v", strings.Join(e.Assets, ", "), errors.Join(e.Errs...))
}

func (e *PartialDataError) Unwrap() []error { return e.Errs }

// NoOverlapError reports an inner join that left no shared dates.
type NoOverlapError struct {
	Assets []string
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("no shared dates across assets: %s", strings.Join(e.Assets, ", "))
}

// UndefinedCorrelationError reports columns whose Pearson correlation is
// undefined in the requested window (zero variance).
type UndefinedCorrelationError struct {
	Assets []string
}

func (e *UndefinedCorrelationError) Error() string {
	return fmt.Sprintf("correlation undefined for constant series: %s", strings.Join(e.Assets, ", "))
}
