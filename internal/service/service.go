package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
)

// SeriesLoader is the slice of the loader the dashboard depends on.
type SeriesLoader interface {
	LoadSeries(ctx context.Context, asset string, start, end time.Time) (analytics.ReturnSeries, error)
	LoadAll(ctx context.Context, assets []string, start, end time.Time) (*analytics.MultiAssetTable, error)
}

// Selection is the user's choice of asset and look-back period.
type Selection struct {
	Asset  string `json:"asset" validate:"required"`
	Months int    `json:"months" validate:"required"`
}

// Options tune analysis behaviour.
type Options struct {
	MinMonths           int
	MaxMonths           int
	CorrelationMonths   int
	AnnualizationPolicy analytics.AnnualizationPolicy
	RiskFreeRate        float64
	Channel             analytics.ChannelOptions
	Benchmarks          bool
}

// BenchmarkCorrelation scores the selected asset against an equity index.
type BenchmarkCorrelation struct {
	Benchmark string  `json:"benchmark"`
	Score     float64 `json:"score"`
	Error     string  `json:"error,omitempty"`
}

// Analysis gathers every result derived for one selection.
type Analysis struct {
	Asset        string                      `json:"asset"`
	Months       int                         `json:"months"`
	Start        time.Time                   `json:"start"`
	End          time.Time                   `json:"end"`
	GeneratedAt  time.Time                   `json:"generated_at"`
	Series       analytics.ReturnSeries      `json:"series"`
	Channel      analytics.RegressionChannel `json:"channel"`
	Statistics   *analytics.TokenStatistics  `json:"statistics,omitempty"`
	Correlations []analytics.CorrelationRow  `json:"correlations,omitempty"`
	Benchmarks   []BenchmarkCorrelation      `json:"benchmarks,omitempty"`
	Warnings     []string                    `json:"warnings,omitempty"`
}

// ValidationError reports a rejected selection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Dashboard orchestrates loading and the analytics core for one selection.
type Dashboard struct {
	loader   SeriesLoader
	catalog  *catalog.Catalog
	opts     Options
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

// New constructs the dashboard service.
func New(loader SeriesLoader, cat *catalog.Catalog, opts Options, logger zerolog.Logger) *Dashboard {
	if opts.MinMonths <= 0 {
		opts.MinMonths = 1
	}
	if opts.MaxMonths < opts.MinMonths {
		opts.MaxMonths = 60
	}
	if opts.CorrelationMonths <= 0 {
		opts.CorrelationMonths = 12
	}
	if opts.AnnualizationPolicy == "" {
		opts.AnnualizationPolicy = analytics.AnnualizeYear
	}

	return &Dashboard{
		loader:   loader,
		catalog:  cat,
		opts:     opts,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("component", "dashboard").Logger(),
	}
}

// Catalog returns the asset table used to validate selections.
func (d *Dashboard) Catalog() *catalog.Catalog { return d.catalog }

// Window derives the fetch interval of a selection: end is today's UTC day
// and start lies the given number of calendar months before it.
func (d *Dashboard) Window(months int) (time.Time, time.Time) {
	end := analytics.Day(d.now())
	return end.AddDate(0, -months, 0), end
}

// Validate checks the selection against the catalog and the month bounds.
func (d *Dashboard) Validate(sel Selection) (catalog.Asset, error) {
	if err := d.validate.Struct(sel); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return catalog.Asset{}, &ValidationError{Field: verrs[0].Field(), Reason: verrs[0].Tag()}
		}
		return catalog.Asset{}, err
	}
	if sel.Months < d.opts.MinMonths || sel.Months > d.opts.MaxMonths {
		return catalog.Asset{}, &ValidationError{
			Field:  "Months",
			Reason: fmt.Sprintf("must be between %d and %d", d.opts.MinMonths, d.opts.MaxMonths),
		}
	}
	asset, err := d.catalog.Lookup(sel.Asset)
	if err != nil {
		return catalog.Asset{}, err
	}
	if asset.Kind != catalog.KindCrypto {
		return catalog.Asset{}, &analytics.UnknownAssetError{Asset: sel.Asset}
	}
	return asset, nil
}

// Analyze loads the selected asset and derives the channel, statistics,
// correlation ranking and benchmark correlations. A selection whose series
// cannot be loaded fails; statistics and correlation failures are reported
// as warnings next to the partial result.
func (d *Dashboard) Analyze(ctx context.Context, sel Selection) (*Analysis, error) {
	asset, err := d.Validate(sel)
	if err != nil {
		return nil, err
	}

	start, end := d.Window(sel.Months)
	log := d.logger.With().Str("asset", asset.Name).Int("months", sel.Months).Logger()
	log.Info().Time("start", start).Time("end", end).Msg("analysing selection")

	series, err := d.loader.LoadSeries(ctx, asset.Name, start, end)
	if err != nil {
		log.Error().Err(err).Msg("load series failed")
		return nil, fmt.Errorf("load %s: %w", asset.Name, err)
	}

	channel, err := analytics.BuildChannel(series, d.opts.Channel)
	if err != nil {
		return nil, fmt.Errorf("build channel: %w", err)
	}

	out := &Analysis{
		Asset:       asset.Name,
		Months:      sel.Months,
		Start:       start,
		End:         end,
		GeneratedAt: d.now(),
		Series:      series,
		Channel:     channel,
	}

	days, err := analytics.AnnualizationDays(sel.Months, d.opts.AnnualizationPolicy)
	if err != nil {
		return nil, err
	}

	stats, err := analytics.ComputeStatistics(series, days, d.opts.RiskFreeRate)
	if err != nil {
		log.Warn().Err(err).Msg("statistics unavailable")
		out.Warnings = append(out.Warnings, err.Error())
	} else {
		out.Statistics = &stats
	}

	ranking, err := d.correlations(ctx, asset.Name, days)
	if err != nil {
		log.Warn().Err(err).Msg("correlation ranking unavailable")
		out.Warnings = append(out.Warnings, err.Error())
	} else {
		out.Correlations = ranking.Rows
		if len(ranking.Undefined) > 0 {
			err := &analytics.UndefinedCorrelationError{Assets: ranking.Undefined}
			log.Warn().Err(err).Msg("assets left out of correlation ranking")
			out.Warnings = append(out.Warnings, err.Error()+" (excluded from ranking)")
		}
	}

	if d.opts.Benchmarks {
		out.Benchmarks = d.benchmarks(ctx, series, start, end, log)
	}

	log.Info().Int("points", series.Len()).Int("warnings", len(out.Warnings)).Msg("analysis complete")
	return out, nil
}

// Correlations ranks every catalog asset against target over the reference
// period, windowed to the annualization days of the given months.
func (d *Dashboard) Correlations(ctx context.Context, sel Selection) ([]analytics.CorrelationRow, error) {
	asset, err := d.Validate(sel)
	if err != nil {
		return nil, err
	}
	days, err := analytics.AnnualizationDays(sel.Months, d.opts.AnnualizationPolicy)
	if err != nil {
		return nil, err
	}
	ranking, err := d.correlations(ctx, asset.Name, days)
	if err != nil {
		return nil, err
	}
	return ranking.Rows, nil
}

func (d *Dashboard) correlations(ctx context.Context, target string, windowDays int) (analytics.Ranking, error) {
	start, end := d.Window(d.opts.CorrelationMonths)
	table, err := d.loader.LoadAll(ctx, d.catalog.Names(), start, end)
	if err != nil {
		return analytics.Ranking{}, fmt.Errorf("load correlation table: %w", err)
	}
	return analytics.RankCorrelations(table, target, windowDays)
}

func (d *Dashboard) benchmarks(ctx context.Context, series analytics.ReturnSeries, start, end time.Time, log zerolog.Logger) []BenchmarkCorrelation {
	benchmarks := d.catalog.Benchmarks()
	out := make([]BenchmarkCorrelation, 0, len(benchmarks))
	for _, b := range benchmarks {
		row := BenchmarkCorrelation{Benchmark: b.Name}
		bench, err := d.loader.LoadSeries(ctx, b.Name, start, end)
		if err == nil {
			row.Score, err = analytics.PairSquaredCorrelation(series, bench)
		}
		if err != nil {
			log.Warn().Err(err).Str("benchmark", b.Name).Msg("benchmark correlation unavailable")
			row.Error = err.Error()
		}
		out = append(out, row)
	}
	return out
}
