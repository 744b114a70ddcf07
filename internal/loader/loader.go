// Package loader fetches, normalizes and aligns asset series. It performs
// network calls only through the injected SeriesSource and never logs.
package loader

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
)

const defaultConcurrency = 4

// SeriesSource fetches the raw close series of a catalog asset.
type SeriesSource interface {
	FetchAsset(ctx context.Context, asset catalog.Asset, start, end time.Time) (analytics.RawSeries, error)
}

// Options tune the loader.
type Options struct {
	// Concurrency bounds parallel upstream fetches.
	Concurrency int
}

// Loader builds normalized series and multi-asset tables.
type Loader struct {
	source  SeriesSource
	catalog *catalog.Catalog
	cache   *Cache
	limit   int
}

// New wires a loader. A nil cache disables memoization.
func New(source SeriesSource, cat *catalog.Catalog, cache *Cache, opts Options) *Loader {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	return &Loader{source: source, catalog: cat, cache: cache, limit: limit}
}

// LoadSeries fetches and normalizes one asset.
func (l *Loader) LoadSeries(ctx context.Context, name string, start, end time.Time) (analytics.ReturnSeries, error) {
	asset, err := l.catalog.Lookup(name)
	if err != nil {
		return analytics.ReturnSeries{}, err
	}
	return l.loadAsset(ctx, asset, start, end)
}

func (l *Loader) loadAsset(ctx context.Context, asset catalog.Asset, start, end time.Time) (analytics.ReturnSeries, error) {
	load := func(ctx context.Context) (analytics.ReturnSeries, error) {
		raw, err := l.source.FetchAsset(ctx, asset, start, end)
		if err != nil {
			return analytics.ReturnSeries{}, err
		}
		return analytics.Normalize(raw, asset.Name)
	}
	if l.cache == nil {
		return load(ctx)
	}
	return l.cache.Series(ctx, SeriesKey(asset.Name, start, end), load)
}

// LoadAll fetches every asset in parallel and inner-joins them on date. Any
// asset that fails aborts the load with a PartialDataError naming all the
// failures; no table over a subset is ever returned.
func (l *Loader) LoadAll(ctx context.Context, names []string, start, end time.Time) (*analytics.MultiAssetTable, error) {
	assets := make([]catalog.Asset, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		a, err := l.catalog.Lookup(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[a.Name]; dup {
			continue
		}
		seen[a.Name] = struct{}{}
		assets = append(assets, a)
	}
	if len(assets) == 0 {
		return nil, &analytics.NoOverlapError{}
	}

	load := func(ctx context.Context) (*analytics.MultiAssetTable, error) {
		return l.loadTable(ctx, assets, start, end)
	}
	if l.cache == nil {
		return load(ctx)
	}

	canonical := make([]string, len(assets))
	for i, a := range assets {
		canonical[i] = a.Name
	}
	return l.cache.Table(ctx, TableKey(canonical, start, end), load)
}

func (l *Loader) loadTable(ctx context.Context, assets []catalog.Asset, start, end time.Time) (*analytics.MultiAssetTable, error) {
	series := make([]analytics.ReturnSeries, len(assets))
	failures := make([]error, len(assets))

	var g errgroup.Group
	g.SetLimit(l.limit)
	for i, asset := range assets {
		g.Go(func() error {
			s, err := l.loadAsset(ctx, asset, start, end)
			if err != nil {
				failures[i] = err
				return err
			}
			series[i] = s
			return nil
		})
	}
	// a plain Group keeps going after a failure, so every asset reports
	if err := g.Wait(); err == nil {
		return analytics.JoinOnDate(series...)
	}

	var partial analytics.PartialDataError
	for i, err := range failures {
		if err != nil {
			partial.Assets = append(partial.Assets, assets[i].Name)
			partial.Errs = append(partial.Errs, err)
		}
	}
	return nil, &partial
}

// Catalog exposes the asset table the loader resolves names against.
func (l *Loader) Catalog() *catalog.Catalog { return l.catalog }
