package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"crypto-dashboard/internal/analytics"
)

// Cache memoizes normalized series and joined tables for the lifetime of the
// process. Concurrent callers asking for the same key share one in-flight
// computation; failures are not remembered.
type Cache struct {
	mu     sync.RWMutex
	series map[string]analytics.ReturnSeries
	tables map[string]*analytics.MultiAssetTable
	group  singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		series: make(map[string]analytics.ReturnSeries),
		tables: make(map[string]*analytics.MultiAssetTable),
	}
}

// SeriesKey identifies one asset over a day-resolution window.
func SeriesKey(asset string, start, end time.Time) string {
	return fmt.Sprintf("series|%s|%s|%s", asset, dayKey(start), dayKey(end))
}

// TableKey identifies an asset set over a day-resolution window, independent
// of asset order.
func TableKey(assets []string, start, end time.Time) string {
	sorted := append([]string(nil), assets...)
	sort.Strings(sorted)
	return fmt.Sprintf("table|%s|%s|%s", strings.Join(sorted, ","), dayKey(start), dayKey(end))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Series returns the cached series for key or computes it with load.
func (c *Cache) Series(ctx context.Context, key string, load func(context.Context) (analytics.ReturnSeries, error)) (analytics.ReturnSeries, error) {
	return lookup(ctx, c, c.series, key, load)
}

// Table returns the cached table for key or computes it with load.
func (c *Cache) Table(ctx context.Context, key string, load func(context.Context) (*analytics.MultiAssetTable, error)) (*analytics.MultiAssetTable, error) {
	return lookup(ctx, c, c.tables, key, load)
}

// lookup serves key from entries or joins the shared load. The load runs
// detached from the caller that started it, so one caller giving up does
// not fail the others waiting on the same key; each caller still returns
// as soon as its own ctx is done.
func lookup[T any](ctx context.Context, c *Cache, entries map[string]T, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.RLock()
	v, ok := entries[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.RLock()
		v, ok := entries[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		loaded, err := load(detached)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		entries[key] = loaded
		c.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Len reports the number of memoized entries.
func (c *Cache) Len() (series, tables int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series), len(c.tables)
}
