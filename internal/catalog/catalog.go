// Package catalog is the single table of supported assets shared by the
// selection validator, the loader and the correlation engine.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"crypto-dashboard/internal/analytics"
)

// Kind separates tradable crypto assets from equity benchmarks.
type Kind string

const (
	KindCrypto    Kind = "crypto"
	KindBenchmark Kind = "benchmark"
)

// Asset maps a display name to the provider serving it.
type Asset struct {
	Name       string `mapstructure:"name" json:"name" validate:"required"`
	Provider   string `mapstructure:"provider" json:"provider" validate:"required,oneof=messari alpaca"`
	Identifier string `mapstructure:"identifier" json:"identifier" validate:"required"`
	Kind       Kind   `mapstructure:"-" json:"kind"`
}

// Catalog indexes assets by case-insensitive name.
type Catalog struct {
	assets     []Asset
	benchmarks []Asset
	byName     map[string]Asset
}

var validate = validator.New()

// New validates the entries and builds a catalog.
func New(assets, benchmarks []Asset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Asset, len(assets)+len(benchmarks))}
	if len(assets) == 0 {
		return nil, fmt.Errorf("catalog: at least one asset required")
	}

	add := func(a Asset, kind Kind) error {
		if err := validate.Struct(a); err != nil {
			return fmt.Errorf("catalog entry %q: %w", a.Name, err)
		}
		key := strings.ToLower(a.Name)
		if _, dup := c.byName[key]; dup {
			return fmt.Errorf("catalog: duplicate asset %q", a.Name)
		}
		a.Kind = kind
		c.byName[key] = a
		if kind == KindBenchmark {
			c.benchmarks = append(c.benchmarks, a)
		} else {
			c.assets = append(c.assets, a)
		}
		return nil
	}

	for _, a := range assets {
		if err := add(a, KindCrypto); err != nil {
			return nil, err
		}
	}
	for _, b := range benchmarks {
		if err := add(b, KindBenchmark); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Lookup resolves a name, returning UnknownAssetError when absent.
func (c *Catalog) Lookup(name string) (Asset, error) {
	a, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Asset{}, &analytics.UnknownAssetError{Asset: name}
	}
	return a, nil
}

// Assets returns the crypto assets in configured order.
func (c *Catalog) Assets() []Asset {
	return append([]Asset(nil), c.assets...)
}

// Benchmarks returns the equity benchmarks in configured order.
func (c *Catalog) Benchmarks() []Asset {
	return append([]Asset(nil), c.benchmarks...)
}

// Names returns the crypto asset names in configured order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.assets))
	for i, a := range c.assets {
		names[i] = a.Name
	}
	return names
}

// Providers lists the distinct providers referenced by the catalog.
func (c *Catalog) Providers() []string {
	seen := map[string]struct{}{}
	for _, a := range c.byName {
		seen[a.Provider] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Default is the asset list the dashboard has always offered.
func Default() []Asset {
	names := []struct{ name, slug string }{
		{"Bitcoin", "bitcoin"},
		{"Ethereum", "ethereum"},
		{"Cardano", "cardano"},
		{"Solana", "solana"},
		{"Avalanche", "avalanche"},
		{"Polkadot", "polkadot"},
		{"Polygon", "polygon"},
		{"NEAR", "near-protocol"},
		{"Algorand", "algorand"},
		{"Cosmos", "cosmos"},
		{"Fantom", "fantom"},
		{"Mina", "mina"},
		{"Celo", "celo"},
	}
	out := make([]Asset, len(names))
	for i, n := range names {
		out[i] = Asset{Name: n.name, Provider: "messari", Identifier: n.slug}
	}
	return out
}

// DefaultBenchmarks are the equity indices correlated against.
func DefaultBenchmarks() []Asset {
	return []Asset{
		{Name: "SPY", Provider: "alpaca", Identifier: "SPY"},
		{Name: "QQQ", Provider: "alpaca", Identifier: "QQQ"},
		{Name: "ARKK", Provider: "alpaca", Identifier: "ARKK"},
	}
}
