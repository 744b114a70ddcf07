package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-dashboard/internal/analytics"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := New(Default(), DefaultBenchmarks())
	require.NoError(t, err)

	assert.Len(t, c.Assets(), 13)
	assert.Len(t, c.Benchmarks(), 3)
	assert.Equal(t, "Bitcoin", c.Names()[0])
	assert.Equal(t, []string{"alpaca", "messari"}, c.Providers())

	btc, err := c.Lookup(" bitcoin ")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", btc.Identifier)
	assert.Equal(t, KindCrypto, btc.Kind)

	spy, err := c.Lookup("SPY")
	require.NoError(t, err)
	assert.Equal(t, KindBenchmark, spy.Kind)
}

func TestCatalogLookupUnknown(t *testing.T) {
	c, err := New(Default(), nil)
	require.NoError(t, err)

	_, err = c.Lookup("Dogecoin")
	var unknown *analytics.UnknownAssetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Dogecoin", unknown.Asset)
}

func TestCatalogRejectsBadEntries(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New([]Asset{{Name: "Bitcoin", Provider: "coingecko", Identifier: "btc"}}, nil)
	assert.Error(t, err)

	_, err = New([]Asset{{Name: "Bitcoin", Provider: "messari"}}, nil)
	assert.Error(t, err)

	dup := []Asset{
		{Name: "Bitcoin", Provider: "messari", Identifier: "bitcoin"},
		{Name: "BITCOIN", Provider: "messari", Identifier: "bitcoin"},
	}
	_, err = New(dup, nil)
	assert.Error(t, err)
}
