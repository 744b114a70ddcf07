package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessariFetchSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("x-messari-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": {"elapsed": 10, "timestamp": "2024-01-04T00:00:00Z"},
			"data": {
				"values": [
					[1704067200000, 42000.1, 42500, 41800, 42250.5, 1000],
					[1704153600000, 42250.5, 45000, 42000, 44900.25, 1200],
					[1704240000000, 44900, 45100, 42100, null, 900]
				]
			}
		}`))
	}))
	defer srv.Close()

	m := NewMessari(MessariOptions{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second}, noopLogger())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := m.FetchTimeseries(context.Background(), "bitcoin", MetricPrice, start, start.AddDate(0, 0, 3))
	require.NoError(t, err)

	assert.Equal(t, "/v1/assets/bitcoin/metrics/price/time-series", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"2024-01-01"}, gotQuery["start"])
	assert.Equal(t, []string{"2024-01-04"}, gotQuery["end"])
	assert.Equal(t, []string{"1d"}, gotQuery["interval"])

	require.Len(t, raw, 2)
	assert.InDelta(t, 42250.5, raw[start], 1e-9)
	assert.InDelta(t, 44900.25, raw[start.AddDate(0, 0, 1)], 1e-9)
}

func TestMessariFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":{"error_code":429,"error_message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	m := NewMessari(MessariOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := m.FetchTimeseries(context.Background(), "solana", MetricPrice, time.Now().AddDate(0, -1, 0), time.Now())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate limit exceeded", apiErr.Message)
}

func TestMessariFetchStatusErrorInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":404,"error_message":"asset not found"},"data":null}`))
	}))
	defer srv.Close()

	m := NewMessari(MessariOptions{BaseURL: srv.URL}, noopLogger())
	_, err := m.FetchTimeseries(context.Background(), "nope", MetricPrice, time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorContains(t, err, "asset not found")
}

func TestMessariFetchValidation(t *testing.T) {
	m := NewMessari(MessariOptions{BaseURL: "http://127.0.0.1:0"}, noopLogger())
	now := time.Now()

	_, err := m.FetchTimeseries(context.Background(), "", MetricPrice, now.AddDate(0, -1, 0), now)
	assert.Error(t, err)
	_, err = m.FetchTimeseries(context.Background(), "bitcoin", "volume", now.AddDate(0, -1, 0), now)
	assert.Error(t, err)
	_, err = m.FetchTimeseries(context.Background(), "bitcoin", MetricPrice, now, now.AddDate(0, -1, 0))
	assert.Error(t, err)
}

func TestMessariMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"values":[[1704067200000, 1, 2]]}}`))
	}))
	defer srv.Close()

	m := NewMessari(MessariOptions{BaseURL: srv.URL, RateLimit: 5}, noopLogger())
	_, err := m.FetchTimeseries(context.Background(), "mina", MetricPrice, time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorContains(t, err, "columns")
}
