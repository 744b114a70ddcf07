package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlpacaFetchFollowsPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("APCA-API-KEY-ID") != "key" || r.Header.Get("APCA-API-SECRET-KEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v2/stocks/SPY/bars" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("timeframe") != "1Day" {
			t.Errorf("unexpected timeframe %s", r.URL.Query().Get("timeframe"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page_token") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"symbol": "SPY",
				"bars": []map[string]any{
					{"t": "2024-01-02T05:00:00Z", "o": 470, "h": 473, "l": 469, "c": 472.65, "v": 1000},
				},
				"next_page_token": "p2",
			})
		case "p2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"symbol": "SPY",
				"bars": []map[string]any{
					{"t": "2024-01-03T05:00:00Z", "o": 471, "h": 472, "l": 467, "c": 468.79, "v": 900},
				},
				"next_page_token": nil,
			})
		default:
			t.Errorf("unexpected page token")
		}
	}))
	defer srv.Close()

	a := NewAlpaca(AlpacaOptions{BaseURL: srv.URL, KeyID: "key", SecretKey: "secret", Timeout: time.Second}, noopLogger())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := a.FetchTimeseries(context.Background(), "SPY", MetricPrice, start, start.AddDate(0, 0, 5))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, raw, 2)
	assert.InDelta(t, 472.65, raw[time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)], 1e-9)
	assert.InDelta(t, 468.79, raw[time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)], 1e-9)
}

func TestAlpacaFetchFailsWhenPagesNeverEnd(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"symbol": "ARKK",
			"bars": []map[string]any{
				{"t": "2024-01-02T05:00:00Z", "o": 50, "h": 51, "l": 49, "c": 50.5, "v": 10},
			},
			"next_page_token": fmt.Sprintf("p%d", calls),
		})
	}))
	defer srv.Close()

	a := NewAlpaca(AlpacaOptions{BaseURL: srv.URL, KeyID: "key", SecretKey: "secret", Timeout: time.Second}, noopLogger())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := a.FetchTimeseries(context.Background(), "ARKK", MetricPrice, start, start.AddDate(0, 0, 5))
	require.ErrorIs(t, err, ErrPaginationLimit)
	assert.Nil(t, raw)
	assert.Equal(t, alpacaMaxPages, calls)
}

func TestAlpacaFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"forbidden."}`))
	}))
	defer srv.Close()

	a := NewAlpaca(AlpacaOptions{BaseURL: srv.URL, KeyID: "key", SecretKey: "secret"}, noopLogger())
	_, err := a.FetchTimeseries(context.Background(), "QQQ", MetricPrice, time.Now().AddDate(0, -1, 0), time.Now())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "forbidden.", apiErr.Message)
}

func TestAlpacaMissingCredentials(t *testing.T) {
	a := NewAlpaca(AlpacaOptions{}, noopLogger())
	_, err := a.FetchTimeseries(context.Background(), "ARKK", MetricPrice, time.Now().AddDate(0, -1, 0), time.Now())
	assert.Error(t, err)
}
