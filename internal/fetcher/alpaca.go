package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"crypto-dashboard/internal/analytics"
)

const (
	alpacaBarsPath  = "/v2/stocks/%s/bars"
	alpacaPageLimit = 10000
	alpacaMaxPages  = 50
)

// AlpacaOptions parameterise the Alpaca market-data fetcher.
type AlpacaOptions struct {
	BaseURL   string
	KeyID     string
	SecretKey string
	Feed      string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64
}

// Alpaca fetches daily equity bars from the Alpaca data API.
type Alpaca struct {
	opts    AlpacaOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewAlpaca constructs an Alpaca bars fetcher.
func NewAlpaca(opts AlpacaOptions, logger zerolog.Logger) *Alpaca {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://data.alpaca.markets"
	}
	if opts.Feed == "" {
		opts.Feed = "iex"
	}

	return &Alpaca{
		opts:    opts,
		logger:  logger.With().Str("component", "alpaca_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: newLimiter(opts.RateLimit),
	}
}

// FetchTimeseries returns the daily closes of symbol, following pagination
// until the provider reports no further pages.
func (a *Alpaca) FetchTimeseries(ctx context.Context, symbol, metric string, start, end time.Time) (analytics.RawSeries, error) {
	if a.opts.KeyID == "" || a.opts.SecretKey == "" {
		return nil, errors.New("alpaca key id and secret required")
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("symbol required")
	}
	if metric != MetricPrice {
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}

	raw := make(analytics.RawSeries)
	pageToken := ""
	for page := 0; page < alpacaMaxPages; page++ {
		res, err := a.fetchPage(ctx, symbol, start, end, pageToken)
		if err != nil {
			return nil, err
		}
		for _, bar := range res.Bars {
			ts, err := time.Parse(time.RFC3339, bar.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("parse bar timestamp %q: %w", bar.Timestamp, err)
			}
			raw[analytics.Day(ts)] = bar.Close.InexactFloat64()
		}
		if res.NextPageToken == nil || *res.NextPageToken == "" {
			return raw, nil
		}
		pageToken = *res.NextPageToken
	}

	return nil, fmt.Errorf("alpaca bars for %s: %w after %d pages", symbol, ErrPaginationLimit, alpacaMaxPages)
}

// ErrPaginationLimit reports a bar request that never reached its last page.
var ErrPaginationLimit = errors.New("pagination limit reached")

func (a *Alpaca) fetchPage(ctx context.Context, symbol string, start, end time.Time, pageToken string) (*alpacaBarsResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("timeframe", "1Day")
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("limit", fmt.Sprint(alpacaPageLimit))
	params.Set("adjustment", "raw")
	params.Set("feed", a.opts.Feed)
	if pageToken != "" {
		params.Set("page_token", pageToken)
	}
	endpoint := a.baseURL + fmt.Sprintf(alpacaBarsPath, url.PathEscape(symbol)) + "?" + params.Encode()

	a.logger.Debug().Str("symbol", symbol).Bool("next_page", pageToken != "").
		Time("start", start).Time("end", end).Msg("requesting bars")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", a.opts.KeyID)
	req.Header.Set("APCA-API-SECRET-KEY", a.opts.SecretKey)
	if ua := strings.TrimSpace(a.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError("alpaca", resp.StatusCode, payload)
	}

	var res alpacaBarsResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode alpaca response: %w", err)
	}
	return &res, nil
}

type alpacaBarsResponse struct {
	Symbol        string      `json:"symbol"`
	Bars          []alpacaBar `json:"bars"`
	NextPageToken *string     `json:"next_page_token"`
}

type alpacaBar struct {
	Timestamp string          `json:"t"`
	Open      decimal.Decimal `json:"o"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Close     decimal.Decimal `json:"c"`
	Volume    decimal.Decimal `json:"v"`
}

var _ TimeseriesProvider = (*Alpaca)(nil)
