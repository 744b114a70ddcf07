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
	messariTimeseriesPath = "/v1/assets/%s/metrics/%s/time-series"
	messariDateLayout     = "2006-01-02"

	// value rows are [timestamp_ms, open, high, low, close, volume]
	messariTimestampColumn = 0
	messariCloseColumn     = 4
)

// MessariOptions parameterise the Messari timeseries fetcher.
type MessariOptions struct {
	BaseURL   string
	APIKey    string
	Interval  string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64
}

// Messari fetches daily asset metrics from the Messari API.
type Messari struct {
	opts    MessariOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewMessari constructs a Messari fetcher.
func NewMessari(opts MessariOptions, logger zerolog.Logger) *Messari {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://data.messari.io/api"
	}

	if opts.Interval == "" {
		opts.Interval = "1d"
	}

	return &Messari{
		opts:    opts,
		logger:  logger.With().Str("component", "messari_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: newLimiter(opts.RateLimit),
	}
}

// FetchTimeseries retrieves the close series of an asset slug between start
// and end (inclusive, day resolution).
func (m *Messari) FetchTimeseries(ctx context.Context, slug, metric string, start, end time.Time) (analytics.RawSeries, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, errors.New("asset slug required")
	}
	if metric != MetricPrice {
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s", end.Format(messariDateLayout), start.Format(messariDateLayout))
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("start", start.UTC().Format(messariDateLayout))
	params.Set("end", end.UTC().Format(messariDateLayout))
	params.Set("interval", m.opts.Interval)
	endpoint := m.baseURL + fmt.Sprintf(messariTimeseriesPath, url.PathEscape(slug), url.PathEscape(metric)) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(m.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "cryptodash/1.0")
	}
	if m.opts.APIKey != "" {
		req.Header.Set("x-messari-api-key", m.opts.APIKey)
	}

	m.logger.Debug().Str("asset", slug).Str("metric", metric).
		Time("start", start).Time("end", end).Msg("requesting timeseries")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError("messari", resp.StatusCode, payload)
	}

	var res messariTimeseriesResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode messari response: %w", err)
	}

	return res.series()
}

type messariTimeseriesResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data struct {
		Values [][]decimal.NullDecimal `json:"values"`
	} `json:"data"`
}

func (r messariTimeseriesResponse) series() (analytics.RawSeries, error) {
	if r.Status.ErrorMessage != "" {
		return nil, &APIError{Provider: "messari", StatusCode: r.Status.ErrorCode, Message: r.Status.ErrorMessage}
	}

	raw := make(analytics.RawSeries, len(r.Data.Values))
	for i, row := range r.Data.Values {
		if len(row) <= messariCloseColumn {
			return nil, fmt.Errorf("messari row %d has %d columns", i, len(row))
		}
		ts := row[messariTimestampColumn]
		closePrice := row[messariCloseColumn]
		if !ts.Valid {
			return nil, fmt.Errorf("messari row %d missing timestamp", i)
		}
		if !closePrice.Valid {
			continue
		}
		raw[time.UnixMilli(ts.Decimal.IntPart()).UTC()] = closePrice.Decimal.InexactFloat64()
	}
	return raw, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

var _ TimeseriesProvider = (*Messari)(nil)
