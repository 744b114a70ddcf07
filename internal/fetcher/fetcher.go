package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
)

// MetricPrice is the only metric the dashboard requests.
const MetricPrice = "price"

// TimeseriesProvider retrieves a daily close series for one instrument.
type TimeseriesProvider interface {
	FetchTimeseries(ctx context.Context, identifier, metric string, start, end time.Time) (analytics.RawSeries, error)
}

// APIError is a non-2xx response from an upstream provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s api error (%d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// parseHTTPError extracts the most specific message a provider returned.
func parseHTTPError(provider string, status int, payload []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Status  struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	apiErr := &APIError{Provider: provider, StatusCode: status}
	if err := json.Unmarshal(payload, &body); err == nil {
		switch {
		case body.Status.ErrorMessage != "":
			apiErr.Message = body.Status.ErrorMessage
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" && len(payload) > 0 {
		apiErr.Message = strings.TrimSpace(string(payload))
	}
	return apiErr
}

// Registry routes catalog assets to the provider configured for them.
type Registry struct {
	providers map[string]TimeseriesProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]TimeseriesProvider)}
}

// Register binds a provider name used in the catalog to an implementation.
func (r *Registry) Register(name string, p TimeseriesProvider) {
	r.providers[name] = p
}

// Has reports whether a provider is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// FetchAsset fetches the price series of a catalog asset. Every failure is
// surfaced as ProviderFetchError.
func (r *Registry) FetchAsset(ctx context.Context, asset catalog.Asset, start, end time.Time) (analytics.RawSeries, error) {
	p, ok := r.providers[asset.Provider]
	if !ok {
		return nil, &analytics.ProviderFetchError{
			Asset:    asset.Name,
			Provider: asset.Provider,
			Err:      fmt.Errorf("provider %q not configured", asset.Provider),
		}
	}

	raw, err := p.FetchTimeseries(ctx, asset.Identifier, MetricPrice, start, end)
	if err != nil {
		return nil, &analytics.ProviderFetchError{Asset: asset.Name, Provider: asset.Provider, Err: err}
	}
	return raw, nil
}
