package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
	"crypto-dashboard/internal/report"
	"crypto-dashboard/internal/service"
)

// Analyzer is the dashboard surface the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, sel service.Selection) (*service.Analysis, error)
	Correlations(ctx context.Context, sel service.Selection) ([]analytics.CorrelationRow, error)
	Catalog() *catalog.Catalog
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	dashboard     Analyzer
	defaultMonths int
	logger        zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(dashboard Analyzer, defaultMonths int, logger zerolog.Logger) *Handler {
	if defaultMonths <= 0 {
		defaultMonths = 12
	}
	return &Handler{
		dashboard:     dashboard,
		defaultMonths: defaultMonths,
		logger:        logger.With().Str("component", "api").Logger(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListAssets handles GET /assets
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	cat := h.dashboard.Catalog()
	respondJSON(w, http.StatusOK, map[string][]catalog.Asset{
		"assets":     cat.Assets(),
		"benchmarks": cat.Benchmarks(),
	})
}

// GetAnalysis handles GET /assets/{asset}/analysis
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analyze(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report.NewView(analysis))
}

// GetChannel handles GET /assets/{asset}/channel
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analyze(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analysis.Channel)
}

// GetStatistics handles GET /assets/{asset}/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analyze(w, r)
	if !ok {
		return
	}
	if analysis.Statistics == nil {
		respondError(w, http.StatusUnprocessableEntity, joinWarnings(analysis.Warnings))
		return
	}
	respondJSON(w, http.StatusOK, report.NewStatisticsView(*analysis.Statistics))
}

// GetCorrelations handles GET /assets/{asset}/correlations
func (h *Handler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	rows, err := h.dashboard.Correlations(r.Context(), sel)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report.NewCorrelationViews(rows))
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) (*service.Analysis, bool) {
	sel, err := h.selection(r)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	analysis, err := h.dashboard.Analyze(r.Context(), sel)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return analysis, true
}

func (h *Handler) selection(r *http.Request) (service.Selection, error) {
	sel := service.Selection{Asset: mux.Vars(r)["asset"], Months: h.defaultMonths}
	if raw := r.URL.Query().Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return sel, &service.ValidationError{Field: "months", Reason: "must be an integer"}
		}
		sel.Months = months
	}
	return sel, nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	respondError(w, status, err.Error())
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		validation *service.ValidationError
		unknown    *analytics.UnknownAssetError
		empty      *analytics.EmptySeriesError
		downside   *analytics.InsufficientDownsideDataError
		undefined  *analytics.UndefinedCorrelationError
		noOverlap  *analytics.NoOverlapError
		partial    *analytics.PartialDataError
		fetch      *analytics.ProviderFetchError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &partial), errors.As(err, &fetch):
		return http.StatusBadGateway
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &empty), errors.As(err, &downside), errors.As(err, &undefined), errors.As(err, &noOverlap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func joinWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return "statistics unavailable"
	}
	return warnings[0]
}

const requestIDHeader = "X-Request-ID"

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
