package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes.
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(handler.logRequests)

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/assets", handler.ListAssets).Methods("GET")
	api.HandleFunc("/assets/{asset}/analysis", handler.GetAnalysis).Methods("GET")
	api.HandleFunc("/assets/{asset}/channel", handler.GetChannel).Methods("GET")
	api.HandleFunc("/assets/{asset}/statistics", handler.GetStatistics).Methods("GET")
	api.HandleFunc("/assets/{asset}/correlations", handler.GetCorrelations).Methods("GET")

	return r
}
