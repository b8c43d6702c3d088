package api

import (
	"itinerary-route-service/internal/api/handlers"
	"itinerary-route-service/internal/platform/metrics"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type RouterConfig struct {
	// DB, when set, is pinged by /health.
	DB        handlers.Pinger
	Repo      ports.StopRepository
	Optimizer handlers.RouteOptimizer
	Defaults  services.Options
	// Browser origins allowed to call the API. Empty disables CORS handling.
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(cfg RouterConfig) http.Handler {
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{
		Optimizer: cfg.Optimizer,
		Defaults:  cfg.Defaults,
	}
	planHandler := &handlers.PlanHandler{
		Repo:     cfg.Repo,
		Optimize: optimizeHandler,
	}

	healthHandler := &handlers.HealthHandler{DB: cfg.DB}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)
	mux.HandleFunc("/plans/{planID}/stops", planHandler.Stops)
	mux.HandleFunc("/plans/{planID}/optimize", planHandler.OptimizePlan)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	var h http.Handler = loggingMiddleware(mux)
	h = requestIDMiddleware(h)

	if len(cfg.AllowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
		}).Handler(h)
	}

	return h
}
