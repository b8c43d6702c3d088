package handlers

import (
	"context"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/services"
	"net/http"
	"time"
)

// RouteOptimizer is the service the optimize endpoints call into.
type RouteOptimizer interface {
	Optimize(ctx context.Context, stops []domain.Stop, date time.Time, opts services.Options) (*domain.OptimizationResult, error)
}

type OptimizeHandler struct {
	Optimizer RouteOptimizer
	Defaults  services.Options
	Now       func() time.Time
}

func (h *OptimizeHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Optimize orders caller-supplied stops for one day.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := dto.ParseDate(req.Date, h.now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	stops, err := dto.StopsToDomain(req.Stops)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Optimizer.Optimize(r.Context(), stops, date, req.Options.Apply(h.Defaults))
	if err != nil {
		writeServiceError(w, r, "optimize", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeResponse(res))
}
