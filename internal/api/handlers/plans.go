package handlers

import (
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/ports"
	"net/http"
	"strings"
)

// PlanHandler serves stored day plans. Results are computed on request and
// never written back.
type PlanHandler struct {
	Repo     ports.StopRepository
	Optimize *OptimizeHandler
}

// Stops lists a stored plan's stops.
func (h *PlanHandler) Stops(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	planID := strings.TrimSpace(r.PathValue("planID"))
	if planID == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	stops, err := h.Repo.ListStops(r.Context(), planID)
	if err != nil {
		writeServiceError(w, r, "plans.Stops", err)
		return
	}

	res := dto.ListStopsResponse{PlanID: planID, Stops: make([]dto.Stop, 0, len(stops))}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.StopFromDomain(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// OptimizePlan loads a stored plan's stops and optimizes them for the requested
// date, falling back to the plan's own date and then today.
func (h *PlanHandler) OptimizePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	planID := strings.TrimSpace(r.PathValue("planID"))
	if planID == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	var req dto.PlanOptimizeRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	if req.Date == "" {
		stored, err := h.Repo.PlanDate(r.Context(), planID)
		if err != nil {
			writeServiceError(w, r, "plans.OptimizePlan", err)
			return
		}
		req.Date = stored
	}

	date, err := dto.ParseDate(req.Date, h.Optimize.now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	stops, err := h.Repo.ListStops(r.Context(), planID)
	if err != nil {
		writeServiceError(w, r, "plans.OptimizePlan", err)
		return
	}

	res, err := h.Optimize.Optimizer.Optimize(r.Context(), stops, date, req.Options.Apply(h.Optimize.Defaults))
	if err != nil {
		writeServiceError(w, r, "plans.OptimizePlan", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeResponse(res))
}
