package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"itinerary-route-service/internal/platform/obs"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	DB Pinger
}

// Health reports liveness and, when a database is wired, whether it answers.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{"status": "ok"}
	if h.DB == nil {
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		log.Printf("req_id=%s op=health.db err=%v", obs.RequestID(r.Context()), err)
		res["status"] = "degraded"
		res["database"] = "unreachable"
		writeJSON(w, r, http.StatusServiceUnavailable, res)
		return
	}

	res["database"] = "ok"
	writeJSON(w, r, http.StatusOK, res)
}
