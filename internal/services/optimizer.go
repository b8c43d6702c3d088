package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/metrics"
	"itinerary-route-service/internal/platform/obs"
	"log"
	"time"

	"github.com/google/uuid"
)

// Optimizer ties matrix building and the annealing search into one call.
// It is safe for concurrent use; each call owns its matrices and random source.
type Optimizer struct {
	Builder *MatrixBuilder
}

func NewOptimizer(builder *MatrixBuilder) *Optimizer {
	return &Optimizer{Builder: builder}
}

// ValidateStops checks the stop list as a whole: at least two stops,
// unique ids, valid coordinates, at most one anchor.
func ValidateStops(stops []domain.Stop) error {
	if len(stops) < 2 {
		return invalid("stops", "at least two stops are required, got %d", len(stops))
	}

	seen := make(map[string]struct{}, len(stops))
	anchors := 0
	for i, s := range stops {
		if err := s.Validate(); err != nil {
			return invalid(fmt.Sprintf("stops[%d]", i), "%v", err)
		}
		if _, dup := seen[s.ID]; dup {
			return invalid(fmt.Sprintf("stops[%d].id", i), "duplicate stop id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.IsAnchor {
			anchors++
		}
	}
	if anchors > 1 {
		return invalid("stops", "at most one anchor is allowed, got %d", anchors)
	}
	return nil
}

// Optimize orders stops for the given date. Scheduling conflicts never fail the
// call; they come back as TimeWarnings. Only invalid input and cancellation error.
func (o *Optimizer) Optimize(ctx context.Context, stops []domain.Stop, date time.Time, opts Options) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	started := time.Now()
	defer func() {
		outcome := "ok"
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			outcome = "invalid"
		case err != nil:
			outcome = "error"
		}
		metrics.Optimizations.WithLabelValues(outcome).Inc()
		metrics.OptimizationDuration.Observe(time.Since(started).Seconds())
	}()

	if err := ValidateStops(stops); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if o.Builder == nil {
		return nil, fmt.Errorf("optimize: matrix builder is nil")
	}

	m, err := o.Builder.BuildMatrices(ctx, stops)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	day := date.Weekday()
	sr := Search(ctx, stops, m, day, opts)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize: search: %w", err)
	}
	metrics.AnnealingIterations.Observe(float64(sr.Iterations))

	distance, duration := RouteTotals(sr.BestRoute, stops, m, opts.ReturnToStart)

	res := &domain.OptimizationResult{
		RunID:                uuid.NewString(),
		Date:                 date,
		DayOfWeek:            day,
		RouteIndices:         sr.BestRoute,
		StopIDs:              make([]string, len(sr.BestRoute)),
		StopNames:            make([]string, len(sr.BestRoute)),
		TotalDistanceMeters:  distance,
		TotalDurationSeconds: duration + sr.BestEvaluation.WaitSeconds,
		WaitSeconds:          sr.BestEvaluation.WaitSeconds,
		Score:                sr.BestEvaluation.Score,
		TimeWarnings:         sr.BestEvaluation.TimeWarnings,
		Timeline:             sr.BestEvaluation.Timeline,
		StopsVisited:         len(stops),
		Iterations:           sr.Iterations,
		FallbackSegments:     m.FallbackCells,
	}
	for i, idx := range sr.BestRoute {
		res.StopIDs[i] = stops[idx].ID
		res.StopNames[i] = stops[idx].Name
	}
	if a := anchorIndex(stops); a >= 0 {
		res.Anchor = &domain.AnchorRef{
			StopID:      stops[a].ID,
			Name:        stops[a].Name,
			Index:       a,
			Coordinates: stops[a].Coordinates,
		}
	}
	res.ExecutionTime = time.Since(started)

	log.Printf("req_id=%s op=optimizer.summary run_id=%s stops=%d iterations=%d accepted=%d improvements=%d score=%.2f warnings=%d fallback=%d",
		obs.RequestID(ctx), res.RunID, len(stops), sr.Iterations, sr.Accepted, sr.Improvements,
		res.Score, len(res.TimeWarnings), m.FallbackCells)

	return res, nil
}

// RouteTotals walks route through the matrices and adds visit durations.
// Waiting for opening depends on the clock and is reported by Evaluate instead.
// The return leg is included when returnToStart is set and route does not end at the anchor.
func RouteTotals(route []int, stops []domain.Stop, m *Matrices, returnToStart bool) (meters, seconds float64) {
	anchor := anchorIndex(stops)
	for pos, idx := range route {
		if pos > 0 {
			meters += m.Distance[route[pos-1]][idx]
			seconds += m.Duration[route[pos-1]][idx]
		}
		if pos > 0 && pos == len(route)-1 && idx == anchor && route[0] == anchor {
			continue
		}
		seconds += stops[idx].VisitDuration.Seconds()
	}
	if returnToStart && anchor >= 0 && len(route) > 0 && route[len(route)-1] != anchor {
		last := route[len(route)-1]
		meters += m.Distance[last][anchor]
		seconds += m.Duration[last][anchor]
	}
	return meters, seconds
}
