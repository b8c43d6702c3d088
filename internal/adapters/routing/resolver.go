package routing

import (
	"context"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/metrics"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"log"
)

// Resolver implements SegmentResolver: routing service first, estimate on any failure.
// It holds no per-call state, so one Resolver serves concurrent matrix builds.
type Resolver struct {
	Primary  ports.RouteProvider
	Fallback *FallbackEstimator
}

func NewResolver(primary ports.RouteProvider, fallback *FallbackEstimator) *Resolver {
	if fallback == nil {
		fallback = NewFallbackEstimator(nil)
	}
	return &Resolver{Primary: primary, Fallback: fallback}
}

func (r *Resolver) ResolveSegment(ctx context.Context, from, to domain.Coordinates) ports.SegmentResult {
	if r.Primary != nil {
		res, err := r.Primary.Route(ctx, from, to)
		if err == nil {
			metrics.SegmentResolutions.WithLabelValues(string(ports.SourceRoutingService)).Inc()
			return res
		}
		log.Printf("req_id=%s op=routing.ResolveSegment from=%s to=%s fallback=haversine err=%v",
			obs.RequestID(ctx), from.Key(), to.Key(), err)
	}

	metrics.SegmentResolutions.WithLabelValues(string(ports.SourceFallback)).Inc()
	return r.Fallback.Estimate(from, to)
}
