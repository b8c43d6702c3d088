package ports

import (
	"context"
	"itinerary-route-service/internal/domain"
)

// SegmentSource records where a SegmentResult came from.
type SegmentSource string

const (
	SourceRoutingService SegmentSource = "routing_service"
	SourceFallback       SegmentSource = "fallback"
	SourceCache          SegmentSource = "cache"
)

// Distance and travel duration between two locations.
type SegmentResult struct {
	DistanceMeters  float64
	DurationSeconds float64
	Source          SegmentSource
}

// Contract for a road-routing backend. Implementations return an error on
// any transport, status or payload problem; they never guess.
type RouteProvider interface {
	// Return road distance and duration of the best route from -> to.
	Route(ctx context.Context, from, to domain.Coordinates) (SegmentResult, error)
}

// Contract for resolving one directed segment. Implementations must always
// produce a usable result (falling back to an estimate) instead of failing.
type SegmentResolver interface {
	ResolveSegment(ctx context.Context, from, to domain.Coordinates) SegmentResult
}
