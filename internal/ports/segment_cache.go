package ports

import "context"

// Optional persistent store of resolved segments, keyed by
// domain.Coordinates.Key() of the origin and of each destination.
type SegmentCache interface {
	// Return cached results for one origin and many destinations.
	// Missing destinations are simply absent from the map.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]SegmentResult, error)
	// Store results for one origin, keyed by destination.
	PutMany(ctx context.Context, origin string, results map[string]SegmentResult) error
}
