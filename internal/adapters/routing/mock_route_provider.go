package routing

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"sync"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider answers from a fixed table; unknown pairs fail so that
// callers exercise their fallback path. It records every call.
type MockRouteProvider struct {
	m map[string]ports.SegmentResult

	mu    sync.Mutex
	calls int
}

func NewMockRouteProvider(pairs []MockPair) *MockRouteProvider {
	m := make(map[string]ports.SegmentResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.SegmentResult{
			DistanceMeters:  p.Meters,
			DurationSeconds: p.Seconds,
			Source:          ports.SourceRoutingService,
		}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(ctx context.Context, from, to domain.Coordinates) (ports.SegmentResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.m[from.Key()+"|"+to.Key()]
	if !ok {
		return ports.SegmentResult{}, fmt.Errorf("missing pair %s -> %s", from.Key(), to.Key())
	}

	return r, nil
}

// Calls returns how many times Route was invoked.
func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// StaticResolver resolves every segment with a fixed function. It never calls out.
type StaticResolver func(from, to domain.Coordinates) ports.SegmentResult

func (f StaticResolver) ResolveSegment(_ context.Context, from, to domain.Coordinates) ports.SegmentResult {
	return f(from, to)
}
