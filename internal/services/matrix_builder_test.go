package services

import (
	"context"
	"errors"
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	louvre  = domain.Coordinates{Lat: 48.8606, Lon: 2.3376}
	orsay   = domain.Coordinates{Lat: 48.8600, Lon: 2.3266}
	eiffel  = domain.Coordinates{Lat: 48.8584, Lon: 2.2945}
	station = domain.Coordinates{Lat: 48.8443, Lon: 2.3744}
)

type memSegmentCache struct {
	mu     sync.Mutex
	rows   map[string]map[string]ports.SegmentResult
	getErr error
	putErr error
}

func newMemSegmentCache() *memSegmentCache {
	return &memSegmentCache{rows: make(map[string]map[string]ports.SegmentResult)}
}

func (c *memSegmentCache) GetMany(_ context.Context, origin string, dests []string) (map[string]ports.SegmentResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := make(map[string]ports.SegmentResult)
	for _, d := range dests {
		if r, ok := c.rows[origin][d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memSegmentCache) PutMany(_ context.Context, origin string, results map[string]ports.SegmentResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	row, ok := c.rows[origin]
	if !ok {
		row = make(map[string]ports.SegmentResult)
		c.rows[origin] = row
	}
	for d, r := range results {
		row[d] = r
	}
	return nil
}

func (c *memSegmentCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, row := range c.rows {
		n += len(row)
	}
	return n
}

func stopsAt(coords ...domain.Coordinates) []domain.Stop {
	stops := make([]domain.Stop, len(coords))
	for i, c := range coords {
		stops[i] = domain.Stop{ID: c.Key(), Name: c.Key(), Coordinates: c}
	}
	return stops
}

// knownPairs covers every directed pair of louvre/orsay/eiffel except eiffel -> louvre.
func knownPairs() *routing.MockRouteProvider {
	return routing.NewMockRouteProvider([]routing.MockPair{
		{From: louvre, To: orsay, Meters: 1100, Seconds: 240},
		{From: orsay, To: louvre, Meters: 1200, Seconds: 260},
		{From: louvre, To: eiffel, Meters: 3900, Seconds: 720},
		{From: eiffel, To: orsay, Meters: 2700, Seconds: 540},
		{From: orsay, To: eiffel, Meters: 2600, Seconds: 500},
	})
}

func TestBuildMatricesFillsEveryPair(t *testing.T) {
	provider := knownPairs()
	b := NewMatrixBuilder(routing.NewResolver(provider, nil), nil, 2)

	m, err := b.BuildMatrices(context.Background(), stopsAt(louvre, orsay, eiffel))
	require.NoError(t, err)

	require.Equal(t, 3, m.Size())
	for i := 0; i < 3; i++ {
		assert.Zero(t, m.Distance[i][i])
		assert.Zero(t, m.Duration[i][i])
	}
	assert.Equal(t, 1100.0, m.Distance[0][1])
	assert.Equal(t, 260.0, m.Duration[1][0])
	assert.Equal(t, 500.0, m.Duration[1][2])

	est := routing.NewFallbackEstimator(nil).Estimate(eiffel, louvre)
	assert.Equal(t, est.DistanceMeters, m.Distance[2][0])
	assert.Equal(t, est.DurationSeconds, m.Duration[2][0])
	assert.Equal(t, 1, m.FallbackCells)
	assert.Equal(t, 6, provider.Calls())
}

func TestBuildMatricesReadsThroughCache(t *testing.T) {
	provider := knownPairs()
	cache := newMemSegmentCache()
	b := NewMatrixBuilder(routing.NewResolver(provider, nil), cache, 4)
	stops := stopsAt(louvre, orsay, eiffel)

	first, err := b.BuildMatrices(context.Background(), stops)
	require.NoError(t, err)
	// The fallback estimate for eiffel -> louvre is not cached.
	assert.Equal(t, 5, cache.size())
	assert.Equal(t, 6, provider.Calls())

	second, err := b.BuildMatrices(context.Background(), stops)
	require.NoError(t, err)
	assert.Equal(t, 7, provider.Calls())
	assert.Equal(t, first.Distance, second.Distance)
	assert.Equal(t, first.Duration, second.Duration)
	assert.Equal(t, 1, second.FallbackCells)
}

func TestBuildMatricesIgnoresCacheFailures(t *testing.T) {
	provider := knownPairs()
	cache := newMemSegmentCache()
	cache.getErr = errors.New("cache down")
	cache.putErr = errors.New("cache down")
	b := NewMatrixBuilder(routing.NewResolver(provider, nil), cache, 4)

	m, err := b.BuildMatrices(context.Background(), stopsAt(louvre, orsay, eiffel))
	require.NoError(t, err)
	assert.Equal(t, 1100.0, m.Distance[0][1])
	assert.Equal(t, 6, provider.Calls())
}

func TestBuildMatricesSharedCoordinates(t *testing.T) {
	var calls atomic.Int32
	resolver := routing.StaticResolver(func(from, to domain.Coordinates) ports.SegmentResult {
		calls.Add(1)
		return ports.SegmentResult{DistanceMeters: 500, DurationSeconds: 60, Source: ports.SourceRoutingService}
	})
	stops := stopsAt(louvre, louvre, orsay)
	stops[1].ID = "louvre-cafe"

	m, err := NewMatrixBuilder(resolver, nil, 1).BuildMatrices(context.Background(), stops)
	require.NoError(t, err)

	assert.Zero(t, m.Distance[0][1])
	assert.Zero(t, m.Duration[1][0])
	assert.Equal(t, 500.0, m.Distance[1][2])
	assert.EqualValues(t, 4, calls.Load())
}

func TestBuildMatricesBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	resolver := routing.StaticResolver(func(from, to domain.Coordinates) ports.SegmentResult {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return ports.SegmentResult{DistanceMeters: 1, DurationSeconds: 1, Source: ports.SourceRoutingService}
	})

	stops := stopsAt(louvre, orsay, eiffel, station)
	m, err := NewMatrixBuilder(resolver, nil, 2).BuildMatrices(context.Background(), stops)
	require.NoError(t, err)

	assert.Equal(t, 4, m.Size())
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Positive(t, peak.Load())
}

func TestBuildMatricesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewMatrixBuilder(routing.NewResolver(nil, nil), nil, 2)
	_, err := b.BuildMatrices(ctx, stopsAt(louvre, orsay))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
