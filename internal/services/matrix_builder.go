package services

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/metrics"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"log"

	"golang.org/x/sync/errgroup"
)

const defaultMatrixConcurrency = 8

// Matrices are the directed pairwise travel costs between the stops of one call.
// Distance is in meters, Duration in seconds; both diagonals are zero.
// They are never mutated after BuildMatrices returns.
type Matrices struct {
	Distance [][]float64
	Duration [][]float64
	// Cells filled by the fallback estimate rather than the routing service or cache.
	FallbackCells int
}

// Size returns N for an N×N matrix pair.
func (m *Matrices) Size() int { return len(m.Distance) }

// NewMatrices allocates zeroed N×N matrices.
func NewMatrices(n int) *Matrices {
	m := &Matrices{
		Distance: make([][]float64, n),
		Duration: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Distance[i] = make([]float64, n)
		m.Duration[i] = make([]float64, n)
	}
	return m
}

// MatrixBuilder fills distance/duration matrices from a SegmentResolver,
// optionally reading through a SegmentCache.
type MatrixBuilder struct {
	Resolver ports.SegmentResolver
	Cache    ports.SegmentCache
	// Maximum segment resolutions in flight at once.
	Concurrency int
}

func NewMatrixBuilder(resolver ports.SegmentResolver, cache ports.SegmentCache, concurrency int) *MatrixBuilder {
	return &MatrixBuilder{Resolver: resolver, Cache: cache, Concurrency: concurrency}
}

type cell struct{ i, j int }

// BuildMatrices resolves every ordered pair (i, j), i != j. A failing pair
// falls back on its own; only context cancellation aborts the build.
func (b *MatrixBuilder) BuildMatrices(ctx context.Context, stops []domain.Stop) (_ *Matrices, err error) {
	defer obs.Time(ctx, "matrix.BuildMatrices")(&err)

	if b.Resolver == nil {
		return nil, fmt.Errorf("build matrices: resolver is nil")
	}

	n := len(stops)
	results := make([][]ports.SegmentResult, n)
	for i := range results {
		results[i] = make([]ports.SegmentResult, n)
	}

	keys := make([]string, n)
	for i, s := range stops {
		keys[i] = s.Coordinates.Key()
	}

	misses := make([]cell, 0, n*n)
	for i := 0; i < n; i++ {
		hits := b.cachedRow(ctx, keys, i)
		for j := 0; j < n; j++ {
			if i == j || keys[i] == keys[j] {
				continue
			}
			if r, ok := hits[keys[j]]; ok {
				r.Source = ports.SourceCache
				results[i][j] = r
				continue
			}
			misses = append(misses, cell{i, j})
		}
	}

	limit := b.Concurrency
	if limit <= 0 {
		limit = defaultMatrixConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, c := range misses {
		g.Go(func() error {
			// Each goroutine owns exactly one cell.
			results[c.i][c.j] = b.Resolver.ResolveSegment(gctx, stops[c.i].Coordinates, stops[c.j].Coordinates)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build matrices: %w", err)
	}

	b.storeFresh(ctx, keys, results, misses)

	m := NewMatrices(n)
	cached := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			r := results[i][j]
			m.Distance[i][j] = r.DistanceMeters
			m.Duration[i][j] = r.DurationSeconds
			switch r.Source {
			case ports.SourceFallback:
				m.FallbackCells++
			case ports.SourceCache:
				cached++
			}
		}
	}
	if cached > 0 {
		metrics.SegmentResolutions.WithLabelValues(string(ports.SourceCache)).Add(float64(cached))
	}

	log.Printf("req_id=%s op=matrix.summary stops=%d resolved=%d cached=%d fallback=%d",
		obs.RequestID(ctx), n, len(misses), cached, m.FallbackCells)

	return m, nil
}

// cachedRow returns cache hits for origin i. Cache failures count as misses.
func (b *MatrixBuilder) cachedRow(ctx context.Context, keys []string, i int) map[string]ports.SegmentResult {
	if b.Cache == nil {
		return nil
	}

	dests := make([]string, 0, len(keys)-1)
	for j, k := range keys {
		if j != i && k != keys[i] {
			dests = append(dests, k)
		}
	}
	if len(dests) == 0 {
		return nil
	}

	hits, err := b.Cache.GetMany(ctx, keys[i], dests)
	if err != nil {
		log.Printf("req_id=%s op=matrix.cache.GetMany origin=%s err=%v", obs.RequestID(ctx), keys[i], err)
		return nil
	}
	return hits
}

// storeFresh writes routing-service results back to the cache.
// Fallback estimates are never cached.
func (b *MatrixBuilder) storeFresh(ctx context.Context, keys []string, results [][]ports.SegmentResult, resolved []cell) {
	if b.Cache == nil || len(resolved) == 0 {
		return
	}

	byOrigin := make(map[string]map[string]ports.SegmentResult)
	for _, c := range resolved {
		r := results[c.i][c.j]
		if r.Source != ports.SourceRoutingService {
			continue
		}
		row, ok := byOrigin[keys[c.i]]
		if !ok {
			row = make(map[string]ports.SegmentResult)
			byOrigin[keys[c.i]] = row
		}
		row[keys[c.j]] = r
	}

	for origin, row := range byOrigin {
		if err := b.Cache.PutMany(ctx, origin, row); err != nil {
			log.Printf("req_id=%s op=matrix.cache.PutMany origin=%s err=%v", obs.RequestID(ctx), origin, err)
		}
	}
}
