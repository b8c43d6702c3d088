package cache

import (
	"context"
	"errors"
	"itinerary-route-service/internal/ports"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemorySegmentCache keeps segments in process. Entries expire after TTL
// and are swept every 2×TTL.
type MemorySegmentCache struct {
	c *gocache.Cache
}

func NewMemorySegmentCache(ttl time.Duration) *MemorySegmentCache {
	if ttl <= 0 {
		return &MemorySegmentCache{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemorySegmentCache{c: gocache.New(ttl, 2*ttl)}
}

func memoryKey(origin, dest string) string { return origin + "|" + dest }

func (m *MemorySegmentCache) GetMany(_ context.Context, origin string, destinations []string) (map[string]ports.SegmentResult, error) {
	if origin == "" {
		return nil, errors.New("get segment cache: origin must not be empty")
	}

	out := make(map[string]ports.SegmentResult, len(destinations))
	for _, d := range uniqueKeys(destinations) {
		v, ok := m.c.Get(memoryKey(origin, d))
		if !ok {
			continue
		}
		r := v.(ports.SegmentResult)
		r.Source = ports.SourceCache
		out[d] = r
	}
	return out, nil
}

func (m *MemorySegmentCache) PutMany(_ context.Context, origin string, results map[string]ports.SegmentResult) error {
	if origin == "" {
		return errors.New("insert segment cache: origin must not be empty")
	}
	for d, r := range results {
		if d == "" {
			return errors.New("insert segment cache: empty destination key")
		}
		m.c.SetDefault(memoryKey(origin, d), r)
	}
	return nil
}

// Len reports the number of entries, including expired ones not yet swept.
func (m *MemorySegmentCache) Len() int {
	return m.c.ItemCount()
}
