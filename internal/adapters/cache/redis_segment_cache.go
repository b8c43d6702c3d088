package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisSegmentCache stores one hash per origin: field = destination key,
// value = JSON segment. The whole hash expires TTL after its last write.
type RedisSegmentCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

type redisSegment struct {
	Meters  float64 `json:"m"`
	Seconds float64 `json:"s"`
}

// NewRedisSegmentCache connects using a redis:// URL.
func NewRedisSegmentCache(url string, ttl time.Duration) (*RedisSegmentCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis segment cache: parse url: %w", err)
	}
	return NewRedisSegmentCacheFromClient(redis.NewClient(opt), ttl), nil
}

func NewRedisSegmentCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisSegmentCache {
	return &RedisSegmentCache{rdb: rdb, ttl: ttl, prefix: "segment:"}
}

func (c *RedisSegmentCache) hashKey(origin string) string { return c.prefix + origin }

func (c *RedisSegmentCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.SegmentResult, err error) {
	defer obs.Time(ctx, "segment.cache.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("get segment cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	out := make(map[string]ports.SegmentResult, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.hashKey(origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get segment cache: hmget: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var seg redisSegment
		if err := json.Unmarshal([]byte(s), &seg); err != nil {
			return nil, fmt.Errorf("get segment cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = ports.SegmentResult{
			DistanceMeters:  seg.Meters,
			DurationSeconds: seg.Seconds,
			Source:          ports.SourceCache,
		}
	}

	return out, nil
}

func (c *RedisSegmentCache) PutMany(ctx context.Context, origin string, results map[string]ports.SegmentResult) (err error) {
	defer obs.Time(ctx, "segment.cache.redis.PutMany")(&err)

	if origin == "" {
		return errors.New("insert segment cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(results))
	for dest, r := range results {
		if dest == "" {
			return errors.New("insert segment cache: empty destination key")
		}
		data, err := json.Marshal(redisSegment{Meters: r.DistanceMeters, Seconds: r.DurationSeconds})
		if err != nil {
			return fmt.Errorf("insert segment cache dest=%q: %w", dest, err)
		}
		fields = append(fields, dest, string(data))
	}

	key := c.hashKey(origin)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields...)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert segment cache: exec: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (c *RedisSegmentCache) Close() error {
	return c.rdb.Close()
}
