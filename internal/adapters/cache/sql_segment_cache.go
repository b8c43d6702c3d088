package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"strings"
	"time"
)

// SQLSegmentCache is a Postgres-backed cache for origin->destination segments.
type SQLSegmentCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLSegmentCache(db *sql.DB, ttl time.Duration) *SQLSegmentCache {
	return &SQLSegmentCache{DB: db, TTL: ttl}
}

// Fetch cached segments for one origin and multiple destinations.
func (s *SQLSegmentCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.SegmentResult, err error) {
	defer obs.Time(ctx, "segment.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("segment cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get segment cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.SegmentResult{}, nil
	}

	var cutoff int64
	if s.TTL > 0 {
		cutoff = time.Now().Add(-s.TTL).Unix()
	}

	q := `
	SELECT destination, distance_meters, duration_seconds
	FROM segment_cache
	WHERE origin = $1
		AND created_at >= $2
		AND destination = ANY($3::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, cutoff, uniq)
	if err != nil {
		return nil, fmt.Errorf("get segment cache: query segment_cache table: %w", err)
	}
	defer rows.Close()

	return scanSegments(rows, len(uniq))
}

// Store many segments for a single origin.
func (s *SQLSegmentCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.SegmentResult,
) (err error) {
	defer obs.Time(ctx, "segment.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("segment cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert segment cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert segment cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO segment_cache (origin, destination, distance_meters, duration_seconds, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		created_at = EXCLUDED.created_at;
	`)
	if err != nil {
		return fmt.Errorf("insert segment cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert segment cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds, now); err != nil {
			return fmt.Errorf("insert segment cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert segment cache commit: %w", err)
	}

	return nil
}
