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

// SqliteSegmentCache is a SQLite backed cache for origin->destination segments.
// Keys are coordinate keys produced by domain.Coordinates.Key.
type SqliteSegmentCache struct {
	DB *sql.DB
	// Entries older than TTL are ignored on read. Zero keeps them forever.
	TTL time.Duration

	now func() time.Time
}

func NewSqliteSegmentCache(db *sql.DB, ttl time.Duration) *SqliteSegmentCache {
	return &SqliteSegmentCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch cached segments for one origin and multiple destinations.
func (s *SqliteSegmentCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.SegmentResult, err error) {
	defer obs.Time(ctx, "segment.cache.sqlite.GetMany")(&err)

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

	ph := make([]string, len(uniq))
	args := make([]any, 0, 2+len(uniq))
	args = append(args, origin, s.cutoff())
	for i, d := range uniq {
		ph[i] = "?"
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		destination,
		distance_meters,
		duration_seconds
	FROM segment_cache
	WHERE origin = ?
		AND created_at >= ?
		AND destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get segment cache: query segment_cache table: %w", err)
	}
	defer rows.Close()

	return scanSegments(rows, len(uniq))
}

// Store many segments for a single origin, replacing older entries.
func (s *SqliteSegmentCache) PutMany(ctx context.Context, origin string, results map[string]ports.SegmentResult) (err error) {
	defer obs.Time(ctx, "segment.cache.sqlite.PutMany")(&err)

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
	INSERT OR REPLACE INTO segment_cache (
		origin,
		destination,
		distance_meters,
		duration_seconds,
		created_at
	)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert segment cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := s.clock().Unix()
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

func (s *SqliteSegmentCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// cutoff is the oldest created_at still served; 0 when entries never expire.
func (s *SqliteSegmentCache) cutoff() int64 {
	if s.TTL <= 0 {
		return 0
	}
	return s.clock().Add(-s.TTL).Unix()
}

func scanSegments(rows *sql.Rows, capacity int) (map[string]ports.SegmentResult, error) {
	out := make(map[string]ports.SegmentResult, capacity)
	for rows.Next() {
		var dest string
		var meters, seconds float64
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get segment cache: scan rows: %w", err)
		}
		out[dest] = ports.SegmentResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
			Source:          ports.SourceCache,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get segment cache: row iteration: %w", err)
	}
	return out, nil
}
