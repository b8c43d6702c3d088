package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/db"
)

// InitSchema creates the plan, stop, opening-period and segment cache tables.
// It is idempotent.
func InitSchema(conn *sql.DB, d db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	// SQLite REAL is already 8 bytes; Postgres REAL is not.
	realType := "REAL"
	if d == db.DialectPostgres {
		realType = "DOUBLE PRECISION"
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlansQuery := `
	CREATE TABLE IF NOT EXISTS plans (
		plan_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan_date TEXT NOT NULL DEFAULT ''
	);
	`

	createPlanStopsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS plan_stops (
		plan_id TEXT NOT NULL REFERENCES plans(plan_id) ON DELETE CASCADE,
		stop_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat %[1]s NOT NULL,
		lon %[1]s NOT NULL,
		visit_minutes INTEGER NOT NULL DEFAULT 0,
		priority INTEGER NOT NULL DEFAULT 0,
		is_anchor BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (plan_id, stop_id)
	);
	`, realType)

	createOpeningPeriodsQuery := `
	CREATE TABLE IF NOT EXISTS opening_periods (
		plan_id TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		open_time TEXT NOT NULL,
		close_time TEXT NOT NULL,
		PRIMARY KEY (plan_id, stop_id, weekday)
	);
	`

	createSegmentCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS segment_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters %[1]s NOT NULL,
		duration_seconds %[1]s NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`, realType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_plan_stops_plan_position
	ON plan_stops(plan_id, position);
	`

	statements := []string{
		createPlansQuery,
		createPlanStopsQuery,
		createOpeningPeriodsQuery,
		createSegmentCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
