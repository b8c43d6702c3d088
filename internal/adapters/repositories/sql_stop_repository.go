package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"time"
)

// SQL-backed implementation of the StopRepository port (SQLite or Postgres).
type SQLStopRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLStopRepository(conn *sql.DB, d db.Dialect) *SQLStopRepository {
	return &SQLStopRepository{DB: conn, Dialect: d}
}

// PlanDate returns the date a plan was seeded with.
func (r *SQLStopRepository) PlanDate(ctx context.Context, planID string) (string, error) {
	if r.DB == nil {
		return "", errors.New("sql stop repository: DB is nil")
	}

	var date string
	err := r.DB.QueryRowContext(ctx, db.Rebind(r.Dialect, `SELECT plan_date FROM plans WHERE plan_id = ?`), planID).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("plan date plan_id=%s: %w", planID, ports.ErrPlanNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("plan date: query plans table: %w", err)
	}
	return date, nil
}

// ListStops returns the plan's stops in stored order, opening hours attached.
func (r *SQLStopRepository) ListStops(ctx context.Context, planID string) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "stops.ListStops")(&err)

	if r.DB == nil {
		return nil, errors.New("sql stop repository: DB is nil")
	}

	var exists int
	err = r.DB.QueryRowContext(ctx, db.Rebind(r.Dialect, `SELECT 1 FROM plans WHERE plan_id = ?`), planID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list stops plan_id=%s: %w", planID, ports.ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list stops: query plans table: %w", err)
	}

	query := `
	SELECT
		stop_id,
		name,
		lat,
		lon,
		visit_minutes,
		priority,
		is_anchor
	FROM plan_stops
	WHERE plan_id = ?
	ORDER BY position;
	`
	rows, err := r.DB.QueryContext(ctx, db.Rebind(r.Dialect, query), planID)
	if err != nil {
		return nil, fmt.Errorf("list stops: query plan_stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 16)
	byID := make(map[string]int)
	for rows.Next() {
		var s domain.Stop
		var visitMinutes int
		if err := rows.Scan(&s.ID, &s.Name, &s.Coordinates.Lat, &s.Coordinates.Lon, &visitMinutes, &s.Priority, &s.IsAnchor); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		s.VisitDuration = time.Duration(visitMinutes) * time.Minute
		byID[s.ID] = len(stops)
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	if err := r.attachOpeningHours(ctx, planID, stops, byID); err != nil {
		return nil, err
	}

	return stops, nil
}

func (r *SQLStopRepository) attachOpeningHours(ctx context.Context, planID string, stops []domain.Stop, byID map[string]int) error {
	query := `
	SELECT stop_id, weekday, open_time, close_time
	FROM opening_periods
	WHERE plan_id = ?;
	`
	rows, err := r.DB.QueryContext(ctx, db.Rebind(r.Dialect, query), planID)
	if err != nil {
		return fmt.Errorf("list stops: query opening_periods table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stopID, openS, closeS string
		var weekday int
		if err := rows.Scan(&stopID, &weekday, &openS, &closeS); err != nil {
			return fmt.Errorf("list stops: scan opening period: %w", err)
		}

		i, ok := byID[stopID]
		if !ok || weekday < 0 || weekday > 6 {
			continue
		}
		open, err := domain.ParseClockTime(openS)
		if err != nil {
			return fmt.Errorf("list stops: stop_id=%s: %w", stopID, err)
		}
		closing, err := domain.ParseClockTime(closeS)
		if err != nil {
			return fmt.Errorf("list stops: stop_id=%s: %w", stopID, err)
		}

		if stops[i].OpeningHours == nil {
			stops[i].OpeningHours = &domain.OpeningHours{}
		}
		stops[i].OpeningHours.Set(time.Weekday(weekday), domain.OpeningWindow{Open: open, Close: closing})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list stops: opening period iteration: %w", err)
	}

	return nil
}
