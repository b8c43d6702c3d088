package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"os"
	"strings"
	"time"
)

const planDateLayout = "2006-01-02"

type PlanSeed struct {
	PlanID string     `json:"plan_id"`
	Name   string     `json:"name"`
	Date   string     `json:"date"`
	Stops  []StopSeed `json:"stops"`
}

type StopSeed struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Lat          float64      `json:"lat"`
	Lon          float64      `json:"lon"`
	VisitMinutes int          `json:"visit_minutes"`
	Priority     int          `json:"priority"`
	IsAnchor     bool         `json:"is_anchor"`
	OpeningHours []PeriodSeed `json:"opening_hours"`
}

// PeriodSeed is one weekday window; Weekday 0 is Sunday, times are "HHMM".
type PeriodSeed struct {
	Weekday int    `json:"weekday"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

// SeedFromJSON loads day plans from a JSON file, replacing plans with the same id.
func SeedFromJSON(conn *sql.DB, d db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed plans: read %q: %w", jsonPath, err)
	}

	var plans []PlanSeed
	if err := json.Unmarshal(bytes, &plans); err != nil {
		return fmt.Errorf("seed plans: parse json: %w", err)
	}

	for i, p := range plans {
		if err := validatePlanSeed(p); err != nil {
			return fmt.Errorf("seed plans: plan at index %d: %w", i+1, err)
		}
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("seed plans: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range plans {
		if err := insertPlan(tx, d, p); err != nil {
			return fmt.Errorf("seed plans: plan_id=%s: %w", p.PlanID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed plans: commit tx: %w", err)
	}

	return nil
}

func validatePlanSeed(p PlanSeed) error {
	if strings.TrimSpace(p.PlanID) == "" {
		return fmt.Errorf("plan_id cannot be empty")
	}
	if p.Date != "" {
		if _, err := time.Parse(planDateLayout, p.Date); err != nil {
			return fmt.Errorf("date %q must be YYYY-MM-DD", p.Date)
		}
	}
	seen := make(map[string]struct{}, len(p.Stops))
	for j, s := range p.Stops {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("stop at index %d: id cannot be empty", j+1)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("stop at index %d: duplicate id %q", j+1, s.ID)
		}
		seen[s.ID] = struct{}{}

		if err := (domain.Coordinates{Lat: s.Lat, Lon: s.Lon}).Validate(); err != nil {
			return fmt.Errorf("stop %q: %w", s.ID, err)
		}
		if s.VisitMinutes < 0 {
			return fmt.Errorf("stop %q: visit_minutes must not be negative", s.ID)
		}
		for _, op := range s.OpeningHours {
			if op.Weekday < 0 || op.Weekday > 6 {
				return fmt.Errorf("stop %q: weekday %d out of range", s.ID, op.Weekday)
			}
			if _, err := domain.ParseClockTime(op.Open); err != nil {
				return fmt.Errorf("stop %q: %w", s.ID, err)
			}
			if _, err := domain.ParseClockTime(op.Close); err != nil {
				return fmt.Errorf("stop %q: %w", s.ID, err)
			}
		}
	}
	return nil
}

func insertPlan(tx *sql.Tx, d db.Dialect, p PlanSeed) error {
	for _, q := range []string{
		`DELETE FROM opening_periods WHERE plan_id = ?`,
		`DELETE FROM plan_stops WHERE plan_id = ?`,
		`DELETE FROM plans WHERE plan_id = ?`,
	} {
		if _, err := tx.Exec(db.Rebind(d, q), p.PlanID); err != nil {
			return fmt.Errorf("clear existing: %w", err)
		}
	}

	if _, err := tx.Exec(
		db.Rebind(d, `INSERT INTO plans (plan_id, name, plan_date) VALUES (?, ?, ?)`),
		p.PlanID, p.Name, p.Date,
	); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	stopStmt, err := tx.Prepare(db.Rebind(d, `
	INSERT INTO plan_stops (
		plan_id,
		stop_id,
		position,
		name,
		lat,
		lon,
		visit_minutes,
		priority,
		is_anchor
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare stop insert: %w", err)
	}
	defer stopStmt.Close()

	periodStmt, err := tx.Prepare(db.Rebind(d, `
	INSERT INTO opening_periods (plan_id, stop_id, weekday, open_time, close_time)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare opening period insert: %w", err)
	}
	defer periodStmt.Close()

	for pos, s := range p.Stops {
		if _, err := stopStmt.Exec(p.PlanID, s.ID, pos, s.Name, s.Lat, s.Lon, s.VisitMinutes, s.Priority, s.IsAnchor); err != nil {
			return fmt.Errorf("insert stop_id=%s: %w", s.ID, err)
		}
		for _, op := range s.OpeningHours {
			open, _ := domain.ParseClockTime(op.Open)
			closing, _ := domain.ParseClockTime(op.Close)
			if _, err := periodStmt.Exec(p.PlanID, s.ID, op.Weekday, open.HHMM(), closing.HHMM()); err != nil {
				return fmt.Errorf("insert opening period stop_id=%s weekday=%d: %w", s.ID, op.Weekday, err)
			}
		}
	}

	return nil
}
