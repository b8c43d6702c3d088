package dto

import (
	"encoding/json"
	"fmt"
	"itinerary-route-service/internal/domain"
	"math"
	"time"
)

// OpeningPeriod is one weekday window. Day 0 is Sunday; times are "HHMM" or "HH:MM".
type OpeningPeriod struct {
	Day   int    `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Stop is the wire shape of a stop. Fields the service does not know are kept
// in Metadata and echoed back untouched.
type Stop struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Lat          float64         `json:"lat"`
	Lon          float64         `json:"lon"`
	VisitMinutes float64         `json:"visit_minutes"`
	Priority     int             `json:"priority"`
	IsAnchor     bool            `json:"is_anchor,omitempty"`
	OpeningHours []OpeningPeriod `json:"opening_hours,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

var knownStopFields = []string{
	"id", "name", "lat", "lon", "visit_minutes", "priority", "is_anchor", "opening_hours", "metadata",
}

func (s *Stop) UnmarshalJSON(data []byte) error {
	type plain Stop
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownStopFields {
		delete(raw, k)
	}
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("stop field %q: %w", k, err)
		}
		if p.Metadata == nil {
			p.Metadata = make(map[string]any, len(raw))
		}
		p.Metadata[k] = val
	}

	*s = Stop(p)
	return nil
}

// ToDomain converts the wire stop, parsing opening periods.
func (s Stop) ToDomain() (domain.Stop, error) {
	if s.VisitMinutes < 0 || math.IsNaN(s.VisitMinutes) {
		return domain.Stop{}, fmt.Errorf("stop %q: visit_minutes must not be negative", s.ID)
	}

	out := domain.Stop{
		ID:            s.ID,
		Name:          s.Name,
		Coordinates:   domain.Coordinates{Lat: s.Lat, Lon: s.Lon},
		VisitDuration: time.Duration(s.VisitMinutes * float64(time.Minute)),
		Priority:      s.Priority,
		IsAnchor:      s.IsAnchor,
		Metadata:      s.Metadata,
	}

	for _, p := range s.OpeningHours {
		if p.Day < 0 || p.Day > 6 {
			return domain.Stop{}, fmt.Errorf("stop %q: opening day %d out of range 0-6", s.ID, p.Day)
		}
		open, err := domain.ParseClockTime(p.Open)
		if err != nil {
			return domain.Stop{}, fmt.Errorf("stop %q: %w", s.ID, err)
		}
		closing, err := domain.ParseClockTime(p.Close)
		if err != nil {
			return domain.Stop{}, fmt.Errorf("stop %q: %w", s.ID, err)
		}
		if out.OpeningHours == nil {
			out.OpeningHours = &domain.OpeningHours{}
		}
		out.OpeningHours.Set(time.Weekday(p.Day), domain.OpeningWindow{Open: open, Close: closing})
	}

	return out, nil
}

func StopsToDomain(in []Stop) ([]domain.Stop, error) {
	out := make([]domain.Stop, 0, len(in))
	for _, s := range in {
		d, err := s.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func StopFromDomain(s domain.Stop) Stop {
	out := Stop{
		ID:           s.ID,
		Name:         s.Name,
		Lat:          s.Coordinates.Lat,
		Lon:          s.Coordinates.Lon,
		VisitMinutes: s.VisitMinutes(),
		Priority:     s.Priority,
		IsAnchor:     s.IsAnchor,
		Metadata:     s.Metadata,
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if w := s.OpeningHours.Window(day); w != nil {
			out.OpeningHours = append(out.OpeningHours, OpeningPeriod{Day: int(day), Open: w.Open.HHMM(), Close: w.Close.HHMM()})
		}
	}
	return out
}

type ListStopsResponse struct {
	PlanID string `json:"plan_id"`
	Stops  []Stop `json:"stops"`
}
