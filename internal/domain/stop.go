package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of one simulated day on the itinerary clock.
const MinutesPerDay = 24 * 60

// ClockTime is a time of day expressed as minutes since midnight.
// Values past MinutesPerDay are allowed and mean "the following day".
type ClockTime int

// ParseClockTime accepts 24h "HHMM" or "HH:MM" values ("0930", "9:30", "2400").
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ":", "")
	if len(s) < 3 || len(s) > 4 {
		return 0, fmt.Errorf("parse clock time %q: expected HHMM", s)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}

	hours, minutes := n/100, n%100
	if n < 0 || hours > 24 || minutes > 59 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("parse clock time %q: out of range", s)
	}

	return ClockTime(hours*60 + minutes), nil
}

// HHMM renders the clock time as "HHMM", the wire format used for opening periods.
func (c ClockTime) HHMM() string {
	m := int(c) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d%02d", m/60, m%60)
}

// String renders the clock time as "HH:MM", wrapping past midnight.
func (c ClockTime) String() string {
	h := c.HHMM()
	return h[:2] + ":" + h[2:]
}

// OpeningWindow is a single open/close interval for one day of the week.
// A Close that is not after Open means the stop closes on the following day.
type OpeningWindow struct {
	Open  ClockTime
	Close ClockTime
}

// EffectiveClose returns the closing time on the same clock as Open,
// shifting overnight windows by one day.
func (w OpeningWindow) EffectiveClose() ClockTime {
	if w.Close <= w.Open {
		return w.Close + MinutesPerDay
	}
	return w.Close
}

// OpeningHours holds at most one window per weekday, indexed by time.Weekday.
// A nil entry means no restriction is known for that day.
type OpeningHours [7]*OpeningWindow

// Window returns the window for the given weekday, or nil.
func (h *OpeningHours) Window(day time.Weekday) *OpeningWindow {
	if h == nil || day < time.Sunday || day > time.Saturday {
		return nil
	}
	return h[day]
}

// Set assigns the window for a weekday.
func (h *OpeningHours) Set(day time.Weekday, w OpeningWindow) {
	h[day] = &w
}

// Empty reports whether no weekday carries a window.
func (h *OpeningHours) Empty() bool {
	if h == nil {
		return true
	}
	for _, w := range h {
		if w != nil {
			return false
		}
	}
	return true
}

// Stop is a single place to visit on the day's itinerary.
//
// VisitDuration is the dwell time once arrived; zero is used for pure waypoints
// such as the lodging anchor. Priority only adds to the score: every stop passed
// to the optimizer is visited. OpeningHours nil (or all-empty) means the stop is
// open around the clock. Metadata carries caller fields the optimizer ignores.
type Stop struct {
	ID            string
	Name          string
	Coordinates   Coordinates
	VisitDuration time.Duration
	Priority      int
	OpeningHours  *OpeningHours
	IsAnchor      bool
	Metadata      map[string]any
}

// AlwaysOpen reports whether the stop has no opening-hours data at all.
func (s Stop) AlwaysOpen() bool {
	return s.OpeningHours.Empty()
}

// VisitMinutes returns the visit duration in (fractional) minutes.
func (s Stop) VisitMinutes() float64 {
	return s.VisitDuration.Minutes()
}

// Validate checks the per-stop invariants that do not depend on other stops.
func (s Stop) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("stop id must be non-empty")
	}
	if err := s.Coordinates.Validate(); err != nil {
		return fmt.Errorf("stop %q: %w", s.ID, err)
	}
	if s.VisitDuration < 0 {
		return fmt.Errorf("stop %q: visit duration must not be negative", s.ID)
	}
	return nil
}
