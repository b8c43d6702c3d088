package domain

import "time"

// VisitStatus tags a timeline entry with how its arrival fit the opening hours.
type VisitStatus string

const (
	StatusOK                  VisitStatus = "OK"
	StatusWaitForOpening      VisitStatus = "WAIT_FOR_OPENING"
	StatusAfterClosing        VisitStatus = "AFTER_CLOSING"
	StatusVisitExceedsClosing VisitStatus = "VISIT_EXCEEDS_CLOSING"
)

// severity orders statuses so a timeline entry keeps the worst one seen.
func (s VisitStatus) severity() int {
	switch s {
	case StatusAfterClosing:
		return 3
	case StatusVisitExceedsClosing:
		return 2
	case StatusWaitForOpening:
		return 1
	default:
		return 0
	}
}

// Worse returns whichever of s and other is more severe.
func (s VisitStatus) Worse(other VisitStatus) VisitStatus {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// TimelineEntry is one simulated arrival on the itinerary clock.
// Arrival is when the traveler gets there; VisitStart differs from it only
// when the stop had not opened yet. Departure = VisitStart + VisitDuration.
type TimelineEntry struct {
	StopID        string
	Name          string
	Arrival       ClockTime
	VisitStart    ClockTime
	Departure     ClockTime
	VisitDuration time.Duration
	Status        VisitStatus
	IsReturn      bool
}

// TimeWarning flags a conflict between a simulated visit and a stop's opening hours.
// OpenTime/CloseTime are set when the stop has a window for the simulated day;
// WaitMinutes for WAIT_FOR_OPENING and OverrunMinutes for VISIT_EXCEEDS_CLOSING.
type TimeWarning struct {
	StopID         string
	Name           string
	Kind           VisitStatus
	Message        string
	Arrival        ClockTime
	OpenTime       *ClockTime
	CloseTime      *ClockTime
	WaitMinutes    float64
	OverrunMinutes float64
}

// AnchorRef identifies the fixed start/end stop of one optimization.
type AnchorRef struct {
	StopID      string
	Name        string
	Index       int
	Coordinates Coordinates
}

// OptimizationResult is the itinerary handed back to the caller.
// It is plain data: the optimizer keeps no reference to it.
type OptimizationResult struct {
	RunID                string
	Date                 time.Time
	DayOfWeek            time.Weekday
	StopNames            []string
	StopIDs              []string
	RouteIndices         []int
	Anchor               *AnchorRef
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	WaitSeconds          float64
	Score                float64
	TimeWarnings         []TimeWarning
	Timeline             []TimelineEntry
	StopsVisited         int
	Iterations           int
	FallbackSegments     int
	ExecutionTime        time.Duration
}
