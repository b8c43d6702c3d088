package dto

import (
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/services"
	"time"
)

// Options overrides individual optimizer settings; nil fields keep the server default.
type Options struct {
	StartTimeHour                 *int     `json:"start_time_hour"`
	StartTimeMinute               *int     `json:"start_time_minute"`
	ReturnToStart                 *bool    `json:"return_to_start"`
	MaxIterations                 *int     `json:"max_iterations"`
	InitialTemperature            *float64 `json:"initial_temperature"`
	CoolingRate                   *float64 `json:"cooling_rate"`
	StoppingTemperature           *float64 `json:"stopping_temperature"`
	PriorityWeight                *float64 `json:"priority_weight"`
	BonusFor24h                   *float64 `json:"bonus_for_24h"`
	DistancePenaltyFactor         *float64 `json:"distance_penalty_factor"`
	WaitTimePenaltyFactor         *float64 `json:"wait_time_penalty_factor"`
	AfterClosingPenalty           *float64 `json:"after_closing_penalty"`
	ExceedingClosingPenaltyFactor *float64 `json:"exceeding_closing_penalty_factor"`
	ExceedingClosingByHourPenalty *float64 `json:"exceeding_closing_by_hour_penalty"`
	Seed                          *int64   `json:"seed"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Apply returns base with every non-nil override applied.
func (o *Options) Apply(base services.Options) services.Options {
	if o == nil {
		return base
	}
	set(&base.StartTimeHour, o.StartTimeHour)
	set(&base.StartTimeMinute, o.StartTimeMinute)
	set(&base.ReturnToStart, o.ReturnToStart)
	set(&base.MaxIterations, o.MaxIterations)
	set(&base.InitialTemperature, o.InitialTemperature)
	set(&base.CoolingRate, o.CoolingRate)
	set(&base.StoppingTemperature, o.StoppingTemperature)
	set(&base.PriorityWeight, o.PriorityWeight)
	set(&base.BonusFor24h, o.BonusFor24h)
	set(&base.DistancePenaltyFactor, o.DistancePenaltyFactor)
	set(&base.WaitTimePenaltyFactor, o.WaitTimePenaltyFactor)
	set(&base.AfterClosingPenalty, o.AfterClosingPenalty)
	set(&base.ExceedingClosingPenaltyFactor, o.ExceedingClosingPenaltyFactor)
	set(&base.ExceedingClosingByHourPenalty, o.ExceedingClosingByHourPenalty)
	set(&base.Seed, o.Seed)
	return base
}

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

type OptimizeRequest struct {
	Date    string   `json:"date"`
	Stops   []Stop   `json:"stops"`
	Options *Options `json:"options"`
}

type PlanOptimizeRequest struct {
	Date    string   `json:"date"`
	Options *Options `json:"options"`
}

type AnchorResponse struct {
	StopID string  `json:"stop_id"`
	Name   string  `json:"name"`
	Index  int     `json:"index"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

type TimelineEntryResponse struct {
	StopID       string  `json:"stop_id"`
	Name         string  `json:"name"`
	Arrival      string  `json:"arrival"`
	VisitStart   string  `json:"visit_start"`
	Departure    string  `json:"departure"`
	VisitMinutes float64 `json:"visit_minutes"`
	Status       string  `json:"status"`
	IsReturn     bool    `json:"is_return,omitempty"`
}

type TimeWarningResponse struct {
	StopID         string  `json:"stop_id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	Arrival        string  `json:"arrival"`
	OpenTime       string  `json:"open_time,omitempty"`
	CloseTime      string  `json:"close_time,omitempty"`
	WaitMinutes    float64 `json:"wait_minutes,omitempty"`
	OverrunMinutes float64 `json:"overrun_minutes,omitempty"`
}

type OptimizeResponse struct {
	RunID                string                  `json:"run_id"`
	Date                 string                  `json:"date"`
	DayOfWeek            string                  `json:"day_of_week"`
	StopIDs              []string                `json:"stop_ids"`
	StopNames            []string                `json:"stop_names"`
	RouteIndices         []int                   `json:"route_indices"`
	Anchor               *AnchorResponse         `json:"anchor,omitempty"`
	TotalDistanceMeters  float64                 `json:"total_distance_meters"`
	TotalDurationSeconds float64                 `json:"total_duration_seconds"`
	WaitSeconds          float64                 `json:"wait_seconds"`
	Score                float64                 `json:"score"`
	TimeWarnings         []TimeWarningResponse   `json:"time_warnings"`
	Timeline             []TimelineEntryResponse `json:"timeline"`
	StopsVisited         int                     `json:"stops_visited"`
	Iterations           int                     `json:"iterations"`
	FallbackSegments     int                     `json:"fallback_segments"`
	ExecutionTimeMs      int64                   `json:"execution_time_ms"`
}

func optionalClock(c *domain.ClockTime) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func NewOptimizeResponse(r *domain.OptimizationResult) OptimizeResponse {
	res := OptimizeResponse{
		RunID:                r.RunID,
		Date:                 r.Date.Format(DateLayout),
		DayOfWeek:            r.DayOfWeek.String(),
		StopIDs:              r.StopIDs,
		StopNames:            r.StopNames,
		RouteIndices:         r.RouteIndices,
		TotalDistanceMeters:  r.TotalDistanceMeters,
		TotalDurationSeconds: r.TotalDurationSeconds,
		WaitSeconds:          r.WaitSeconds,
		Score:                r.Score,
		TimeWarnings:         make([]TimeWarningResponse, 0, len(r.TimeWarnings)),
		Timeline:             make([]TimelineEntryResponse, 0, len(r.Timeline)),
		StopsVisited:         r.StopsVisited,
		Iterations:           r.Iterations,
		FallbackSegments:     r.FallbackSegments,
		ExecutionTimeMs:      r.ExecutionTime.Milliseconds(),
	}

	if r.Anchor != nil {
		res.Anchor = &AnchorResponse{
			StopID: r.Anchor.StopID,
			Name:   r.Anchor.Name,
			Index:  r.Anchor.Index,
			Lat:    r.Anchor.Coordinates.Lat,
			Lon:    r.Anchor.Coordinates.Lon,
		}
	}

	for _, w := range r.TimeWarnings {
		res.TimeWarnings = append(res.TimeWarnings, TimeWarningResponse{
			StopID:         w.StopID,
			Name:           w.Name,
			Type:           string(w.Kind),
			Message:        w.Message,
			Arrival:        w.Arrival.String(),
			OpenTime:       optionalClock(w.OpenTime),
			CloseTime:      optionalClock(w.CloseTime),
			WaitMinutes:    w.WaitMinutes,
			OverrunMinutes: w.OverrunMinutes,
		})
	}

	for _, e := range r.Timeline {
		res.Timeline = append(res.Timeline, TimelineEntryResponse{
			StopID:       e.StopID,
			Name:         e.Name,
			Arrival:      e.Arrival.String(),
			VisitStart:   e.VisitStart.String(),
			Departure:    e.Departure.String(),
			VisitMinutes: e.VisitDuration.Minutes(),
			Status:       string(e.Status),
			IsReturn:     e.IsReturn,
		})
	}

	return res
}

// ParseDate parses a "YYYY-MM-DD" date; empty means today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse(DateLayout, s)
}
