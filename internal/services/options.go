package services

import (
	"itinerary-route-service/internal/domain"
)

// SearchProgress is reported to Options.Observer once per annealing iteration.
type SearchProgress struct {
	Iteration    int
	Temperature  float64
	CurrentScore float64
	BestScore    float64
}

// Options tunes the evaluator and the annealing search.
// Score terms are in "points": higher scores are better routes.
type Options struct {
	StartTimeHour   int  `yaml:"start_time_hour"`
	StartTimeMinute int  `yaml:"start_time_minute"`
	ReturnToStart   bool `yaml:"return_to_start"`

	MaxIterations       int     `yaml:"max_iterations"`
	InitialTemperature  float64 `yaml:"initial_temperature"`
	CoolingRate         float64 `yaml:"cooling_rate"`
	StoppingTemperature float64 `yaml:"stopping_temperature"`

	// Points per priority unit. Kept large so high-value stops dominate travel savings.
	PriorityWeight float64 `yaml:"priority_weight"`
	// Flat points for a stop without opening-hours data.
	BonusFor24h float64 `yaml:"bonus_for_24h"`
	// Points lost per meter travelled.
	DistancePenaltyFactor float64 `yaml:"distance_penalty_factor"`
	// Points lost per minute spent waiting for a stop to open.
	WaitTimePenaltyFactor float64 `yaml:"wait_time_penalty_factor"`
	// Flat points lost when arriving at or after closing time.
	AfterClosingPenalty float64 `yaml:"after_closing_penalty"`
	// Points lost per minute a visit runs past closing time.
	ExceedingClosingPenaltyFactor float64 `yaml:"exceeding_closing_penalty_factor"`
	// Extra flat points lost when a visit runs more than an hour past closing.
	ExceedingClosingByHourPenalty float64 `yaml:"exceeding_closing_by_hour_penalty"`

	// Seed for the search's random source; 0 picks a time-based seed.
	Seed int64 `yaml:"seed"`
	// Observer, when set, sees every annealing iteration.
	Observer func(SearchProgress) `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		StartTimeHour:   9,
		StartTimeMinute: 0,
		ReturnToStart:   true,

		MaxIterations:       10000,
		InitialTemperature:  1000,
		CoolingRate:         0.995,
		StoppingTemperature: 0.01,

		PriorityWeight:                1000,
		BonusFor24h:                   50,
		DistancePenaltyFactor:         0.01,
		WaitTimePenaltyFactor:         2,
		AfterClosingPenalty:           5000,
		ExceedingClosingPenaltyFactor: 50,
		ExceedingClosingByHourPenalty: 2000,
	}
}

// StartClock is the simulated departure time of the day.
func (o Options) StartClock() domain.ClockTime {
	return domain.ClockTime(o.StartTimeHour*60 + o.StartTimeMinute)
}

// Validate rejects option values the search cannot run with.
func (o Options) Validate() error {
	if o.StartTimeHour < 0 || o.StartTimeHour > 23 {
		return invalid("options.startTimeHour", "must be between 0 and 23, got %d", o.StartTimeHour)
	}
	if o.StartTimeMinute < 0 || o.StartTimeMinute > 59 {
		return invalid("options.startTimeMinute", "must be between 0 and 59, got %d", o.StartTimeMinute)
	}
	if o.MaxIterations < 0 {
		return invalid("options.maxIterations", "must not be negative, got %d", o.MaxIterations)
	}
	if o.InitialTemperature <= 0 {
		return invalid("options.initialTemperature", "must be positive, got %v", o.InitialTemperature)
	}
	if o.CoolingRate <= 0 || o.CoolingRate >= 1 {
		return invalid("options.coolingRate", "must be in (0, 1), got %v", o.CoolingRate)
	}
	if o.StoppingTemperature < 0 {
		return invalid("options.stoppingTemperature", "must not be negative, got %v", o.StoppingTemperature)
	}
	return nil
}
