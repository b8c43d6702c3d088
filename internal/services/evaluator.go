package services

import (
	"fmt"
	"itinerary-route-service/internal/domain"
	"math"
	"time"
)

// Evaluation scores one route. Higher is better.
// TotalDurationSeconds covers travel, visits and waiting for opening;
// WaitSeconds is the waiting share of it.
type Evaluation struct {
	Score                float64
	TimeWarnings         []domain.TimeWarning
	Timeline             []domain.TimelineEntry
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	WaitSeconds          float64
}

// anchorIndex returns the index of the anchor stop, or -1.
func anchorIndex(stops []domain.Stop) int {
	for i, s := range stops {
		if s.IsAnchor {
			return i
		}
	}
	return -1
}

func toClock(minutes float64) domain.ClockTime {
	return domain.ClockTime(math.Round(minutes))
}

func clockPtr(c domain.ClockTime) *domain.ClockTime { return &c }

// Evaluate simulates the day along route and scores it. It is a pure function
// of its arguments: the search relies on identical inputs giving identical output.
//
// A route whose first and last entries are both the anchor treats the last one as
// the return leg. If opts.ReturnToStart is set and the route does not end at the
// anchor, the return leg is appended here instead.
func Evaluate(route []int, stops []domain.Stop, m *Matrices, day time.Weekday, startClock domain.ClockTime, opts Options) Evaluation {
	var ev Evaluation

	anchor := anchorIndex(stops)
	now := float64(startClock)

	for pos, idx := range route {
		stop := stops[idx]

		if pos > 0 {
			prev := route[pos-1]
			ev.TotalDistanceMeters += m.Distance[prev][idx]
			ev.TotalDurationSeconds += m.Duration[prev][idx]
			now += m.Duration[prev][idx] / 60
		}

		if pos > 0 && pos == len(route)-1 && idx == anchor && route[0] == anchor {
			ev.Timeline = append(ev.Timeline, returnEntry(stop, now))
			continue
		}

		now = ev.visit(stop, now, day, opts)
	}

	if opts.ReturnToStart && anchor >= 0 && len(route) > 0 && route[len(route)-1] != anchor {
		last := route[len(route)-1]
		ev.TotalDistanceMeters += m.Distance[last][anchor]
		ev.TotalDurationSeconds += m.Duration[last][anchor]
		now += m.Duration[last][anchor] / 60
		ev.Timeline = append(ev.Timeline, returnEntry(stops[anchor], now))
	}

	ev.Score -= ev.TotalDistanceMeters * opts.DistancePenaltyFactor
	return ev
}

// visit applies the opening-hours rules for one arrival and returns the departure clock.
func (ev *Evaluation) visit(stop domain.Stop, arrival float64, day time.Weekday, opts Options) float64 {
	status := domain.StatusOK
	start := arrival
	visit := stop.VisitMinutes()

	if stop.AlwaysOpen() {
		ev.Score += opts.BonusFor24h
	} else if w := stop.OpeningHours.Window(day); w != nil {
		open := float64(w.Open)
		closing := float64(w.EffectiveClose())

		if arrival < open {
			wait := open - arrival
			start = open
			ev.WaitSeconds += wait * 60
			ev.TotalDurationSeconds += wait * 60
			ev.Score -= wait * opts.WaitTimePenaltyFactor
			status = status.Worse(domain.StatusWaitForOpening)
			ev.TimeWarnings = append(ev.TimeWarnings, domain.TimeWarning{
				StopID:      stop.ID,
				Name:        stop.Name,
				Kind:        domain.StatusWaitForOpening,
				Message:     fmt.Sprintf("arrives at %s, %.0f min before %s opens at %s", toClock(arrival), wait, stop.Name, w.Open),
				Arrival:     toClock(arrival),
				OpenTime:    clockPtr(w.Open),
				CloseTime:   clockPtr(w.Close),
				WaitMinutes: wait,
			})
		}

		if arrival >= closing {
			ev.Score -= opts.AfterClosingPenalty
			status = status.Worse(domain.StatusAfterClosing)
			ev.TimeWarnings = append(ev.TimeWarnings, domain.TimeWarning{
				StopID:    stop.ID,
				Name:      stop.Name,
				Kind:      domain.StatusAfterClosing,
				Message:   fmt.Sprintf("arrives at %s, after %s closes at %s", toClock(arrival), stop.Name, w.Close),
				Arrival:   toClock(arrival),
				OpenTime:  clockPtr(w.Open),
				CloseTime: clockPtr(w.Close),
			})
		} else if end := start + visit; end > closing {
			overrun := end - closing
			ev.Score -= overrun * opts.ExceedingClosingPenaltyFactor
			if overrun > 60 {
				ev.Score -= opts.ExceedingClosingByHourPenalty
			}
			status = status.Worse(domain.StatusVisitExceedsClosing)
			ev.TimeWarnings = append(ev.TimeWarnings, domain.TimeWarning{
				StopID:         stop.ID,
				Name:           stop.Name,
				Kind:           domain.StatusVisitExceedsClosing,
				Message:        fmt.Sprintf("visit to %s runs %.0f min past closing at %s", stop.Name, overrun, w.Close),
				Arrival:        toClock(arrival),
				OpenTime:       clockPtr(w.Open),
				CloseTime:      clockPtr(w.Close),
				OverrunMinutes: overrun,
			})
		}
	}

	departure := start + visit
	ev.TotalDurationSeconds += stop.VisitDuration.Seconds()
	ev.Timeline = append(ev.Timeline, domain.TimelineEntry{
		StopID:        stop.ID,
		Name:          stop.Name,
		Arrival:       toClock(arrival),
		VisitStart:    toClock(start),
		Departure:     toClock(departure),
		VisitDuration: stop.VisitDuration,
		Status:        status,
	})
	ev.Score += float64(stop.Priority) * opts.PriorityWeight

	return departure
}

func returnEntry(anchor domain.Stop, arrival float64) domain.TimelineEntry {
	return domain.TimelineEntry{
		StopID:     anchor.ID,
		Name:       "Return to " + anchor.Name,
		Arrival:    toClock(arrival),
		VisitStart: toClock(arrival),
		Departure:  toClock(arrival),
		Status:     domain.StatusOK,
		IsReturn:   true,
	}
}
