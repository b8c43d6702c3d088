package services

import (
	"itinerary-route-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineMatrices places stops on a straight line at the given offsets (meters)
// and travels at 10 m/s.
func lineMatrices(offsets ...float64) *Matrices {
	m := NewMatrices(len(offsets))
	for i := range offsets {
		for j := range offsets {
			d := offsets[i] - offsets[j]
			if d < 0 {
				d = -d
			}
			m.Distance[i][j] = d
			m.Duration[i][j] = d / 10
		}
	}
	return m
}

func stop(id string, priority int, visit time.Duration) domain.Stop {
	return domain.Stop{
		ID:            id,
		Name:          id,
		Coordinates:   domain.Coordinates{Lat: 48.85, Lon: 2.35},
		VisitDuration: visit,
		Priority:      priority,
	}
}

func withWindow(s domain.Stop, day time.Weekday, open, closing domain.ClockTime) domain.Stop {
	if s.OpeningHours == nil {
		s.OpeningHours = &domain.OpeningHours{}
	}
	s.OpeningHours.Set(day, domain.OpeningWindow{Open: open, Close: closing})
	return s
}

func anchor(id string) domain.Stop {
	s := stop(id, 0, 0)
	s.IsAnchor = true
	return s
}

func at(h, m int) domain.ClockTime { return domain.ClockTime(h*60 + m) }

func noReturn() Options {
	opts := DefaultOptions()
	opts.ReturnToStart = false
	return opts
}

func TestEvaluateOpeningHours(t *testing.T) {
	// Hotel -> B is 1000 m / 30 min; the day starts at 09:00 so B is reached at 09:30.
	m := NewMatrices(2)
	m.Distance[0][1], m.Distance[1][0] = 1000, 1000
	m.Duration[0][1], m.Duration[1][0] = 1800, 1800

	cases := []struct {
		name      string
		b         domain.Stop
		score     float64
		status    domain.VisitStatus
		warnings  int
		departure domain.ClockTime
	}{
		{
			name:      "always open",
			b:         stop("B", 1, time.Hour),
			score:     50 + 50 + 1000 - 10,
			status:    domain.StatusOK,
			departure: at(10, 30),
		},
		{
			name:      "wait for opening",
			b:         withWindow(stop("B", 1, time.Hour), time.Monday, at(10, 0), at(18, 0)),
			score:     50 - 30*2 + 1000 - 10,
			status:    domain.StatusWaitForOpening,
			warnings:  1,
			departure: at(11, 0),
		},
		{
			name:      "after closing",
			b:         withWindow(stop("B", 1, time.Hour), time.Monday, at(8, 0), at(9, 15)),
			score:     50 - 5000 + 1000 - 10,
			status:    domain.StatusAfterClosing,
			warnings:  1,
			departure: at(10, 30),
		},
		{
			name:      "overrun of exactly one hour",
			b:         withWindow(stop("B", 1, 90*time.Minute), time.Monday, at(8, 0), at(10, 0)),
			score:     50 - 60*50 + 1000 - 10,
			status:    domain.StatusVisitExceedsClosing,
			warnings:  1,
			departure: at(11, 0),
		},
		{
			name:      "overrun beyond one hour",
			b:         withWindow(stop("B", 1, 150*time.Minute), time.Monday, at(8, 0), at(10, 0)),
			score:     50 - 120*50 - 2000 + 1000 - 10,
			status:    domain.StatusVisitExceedsClosing,
			warnings:  1,
			departure: at(12, 0),
		},
		{
			name:      "no window on this weekday",
			b:         withWindow(stop("B", 1, time.Hour), time.Tuesday, at(8, 0), at(9, 0)),
			score:     50 + 1000 - 10,
			status:    domain.StatusOK,
			departure: at(10, 30),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stops := []domain.Stop{anchor("hotel"), tc.b}
			ev := Evaluate([]int{0, 1}, stops, m, time.Monday, at(9, 0), noReturn())

			assert.InDelta(t, tc.score, ev.Score, 1e-9)
			require.Len(t, ev.Timeline, 2)
			assert.Equal(t, tc.status, ev.Timeline[1].Status)
			assert.Equal(t, at(9, 30), ev.Timeline[1].Arrival)
			assert.Equal(t, tc.departure, ev.Timeline[1].Departure)
			require.Len(t, ev.TimeWarnings, tc.warnings)
			if tc.warnings > 0 {
				assert.Equal(t, tc.status, ev.TimeWarnings[0].Kind)
				assert.Equal(t, "B", ev.TimeWarnings[0].StopID)
				assert.NotEmpty(t, ev.TimeWarnings[0].Message)
			}
		})
	}
}

func TestEvaluateWaitWarningDetails(t *testing.T) {
	m := lineMatrices(0, 18000) // 30 min at 10 m/s
	stops := []domain.Stop{
		anchor("hotel"),
		withWindow(stop("louvre", 4, 2*time.Hour), time.Friday, at(10, 0), at(18, 0)),
	}

	ev := Evaluate([]int{0, 1}, stops, m, time.Friday, at(9, 0), noReturn())

	require.Len(t, ev.TimeWarnings, 1)
	w := ev.TimeWarnings[0]
	assert.Equal(t, 30.0, w.WaitMinutes)
	require.NotNil(t, w.OpenTime)
	require.NotNil(t, w.CloseTime)
	assert.Equal(t, at(10, 0), *w.OpenTime)
	assert.Equal(t, at(18, 0), *w.CloseTime)
	assert.Equal(t, at(10, 0), ev.Timeline[1].VisitStart)
	assert.Equal(t, 1800.0, ev.WaitSeconds)
	assert.Equal(t, 1800.0+1800+7200, ev.TotalDurationSeconds)
}

func TestEvaluateOvernightWindow(t *testing.T) {
	m := lineMatrices(0, 18000)
	stops := []domain.Stop{
		anchor("hotel"),
		withWindow(stop("club", 1, time.Hour), time.Saturday, at(18, 0), at(2, 0)),
	}

	ev := Evaluate([]int{0, 1}, stops, m, time.Saturday, at(23, 0), noReturn())

	assert.Empty(t, ev.TimeWarnings)
	assert.Equal(t, domain.StatusOK, ev.Timeline[1].Status)
	assert.Equal(t, "00:30", ev.Timeline[1].Departure.String())
}

func TestEvaluateAppendsReturnLeg(t *testing.T) {
	m := lineMatrices(0, 1000, 3000)
	stops := []domain.Stop{anchor("hotel"), stop("a", 1, 0), stop("b", 1, 0)}

	opts := DefaultOptions()
	ev := Evaluate([]int{0, 1, 2}, stops, m, time.Monday, at(9, 0), opts)

	require.Len(t, ev.Timeline, 4)
	last := ev.Timeline[3]
	assert.True(t, last.IsReturn)
	assert.Equal(t, "hotel", last.StopID)
	assert.Equal(t, "Return to hotel", last.Name)
	assert.Equal(t, last.Arrival, last.Departure)
	assert.Equal(t, 6000.0, ev.TotalDistanceMeters)

	// The same route with the anchor already at the end is not extended.
	dup := Evaluate([]int{0, 1, 2, 0}, stops, m, time.Monday, at(9, 0), opts)
	assert.Len(t, dup.Timeline, 4)
	assert.Equal(t, ev.Score, dup.Score)
	assert.Equal(t, ev.TotalDistanceMeters, dup.TotalDistanceMeters)
}

func TestEvaluateReturnLegSkipsOpeningHours(t *testing.T) {
	m := lineMatrices(0, 1000)
	// Back at the hotel around 06:33, after it "closes" at 06:31.
	hotel := withWindow(anchor("hotel"), time.Monday, at(6, 0), at(6, 31))
	stops := []domain.Stop{hotel, stop("a", 1, 0)}

	ev := Evaluate([]int{0, 1, 0}, stops, m, time.Monday, at(6, 30), DefaultOptions())

	assert.Empty(t, ev.TimeWarnings)
	assert.Equal(t, domain.StatusOK, ev.Timeline[2].Status)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	m := lineMatrices(0, 2500, 700, 4100)
	stops := []domain.Stop{
		anchor("hotel"),
		withWindow(stop("a", 3, 45*time.Minute), time.Sunday, at(9, 10), at(9, 40)),
		withWindow(stop("b", 2, 2*time.Hour), time.Sunday, at(11, 0), at(12, 0)),
		stop("c", 5, 30*time.Minute),
	}
	route := []int{0, 2, 1, 3, 0}

	first := Evaluate(route, stops, m, time.Sunday, at(9, 0), DefaultOptions())
	second := Evaluate(route, stops, m, time.Sunday, at(9, 0), DefaultOptions())

	assert.Equal(t, first, second)
}

func TestEvaluateShorterRouteScoresHigher(t *testing.T) {
	m := lineMatrices(0, 1000, 2000, 3000)
	stops := []domain.Stop{anchor("hotel"), stop("a", 2, 0), stop("b", 2, 0), stop("c", 2, 0)}

	short := Evaluate([]int{0, 1, 2, 3}, stops, m, time.Monday, at(9, 0), noReturn())
	long := Evaluate([]int{0, 2, 1, 3}, stops, m, time.Monday, at(9, 0), noReturn())

	require.Empty(t, short.TimeWarnings)
	require.Empty(t, long.TimeWarnings)
	assert.Less(t, short.TotalDistanceMeters, long.TotalDistanceMeters)
	assert.Greater(t, short.Score, long.Score)
}
