package ports

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
)

// ErrPlanNotFound is returned by a StopRepository when no plan has the requested id.
var ErrPlanNotFound = errors.New("plan not found")

// Port: a boundary for retrieving a stored day plan's stops.
type StopRepository interface {
	// Retrieve the stops of one plan in their stored order.
	ListStops(ctx context.Context, planID string) ([]domain.Stop, error)

	// PlanDate returns the plan's stored "YYYY-MM-DD" date, or "" when it has none.
	PlanDate(ctx context.Context, planID string) (string, error)
}
