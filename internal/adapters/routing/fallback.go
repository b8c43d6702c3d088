package routing

import (
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"math"
	"sort"
)

// SpeedTier assigns an average speed to trips up to MaxDistanceMeters long.
// A tier with MaxDistanceMeters <= 0 matches any distance.
type SpeedTier struct {
	MaxDistanceMeters float64 `yaml:"max_distance_meters"`
	SpeedKph          float64 `yaml:"speed_kph"`
}

// DefaultSpeedTiers model slow dense-urban hops up to highway-dominated trips.
// They are tunable heuristics, not measured values.
func DefaultSpeedTiers() []SpeedTier {
	return []SpeedTier{
		{MaxDistanceMeters: 1_000, SpeedKph: 15},
		{MaxDistanceMeters: 5_000, SpeedKph: 25},
		{MaxDistanceMeters: 20_000, SpeedKph: 40},
		{MaxDistanceMeters: 100_000, SpeedKph: 70},
		{MaxDistanceMeters: 0, SpeedKph: 90},
	}
}

// FallbackEstimator converts a great-circle distance into a travel estimate.
type FallbackEstimator struct {
	tiers []SpeedTier
}

// NewFallbackEstimator sorts tiers by distance (open-ended last).
// Tiers with a non-positive speed are dropped; if none remain the defaults apply.
func NewFallbackEstimator(tiers []SpeedTier) *FallbackEstimator {
	valid := make([]SpeedTier, 0, len(tiers))
	for _, t := range tiers {
		if t.SpeedKph > 0 {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		valid = DefaultSpeedTiers()
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i].MaxDistanceMeters, valid[j].MaxDistanceMeters
		if a <= 0 {
			return false
		}
		if b <= 0 {
			return true
		}
		return a < b
	})

	return &FallbackEstimator{tiers: valid}
}

// SpeedFor returns the average speed in km/h assumed for a trip of the given length.
func (f *FallbackEstimator) SpeedFor(distanceMeters float64) float64 {
	for _, t := range f.tiers {
		if t.MaxDistanceMeters <= 0 || distanceMeters <= t.MaxDistanceMeters {
			return t.SpeedKph
		}
	}
	// Longer than every bounded tier and no open-ended tier: use the fastest.
	fastest := f.tiers[0].SpeedKph
	for _, t := range f.tiers[1:] {
		fastest = math.Max(fastest, t.SpeedKph)
	}
	return fastest
}

// Estimate returns the haversine distance and a tiered-speed duration.
func (f *FallbackEstimator) Estimate(from, to domain.Coordinates) ports.SegmentResult {
	meters := from.DistanceTo(to)
	if meters == 0 {
		return ports.SegmentResult{Source: ports.SourceFallback}
	}

	metersPerSecond := f.SpeedFor(meters) * 1000 / 3600
	seconds := meters / metersPerSecond

	return ports.SegmentResult{
		DistanceMeters:  meters,
		DurationSeconds: math.Round(seconds),
		Source:          ports.SourceFallback,
	}
}
