package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (longitude, latitude), WGS84 degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Validate reports whether both components are finite and within WGS84 range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Key returns a cache key rounded to 5 decimal places (~1m).
// Two coordinates with the same key are treated as the same point.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.5f,%.5f", roundCoordinate(c.Lat), roundCoordinate(c.Lon))
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*100000) / 100000
}
