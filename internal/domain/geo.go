package domain

import "math"

const earthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance in meters between two
// points given in degrees.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// DistanceTo is HaversineDistance between c and other.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	return HaversineDistance(c.Lat, c.Lon, other.Lat, other.Lon)
}
