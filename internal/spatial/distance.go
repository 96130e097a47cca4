package spatial

import (
	"github.com/golang/geo/s2"
)

// Earth's mean radius
const (
	EarthRadiusMeters = 6371000.0
	EarthRadiusKm     = 6371.0
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// SpeedKmh returns the implied speed in km/h for the straight-line
// travel between two samples. Returns 0 when the elapsed time is not
// positive (duplicate or out-of-order timestamps).
func SpeedKmh(lat1, lon1 float64, t1 int64, lat2, lon2 float64, t2 int64) float64 {
	elapsed := t2 - t1
	if elapsed <= 0 {
		return 0
	}
	meters := HaversineDistance(lat1, lon1, lat2, lon2)
	return meters / float64(elapsed) * 3.6
}
