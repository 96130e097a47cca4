package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude is ~111.2 km on the 6371 km sphere
	d := HaversineDistance(37.0, -122.0, 38.0, -122.0)
	assert.InDelta(t, 111195, d, 10)

	// Zero distance for identical points
	assert.Zero(t, HaversineDistance(37.0, -122.0, 37.0, -122.0))
}

func TestSpeedKmh(t *testing.T) {
	// ~1112 m in 60 s is ~66.7 km/h
	speed := SpeedKmh(37.0, -122.0, 0, 37.01, -122.0, 60)
	assert.InDelta(t, 66.7, speed, 0.5)
}

func TestSpeedKmh_NonPositiveElapsed(t *testing.T) {
	assert.Zero(t, SpeedKmh(37.0, -122.0, 100, 37.01, -122.0, 100))
	assert.Zero(t, SpeedKmh(37.0, -122.0, 100, 37.01, -122.0, 50))
}
