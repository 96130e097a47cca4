package detection

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldtrack/mileage-backend-go/internal/database"
	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
)

const (
	metersPerDegreeLat = 111194.93
	baseLat            = 37.0
	baseLon            = -122.0
	shiftStart         = int64(1700000000)
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newCompletedShift(t *testing.T, db *sql.DB, duration int64) *models.Shift {
	t.Helper()
	shifts := repository.NewShiftRepository(db)
	shift, err := shifts.Create(1, shiftStart)
	require.NoError(t, err)
	require.NoError(t, shifts.Close(shift.ID, shiftStart+duration))
	shift, err = shifts.GetByID(shift.ID)
	require.NoError(t, err)
	return shift
}

// sample places a point `offset` seconds into the shift, `meters`
// north of the shift's starting position.
type sample struct {
	offset   int64
	meters   float64
	accuracy float64 // 0 means a good 10 m fix
}

func insertTrace(t *testing.T, db *sql.DB, shift *models.Shift, samples []sample) {
	t.Helper()
	points := repository.NewPointRepository(db)
	for i, s := range samples {
		acc := s.accuracy
		if acc == 0 {
			acc = 10
		}
		p := &models.GpsPoint{
			ID:         fmt.Sprintf("pt-%d-%d", shift.ID, i),
			ShiftID:    shift.ID,
			EmployeeID: shift.EmployeeID,
			Latitude:   baseLat + s.meters/metersPerDegreeLat,
			Longitude:  baseLon,
			Accuracy:   &acc,
			CapturedAt: shiftStart + s.offset,
		}
		require.NoError(t, points.Insert(p))
	}
}

func TestDetectTrips_SingleTrip(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	// stationary, then three vehicle-speed samples (30 km/h), then a
	// sustained stationary run ending the trip
	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 0},
		{offset: 120, meters: 500},
		{offset: 180, meters: 1000},
		{offset: 240, meters: 1500},
		{offset: 300, meters: 1500},
		{offset: 360, meters: 1500},
		{offset: 420, meters: 1500},
		{offset: 480, meters: 1500},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, shiftStart+120, trip.StartedAt)
	assert.Equal(t, shiftStart+240, trip.EndedAt)
	assert.Equal(t, 3, trip.PointCount)
	assert.InDelta(t, 1000*1.3, trip.DistanceMeters, 5)
	assert.Equal(t, models.TripClassificationBusiness, trip.Classification)
	assert.Equal(t, models.DetectionMethodAuto, trip.DetectionMethod)
	assert.InDelta(t, 1.0, trip.ConfidenceScore, 1e-9)
	assert.Len(t, trip.GpsPointIDs, 3)
}

func TestDetectTrips_Idempotent(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 500},
		{offset: 120, meters: 1000},
		{offset: 180, meters: 1500},
		{offset: 240, meters: 1500},
		{offset: 300, meters: 1500},
		{offset: 360, meters: 1500},
	})

	detector := NewDetector(db, DefaultConfig())
	first, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	second, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Replace-all persistence: re-running never accumulates rows
	stored, err := repository.NewTripRepository(db).GetByShift(shift.ID)
	require.NoError(t, err)
	assert.Len(t, stored, len(first))
}

func TestDetectTrips_MinimumDistanceFilter(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	// 200 m of vehicle-speed movement between two stationary periods
	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 600, meters: 0},
		{offset: 610, meters: 100},
		{offset: 620, meters: 200},
		{offset: 680, meters: 200},
		{offset: 860, meters: 200},
		{offset: 1040, meters: 200},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestDetectTrips_GapForcesBoundary(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 7200)

	// two vehicle clusters separated by a 20-minute data gap
	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 500},
		{offset: 120, meters: 1000},
		{offset: 180, meters: 1500},
		// 20-minute gap
		{offset: 1380, meters: 1600},
		{offset: 1440, meters: 2100},
		{offset: 1500, meters: 2600},
		{offset: 1560, meters: 3100},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	require.Len(t, trips, 2, "gap must never be silently bridged")

	assert.Equal(t, shiftStart+60, trips[0].StartedAt)
	assert.Equal(t, shiftStart+180, trips[0].EndedAt)
	assert.Equal(t, shiftStart+1440, trips[1].StartedAt)
	assert.Equal(t, shiftStart+1560, trips[1].EndedAt)
}

func TestDetectTrips_WalkingNoiseAbsorbed(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	// a short walking-speed interlude (a red light) inside a vehicle trip
	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 500},
		{offset: 120, meters: 1000},
		{offset: 180, meters: 1150}, // 9 km/h
		{offset: 240, meters: 1650},
		{offset: 300, meters: 2150},
		{offset: 360, meters: 2150},
		{offset: 420, meters: 2150},
		{offset: 480, meters: 2150},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, shiftStart+60, trips[0].StartedAt)
	assert.Equal(t, shiftStart+300, trips[0].EndedAt)
	assert.Equal(t, 5, trips[0].PointCount)
}

func TestDetectTrips_AllStationary(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 0},
		{offset: 120, meters: 0},
		{offset: 180, meters: 0},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestDetectTrips_TooFewPoints(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	insertTrace(t, db, shift, []sample{{offset: 0, meters: 0}})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestDetectTrips_OutlierFiltering(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 500},
		{offset: 90, meters: 20000, accuracy: 10}, // implied 2340 km/h glitch
		{offset: 120, meters: 1000},
		{offset: 150, meters: 1200, accuracy: 350}, // hopeless accuracy
		{offset: 180, meters: 1500},
		{offset: 240, meters: 1500},
		{offset: 300, meters: 1500},
		{offset: 360, meters: 1500},
		{offset: 420, meters: 1500},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	require.Len(t, trips, 1)

	// neither outlier contributes to the trip
	for _, id := range trips[0].GpsPointIDs {
		assert.NotEqual(t, fmt.Sprintf("pt-%d-2", shift.ID), id)
		assert.NotEqual(t, fmt.Sprintf("pt-%d-4", shift.ID), id)
	}
	assert.InDelta(t, 1000*1.3, trips[0].DistanceMeters, 10)
}

func TestDetectTrips_OpenShiftRejected(t *testing.T) {
	db := openTestDB(t)
	shifts := repository.NewShiftRepository(db)
	shift, err := shifts.Create(1, shiftStart)
	require.NoError(t, err)

	detector := NewDetector(db, DefaultConfig())
	_, err = detector.DetectTrips(shift.ID)
	assert.Error(t, err)
}

func TestDetectTrips_ConfidenceScore(t *testing.T) {
	db := openTestDB(t)
	shift := newCompletedShift(t, db, 3600)

	// one of four contributing points has a low-accuracy fix
	insertTrace(t, db, shift, []sample{
		{offset: 0, meters: 0},
		{offset: 60, meters: 500},
		{offset: 120, meters: 1000},
		{offset: 180, meters: 1500, accuracy: 80},
		{offset: 240, meters: 2000},
		{offset: 300, meters: 2000},
		{offset: 360, meters: 2000},
		{offset: 420, meters: 2000},
		{offset: 480, meters: 2000},
	})

	detector := NewDetector(db, DefaultConfig())
	trips, err := detector.DetectTrips(shift.ID)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 4, trips[0].PointCount)
	assert.InDelta(t, 0.75, trips[0].ConfidenceScore, 1e-9)
}
