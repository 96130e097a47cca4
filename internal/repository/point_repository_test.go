package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldtrack/mileage-backend-go/internal/database"
	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedShift(t *testing.T, db *sql.DB, employeeID int64) *models.Shift {
	t.Helper()
	shifts := NewShiftRepository(db)
	shift, err := shifts.Create(employeeID, time.Now().Unix()-7200)
	require.NoError(t, err)
	require.NoError(t, shifts.Close(shift.ID, time.Now().Unix()-60))
	shift, err = shifts.GetByID(shift.ID)
	require.NoError(t, err)
	return shift
}

func seedPoints(t *testing.T, db *sql.DB, shiftID, employeeID int64, n int, base int64) []string {
	t.Helper()
	points := NewPointRepository(db)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("pt-%d-%d-%03d", shiftID, base, i)
		require.NoError(t, points.Insert(&models.GpsPoint{
			ID:         ids[i],
			ShiftID:    shiftID,
			EmployeeID: employeeID,
			Latitude:   40.0,
			Longitude:  -70.0,
			CapturedAt: base + int64(i)*15,
		}))
	}
	return ids
}

func TestPointRepository_GetPendingOrdering(t *testing.T) {
	db := openTestDB(t)
	shift := seedShift(t, db, 1)
	points := NewPointRepository(db)

	// insert out of capture order
	base := time.Now().Unix() - 3600
	for _, offset := range []int64{120, 0, 60} {
		require.NoError(t, points.Insert(&models.GpsPoint{
			ID:         fmt.Sprintf("pt-%d", offset),
			ShiftID:    shift.ID,
			EmployeeID: 1,
			Latitude:   40.0,
			Longitude:  -70.0,
			CapturedAt: base + offset,
		}))
	}

	pending, err := points.GetPending(1, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "pt-0", pending[0].ID)
	assert.Equal(t, "pt-60", pending[1].ID)
	assert.Equal(t, "pt-120", pending[2].ID)

	limited, err := points.GetPending(1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPointRepository_MarkSyncedAllOrNone(t *testing.T) {
	db := openTestDB(t)
	shift := seedShift(t, db, 1)
	ids := seedPoints(t, db, shift.ID, 1, 3, time.Now().Unix()-3600)
	points := NewPointRepository(db)

	// one unknown id poisons the whole transaction
	err := points.MarkSynced([]string{ids[0], "no-such-point"})
	require.Error(t, err)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)

	n, err := points.CountPending(1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n, "partial mark must roll back")

	require.NoError(t, points.MarkSynced(ids))
	n, err = points.CountPending(1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	// marking an already synced point is not idempotent either
	err = points.MarkSynced([]string{ids[0]})
	require.Error(t, err)
}

func TestPointRepository_GetByShiftExcludesQuarantined(t *testing.T) {
	db := openTestDB(t)
	shift := seedShift(t, db, 1)
	seedPoints(t, db, shift.ID, 1, 4, time.Now().Unix()-3600)
	points := NewPointRepository(db)

	all, err := points.GetByShift(shift.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)

	quarantine := NewQuarantineRepository(db)
	require.NoError(t, quarantine.QuarantinePoints(all[:2], models.QuarantineReasonOrphanedShift, "test", 3))

	remaining, err := points.GetByShift(shift.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	records, err := quarantine.List(models.QuarantineFilter{ShiftID: shift.ID})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestPointRepository_DeleteOlderThan(t *testing.T) {
	db := openTestDB(t)
	shift := seedShift(t, db, 1)
	points := NewPointRepository(db)

	now := time.Now().Unix()
	old := seedPoints(t, db, shift.ID, 1, 2, now-100*86400)
	recent := seedPoints(t, db, shift.ID, 1, 2, now-3600)
	_ = recent

	// only synced points are eligible for the retention sweep
	deleted, err := points.DeleteOlderThan(now - 90*86400)
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted, "pending points survive regardless of age")

	require.NoError(t, points.MarkSynced(old))
	deleted, err = points.DeleteOlderThan(now - 90*86400)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	n, err := points.CountPending(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "recent pending points remain")
}

func TestShiftRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	shifts := NewShiftRepository(db)

	shift, err := shifts.Create(7, time.Now().Unix()-3600)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOpen, shift.Status)

	unsynced, err := shifts.GetUnsynced(7)
	require.NoError(t, err)
	assert.Empty(t, unsynced, "open shifts are not upload candidates")

	require.NoError(t, shifts.Close(shift.ID, time.Now().Unix()))
	unsynced, err = shifts.GetUnsynced(7)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, models.ShiftStatusPending, unsynced[0].Status)

	// closing twice is an error: the open row is gone
	err = shifts.Close(shift.ID, time.Now().Unix())
	require.Error(t, err)

	require.NoError(t, shifts.MarkSynced(shift.ID, 9001))
	reloaded, err := shifts.GetByID(shift.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ServerID)
	assert.EqualValues(t, 9001, *reloaded.ServerID)
	assert.True(t, reloaded.Completed())

	m, err := shifts.ServerIDMap(7)
	require.NoError(t, err)
	assert.EqualValues(t, 9001, m[shift.ID])
}

func TestShiftRepository_MarkSyncedClearsOrphanAttempts(t *testing.T) {
	db := openTestDB(t)
	shift := seedShift(t, db, 1)

	orphans := NewOrphanAttemptRepository(db)
	for i := 0; i < 2; i++ {
		_, err := orphans.Increment(shift.ID)
		require.NoError(t, err)
	}
	n, err := orphans.Get(shift.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	shifts := NewShiftRepository(db)
	require.NoError(t, shifts.MarkSynced(shift.ID, 5001))

	n, err = orphans.Get(shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a synced shift starts with a clean slate")
}
