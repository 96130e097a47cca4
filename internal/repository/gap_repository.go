package repository

import (
	"database/sql"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// GapRepository stores capture-interruption intervals. Gaps share the
// point sync lifecycle but never quarantine: they are non-critical
// audit data and simply wait until their shift has a server id.
type GapRepository struct {
	db *sql.DB
}

// NewGapRepository creates a new gap repository
func NewGapRepository(db *sql.DB) *GapRepository {
	return &GapRepository{db: db}
}

// Insert stores one capture gap
func (r *GapRepository) Insert(g *models.GpsGap) error {
	if g.SyncState == "" {
		g.SyncState = models.SyncStatePending
	}
	res, err := r.db.Exec(
		`INSERT INTO gps_gaps (shift_id, started_at, ended_at, reason, sync_state)
		 VALUES (?, ?, ?, ?, ?)`,
		g.ShiftID, g.StartedAt, g.EndedAt, g.Reason, g.SyncState,
	)
	if err != nil {
		return storageErr("insert gps gap", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return storageErr("read gap id", err)
	}
	return nil
}

// GetPending returns pending gaps for an employee's shifts
func (r *GapRepository) GetPending(employeeID int64) ([]models.GpsGap, error) {
	rows, err := r.db.Query(
		`SELECT g.id, g.shift_id, g.started_at, g.ended_at, g.reason, g.sync_state
		 FROM gps_gaps g
		 JOIN shifts s ON s.id = g.shift_id
		 WHERE s.employee_id = ? AND g.sync_state = ?
		 ORDER BY g.started_at`,
		employeeID, models.SyncStatePending,
	)
	if err != nil {
		return nil, storageErr("query pending gaps", err)
	}
	defer rows.Close()

	var gaps []models.GpsGap
	for rows.Next() {
		var g models.GpsGap
		if err := rows.Scan(&g.ID, &g.ShiftID, &g.StartedAt, &g.EndedAt, &g.Reason, &g.SyncState); err != nil {
			return nil, storageErr("scan gps gap", err)
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}

// GetByShift returns all gaps of a shift ordered by start time
func (r *GapRepository) GetByShift(shiftID int64) ([]models.GpsGap, error) {
	rows, err := r.db.Query(
		`SELECT id, shift_id, started_at, ended_at, reason, sync_state
		 FROM gps_gaps WHERE shift_id = ? ORDER BY started_at`,
		shiftID,
	)
	if err != nil {
		return nil, storageErr("query shift gaps", err)
	}
	defer rows.Close()

	var gaps []models.GpsGap
	for rows.Next() {
		var g models.GpsGap
		if err := rows.Scan(&g.ID, &g.ShiftID, &g.StartedAt, &g.EndedAt, &g.Reason, &g.SyncState); err != nil {
			return nil, storageErr("scan gps gap", err)
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}

// MarkSynced transitions the listed gaps to synced in one transaction
func (r *GapRepository) MarkSynced(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin mark gaps synced", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE gps_gaps SET sync_state = ? WHERE id = ?")
	if err != nil {
		return storageErr("prepare mark gaps synced", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(models.SyncStateSynced, id); err != nil {
			return storageErr("mark gap synced", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit mark gaps synced", err)
	}
	return nil
}
