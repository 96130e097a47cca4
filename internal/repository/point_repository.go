package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// PointRepository is the durable queue for GPS points. Points enter as
// pending and are only ever transitioned by the sync engine (synced)
// or the quarantine path (quarantined); both states are terminal.
type PointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new point repository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

// Insert stores one captured sample
func (r *PointRepository) Insert(p *models.GpsPoint) error {
	if p.SyncState == "" {
		p.SyncState = models.SyncStatePending
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(
		`INSERT INTO gps_points (id, shift_id, employee_id, latitude, longitude,
		                         accuracy, speed, heading, altitude, captured_at,
		                         sync_state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ShiftID, p.EmployeeID, p.Latitude, p.Longitude,
		p.Accuracy, p.Speed, p.Heading, p.Altitude, p.CapturedAt,
		p.SyncState, p.CreatedAt,
	)
	if err != nil {
		return storageErr("insert gps point", err)
	}
	return nil
}

// GetPending returns pending points for an employee in stable capture
// order. limit <= 0 means no limit.
func (r *PointRepository) GetPending(employeeID int64, limit int) ([]models.GpsPoint, error) {
	query := `SELECT id, shift_id, employee_id, latitude, longitude,
	                 accuracy, speed, heading, altitude, captured_at,
	                 sync_state, created_at
	          FROM gps_points
	          WHERE employee_id = ? AND sync_state = ?
	          ORDER BY captured_at, id`
	args := []interface{}{employeeID, models.SyncStatePending}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("query pending points", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// GetByShift returns every non-quarantined point of a shift ordered by
// capture time, the exact input shape trip detection expects.
func (r *PointRepository) GetByShift(shiftID int64) ([]models.GpsPoint, error) {
	rows, err := r.db.Query(
		`SELECT id, shift_id, employee_id, latitude, longitude,
		        accuracy, speed, heading, altitude, captured_at,
		        sync_state, created_at
		 FROM gps_points
		 WHERE shift_id = ? AND sync_state != ?
		 ORDER BY captured_at, id`,
		shiftID, models.SyncStateQuarantined,
	)
	if err != nil {
		return nil, storageErr("query shift points", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// CountPending returns the number of points still waiting to sync,
// backing the presentation layer's "N items pending" indicator.
func (r *PointRepository) CountPending(employeeID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM gps_points WHERE employee_id = ? AND sync_state = ?",
		employeeID, models.SyncStatePending,
	).Scan(&n)
	if err != nil {
		return 0, storageErr("count pending points", err)
	}
	return n, nil
}

// MarkSynced transitions the listed points to synced in one
// transaction: all listed ids update or none do. A partial update
// after a crash would re-upload points the server already has.
func (r *PointRepository) MarkSynced(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin mark points synced", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"UPDATE gps_points SET sync_state = ? WHERE id = ? AND sync_state = ?",
	)
	if err != nil {
		return storageErr("prepare mark points synced", err)
	}
	defer stmt.Close()

	var updated int64
	for _, id := range ids {
		res, err := stmt.Exec(models.SyncStateSynced, id, models.SyncStatePending)
		if err != nil {
			return storageErr("mark point synced", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storageErr("mark point synced", err)
		}
		updated += n
	}

	if updated != int64(len(ids)) {
		return storageErr("mark points synced",
			fmt.Errorf("expected %d updates, got %d", len(ids), updated))
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit mark points synced", err)
	}
	return nil
}

// DeleteOlderThan removes synced points captured before the cutoff.
// Pending and quarantined points are never swept.
func (r *PointRepository) DeleteOlderThan(cutoff int64) (int64, error) {
	res, err := r.db.Exec(
		"DELETE FROM gps_points WHERE sync_state = ? AND captured_at < ?",
		models.SyncStateSynced, cutoff,
	)
	if err != nil {
		return 0, storageErr("delete old points", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete old points", err)
	}
	return n, nil
}

func scanPoints(rows *sql.Rows) ([]models.GpsPoint, error) {
	var points []models.GpsPoint
	for rows.Next() {
		var p models.GpsPoint
		if err := rows.Scan(
			&p.ID, &p.ShiftID, &p.EmployeeID, &p.Latitude, &p.Longitude,
			&p.Accuracy, &p.Speed, &p.Heading, &p.Altitude, &p.CapturedAt,
			&p.SyncState, &p.CreatedAt,
		); err != nil {
			return nil, storageErr("scan gps point", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
