package repository

import (
	"database/sql"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// ShiftRepository handles database operations for shifts
type ShiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// Create opens a new shift at clock-in
func (r *ShiftRepository) Create(employeeID, clockedInAt int64) (*models.Shift, error) {
	now := time.Now().Unix()
	res, err := r.db.Exec(
		`INSERT INTO shifts (employee_id, clocked_in_at, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		employeeID, clockedInAt, models.ShiftStatusOpen, now, now,
	)
	if err != nil {
		return nil, storageErr("insert shift", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("read shift id", err)
	}

	return &models.Shift{
		ID:          id,
		EmployeeID:  employeeID,
		ClockedInAt: clockedInAt,
		Status:      models.ShiftStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Close records clock-out and moves the shift into the sync queue
func (r *ShiftRepository) Close(shiftID, clockedOutAt int64) error {
	res, err := r.db.Exec(
		`UPDATE shifts SET clocked_out_at = ?, status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		clockedOutAt, models.ShiftStatusPending, time.Now().Unix(),
		shiftID, models.ShiftStatusOpen,
	)
	if err != nil {
		return storageErr("close shift", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID retrieves a single shift
func (r *ShiftRepository) GetByID(id int64) (*models.Shift, error) {
	var s models.Shift
	err := r.db.QueryRow(
		`SELECT id, server_id, employee_id, clocked_in_at, clocked_out_at,
		        status, last_error, created_at, updated_at
		 FROM shifts WHERE id = ?`, id,
	).Scan(
		&s.ID, &s.ServerID, &s.EmployeeID, &s.ClockedInAt, &s.ClockedOutAt,
		&s.Status, &s.LastError, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get shift", err)
	}
	return &s, nil
}

// GetUnsynced returns shifts awaiting upload (pending or in error),
// oldest first. Open shifts are excluded until clock-out.
func (r *ShiftRepository) GetUnsynced(employeeID int64) ([]models.Shift, error) {
	rows, err := r.db.Query(
		`SELECT id, server_id, employee_id, clocked_in_at, clocked_out_at,
		        status, last_error, created_at, updated_at
		 FROM shifts
		 WHERE employee_id = ? AND status IN (?, ?)
		 ORDER BY clocked_in_at`,
		employeeID, models.ShiftStatusPending, models.ShiftStatusError,
	)
	if err != nil {
		return nil, storageErr("query unsynced shifts", err)
	}
	defer rows.Close()

	var shifts []models.Shift
	for rows.Next() {
		var s models.Shift
		if err := rows.Scan(
			&s.ID, &s.ServerID, &s.EmployeeID, &s.ClockedInAt, &s.ClockedOutAt,
			&s.Status, &s.LastError, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, storageErr("scan shift", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

// MarkSynced records the server-assigned id and finishes the shift's
// sync lifecycle. Any persisted orphan-attempt counter for the shift
// is cleared in the same transaction.
func (r *ShiftRepository) MarkSynced(shiftID, serverID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin mark shift synced", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE shifts SET server_id = ?, status = ?, last_error = '', updated_at = ?
		 WHERE id = ?`,
		serverID, models.ShiftStatusSynced, time.Now().Unix(), shiftID,
	); err != nil {
		return storageErr("mark shift synced", err)
	}
	if _, err := tx.Exec(
		"DELETE FROM sync_orphan_attempts WHERE shift_id = ?", shiftID,
	); err != nil {
		return storageErr("clear orphan attempts", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit mark shift synced", err)
	}
	return nil
}

// MarkError records an upload failure; the shift is retried next cycle
func (r *ShiftRepository) MarkError(shiftID int64, message string) error {
	if _, err := r.db.Exec(
		`UPDATE shifts SET status = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		models.ShiftStatusError, message, time.Now().Unix(), shiftID,
	); err != nil {
		return storageErr("mark shift error", err)
	}
	return nil
}

// ServerIDMap returns local id → server id for all synced shifts of an employee
func (r *ShiftRepository) ServerIDMap(employeeID int64) (map[int64]int64, error) {
	rows, err := r.db.Query(
		`SELECT id, server_id FROM shifts
		 WHERE employee_id = ? AND server_id IS NOT NULL`,
		employeeID,
	)
	if err != nil {
		return nil, storageErr("query shift server ids", err)
	}
	defer rows.Close()

	ids := make(map[int64]int64)
	for rows.Next() {
		var localID, serverID int64
		if err := rows.Scan(&localID, &serverID); err != nil {
			return nil, storageErr("scan shift server id", err)
		}
		ids[localID] = serverID
	}
	return ids, rows.Err()
}
