package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// QuarantineRepository is the side store for records removed from the
// hot sync path. Writes are purely additive; re-injecting quarantined
// data is an explicit external decision.
type QuarantineRepository struct {
	db *sql.DB
}

// NewQuarantineRepository creates a new quarantine repository
func NewQuarantineRepository(db *sql.DB) *QuarantineRepository {
	return &QuarantineRepository{db: db}
}

// QuarantinePoints moves the given points out of the pending queue and
// records one quarantine row per point, all in a single transaction so
// a crash cannot leave a point quarantined but still pending.
func (r *QuarantineRepository) QuarantinePoints(points []models.GpsPoint, errorCode, message string, attempts int) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin quarantine", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	insert, err := tx.Prepare(
		`INSERT INTO quarantine_records (record_type, record_id, shift_id,
		                                 error_code, message, attempts, quarantined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return storageErr("prepare quarantine insert", err)
	}
	defer insert.Close()

	update, err := tx.Prepare(
		"UPDATE gps_points SET sync_state = ? WHERE id = ?",
	)
	if err != nil {
		return storageErr("prepare quarantine update", err)
	}
	defer update.Close()

	for _, p := range points {
		if _, err := insert.Exec(
			models.QuarantineTypePoint, p.ID, p.ShiftID,
			errorCode, message, attempts, now,
		); err != nil {
			return storageErr("insert quarantine record", err)
		}
		if _, err := update.Exec(models.SyncStateQuarantined, p.ID); err != nil {
			return storageErr("mark point quarantined", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit quarantine", err)
	}
	return nil
}

// List retrieves quarantine records with optional filtering
func (r *QuarantineRepository) List(filter models.QuarantineFilter) ([]models.QuarantineRecord, error) {
	query := `SELECT id, record_type, record_id, shift_id, error_code,
	                 message, attempts, quarantined_at
	          FROM quarantine_records`

	var conditions []string
	var args []interface{}

	if filter.ShiftID > 0 {
		conditions = append(conditions, "shift_id = ?")
		args = append(args, filter.ShiftID)
	}
	if filter.ErrorCode != "" {
		conditions = append(conditions, "error_code = ?")
		args = append(args, filter.ErrorCode)
	}
	if filter.RecordType != "" {
		conditions = append(conditions, "record_type = ?")
		args = append(args, filter.RecordType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY quarantined_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("query quarantine records", err)
	}
	defer rows.Close()

	var records []models.QuarantineRecord
	for rows.Next() {
		var q models.QuarantineRecord
		if err := rows.Scan(
			&q.ID, &q.RecordType, &q.RecordID, &q.ShiftID,
			&q.ErrorCode, &q.Message, &q.Attempts, &q.QuarantinedAt,
		); err != nil {
			return nil, storageErr("scan quarantine record", err)
		}
		records = append(records, q)
	}
	return records, rows.Err()
}
