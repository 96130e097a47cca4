package repository

import (
	"database/sql"
	"time"
)

// OrphanAttemptRepository persists the per-shift orphan-attempt
// counters used by the quarantine policy. Persisting them (rather than
// holding an in-memory map) means an app relaunch cannot silently
// reset quarantine progress and re-orphan the same points forever.
type OrphanAttemptRepository struct {
	db *sql.DB
}

// NewOrphanAttemptRepository creates a new orphan attempt repository
func NewOrphanAttemptRepository(db *sql.DB) *OrphanAttemptRepository {
	return &OrphanAttemptRepository{db: db}
}

// Increment bumps the counter for a shift and returns the new value
func (r *OrphanAttemptRepository) Increment(shiftID int64) (int, error) {
	_, err := r.db.Exec(
		`INSERT INTO sync_orphan_attempts (shift_id, attempts, updated_at)
		 VALUES (?, 1, ?)
		 ON CONFLICT(shift_id) DO UPDATE SET
		     attempts = attempts + 1,
		     updated_at = excluded.updated_at`,
		shiftID, time.Now().Unix(),
	)
	if err != nil {
		return 0, storageErr("increment orphan attempts", err)
	}

	var attempts int
	if err := r.db.QueryRow(
		"SELECT attempts FROM sync_orphan_attempts WHERE shift_id = ?", shiftID,
	).Scan(&attempts); err != nil {
		return 0, storageErr("read orphan attempts", err)
	}
	return attempts, nil
}

// Get returns the current counter for a shift, zero if none
func (r *OrphanAttemptRepository) Get(shiftID int64) (int, error) {
	var attempts int
	err := r.db.QueryRow(
		"SELECT attempts FROM sync_orphan_attempts WHERE shift_id = ?", shiftID,
	).Scan(&attempts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("read orphan attempts", err)
	}
	return attempts, nil
}
