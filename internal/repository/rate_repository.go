package repository

import (
	"database/sql"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// RateRepository reads reimbursement rate configuration. Rows are
// written by the admin workflow and treated as immutable here so
// re-running a historical report reproduces its totals exactly.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Create inserts a new rate row (admin interface)
func (r *RateRepository) Create(rate *models.ReimbursementRate) error {
	rate.CreatedAt = time.Now().Unix()
	res, err := r.db.Exec(
		`INSERT INTO reimbursement_rates
		     (rate_per_km, threshold_km, rate_after_threshold,
		      effective_from, effective_to, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rate.RatePerKm, rate.ThresholdKm, rate.RateAfterThreshold,
		rate.EffectiveFrom, rate.EffectiveTo, rate.CreatedAt,
	)
	if err != nil {
		return storageErr("insert rate", err)
	}
	rate.ID, err = res.LastInsertId()
	if err != nil {
		return storageErr("read rate id", err)
	}
	return nil
}

// EffectiveAt returns the rate whose window covers the given time,
// nil if none is configured.
func (r *RateRepository) EffectiveAt(ts int64) (*models.ReimbursementRate, error) {
	var rate models.ReimbursementRate
	err := r.db.QueryRow(
		`SELECT id, rate_per_km, threshold_km, rate_after_threshold,
		        effective_from, effective_to, created_at
		 FROM reimbursement_rates
		 WHERE effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)
		 ORDER BY effective_from DESC
		 LIMIT 1`,
		ts, ts,
	).Scan(
		&rate.ID, &rate.RatePerKm, &rate.ThresholdKm, &rate.RateAfterThreshold,
		&rate.EffectiveFrom, &rate.EffectiveTo, &rate.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get effective rate", err)
	}
	return &rate, nil
}
