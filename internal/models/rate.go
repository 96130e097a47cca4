package models

// ReimbursementRate is versioned rate configuration, written by an
// external admin workflow and read-only to the pipeline. Effective
// windows never overlap for a given scope; a rate row is immutable
// once a report references it so historical totals reproduce exactly.
type ReimbursementRate struct {
	ID                 int64    `json:"id" db:"id"`
	RatePerKm          float64  `json:"rate_per_km" db:"rate_per_km"`
	ThresholdKm        *float64 `json:"threshold_km,omitempty" db:"threshold_km"` // year-to-date tier boundary
	RateAfterThreshold *float64 `json:"rate_after_threshold,omitempty" db:"rate_after_threshold"`
	EffectiveFrom      int64    `json:"effective_from" db:"effective_from"`
	EffectiveTo        *int64   `json:"effective_to,omitempty" db:"effective_to"`
	CreatedAt          int64    `json:"created_at" db:"created_at"`
}

// MileageSummary is the report-facing aggregate for a date range:
// totals plus the trip list they were computed from.
type MileageSummary struct {
	EmployeeID      int64   `json:"employee_id"`
	From            int64   `json:"from"`
	To              int64   `json:"to"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalAmount     float64 `json:"total_amount"`
	TripCount       int     `json:"trip_count"`
	RateID          int64   `json:"rate_id"`
	Trips           []Trip  `json:"trips"`
}
