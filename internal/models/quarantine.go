package models

// Quarantine error codes
const (
	QuarantineReasonOrphanedShift = "orphaned_shift"
)

// Quarantined record types
const (
	QuarantineTypePoint = "gps_point"
)

// QuarantineRecord is a record pulled out of the hot sync path after
// repeated failed attempts. Purely additive; re-injection requires an
// explicit external decision.
type QuarantineRecord struct {
	ID            int64  `json:"id" db:"id"`
	RecordType    string `json:"record_type" db:"record_type"`
	RecordID      string `json:"record_id" db:"record_id"`
	ShiftID       int64  `json:"shift_id" db:"shift_id"`
	ErrorCode     string `json:"error_code" db:"error_code"`
	Message       string `json:"message" db:"message"`
	Attempts      int    `json:"attempts" db:"attempts"`
	QuarantinedAt int64  `json:"quarantined_at" db:"quarantined_at"`
}

// QuarantineFilter holds filtering parameters for quarantine queries
type QuarantineFilter struct {
	ShiftID    int64  `form:"shift_id"`
	ErrorCode  string `form:"error_code"`
	RecordType string `form:"record_type"`
}
