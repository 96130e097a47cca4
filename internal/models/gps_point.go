package models

// Sync states shared by GPS points and gap records
const (
	SyncStatePending     = "pending"
	SyncStateSynced      = "synced"
	SyncStateQuarantined = "quarantined"
)

// GpsPoint represents one location sample captured during a shift.
// The ID is client-generated (UUID) so the server can deduplicate
// re-uploads after a partial failure.
type GpsPoint struct {
	ID         string   `json:"id" db:"id"`
	ShiftID    int64    `json:"shift_id" db:"shift_id"`
	EmployeeID int64    `json:"employee_id" db:"employee_id"`
	Latitude   float64  `json:"latitude" db:"latitude"`
	Longitude  float64  `json:"longitude" db:"longitude"`
	Accuracy   *float64 `json:"accuracy,omitempty" db:"accuracy"` // meters, nil if unknown
	Speed      *float64 `json:"speed,omitempty" db:"speed"`       // m/s, nil if unknown
	Heading    float64  `json:"heading,omitempty" db:"heading"`
	Altitude   float64  `json:"altitude,omitempty" db:"altitude"`
	CapturedAt int64    `json:"captured_at" db:"captured_at"` // Unix timestamp
	SyncState  string   `json:"sync_state" db:"sync_state"`
	CreatedAt  int64    `json:"created_at" db:"created_at"`
}

// GpsGap records an interval where capture was interrupted
// (permission revoked, OS suspension). Gaps are audit data only and
// never contribute to trip geometry.
type GpsGap struct {
	ID        int64  `json:"id" db:"id"`
	ShiftID   int64  `json:"shift_id" db:"shift_id"`
	StartedAt int64  `json:"started_at" db:"started_at"`
	EndedAt   int64  `json:"ended_at" db:"ended_at"`
	Reason    string `json:"reason" db:"reason"`
	SyncState string `json:"sync_state" db:"sync_state"`
}

// Gap reason codes reported by the capture subsystem
const (
	GapReasonPermission = "permission_revoked"
	GapReasonSuspended  = "os_suspended"
	GapReasonUnknown    = "unknown"
)
