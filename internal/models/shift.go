package models

// Shift statuses
const (
	ShiftStatusOpen    = "open"
	ShiftStatusPending = "pending"
	ShiftStatusError   = "error"
	ShiftStatusSynced  = "synced"
)

// Shift represents a clock-in/clock-out work session. ServerID is
// assigned by the central store on successful upload; points cannot be
// uploaded until their shift carries a server id.
type Shift struct {
	ID           int64  `json:"id" db:"id"`
	ServerID     *int64 `json:"server_id,omitempty" db:"server_id"`
	EmployeeID   int64  `json:"employee_id" db:"employee_id"`
	ClockedInAt  int64  `json:"clocked_in_at" db:"clocked_in_at"`
	ClockedOutAt *int64 `json:"clocked_out_at,omitempty" db:"clocked_out_at"` // nil while open
	Status       string `json:"status" db:"status"`
	LastError    string `json:"last_error,omitempty" db:"last_error"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the shift has a known clock-out boundary;
// trip detection only runs against completed shifts.
func (s *Shift) Completed() bool {
	return s.ClockedOutAt != nil
}
