package sync

import (
	"context"
	"fmt"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// Per-point upload outcomes reported by the server
const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate" // already present server-side, treated as success
	OutcomeRejected  = "rejected"  // server-side validation failure, never retried
)

// ShiftUpload is the wire shape for a shift upload
type ShiftUpload struct {
	LocalID      int64  `json:"local_id"`
	EmployeeID   int64  `json:"employee_id"`
	ClockedInAt  int64  `json:"clocked_in_at"`
	ClockedOutAt *int64 `json:"clocked_out_at,omitempty"`
}

// PointUpload is the wire shape for one point in a batch upload. The
// shift reference carries the server-assigned id, never the local one.
type PointUpload struct {
	ID            string   `json:"id"`
	ServerShiftID int64    `json:"shift_id"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Accuracy      *float64 `json:"accuracy,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`
	Heading       float64  `json:"heading,omitempty"`
	Altitude      float64  `json:"altitude,omitempty"`
	CapturedAt    int64    `json:"captured_at"`
}

// GapUpload is the wire shape for a capture-gap upload
type GapUpload struct {
	ServerShiftID int64  `json:"shift_id"`
	StartedAt     int64  `json:"started_at"`
	EndedAt       int64  `json:"ended_at"`
	Reason        string `json:"reason"`
}

// PointOutcome is the server's per-item result for a batch upload
type PointOutcome struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Transport is the request/response channel to the central store.
// Batch uploads report per-item outcomes; a returned error always
// means the call as a whole failed, with *NetworkError marking
// transient network-level failures as opposed to rejections.
type Transport interface {
	UploadShift(ctx context.Context, shift models.Shift) (serverID int64, err error)
	UploadPoints(ctx context.Context, batch []PointUpload) ([]PointOutcome, error)
	UploadGaps(ctx context.Context, gaps []GapUpload) error
}

// NetworkError marks a transient transport failure. The current batch
// cycle aborts on it and everything still pending retries next cycle.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
