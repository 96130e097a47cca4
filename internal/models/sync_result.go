package models

// SyncResult summarizes one sync cycle. Shift-level and point-level
// failures are accumulated here rather than returned as errors so a
// partial cycle still reports useful counts; only local storage
// corruption aborts the whole call.
type SyncResult struct {
	SyncedShifts      int    `json:"synced_shifts"`
	FailedShifts      int    `json:"failed_shifts"`
	SyncedGaps        int    `json:"synced_gaps"`
	SyncedPoints      int    `json:"synced_points"`
	FailedPoints      int    `json:"failed_points"`
	QuarantinedPoints int    `json:"quarantined_points"`
	LastError         string `json:"last_error,omitempty"`
}

// SyncProgress is one emission of the engine's progress stream:
// a monotonically advancing synced-item count plus a description of
// the operation in flight, for live status rendering.
type SyncProgress struct {
	ItemsSynced int    `json:"items_synced"`
	Operation   string `json:"operation"`
	Terminal    bool   `json:"terminal"`
}
