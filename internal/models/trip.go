package models

// Trip classifications
const (
	TripClassificationBusiness = "business"
	TripClassificationPersonal = "personal"
)

// Trip detection methods
const (
	DetectionMethodAuto   = "auto"
	DetectionMethodManual = "manual"
)

// Trip represents a detected vehicle movement within one shift's time
// window. Trips for a shift are fully replaced each time detection
// runs; they never overlap in time.
type Trip struct {
	ID         int64 `json:"id" db:"id"`
	ShiftID    int64 `json:"shift_id" db:"shift_id"`
	EmployeeID int64 `json:"employee_id" db:"employee_id"`

	// Temporal info
	StartedAt       int64 `json:"started_at" db:"started_at"` // Unix timestamp
	EndedAt         int64 `json:"ended_at" db:"ended_at"`     // Unix timestamp
	DurationSeconds int64 `json:"duration_seconds" db:"duration_seconds"`

	// Endpoints
	StartLat float64 `json:"start_lat" db:"start_lat"`
	StartLon float64 `json:"start_lon" db:"start_lon"`
	EndLat   float64 `json:"end_lat" db:"end_lat"`
	EndLon   float64 `json:"end_lon" db:"end_lon"`

	// Trip characteristics
	DistanceMeters  float64 `json:"distance_meters" db:"distance_meters"` // corrected straight-line estimate
	Classification  string  `json:"classification" db:"classification"`
	ConfidenceScore float64 `json:"confidence_score" db:"confidence_score"` // [0,1]
	PointCount      int     `json:"point_count" db:"point_count"`
	DetectionMethod string  `json:"detection_method" db:"detection_method"`

	// Contributing points, ordered by capture time. Persisted in the
	// trip_points membership table for auditing and map rendering.
	GpsPointIDs []string `json:"gps_point_ids,omitempty" db:"-"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// TripFilter holds filtering and pagination parameters for trip queries
type TripFilter struct {
	EmployeeID     int64  `form:"employee_id"`
	ShiftID        int64  `form:"shift_id"`
	StartTime      int64  `form:"start_time"`
	EndTime        int64  `form:"end_time"`
	Classification string `form:"classification"`
	MinDistance    float64 `form:"min_distance"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}
