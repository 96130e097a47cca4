package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// TripRepository handles database operations for detected trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// ReplaceForShift deletes every trip of the shift and inserts the new
// set, including point memberships, in one transaction. Detection is a
// pure function of the GPS trace, so replace-all is correctness-
// equivalent to diffing and much simpler.
func (r *TripRepository) ReplaceForShift(shiftID int64, trips []models.Trip) error {
	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin trip replace", err)
	}
	defer tx.Rollback()

	// ON DELETE CASCADE clears trip_points
	if _, err := tx.Exec("DELETE FROM trips WHERE shift_id = ?", shiftID); err != nil {
		return storageErr("clear shift trips", err)
	}

	now := time.Now().Unix()

	insertTrip, err := tx.Prepare(
		`INSERT INTO trips (shift_id, employee_id, started_at, ended_at, duration_seconds,
		                    start_lat, start_lon, end_lat, end_lon,
		                    distance_meters, classification, confidence_score,
		                    point_count, detection_method, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return storageErr("prepare trip insert", err)
	}
	defer insertTrip.Close()

	insertMember, err := tx.Prepare(
		"INSERT INTO trip_points (trip_id, point_id, seq) VALUES (?, ?, ?)",
	)
	if err != nil {
		return storageErr("prepare trip membership insert", err)
	}
	defer insertMember.Close()

	for _, t := range trips {
		res, err := insertTrip.Exec(
			t.ShiftID, t.EmployeeID, t.StartedAt, t.EndedAt, t.DurationSeconds,
			t.StartLat, t.StartLon, t.EndLat, t.EndLon,
			t.DistanceMeters, t.Classification, t.ConfidenceScore,
			t.PointCount, t.DetectionMethod, now, now,
		)
		if err != nil {
			return storageErr("insert trip", err)
		}
		tripID, err := res.LastInsertId()
		if err != nil {
			return storageErr("read trip id", err)
		}
		for seq, pointID := range t.GpsPointIDs {
			if _, err := insertMember.Exec(tripID, pointID, seq); err != nil {
				return storageErr("insert trip membership", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit trip replace", err)
	}
	return nil
}

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	query := `SELECT id, shift_id, employee_id, started_at, ended_at, duration_seconds,
	                 start_lat, start_lon, end_lat, end_lon,
	                 distance_meters, classification, confidence_score,
	                 point_count, detection_method, created_at, updated_at
	          FROM trips`

	var conditions []string
	var args []interface{}

	if filter.EmployeeID > 0 {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.ShiftID > 0 {
		conditions = append(conditions, "shift_id = ?")
		args = append(args, filter.ShiftID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "ended_at <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.Classification != "" {
		conditions = append(conditions, "classification = ?")
		args = append(args, filter.Classification)
	}
	if filter.MinDistance > 0 {
		conditions = append(conditions, "distance_meters >= ?")
		args = append(args, filter.MinDistance)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM trips"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count trips", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY started_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, storageErr("query trips", err)
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// GetTripByID retrieves a single trip with its contributing point ids
func (r *TripRepository) GetTripByID(id int64) (*models.Trip, error) {
	var t models.Trip
	err := r.db.QueryRow(
		`SELECT id, shift_id, employee_id, started_at, ended_at, duration_seconds,
		        start_lat, start_lon, end_lat, end_lon,
		        distance_meters, classification, confidence_score,
		        point_count, detection_method, created_at, updated_at
		 FROM trips WHERE id = ?`, id,
	).Scan(
		&t.ID, &t.ShiftID, &t.EmployeeID, &t.StartedAt, &t.EndedAt, &t.DurationSeconds,
		&t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
		&t.DistanceMeters, &t.Classification, &t.ConfidenceScore,
		&t.PointCount, &t.DetectionMethod, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get trip", err)
	}

	rows, err := r.db.Query(
		"SELECT point_id FROM trip_points WHERE trip_id = ? ORDER BY seq", id,
	)
	if err != nil {
		return nil, storageErr("query trip points", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pointID string
		if err := rows.Scan(&pointID); err != nil {
			return nil, storageErr("scan trip point", err)
		}
		t.GpsPointIDs = append(t.GpsPointIDs, pointID)
	}
	return &t, rows.Err()
}

// GetByShift returns the shift's trips ordered by start time
func (r *TripRepository) GetByShift(shiftID int64) ([]models.Trip, error) {
	rows, err := r.db.Query(
		`SELECT id, shift_id, employee_id, started_at, ended_at, duration_seconds,
		        start_lat, start_lon, end_lat, end_lon,
		        distance_meters, classification, confidence_score,
		        point_count, detection_method, created_at, updated_at
		 FROM trips WHERE shift_id = ? ORDER BY started_at`,
		shiftID,
	)
	if err != nil {
		return nil, storageErr("query shift trips", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// UpdateClassification is the direct classification-change command
// from the presentation layer. No re-detection is triggered.
func (r *TripRepository) UpdateClassification(tripID int64, classification string) error {
	res, err := r.db.Exec(
		"UPDATE trips SET classification = ?, detection_method = ?, updated_at = ? WHERE id = ?",
		classification, models.DetectionMethodManual, time.Now().Unix(), tripID,
	)
	if err != nil {
		return storageErr("update trip classification", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BusinessTrips returns all business-classified trips of an employee
// starting in [from, to), oldest first, for report rendering.
func (r *TripRepository) BusinessTrips(employeeID, from, to int64) ([]models.Trip, error) {
	rows, err := r.db.Query(
		`SELECT id, shift_id, employee_id, started_at, ended_at, duration_seconds,
		        start_lat, start_lon, end_lat, end_lon,
		        distance_meters, classification, confidence_score,
		        point_count, detection_method, created_at, updated_at
		 FROM trips
		 WHERE employee_id = ? AND classification = ?
		   AND started_at >= ? AND started_at < ?
		 ORDER BY started_at`,
		employeeID, models.TripClassificationBusiness, from, to,
	)
	if err != nil {
		return nil, storageErr("query business trips", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// BusinessDistanceMeters sums business-classified trip distance for an
// employee in [from, to), used for year-to-date threshold accounting.
func (r *TripRepository) BusinessDistanceMeters(employeeID, from, to int64) (float64, error) {
	var meters sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT SUM(distance_meters) FROM trips
		 WHERE employee_id = ? AND classification = ?
		   AND started_at >= ? AND started_at < ?`,
		employeeID, models.TripClassificationBusiness, from, to,
	).Scan(&meters)
	if err != nil {
		return 0, storageErr("sum business distance", err)
	}
	return meters.Float64, nil
}

func scanTrips(rows *sql.Rows) ([]models.Trip, error) {
	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(
			&t.ID, &t.ShiftID, &t.EmployeeID, &t.StartedAt, &t.EndedAt, &t.DurationSeconds,
			&t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
			&t.DistanceMeters, &t.Classification, &t.ConfidenceScore,
			&t.PointCount, &t.DetectionMethod, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, storageErr("scan trip", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
