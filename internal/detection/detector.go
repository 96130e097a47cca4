package detection

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/internal/spatial"
)

type pointClass int

const (
	classStationary pointClass = iota
	classWalking
	classVehicle
)

// Detector derives trips from a completed shift's GPS trace. Detection
// is a pure function of the trace: every run deletes the shift's
// existing trips and writes the fresh set, so re-running it is always
// safe and never additive.
type Detector struct {
	shifts *repository.ShiftRepository
	points *repository.PointRepository
	trips  *repository.TripRepository
	cfg    Config
}

// NewDetector creates a detector over the local store
func NewDetector(db *sql.DB, cfg Config) *Detector {
	return &Detector{
		shifts: repository.NewShiftRepository(db),
		points: repository.NewPointRepository(db),
		trips:  repository.NewTripRepository(db),
		cfg:    cfg,
	}
}

// DetectTrips runs detection for one completed shift and persists the
// result, replacing any previous trip set for the shift.
func (d *Detector) DetectTrips(shiftID int64) ([]models.Trip, error) {
	shift, err := d.shifts.GetByID(shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %d not found", shiftID)
	}
	if !shift.Completed() {
		return nil, fmt.Errorf("shift %d is still open", shiftID)
	}

	points, err := d.points.GetByShift(shiftID)
	if err != nil {
		return nil, err
	}

	filtered := d.filterOutliers(points)
	var trips []models.Trip
	if len(filtered) >= 2 {
		trips = d.segment(shift, filtered, d.classify(filtered))
	}

	// Replace-all even when the result is empty, so a re-run against a
	// changed trace clears stale trips.
	if err := d.trips.ReplaceForShift(shiftID, trips); err != nil {
		return nil, err
	}

	logrus.Infof("[TripDetector] Shift %d: %d points -> %d filtered -> %d trips",
		shiftID, len(points), len(filtered), len(trips))
	return trips, nil
}

// filterOutliers drops low-accuracy samples and sensor glitches whose
// implied speed from the previous kept point is physically impossible.
func (d *Detector) filterOutliers(points []models.GpsPoint) []models.GpsPoint {
	var kept []models.GpsPoint
	for _, p := range points {
		if p.Accuracy != nil && *p.Accuracy > d.cfg.MaxAccuracyMeters {
			continue
		}
		if len(kept) > 0 {
			prev := kept[len(kept)-1]
			speed := spatial.SpeedKmh(prev.Latitude, prev.Longitude, prev.CapturedAt,
				p.Latitude, p.Longitude, p.CapturedAt)
			if speed > d.cfg.MaxSpeedKmh {
				continue
			}
		}
		kept = append(kept, p)
	}
	return kept
}

// classify labels each point by the straight-line speed from its
// predecessor. The first point has no predecessor and counts as
// stationary.
func (d *Detector) classify(points []models.GpsPoint) []pointClass {
	classes := make([]pointClass, len(points))
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		speed := spatial.SpeedKmh(prev.Latitude, prev.Longitude, prev.CapturedAt,
			cur.Latitude, cur.Longitude, cur.CapturedAt)
		switch {
		case speed < d.cfg.StationaryMaxKmh:
			classes[i] = classStationary
		case speed <= d.cfg.WalkingMaxKmh:
			classes[i] = classWalking
		default:
			classes[i] = classVehicle
		}
	}
	return classes
}

// segment walks the classified trace and cuts it into trips. A trip
// begins at the first of two consecutive vehicle points, absorbs short
// walking interludes (a red light reads as walking at sparse
// sampling), and ends on a sustained stationary run, a long data gap,
// or the end of the trace.
func (d *Detector) segment(shift *models.Shift, points []models.GpsPoint, classes []pointClass) []models.Trip {
	var trips []models.Trip
	n := len(points)
	i := 0
	for i < n-1 {
		if classes[i] != classVehicle || classes[i+1] != classVehicle ||
			points[i+1].CapturedAt-points[i].CapturedAt > d.cfg.GapBoundarySeconds {
			i++
			continue
		}

		start := i
		lastVehicle := i + 1
		sawStationary := false

		j := i + 2
		for j < n {
			// An interval the device did not observe is in an unknown
			// state and must not be silently bridged.
			if points[j].CapturedAt-points[j-1].CapturedAt > d.cfg.GapBoundarySeconds {
				break
			}

			interlude := points[j].CapturedAt - points[lastVehicle].CapturedAt
			ended := false
			switch classes[j] {
			case classVehicle:
				limit := d.cfg.WalkingNoiseSeconds
				if sawStationary {
					limit = d.cfg.StationaryEndSeconds
				}
				if interlude > limit {
					ended = true
				} else {
					lastVehicle = j
					sawStationary = false
				}
			case classWalking:
				if interlude > d.cfg.WalkingNoiseSeconds {
					ended = true
				}
			case classStationary:
				sawStationary = true
				if interlude >= d.cfg.StationaryEndSeconds {
					ended = true
				}
			}
			if ended {
				break
			}
			j++
		}

		if trip := d.buildTrip(shift, points[start:lastVehicle+1]); trip != nil {
			trips = append(trips, *trip)
		}
		i = j
	}
	return trips
}

// buildTrip computes the trip metrics, returning nil when the
// candidate fails the minimum-distance or minimum-point filters.
func (d *Detector) buildTrip(shift *models.Shift, points []models.GpsPoint) *models.Trip {
	if len(points) < 2 {
		return nil
	}

	var raw float64
	for i := 1; i < len(points); i++ {
		raw += spatial.HaversineDistance(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude,
		)
	}
	distance := raw * d.cfg.RoadCorrectionFactor
	if distance < d.cfg.MinTripDistanceMeters {
		return nil
	}

	lowAccuracy := 0
	ids := make([]string, 0, len(points))
	for _, p := range points {
		if p.Accuracy == nil || *p.Accuracy > d.cfg.LowAccuracyMeters {
			lowAccuracy++
		}
		ids = append(ids, p.ID)
	}

	first, last := points[0], points[len(points)-1]
	return &models.Trip{
		ShiftID:         shift.ID,
		EmployeeID:      shift.EmployeeID,
		StartedAt:       first.CapturedAt,
		EndedAt:         last.CapturedAt,
		DurationSeconds: last.CapturedAt - first.CapturedAt,
		StartLat:        first.Latitude,
		StartLon:        first.Longitude,
		EndLat:          last.Latitude,
		EndLon:          last.Longitude,
		DistanceMeters:  distance,
		Classification:  models.TripClassificationBusiness,
		ConfidenceScore: 1 - float64(lowAccuracy)/float64(len(points)),
		PointCount:      len(points),
		DetectionMethod: models.DetectionMethodAuto,
		GpsPointIDs:     ids,
	}
}
