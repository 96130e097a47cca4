package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
)

// CaptureService is the producer-side adapter: the capture subsystem
// delivers shifts, points and gaps into the local durable store
// through it. The pipeline itself only ever reads from the store.
type CaptureService struct {
	shifts *repository.ShiftRepository
	points *repository.PointRepository
	gaps   *repository.GapRepository
}

// NewCaptureService creates a new capture service
func NewCaptureService(shifts *repository.ShiftRepository, points *repository.PointRepository,
	gaps *repository.GapRepository) *CaptureService {
	return &CaptureService{shifts: shifts, points: points, gaps: gaps}
}

// ClockIn opens a new shift
func (s *CaptureService) ClockIn(employeeID int64) (*models.Shift, error) {
	return s.shifts.Create(employeeID, time.Now().Unix())
}

// ClockOut closes a shift, moving it into the sync queue
func (s *CaptureService) ClockOut(shiftID int64) (*models.Shift, error) {
	if err := s.shifts.Close(shiftID, time.Now().Unix()); err != nil {
		return nil, err
	}
	return s.shifts.GetByID(shiftID)
}

// RecordPoint stores one location sample. A missing id gets a fresh
// client-generated UUID so the server can deduplicate re-uploads.
func (s *CaptureService) RecordPoint(p *models.GpsPoint) error {
	shift, err := s.shifts.GetByID(p.ShiftID)
	if err != nil {
		return err
	}
	if shift == nil {
		return fmt.Errorf("shift %d not found", p.ShiftID)
	}
	p.EmployeeID = shift.EmployeeID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CapturedAt == 0 {
		p.CapturedAt = time.Now().Unix()
	}
	return s.points.Insert(p)
}

// RecordGap stores one capture-interruption interval
func (s *CaptureService) RecordGap(g *models.GpsGap) error {
	if g.Reason == "" {
		g.Reason = models.GapReasonUnknown
	}
	return s.gaps.Insert(g)
}
