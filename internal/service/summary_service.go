package service

import (
	"fmt"
	"time"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/reimbursement"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
)

// SummaryService builds report-facing mileage totals from detected
// trips and the reimbursement rate effective for the period.
type SummaryService struct {
	trips *repository.TripRepository
	rates *repository.RateRepository
}

// NewSummaryService creates a new summary service
func NewSummaryService(trips *repository.TripRepository, rates *repository.RateRepository) *SummaryService {
	return &SummaryService{trips: trips, rates: rates}
}

// Mileage computes the reimbursable total for an employee's business
// trips starting in [from, to). The year-to-date distance before the
// range feeds the tier threshold, so mid-year reports price correctly.
func (s *SummaryService) Mileage(employeeID, from, to int64) (*models.MileageSummary, error) {
	rate, err := s.rates.EffectiveAt(from)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, fmt.Errorf("no reimbursement rate effective at %d", from)
	}

	yearStart := time.Date(time.Unix(from, 0).UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	priorMeters, err := s.trips.BusinessDistanceMeters(employeeID, yearStart, from)
	if err != nil {
		return nil, err
	}

	trips, err := s.trips.BusinessTrips(employeeID, from, to)
	if err != nil {
		return nil, err
	}

	distancesKm := make([]float64, 0, len(trips))
	var totalKm float64
	for _, t := range trips {
		km := t.DistanceMeters / 1000
		distancesKm = append(distancesKm, km)
		totalKm += km
	}

	amount := reimbursement.Calculate(priorMeters/1000, distancesKm, *rate)

	return &models.MileageSummary{
		EmployeeID:      employeeID,
		From:            from,
		To:              to,
		TotalDistanceKm: totalKm,
		TotalAmount:     amount,
		TripCount:       len(trips),
		RateID:          rate.ID,
		Trips:           trips,
	}, nil
}
