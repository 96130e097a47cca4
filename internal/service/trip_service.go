package service

import (
	"fmt"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
)

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	return s.repo.GetTrips(filter)
}

// GetTripByID retrieves a single trip
func (s *TripService) GetTripByID(id int64) (*models.Trip, error) {
	return s.repo.GetTripByID(id)
}

// UpdateClassification applies a classification change from the
// presentation layer. The update is direct; no re-detection runs.
func (s *TripService) UpdateClassification(tripID int64, classification string) error {
	if classification != models.TripClassificationBusiness &&
		classification != models.TripClassificationPersonal {
		return fmt.Errorf("invalid classification: %s", classification)
	}
	return s.repo.UpdateClassification(tripID, classification)
}
