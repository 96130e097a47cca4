package service

import (
	"context"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/internal/sync"
)

// SyncService fronts the sync engine for the presentation layer
type SyncService struct {
	engine *sync.Engine
	points *repository.PointRepository
}

// NewSyncService creates a new sync service
func NewSyncService(engine *sync.Engine, points *repository.PointRepository) *SyncService {
	return &SyncService{engine: engine, points: points}
}

// SyncAll runs one sync cycle for an employee
func (s *SyncService) SyncAll(ctx context.Context, employeeID int64) (*models.SyncResult, error) {
	return s.engine.SyncAll(ctx, employeeID)
}

// PendingCount backs the non-blocking "N items pending" indicator
func (s *SyncService) PendingCount(employeeID int64) (int64, error) {
	return s.points.CountPending(employeeID)
}
