package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/middleware"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/internal/service"
	syncengine "github.com/fieldtrack/mileage-backend-go/internal/sync"
	"github.com/fieldtrack/mileage-backend-go/pkg/response"
)

// SyncHandler handles HTTP requests for the sync engine
type SyncHandler struct {
	service *service.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service *service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// TriggerSync handles POST /api/v1/sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	employeeID := middleware.EmployeeID(c)

	result, err := h.service.SyncAll(c.Request.Context(), employeeID)
	if err != nil {
		if errors.Is(err, syncengine.ErrSyncInProgress) {
			response.Conflict(c, "Sync already in progress")
			return
		}
		var storageErr *repository.StorageError
		if errors.As(err, &storageErr) {
			response.InternalError(c, "Local storage failure: "+storageErr.Error())
			return
		}
		response.InternalError(c, "Sync failed: "+err.Error())
		return
	}

	response.Success(c, result)
}

// PendingCount handles GET /api/v1/sync/pending
func (h *SyncHandler) PendingCount(c *gin.Context) {
	employeeID := middleware.EmployeeID(c)

	count, err := h.service.PendingCount(employeeID)
	if err != nil {
		response.InternalError(c, "Failed to count pending items")
		return
	}

	response.Success(c, gin.H{"pending": count})
}
