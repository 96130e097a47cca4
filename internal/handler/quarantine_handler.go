package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/pkg/response"
)

// QuarantineHandler exposes the quarantine store for inspection.
// There is no replay endpoint: re-injecting quarantined data is an
// explicit external decision.
type QuarantineHandler struct {
	repo *repository.QuarantineRepository
}

// NewQuarantineHandler creates a new quarantine handler
func NewQuarantineHandler(repo *repository.QuarantineRepository) *QuarantineHandler {
	return &QuarantineHandler{repo: repo}
}

// List handles GET /api/v1/quarantine
func (h *QuarantineHandler) List(c *gin.Context) {
	var filter models.QuarantineFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	records, err := h.repo.List(filter)
	if err != nil {
		response.InternalError(c, "Failed to list quarantine records")
		return
	}

	response.Success(c, gin.H{"data": records, "total": len(records)})
}
