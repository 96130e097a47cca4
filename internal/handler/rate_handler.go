package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/pkg/response"
)

// RateHandler serves the admin interface for reimbursement rates
type RateHandler struct {
	repo *repository.RateRepository
}

// NewRateHandler creates a new rate handler
func NewRateHandler(repo *repository.RateRepository) *RateHandler {
	return &RateHandler{repo: repo}
}

// Create handles POST /api/v1/rates
func (h *RateHandler) Create(c *gin.Context) {
	var rate models.ReimbursementRate
	if err := c.ShouldBindJSON(&rate); err != nil {
		response.BadRequest(c, "Invalid rate payload")
		return
	}
	if rate.RatePerKm <= 0 || rate.EffectiveFrom == 0 {
		response.BadRequest(c, "rate_per_km and effective_from are required")
		return
	}
	if rate.ThresholdKm != nil && rate.RateAfterThreshold == nil {
		response.BadRequest(c, "rate_after_threshold is required with threshold_km")
		return
	}

	if err := h.repo.Create(&rate); err != nil {
		response.InternalError(c, "Failed to store rate")
		return
	}
	response.Success(c, rate)
}

// Effective handles GET /api/v1/rates/effective?date=
func (h *RateHandler) Effective(c *gin.Context) {
	ts := time.Now().Unix()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := strconv.ParseInt(dateStr, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid 'date' timestamp")
			return
		}
		ts = parsed
	}

	rate, err := h.repo.EffectiveAt(ts)
	if err != nil {
		response.InternalError(c, "Failed to get effective rate")
		return
	}
	if rate == nil {
		response.NotFound(c, "No rate effective at that date")
		return
	}
	response.Success(c, rate)
}
