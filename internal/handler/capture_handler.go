package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/middleware"
	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/service"
	"github.com/fieldtrack/mileage-backend-go/pkg/response"
)

// CaptureHandler accepts shift, point and gap records from the capture
// subsystem and writes them into the local durable store.
type CaptureHandler struct {
	service *service.CaptureService
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(service *service.CaptureService) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// ClockIn handles POST /api/v1/shifts/clock-in
func (h *CaptureHandler) ClockIn(c *gin.Context) {
	shift, err := h.service.ClockIn(middleware.EmployeeID(c))
	if err != nil {
		response.InternalError(c, "Failed to open shift")
		return
	}
	response.Success(c, shift)
}

// ClockOut handles POST /api/v1/shifts/:id/clock-out
func (h *CaptureHandler) ClockOut(c *gin.Context) {
	shiftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	shift, err := h.service.ClockOut(shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(c, "No open shift with that ID")
			return
		}
		response.InternalError(c, "Failed to close shift")
		return
	}
	response.Success(c, shift)
}

// RecordPoint handles POST /api/v1/points
func (h *CaptureHandler) RecordPoint(c *gin.Context) {
	var point models.GpsPoint
	if err := c.ShouldBindJSON(&point); err != nil {
		response.BadRequest(c, "Invalid point payload")
		return
	}
	if point.ShiftID == 0 {
		response.BadRequest(c, "shift_id is required")
		return
	}

	if err := h.service.RecordPoint(&point); err != nil {
		response.InternalError(c, "Failed to store point: "+err.Error())
		return
	}
	response.Success(c, gin.H{"id": point.ID})
}

// RecordGap handles POST /api/v1/gaps
func (h *CaptureHandler) RecordGap(c *gin.Context) {
	var gap models.GpsGap
	if err := c.ShouldBindJSON(&gap); err != nil {
		response.BadRequest(c, "Invalid gap payload")
		return
	}
	if gap.ShiftID == 0 || gap.EndedAt <= gap.StartedAt {
		response.BadRequest(c, "shift_id and a positive interval are required")
		return
	}

	if err := h.service.RecordGap(&gap); err != nil {
		response.InternalError(c, "Failed to store gap")
		return
	}
	response.Success(c, gin.H{"id": gap.ID})
}
