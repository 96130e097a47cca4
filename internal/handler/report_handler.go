package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/middleware"
	"github.com/fieldtrack/mileage-backend-go/internal/service"
	"github.com/fieldtrack/mileage-backend-go/pkg/response"
)

// ReportHandler serves mileage totals to the report interface. The
// document rendering itself lives outside this service.
type ReportHandler struct {
	service *service.SummaryService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.SummaryService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetMileageSummary handles GET /api/v1/reports/mileage?from=&to=
func (h *ReportHandler) GetMileageSummary(c *gin.Context) {
	from, err := strconv.ParseInt(c.Query("from"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid or missing 'from' timestamp")
		return
	}
	to, err := strconv.ParseInt(c.Query("to"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid or missing 'to' timestamp")
		return
	}
	if to <= from {
		response.BadRequest(c, "'to' must be after 'from'")
		return
	}

	summary, err := h.service.Mileage(middleware.EmployeeID(c), from, to)
	if err != nil {
		response.InternalError(c, "Failed to build mileage summary: "+err.Error())
		return
	}

	response.Success(c, summary)
}
