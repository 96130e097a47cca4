package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldtrack/mileage-backend-go/internal/config"
	"github.com/fieldtrack/mileage-backend-go/internal/handler"
	"github.com/fieldtrack/mileage-backend-go/internal/middleware"
)

// Handlers groups the handlers wired into the router
type Handlers struct {
	Sync       *handler.SyncHandler
	Trip       *handler.TripHandler
	Report     *handler.ReportHandler
	Capture    *handler.CaptureHandler
	Quarantine *handler.QuarantineHandler
	Rate       *handler.RateHandler
}

// SetupRouter builds the HTTP surface for the presentation, report,
// admin and capture interfaces.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Mileage pipeline is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		// Sync engine
		api.POST("/sync", h.Sync.TriggerSync)
		api.GET("/sync/pending", h.Sync.PendingCount)

		// Capture producers
		shifts := api.Group("/shifts")
		{
			shifts.POST("/clock-in", h.Capture.ClockIn)
			shifts.POST("/:id/clock-out", h.Capture.ClockOut)
		}
		api.POST("/points", h.Capture.RecordPoint)
		api.POST("/gaps", h.Capture.RecordGap)

		// Trips
		trips := api.Group("/trips")
		{
			trips.GET("", h.Trip.GetTrips)
			trips.GET("/:id", h.Trip.GetTripByID)
			trips.PATCH("/:id/classification", h.Trip.UpdateClassification)
		}

		// Reports
		api.GET("/reports/mileage", h.Report.GetMileageSummary)

		// Quarantine inspection
		api.GET("/quarantine", h.Quarantine.List)

		// Rate administration
		rates := api.Group("/rates")
		{
			rates.POST("", h.Rate.Create)
			rates.GET("/effective", h.Rate.Effective)
		}
	}

	return r
}
