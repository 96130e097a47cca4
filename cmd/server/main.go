package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldtrack/mileage-backend-go/internal/api"
	"github.com/fieldtrack/mileage-backend-go/internal/config"
	"github.com/fieldtrack/mileage-backend-go/internal/database"
	"github.com/fieldtrack/mileage-backend-go/internal/detection"
	"github.com/fieldtrack/mileage-backend-go/internal/handler"
	"github.com/fieldtrack/mileage-backend-go/internal/logger"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
	"github.com/fieldtrack/mileage-backend-go/internal/service"
	syncengine "github.com/fieldtrack/mileage-backend-go/internal/sync"
)

func main() {
	logger.Setup()
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logrus.Fatal("Failed to migrate database: ", err)
	}

	// Repositories
	shiftRepo := repository.NewShiftRepository(db)
	pointRepo := repository.NewPointRepository(db)
	gapRepo := repository.NewGapRepository(db)
	tripRepo := repository.NewTripRepository(db)
	rateRepo := repository.NewRateRepository(db)
	quarantineRepo := repository.NewQuarantineRepository(db)

	// Trip detection behind a work queue, fed by the sync engine
	detectCfg := detection.DefaultConfig()
	detectCfg.MinTripDistanceMeters = cfg.MinTripDistanceMeters
	detectCfg.GapBoundarySeconds = cfg.GapBoundarySeconds
	detector := detection.NewDetector(db, detectCfg)
	worker := detection.NewWorker(detector, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// Sync engine over the central store's API
	transport := syncengine.NewHTTPTransport(cfg.SyncServerURL)
	engine := syncengine.NewEngine(db, transport, syncengine.Options{
		BatchSize:          cfg.SyncBatchSize,
		OrphanAttemptLimit: cfg.OrphanAttemptLimit,
		OnPointsSynced:     worker.Enqueue,
	})

	// Retention sweep for synced points past the retention window
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays).Unix()
				if n, err := pointRepo.DeleteOlderThan(cutoff); err != nil {
					logrus.Errorf("[Retention] Sweep failed: %v", err)
				} else if n > 0 {
					logrus.Infof("[Retention] Removed %d synced points older than %d days", n, cfg.RetentionDays)
				}
			}
		}
	}()

	// Services and handlers
	handlers := api.Handlers{
		Sync:       handler.NewSyncHandler(service.NewSyncService(engine, pointRepo)),
		Trip:       handler.NewTripHandler(service.NewTripService(tripRepo)),
		Report:     handler.NewReportHandler(service.NewSummaryService(tripRepo, rateRepo)),
		Capture:    handler.NewCaptureHandler(service.NewCaptureService(shiftRepo, pointRepo, gapRepo)),
		Quarantine: handler.NewQuarantineHandler(quarantineRepo),
		Rate:       handler.NewRateHandler(rateRepo),
	}

	router := api.SetupRouter(cfg, handlers)

	logrus.Infof("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logrus.Fatal("Failed to start server: ", err)
	}
}
