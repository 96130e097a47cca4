package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	SyncServerURL string

	// Sync engine
	SyncBatchSize      int
	OrphanAttemptLimit int

	// Retention
	RetentionDays int

	// Trip detection tunables
	MinTripDistanceMeters float64
	GapBoundarySeconds    int64
}

// Load reads configuration from the environment, falling back to
// sensible defaults. A .env file in the working directory is honored
// when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               envOr("PORT", ":8080"),
		DBPath:             envOr("DB_PATH", "./data/mileage.db"),
		JWTSecret:          envOr("JWT_SECRET", "your-secret-key-change-in-production"),
		SyncServerURL:      envOr("SYNC_SERVER_URL", "https://localhost:8443"),
		SyncBatchSize:      envIntOr("SYNC_BATCH_SIZE", 100),
		OrphanAttemptLimit: envIntOr("ORPHAN_ATTEMPT_LIMIT", 3),
		RetentionDays:      envIntOr("RETENTION_DAYS", 30),

		MinTripDistanceMeters: envFloatOr("MIN_TRIP_DISTANCE_M", 500),
		GapBoundarySeconds:    int64(envIntOr("GAP_BOUNDARY_SECONDS", 900)),
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
