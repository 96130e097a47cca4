package detection

// Config holds the detection tunables. The defaults mirror field
// observations at sparse sampling rates but are configuration, not
// law; callers may override any of them.
type Config struct {
	// Outlier filtering
	MaxAccuracyMeters float64 // points with worse accuracy are dropped
	MaxSpeedKmh       float64 // implied speeds above this are sensor glitches

	// Speed classification boundaries (km/h)
	StationaryMaxKmh float64
	WalkingMaxKmh    float64

	// Segmentation windows (seconds)
	WalkingNoiseSeconds  int64 // walking runs shorter than this stay inside a vehicle trip
	StationaryEndSeconds int64 // stationary for at least this ends a trip
	GapBoundarySeconds   int64 // a data gap past this forces a trip boundary

	// Trip acceptance
	MinTripDistanceMeters float64

	// Metrics
	RoadCorrectionFactor float64 // road vs. straight-line travel approximation
	LowAccuracyMeters    float64 // accuracy boundary for the confidence score
}

// DefaultConfig returns the standard detection configuration
func DefaultConfig() Config {
	return Config{
		MaxAccuracyMeters:     200,
		MaxSpeedKmh:           200,
		StationaryMaxKmh:      5,
		WalkingMaxKmh:         15,
		WalkingNoiseSeconds:   120,
		StationaryEndSeconds:  180,
		GapBoundarySeconds:    900,
		MinTripDistanceMeters: 500,
		RoadCorrectionFactor:  1.3,
		LowAccuracyMeters:     50,
	}
}
