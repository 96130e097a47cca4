package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

func ratePtr(v float64) *float64 { return &v }

func TestRateRepository_EffectiveAt(t *testing.T) {
	db := openTestDB(t)
	rates := NewRateRepository(db)

	// 2025 rate, closed out at the start of 2026
	jan2025 := int64(1735689600)
	jan2026 := int64(1767225600)
	old := &models.ReimbursementRate{
		RatePerKm:     0.70,
		EffectiveFrom: jan2025,
		EffectiveTo:   &jan2026,
	}
	require.NoError(t, rates.Create(old))

	current := &models.ReimbursementRate{
		RatePerKm:          0.72,
		ThresholdKm:        ratePtr(5000),
		RateAfterThreshold: ratePtr(0.66),
		EffectiveFrom:      jan2026,
	}
	require.NoError(t, rates.Create(current))

	tests := []struct {
		name string
		ts   int64
		want *float64
	}{
		{"before any rate", jan2025 - 1, nil},
		{"start of old window", jan2025, ratePtr(0.70)},
		{"inside old window", jan2026 - 1, ratePtr(0.70)},
		{"boundary belongs to the new rate", jan2026, ratePtr(0.72)},
		{"open-ended window", jan2026 + 86400*200, ratePtr(0.72)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rates.EffectiveAt(tt.ts)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, got.RatePerKm)
		})
	}
}

func TestRateRepository_TierFieldsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	rates := NewRateRepository(db)

	rate := &models.ReimbursementRate{
		RatePerKm:          0.72,
		ThresholdKm:        ratePtr(5000),
		RateAfterThreshold: ratePtr(0.66),
		EffectiveFrom:      1000,
	}
	require.NoError(t, rates.Create(rate))
	require.NotZero(t, rate.ID)

	got, err := rates.EffectiveAt(2000)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ThresholdKm)
	require.NotNil(t, got.RateAfterThreshold)
	assert.Equal(t, 5000.0, *got.ThresholdKm)
	assert.Equal(t, 0.66, *got.RateAfterThreshold)

	// flat rates carry no tier
	flat := &models.ReimbursementRate{RatePerKm: 0.50, EffectiveFrom: 1}
	db2 := openTestDB(t)
	flatRates := NewRateRepository(db2)
	require.NoError(t, flatRates.Create(flat))
	got, err = flatRates.EffectiveAt(10)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ThresholdKm)
	assert.Nil(t, got.RateAfterThreshold)
}
