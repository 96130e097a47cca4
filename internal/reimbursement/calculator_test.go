package reimbursement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

func ratePtr(v float64) *float64 { return &v }

func TestCalculate_FlatRate(t *testing.T) {
	rate := models.ReimbursementRate{RatePerKm: 0.72}

	total := Calculate(0, []float64{10, 20, 30}, rate)
	assert.InDelta(t, 60*0.72, total, 1e-9)
}

func TestCalculate_TieredRate(t *testing.T) {
	rate := models.ReimbursementRate{
		RatePerKm:          0.72,
		ThresholdKm:        ratePtr(5000),
		RateAfterThreshold: ratePtr(0.66),
	}

	tests := []struct {
		name      string
		priorYTD  float64
		distances []float64
		want      float64
	}{
		{
			name:      "straddling trip splits across the threshold",
			priorYTD:  4900,
			distances: []float64{300},
			want:      100*0.72 + 200*0.66,
		},
		{
			name:      "entirely below threshold",
			priorYTD:  0,
			distances: []float64{100, 200},
			want:      300 * 0.72,
		},
		{
			name:      "entirely above threshold",
			priorYTD:  6000,
			distances: []float64{100},
			want:      100 * 0.66,
		},
		{
			name:      "cumulative crossing over multiple trips",
			priorYTD:  4800,
			distances: []float64{150, 100},
			want:      150*0.72 + 50*0.72 + 50*0.66,
		},
		{
			name:      "exactly at threshold pays base rate",
			priorYTD:  4700,
			distances: []float64{300},
			want:      300 * 0.72,
		},
		{
			name:      "no trips",
			priorYTD:  1000,
			distances: nil,
			want:      0,
		},
		{
			name:      "non-positive distances ignored",
			priorYTD:  0,
			distances: []float64{-5, 0, 10},
			want:      10 * 0.72,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.priorYTD, tt.distances, rate)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	rate := models.ReimbursementRate{
		RatePerKm:          0.58,
		ThresholdKm:        ratePtr(1000),
		RateAfterThreshold: ratePtr(0.45),
	}
	distances := []float64{120.5, 430.25, 610.75, 88}

	first := Calculate(500, distances, rate)
	second := Calculate(500, distances, rate)
	assert.Equal(t, first, second)
}
