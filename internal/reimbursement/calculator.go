package reimbursement

import (
	"github.com/fieldtrack/mileage-backend-go/internal/models"
)

// Calculate computes the reimbursable amount for a set of business
// trip distances given the prior year-to-date distance and a rate.
// Distance below the cumulative threshold pays the base rate, distance
// beyond it pays the post-threshold rate. Pure and deterministic:
// re-running against the rate that was effective at the original
// calculation time reproduces historical totals exactly.
//
// All distances share the rate's unit (kilometers in this system).
func Calculate(priorYTD float64, distances []float64, rate models.ReimbursementRate) float64 {
	if rate.ThresholdKm == nil || rate.RateAfterThreshold == nil {
		var total float64
		for _, d := range distances {
			total += d * rate.RatePerKm
		}
		return total
	}

	threshold := *rate.ThresholdKm
	after := *rate.RateAfterThreshold

	cumulative := priorYTD
	var total float64
	for _, d := range distances {
		if d <= 0 {
			continue
		}
		switch {
		case cumulative >= threshold:
			total += d * after
		case cumulative+d <= threshold:
			total += d * rate.RatePerKm
		default:
			// the trip straddles the threshold
			below := threshold - cumulative
			total += below*rate.RatePerKm + (d-below)*after
		}
		cumulative += d
	}
	return total
}
