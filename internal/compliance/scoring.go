package compliance

import (
	"github.com/novaex/tradepipe/internal/types"
)

// scoreInputs is every signal the weighted risk-score formula in §4.5 step
// 5 consumes. Built once per transaction in Evaluate and used only by
// riskScore; the AML rule checks read the transaction on their own.
type scoreInputs struct {
	Amount         float64
	High           float64
	Critical       float64
	HourlyCount    int
	OffHours       bool
	KYC            *types.KYCRecord
}

// riskScore computes the capped 0..100 risk score described in §4.5 step 5:
// amount tier, hourly velocity tier, off-hours timing, and the KYC rating
// (or its absence).
func riskScore(in scoreInputs) float64 {
	score := 0.0

	if in.Amount > in.High {
		score += 30
		if in.Amount > in.Critical {
			score += 40
		}
	}

	if in.HourlyCount > 5 {
		score += 20
		if in.HourlyCount > 10 {
			score += 30
		}
	}

	if in.OffHours {
		score += 10
	}

	switch {
	case in.KYC == nil:
		score += 50
	case in.KYC.RiskRating == types.RiskRatingHigh:
		score += 25
	case in.KYC.RiskRating == types.RiskRatingMedium:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// isOffHours reports whether hour (0-23, local to the transaction's
// recorded timestamp) falls outside the hours §4.5 step 5 treats as normal
// trading hours: 6 through 22 inclusive.
func isOffHours(hour int) bool {
	return hour < 6 || hour > 22
}
