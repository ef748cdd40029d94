package compliance

import (
	"testing"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestRiskScore_NoKYCRecordAddsFifty(t *testing.T) {
	base := riskScore(scoreInputs{Amount: 100, High: 10000, Critical: 50000, HourlyCount: 1, OffHours: false, KYC: nil})
	assert.Equal(t, 50.0, base)
}

func TestRiskScore_CapsAtHundred(t *testing.T) {
	score := riskScore(scoreInputs{
		Amount: 100000, High: 10000, Critical: 50000,
		HourlyCount: 20, OffHours: true, KYC: nil,
	})
	assert.Equal(t, 100.0, score)
}

func TestRiskScore_ApprovedLowRiskAddsNothingForKYC(t *testing.T) {
	kyc := &types.KYCRecord{RiskRating: types.RiskRatingLow, Status: types.KYCStatusApproved}
	score := riskScore(scoreInputs{Amount: 100, High: 10000, Critical: 50000, HourlyCount: 1, OffHours: false, KYC: kyc})
	assert.Equal(t, 0.0, score)
}

func TestIsOffHours(t *testing.T) {
	assert.True(t, isOffHours(3))
	assert.True(t, isOffHours(23))
	assert.False(t, isOffHours(12))
	assert.False(t, isOffHours(6))
	assert.False(t, isOffHours(21))
}
