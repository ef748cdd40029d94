package compliance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/store"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBus is a minimal bus.Bus recording every publish, enough for testing
// the Evaluator without spinning up a real transport.
type fakeBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newFakeBus() *fakeBus { return &fakeBus{published: make(map[string][][]byte)} }

func (b *fakeBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], payload)
	return nil
}
func (b *fakeBus) Subscribe(ctx context.Context, topic, group string, handler bus.Handler) error {
	return nil
}
func (b *fakeBus) Start(ctx context.Context) error { return nil }
func (b *fakeBus) Close() error                    { return nil }

func (b *fakeBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[topic])
}

// fakeStore is an in-memory store.Store for tests.
type fakeStore struct {
	mu            sync.Mutex
	transactions  []types.Transaction
	kyc           map[string]types.KYCRecord
	checks        []types.ComplianceCheck
	alerts        []types.AMLAlert
	riskProfiles  map[string]types.RiskProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{kyc: map[string]types.KYCRecord{}, riskProfiles: map[string]types.RiskProfile{}}
}

func (s *fakeStore) SaveTransaction(ctx context.Context, t types.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}
func (s *fakeStore) UpsertKYCRecord(ctx context.Context, k types.KYCRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kyc[k.UserID] = k
	return nil
}
func (s *fakeStore) GetKYCRecord(ctx context.Context, userID string) (*types.KYCRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.kyc[userID]
	if !ok {
		return nil, nil
	}
	return &k, nil
}
func (s *fakeStore) SaveComplianceCheck(ctx context.Context, c types.ComplianceCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, c)
	return nil
}
func (s *fakeStore) SaveAMLAlert(ctx context.Context, a types.AMLAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}
func (s *fakeStore) ListAlerts(ctx context.Context, filter store.AlertFilter) ([]types.AMLAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.AMLAlert(nil), s.alerts...), nil
}
func (s *fakeStore) UpsertRiskProfile(ctx context.Context, p types.RiskProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.riskProfiles[p.EntityID] = p
	return nil
}
func (s *fakeStore) GetRiskProfile(ctx context.Context, entityID string) (*types.RiskProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.riskProfiles[entityID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func newTestEvaluator(t *testing.T, s *fakeStore, b *fakeBus) *Evaluator {
	t.Helper()
	logger := zaptest.NewLogger(t)
	kyc := newKYCCache(s, time.Minute)
	return NewEvaluator(logger, b, s, kyc, 1000, types.DefaultAMLRules(), types.DefaultRiskThresholds(), nil)
}

// S5: a 60,000 transaction against a 10,000 threshold, above the 50,000
// critical threshold, raises LARGE_TRANSACTION at critical severity; an 11th
// transaction within the hour also raises
// VELOCITY_CHECK at medium severity.
func TestEvaluator_LargeTransactionAndVelocity(t *testing.T) {
	s := newFakeStore()
	b := newFakeBus()
	e := newTestEvaluator(t, s, b)
	_ = s.UpsertKYCRecord(context.Background(), types.KYCRecord{
		UserID: "u-1", Status: types.KYCStatusApproved, VerificationLevel: types.VerificationFull, RiskRating: types.RiskRatingLow,
	})

	now := time.Now()
	for i := 0; i < 10; i++ {
		tx := types.Transaction{
			TransactionID: "seed-" + string(rune('a'+i)), UserID: "u-1", Symbol: "BTC/USD",
			Amount: decimal.NewFromInt(100), TransactionType: "buy", Timestamp: now.Add(-time.Duration(i) * time.Minute),
		}
		_, err := e.Evaluate(context.Background(), tx)
		require.NoError(t, err)
	}

	tx := types.Transaction{
		TransactionID: "tx-11", UserID: "u-1", Symbol: "BTC/USD",
		Amount: decimal.NewFromInt(60000), TransactionType: "buy", Timestamp: now,
	}
	alerts, err := e.Evaluate(context.Background(), tx)
	require.NoError(t, err)

	var hasLarge, hasVelocity bool
	for _, a := range alerts {
		if a.AlertType == "LARGE_TRANSACTION" {
			hasLarge = true
			assert.Equal(t, types.AlertSeverityCritical, a.Severity)
		}
		if a.AlertType == "VELOCITY_CHECK" {
			hasVelocity = true
			assert.Equal(t, types.AlertSeverityMedium, a.Severity)
		}
	}
	assert.True(t, hasLarge, "expected a LARGE_TRANSACTION alert")
	assert.True(t, hasVelocity, "expected a VELOCITY_CHECK alert")
	assert.Equal(t, len(alerts), b.count(bus.TopicAMLAlerts))
}

// S6: no KYC record on file raises a critical NO_KYC_RECORD alert and the
// missing-record penalty dominates the risk score.
func TestEvaluator_MissingKYCRecord(t *testing.T) {
	s := newFakeStore()
	b := newFakeBus()
	e := newTestEvaluator(t, s, b)

	tx := types.Transaction{
		TransactionID: "tx-1", UserID: "u-no-kyc", Symbol: "BTC/USD",
		Amount: decimal.NewFromInt(500), TransactionType: "buy", Timestamp: time.Now(),
	}
	alerts, err := e.Evaluate(context.Background(), tx)
	require.NoError(t, err)

	var found bool
	for _, a := range alerts {
		if a.AlertType == "NO_KYC_RECORD" {
			found = true
			assert.Equal(t, types.AlertSeverityCritical, a.Severity)
		}
	}
	assert.True(t, found, "expected a NO_KYC_RECORD alert")
}

// A clean transaction raises no alerts but still persists ComplianceCheck
// rows.
func TestEvaluator_PersistsComplianceCheckPerRule(t *testing.T) {
	s := newFakeStore()
	b := newFakeBus()
	e := newTestEvaluator(t, s, b)
	_ = s.UpsertKYCRecord(context.Background(), types.KYCRecord{
		UserID: "u-clean", Status: types.KYCStatusApproved, VerificationLevel: types.VerificationFull, RiskRating: types.RiskRatingLow,
	})

	tx := types.Transaction{
		TransactionID: "tx-clean", UserID: "u-clean", Symbol: "BTC/USD",
		Amount: decimal.NewFromInt(10), TransactionType: "buy", Timestamp: time.Now(),
	}
	alerts, err := e.Evaluate(context.Background(), tx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.NotEmpty(t, s.checks)
}

// Sanctioned wallet addresses raise a critical SANCTIONS_HIT alert
// regardless of amount or KYC status.
func TestEvaluator_SanctionsHit(t *testing.T) {
	s := newFakeStore()
	b := newFakeBus()
	logger := zaptest.NewLogger(t)
	kyc := newKYCCache(s, time.Minute)
	e := NewEvaluator(logger, b, s, kyc, 1000, types.DefaultAMLRules(), types.DefaultRiskThresholds(), []string{"0xBAD"})
	_ = s.UpsertKYCRecord(context.Background(), types.KYCRecord{
		UserID: "u-2", Status: types.KYCStatusApproved, VerificationLevel: types.VerificationFull, RiskRating: types.RiskRatingLow,
	})

	tx := types.Transaction{
		TransactionID: "tx-2", UserID: "u-2", Symbol: "BTC/USD", WalletAddress: "0xBAD",
		Amount: decimal.NewFromInt(10), TransactionType: "withdrawal", Timestamp: time.Now(),
	}
	alerts, err := e.Evaluate(context.Background(), tx)
	require.NoError(t, err)

	var found bool
	for _, a := range alerts {
		if a.AlertType == "SANCTIONS_HIT" {
			found = true
			assert.Equal(t, types.AlertSeverityCritical, a.Severity)
		}
	}
	assert.True(t, found, "expected a SANCTIONS_HIT alert")
}
