// Package compliance implements the AML/compliance evaluator: stateful
// velocity tracking over a bounded per-user transaction window, KYC
// lookup through a read-through cache, sanctions screening, and a
// weighted risk score, combined into per-transaction AMLAlerts. Grounded
// on the original compliance-gateway service's check_transaction_compliance
// pipeline and styled on the risk gate's ordered-checks-then-publish shape.
package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/store"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

const consumerGroup = "compliance-evaluator"

// Evaluator consumes orders.risk-approved, treating each approved order's
// notional as the transaction to screen, and checks it against AML rules,
// KYC status, sanctions, and a weighted risk score, publishing one AMLAlert
// per finding onto aml.alerts and persisting a ComplianceCheck row per rule
// evaluated.
type Evaluator struct {
	logger *zap.Logger
	bus    bus.Bus
	store  store.Store
	kyc    *kycCache
	window *historyWindow

	mu         sync.RWMutex
	rules      []types.AMLRule
	thresholds types.RiskThresholds
	sanctioned map[string]struct{}
}

// NewEvaluator builds an Evaluator. sanctionedAddresses is the static
// sanctions-list seed; in production this would be refreshed from an
// external feed, which is out of this spec's scope.
func NewEvaluator(
	logger *zap.Logger,
	b bus.Bus,
	s store.Store,
	kyc *kycCache,
	historyCap int,
	rules []types.AMLRule,
	thresholds types.RiskThresholds,
	sanctionedAddresses []string,
) *Evaluator {
	sanctioned := make(map[string]struct{}, len(sanctionedAddresses))
	for _, a := range sanctionedAddresses {
		sanctioned[a] = struct{}{}
	}
	return &Evaluator{
		logger:     logger.Named("compliance"),
		bus:        b,
		store:      s,
		kyc:        kyc,
		window:     newHistoryWindow(historyCap),
		rules:      rules,
		thresholds: thresholds,
		sanctioned: sanctioned,
	}
}

// Start subscribes the evaluator to orders.risk-approved: every
// risk-approved order is treated as the transaction to screen, the way
// the original compliance gateway evaluated every transaction, adapted to
// this bus topology (there is no separate deposit/withdrawal feed in this
// core's scope, so the order flow is the transaction stream).
func (e *Evaluator) Start(ctx context.Context) error {
	return e.bus.Subscribe(ctx, bus.TopicOrdersRiskApproved, consumerGroup, e.handleApprovedOrder)
}

func (e *Evaluator) handleApprovedOrder(ctx context.Context, payload []byte) error {
	var order types.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding risk-approved order")
	}
	_, err := e.Evaluate(ctx, transactionFromOrder(order))
	return err
}

// transactionFromOrder projects a risk-approved Order onto the Transaction
// shape the evaluator screens, using notional value (quantity*price) as
// the transaction amount.
func transactionFromOrder(o types.Order) types.Transaction {
	transactionType := "buy"
	if o.Side == types.SideSell {
		transactionType = "sell"
	}
	return types.Transaction{
		TransactionID:   o.OrderID,
		UserID:          o.UserID,
		Symbol:          o.Symbol,
		Amount:          o.Notional(o.Price),
		TransactionType: transactionType,
		Timestamp:       o.UpdatedAt,
	}
}

// Evaluate runs every step of §4.5 against t: history append + persist,
// AML rule evaluation, KYC check, sanctions screening, risk scoring, and
// persists one ComplianceCheck per rule plus one AMLAlert per finding.
// Every step runs regardless of earlier findings — a transaction may
// produce several alerts.
func (e *Evaluator) Evaluate(ctx context.Context, t types.Transaction) ([]types.AMLAlert, error) {
	now := t.Timestamp
	if now.IsZero() {
		now = time.Now()
		t.Timestamp = now
	}

	e.window.append(t)
	if err := e.store.SaveTransaction(ctx, t); err != nil {
		return nil, err
	}

	hourlyCount := e.window.countSince(t.UserID, hourWindow(now))

	var alerts []types.AMLAlert

	// Step 2: AML rule evaluation.
	e.mu.RLock()
	rules := append([]types.AMLRule(nil), e.rules...)
	thresholds := e.thresholds
	e.mu.RUnlock()

	ruleCtx := ruleContext{Transaction: t, HourlyCount: hourlyCount, Thresholds: thresholds}
	for _, rule := range rules {
		finding := evaluateAMLRule(rule, ruleCtx)
		passed := finding == nil
		score := 0.0
		details := "within configured limits"
		if !passed {
			score = severityWeight(finding.Severity)
			details = finding.Description
			alerts = append(alerts, e.newAlert(t, finding.AlertType, finding.Severity, finding.Description, []string{string(rule.RuleType)}, recommendedAction(finding.Severity)))
		}
		if err := e.persistCheck(ctx, t.TransactionID, rule.Name, passed, score, details); err != nil {
			return nil, err
		}
	}

	// Step 3: KYC.
	kycRecord, err := e.kyc.Get(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	if kycAlert := e.checkKYC(t, kycRecord, thresholds); kycAlert != nil {
		alerts = append(alerts, *kycAlert)
		if err := e.persistCheck(ctx, t.TransactionID, "KYCVerification", false, severityWeight(kycAlert.Severity), kycAlert.Description); err != nil {
			return nil, err
		}
	} else {
		if err := e.persistCheck(ctx, t.TransactionID, "KYCVerification", true, 0, "kyc approved"); err != nil {
			return nil, err
		}
	}

	// Step 4: sanctions.
	if t.WalletAddress != "" {
		if _, hit := e.sanctioned[t.WalletAddress]; hit {
			alert := e.newAlert(t, "SANCTIONS_HIT", types.AlertSeverityCritical,
				fmt.Sprintf("wallet address %s matches the sanctions list", t.WalletAddress),
				[]string{"sanctions"}, "freeze_and_report")
			alerts = append(alerts, alert)
			if err := e.persistCheck(ctx, t.TransactionID, "SanctionsScreen", false, severityWeight(alert.Severity), alert.Description); err != nil {
				return nil, err
			}
		} else if err := e.persistCheck(ctx, t.TransactionID, "SanctionsScreen", true, 0, "no sanctions match"); err != nil {
			return nil, err
		}
	}

	// Step 5-6: weighted risk score.
	amount, _ := t.Amount.Float64()
	high, _ := thresholds.TransactionAmountHigh.Float64()
	critical, _ := thresholds.TransactionAmountCritical.Float64()
	score := riskScore(scoreInputs{
		Amount:      amount,
		High:        high,
		Critical:    critical,
		HourlyCount: hourlyCount,
		OffHours:    isOffHours(now.Hour()),
		KYC:         kycRecord,
	})
	highRiskFinding := score > thresholds.RiskScoreThreshold
	if highRiskFinding {
		alert := e.newAlert(t, "HIGH_RISK_SCORE", types.AlertSeverityHigh,
			fmt.Sprintf("weighted risk score %.0f exceeds threshold %.0f", score, thresholds.RiskScoreThreshold),
			[]string{"risk_score"}, "manual_review")
		alerts = append(alerts, alert)
	}
	if err := e.persistCheck(ctx, t.TransactionID, "RiskScore", !highRiskFinding, score, fmt.Sprintf("computed risk score %.0f", score)); err != nil {
		return nil, err
	}

	for _, alert := range alerts {
		if err := e.store.SaveAMLAlert(ctx, alert); err != nil {
			return nil, err
		}
		body, err := json.Marshal(alert)
		if err != nil {
			return nil, pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding aml alert")
		}
		if err := e.bus.Publish(ctx, bus.TopicAMLAlerts, body); err != nil {
			return nil, pipeerr.Wrap(err, pipeerr.ErrInternal, "publishing aml alert")
		}
	}

	if len(alerts) > 0 {
		e.logger.Info("transaction raised aml alerts",
			zap.String("transaction_id", t.TransactionID), zap.Int("alert_count", len(alerts)))
	}
	return alerts, nil
}

// checkKYC implements §4.5 step 3: no record is critical, a non-approved
// status is high, and an approved-but-basic verification level above the
// high-amount threshold is medium.
func (e *Evaluator) checkKYC(t types.Transaction, k *types.KYCRecord, thresholds types.RiskThresholds) *types.AMLAlert {
	if k == nil {
		alert := e.newAlert(t, "NO_KYC_RECORD", types.AlertSeverityCritical,
			fmt.Sprintf("no KYC record on file for user %s", t.UserID), []string{"kyc_missing"}, "block_and_review")
		return &alert
	}
	if k.Status != types.KYCStatusApproved {
		alert := e.newAlert(t, "KYC_NOT_APPROVED", types.AlertSeverityHigh,
			fmt.Sprintf("kyc status %q is not approved", k.Status), []string{"kyc_not_approved"}, "hold_pending_review")
		return &alert
	}
	if k.VerificationLevel == types.VerificationBasic && t.Amount.GreaterThan(thresholds.TransactionAmountHigh) {
		alert := e.newAlert(t, "ENHANCED_KYC_REQUIRED", types.AlertSeverityMedium,
			"basic verification level insufficient for a transaction above the high-amount threshold",
			[]string{"kyc_insufficient"}, "request_enhanced_verification")
		return &alert
	}
	return nil
}

func (e *Evaluator) newAlert(t types.Transaction, alertType string, severity types.AlertSeverity, description string, indicators []string, action string) types.AMLAlert {
	return types.AMLAlert{
		AlertID:           "AC-" + ksuid.New().String(),
		TransactionID:     t.TransactionID,
		AlertType:         alertType,
		Severity:          severity,
		Description:       description,
		RiskIndicators:    indicators,
		RecommendedAction: action,
		Status:            types.AlertStatusOpen,
		Timestamp:         t.Timestamp,
	}
}

func (e *Evaluator) persistCheck(ctx context.Context, transactionID, ruleName string, passed bool, score float64, details string) error {
	return e.store.SaveComplianceCheck(ctx, types.ComplianceCheck{
		CheckID:       "CC-" + ksuid.New().String(),
		TransactionID: transactionID,
		RuleName:      ruleName,
		Passed:        passed,
		RiskScore:     score,
		Details:       details,
		Timestamp:     time.Now(),
	})
}

func recommendedAction(severity types.AlertSeverity) string {
	switch severity {
	case types.AlertSeverityCritical:
		return "freeze_and_report"
	case types.AlertSeverityHigh:
		return "manual_review"
	default:
		return "monitor"
	}
}

func severityWeight(s types.AlertSeverity) float64 {
	switch s {
	case types.AlertSeverityCritical:
		return 100
	case types.AlertSeverityHigh:
		return 75
	case types.AlertSeverityMedium:
		return 50
	default:
		return 25
	}
}

// SetRules replaces the evaluator's active AML rule set, e.g. from an
// operator reload; safe to call concurrently with Evaluate.
func (e *Evaluator) SetRules(rules []types.AMLRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// InvalidateKYC drops a user's cached KYC record, forcing the next lookup
// to read through to the store. Call after a KYC status change.
func (e *Evaluator) InvalidateKYC(userID string) {
	e.kyc.Invalidate(userID)
}
