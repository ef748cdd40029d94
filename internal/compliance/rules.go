package compliance

import (
	"fmt"
	"time"

	"github.com/novaex/tradepipe/internal/types"
)

// ruleContext is everything a pure AML rule evaluator needs: the
// transaction under review, how many of the same user's transactions
// landed in the last hour, and the configured risk thresholds. Keeping
// this as a plain struct (rather than passing the window itself) keeps
// rule evaluation pure and easy to unit test without a live Evaluator.
type ruleContext struct {
	Transaction      types.Transaction
	HourlyCount      int
	Thresholds       types.RiskThresholds
}

// ruleFinding is what a single rule evaluation produced, in the shape an
// AMLAlert can be built from directly.
type ruleFinding struct {
	AlertType   string
	Severity    types.AlertSeverity
	Description string
}

// evaluateAMLRule runs rule against ctx and returns a finding if it fires,
// or nil if the transaction passes. Amount and velocity are built in;
// "pattern" and "geography" are accepted as configured rule types with no
// built-in evaluator — the spec calls these "extensible" and leaves their
// condition language implementation-defined, so an unrecognized rule type
// that isn't one of the two built-ins is simply a no-op rather than an
// error, matching the pure-function contract of §4.5.
func evaluateAMLRule(rule types.AMLRule, ctx ruleContext) *ruleFinding {
	if !rule.Enabled {
		return nil
	}
	switch rule.RuleType {
	case types.AMLRuleTypeAmount:
		return evaluateAmountRule(rule, ctx)
	case types.AMLRuleTypeVelocity:
		return evaluateVelocityRule(rule, ctx)
	default:
		return nil
	}
}

func evaluateAmountRule(rule types.AMLRule, ctx ruleContext) *ruleFinding {
	threshold := rule.Parameters["threshold"]
	amount, _ := ctx.Transaction.Amount.Float64()
	if amount <= threshold {
		return nil
	}

	critical, _ := ctx.Thresholds.TransactionAmountCritical.Float64()
	severity := types.AlertSeverityHigh
	if amount > critical {
		severity = types.AlertSeverityCritical
	}
	return &ruleFinding{
		AlertType:   rule.RuleID,
		Severity:    severity,
		Description: fmt.Sprintf("%s: amount %s exceeds threshold %.2f", rule.Name, ctx.Transaction.Amount.String(), threshold),
	}
}

func evaluateVelocityRule(rule types.AMLRule, ctx ruleContext) *ruleFinding {
	maxPerHour := int(rule.Parameters["max_per_hour"])
	if ctx.HourlyCount <= maxPerHour {
		return nil
	}
	return &ruleFinding{
		AlertType:   rule.RuleID,
		Severity:    types.AlertSeverityMedium,
		Description: fmt.Sprintf("%s: %d transactions in the last hour exceeds %d", rule.Name, ctx.HourlyCount, maxPerHour),
	}
}

// hourWindow returns the lower bound of the rolling one-hour velocity
// window ending at now.
func hourWindow(now time.Time) time.Time {
	return now.Add(-1 * time.Hour)
}
