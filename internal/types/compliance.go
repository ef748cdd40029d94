package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the unit the compliance evaluator screens. In this
// pipeline every risk-approved order is treated as a transaction to screen;
// the type is kept separate from Order because a transaction may also
// originate from a settlement or withdrawal event in a fuller deployment.
type Transaction struct {
	TransactionID   string
	UserID          string
	Symbol          string
	Amount          decimal.Decimal
	TransactionType string
	WalletAddress   string
	Counterparty    string
	Timestamp       time.Time
}

// VerificationLevel is how thoroughly a user's identity has been checked.
type VerificationLevel string

const (
	VerificationNone  VerificationLevel = "none"
	VerificationBasic VerificationLevel = "basic"
	VerificationFull  VerificationLevel = "full"
)

// KYCStatus is the outcome of identity verification.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// RiskRating is a coarse KYC-derived risk bucket, used by the scoring
// formula in addition to the per-transaction checks.
type RiskRating string

const (
	RiskRatingLow    RiskRating = "low"
	RiskRatingMedium RiskRating = "medium"
	RiskRatingHigh   RiskRating = "high"
)

// KYCRecord is a user's identity-verification record.
type KYCRecord struct {
	UserID            string
	VerificationLevel VerificationLevel
	Status            KYCStatus
	RiskRating        RiskRating
	Documents         []string
	LastUpdated       time.Time
}

// RiskProfile tracks an entity's standing independent of any single
// transaction: sanctions/PEP/adverse-media flags persist until re-screened,
// unlike AMLAlerts which are raised per transaction.
type RiskProfile struct {
	EntityID      string
	EntityType    string
	RiskScore     float64
	RiskFactors   []string
	SanctionsCheck bool
	PEPCheck      bool
	AdverseMedia  bool
	LastUpdated   time.Time
}

// AlertSeverity uses the same four levels as pipeerr.Severity so operators
// triage alerts and errors the same way.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertStatus tracks an alert through triage.
type AlertStatus string

const (
	AlertStatusOpen       AlertStatus = "open"
	AlertStatusInvestigating AlertStatus = "investigating"
	AlertStatusResolved   AlertStatus = "resolved"
	AlertStatusDismissed  AlertStatus = "dismissed"
)

// AMLAlert is raised whenever a transaction trips an AML rule, a KYC
// deficiency, a sanctions hit, or the weighted risk score threshold.
type AMLAlert struct {
	AlertID            string
	TransactionID      string
	AlertType          string
	Severity           AlertSeverity
	Description        string
	RiskIndicators     []string
	RecommendedAction  string
	Status             AlertStatus
	AssignedTo         string
	ResolvedAt         *time.Time
	Timestamp          time.Time
}

// ComplianceCheck records the outcome (pass or fail) of one rule evaluated
// against one transaction, independent of whether it produced an alert.
type ComplianceCheck struct {
	CheckID       string
	TransactionID string
	RuleName      string
	Passed        bool
	RiskScore     float64
	Details       string
	Timestamp     time.Time
}

// AMLRuleType distinguishes the built-in rule evaluators.
type AMLRuleType string

const (
	AMLRuleTypeAmount   AMLRuleType = "amount"
	AMLRuleTypeVelocity AMLRuleType = "velocity"
)

// AMLRule is a configured threshold rule. Parameters is rule-specific:
// "threshold" for amount rules, "max_per_hour" for velocity rules.
type AMLRule struct {
	RuleID      string
	Name        string
	Description string
	RuleType    AMLRuleType
	Parameters  map[string]float64
	Enabled     bool
}

// RiskThresholds configures the weighted risk-scoring formula and the
// velocity/volume checks that feed it.
type RiskThresholds struct {
	TransactionAmountHigh     decimal.Decimal
	TransactionAmountCritical decimal.Decimal
	DailyVolumeLimit          decimal.Decimal
	RiskScoreThreshold        float64
	VelocityThreshold         int
}

// DefaultRiskThresholds mirrors the values the original screening service
// shipped with.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		TransactionAmountHigh:     decimal.NewFromInt(10000),
		TransactionAmountCritical: decimal.NewFromInt(50000),
		DailyVolumeLimit:          decimal.NewFromInt(100000),
		RiskScoreThreshold:        75,
		VelocityThreshold:         10,
	}
}

// DefaultAMLRules mirrors the two default rules the original screening
// service shipped with.
func DefaultAMLRules() []AMLRule {
	return []AMLRule{
		{
			RuleID:      "LARGE_TRANSACTION",
			Name:        "Large Transaction",
			Description: "Flags any single transaction above the configured amount threshold",
			RuleType:    AMLRuleTypeAmount,
			Parameters:  map[string]float64{"threshold": 10000},
			Enabled:     true,
		},
		{
			RuleID:      "VELOCITY_CHECK",
			Name:        "Velocity Check",
			Description: "Flags users exceeding the configured transaction count per hour",
			RuleType:    AMLRuleTypeVelocity,
			Parameters:  map[string]float64{"max_per_hour": 10},
			Enabled:     true,
		},
	}
}
