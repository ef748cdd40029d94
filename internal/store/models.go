// Package store persists compliance and risk data through gorm: the
// transactions the evaluator screens, KYC records, the compliance checks
// and AML alerts it raises. It also migrates a risk_state table shaped like
// the risk gate's ledger, which no code in this module reads or writes.
// Grounded on the teacher's internal/db models/repository shape,
// with columns matching the original compliance-gateway's exact schema.
package store

import (
	"time"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
)

// TransactionRow is the persisted shape of types.Transaction.
type TransactionRow struct {
	TransactionID   string `gorm:"primaryKey;column:transaction_id"`
	UserID          string `gorm:"index;column:user_id"`
	Symbol          string `gorm:"column:symbol"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(20,8)"`
	TransactionType string `gorm:"column:transaction_type"`
	WalletAddress   string `gorm:"column:wallet_address"`
	Counterparty    string `gorm:"column:counterparty"`
	Timestamp       time.Time `gorm:"column:timestamp"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TransactionRow) TableName() string { return "transactions" }

// KYCRecordRow is the persisted shape of types.KYCRecord.
type KYCRecordRow struct {
	UserID            string `gorm:"primaryKey;column:user_id"`
	VerificationLevel string `gorm:"column:verification_level"`
	Status            string `gorm:"column:status"`
	Documents         string `gorm:"column:documents;type:jsonb"`
	RiskRating        string `gorm:"column:risk_rating"`
	LastUpdated       time.Time `gorm:"column:last_updated"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (KYCRecordRow) TableName() string { return "kyc_records" }

// ComplianceCheckRow is the persisted shape of types.ComplianceCheck.
type ComplianceCheckRow struct {
	CheckID       string `gorm:"primaryKey;column:check_id"`
	TransactionID string `gorm:"index;column:transaction_id"`
	RuleName      string `gorm:"column:rule_name"`
	Status        string `gorm:"column:status"`
	RiskScore     float64 `gorm:"column:risk_score;type:numeric(5,2)"`
	Details       string `gorm:"column:details"`
	Timestamp     time.Time `gorm:"column:timestamp"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ComplianceCheckRow) TableName() string { return "compliance_checks" }

// AMLAlertRow is the persisted shape of types.AMLAlert.
type AMLAlertRow struct {
	AlertID           string `gorm:"primaryKey;column:alert_id"`
	TransactionID     string `gorm:"index;column:transaction_id"`
	AlertType         string `gorm:"column:alert_type"`
	Severity          string `gorm:"column:severity"`
	Description       string `gorm:"column:description"`
	RiskIndicators    string `gorm:"column:risk_indicators;type:jsonb"`
	RecommendedAction string `gorm:"column:recommended_action"`
	Status            string `gorm:"column:status"`
	AssignedTo        string `gorm:"column:assigned_to"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at"`
	Timestamp         time.Time `gorm:"column:timestamp"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AMLAlertRow) TableName() string { return "aml_alerts" }

// RiskStateRow is the table shape for the risk gate's per-user, per-symbol
// ledger entries. The table is migrated, but nothing saves or loads it: the
// risk gate's ledger lives in memory and starts empty after a restart.
type RiskStateRow struct {
	UserID        string `gorm:"primaryKey;column:user_id"`
	Symbol        string `gorm:"primaryKey;column:symbol"`
	Position      decimal.Decimal `gorm:"column:position;type:numeric(24,8)"`
	Reserved      decimal.Decimal `gorm:"column:reserved;type:numeric(24,8)"`
	Exposure      decimal.Decimal `gorm:"column:exposure;type:numeric(24,8)"`
	RealizedPnL   decimal.Decimal `gorm:"column:realized_pnl;type:numeric(24,8)"`
	UnrealizedPnL decimal.Decimal `gorm:"column:unrealized_pnl;type:numeric(24,8)"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (RiskStateRow) TableName() string { return "risk_state" }

// RiskProfileRow is the persisted shape of types.RiskProfile, supplemented
// from original_source/ (see SPEC_FULL.md Compliance Evaluator module).
type RiskProfileRow struct {
	EntityID       string `gorm:"primaryKey;column:entity_id"`
	EntityType     string `gorm:"column:entity_type"`
	RiskScore      float64 `gorm:"column:risk_score"`
	RiskFactors    string `gorm:"column:risk_factors;type:jsonb"`
	SanctionsCheck bool `gorm:"column:sanctions_check"`
	PEPCheck       bool `gorm:"column:pep_check"`
	AdverseMedia   bool `gorm:"column:adverse_media"`
	LastUpdated    time.Time `gorm:"column:last_updated"`
}

func (RiskProfileRow) TableName() string { return "risk_profiles" }

func riskProfileRow(p types.RiskProfile, riskFactorsJSON string) RiskProfileRow {
	return RiskProfileRow{
		EntityID:       p.EntityID,
		EntityType:     p.EntityType,
		RiskScore:      p.RiskScore,
		RiskFactors:    riskFactorsJSON,
		SanctionsCheck: p.SanctionsCheck,
		PEPCheck:       p.PEPCheck,
		AdverseMedia:   p.AdverseMedia,
		LastUpdated:    p.LastUpdated,
	}
}

func (r RiskProfileRow) toProfile(factors []string) types.RiskProfile {
	return types.RiskProfile{
		EntityID:       r.EntityID,
		EntityType:     r.EntityType,
		RiskScore:      r.RiskScore,
		RiskFactors:    factors,
		SanctionsCheck: r.SanctionsCheck,
		PEPCheck:       r.PEPCheck,
		AdverseMedia:   r.AdverseMedia,
		LastUpdated:    r.LastUpdated,
	}
}

func transactionRow(t types.Transaction) TransactionRow {
	return TransactionRow{
		TransactionID:   t.TransactionID,
		UserID:          t.UserID,
		Symbol:          t.Symbol,
		Amount:          t.Amount,
		TransactionType: t.TransactionType,
		WalletAddress:   t.WalletAddress,
		Counterparty:    t.Counterparty,
		Timestamp:       t.Timestamp,
	}
}

func kycRow(k types.KYCRecord, documentsJSON string) KYCRecordRow {
	return KYCRecordRow{
		UserID:            k.UserID,
		VerificationLevel: string(k.VerificationLevel),
		Status:            string(k.Status),
		Documents:         documentsJSON,
		RiskRating:        string(k.RiskRating),
		LastUpdated:       k.LastUpdated,
	}
}

func (r KYCRecordRow) toRecord(documents []string) types.KYCRecord {
	return types.KYCRecord{
		UserID:            r.UserID,
		VerificationLevel: types.VerificationLevel(r.VerificationLevel),
		Status:            types.KYCStatus(r.Status),
		RiskRating:        types.RiskRating(r.RiskRating),
		Documents:         documents,
		LastUpdated:       r.LastUpdated,
	}
}

func complianceCheckRow(c types.ComplianceCheck) ComplianceCheckRow {
	status := "passed"
	if !c.Passed {
		status = "flagged"
	}
	return ComplianceCheckRow{
		CheckID:       c.CheckID,
		TransactionID: c.TransactionID,
		RuleName:      c.RuleName,
		Status:        status,
		RiskScore:     c.RiskScore,
		Details:       c.Details,
		Timestamp:     c.Timestamp,
	}
}

func amlAlertRow(a types.AMLAlert, riskIndicatorsJSON string) AMLAlertRow {
	status := a.Status
	if status == "" {
		status = types.AlertStatusOpen
	}
	return AMLAlertRow{
		AlertID:           a.AlertID,
		TransactionID:     a.TransactionID,
		AlertType:         a.AlertType,
		Severity:          string(a.Severity),
		Description:       a.Description,
		RiskIndicators:    riskIndicatorsJSON,
		RecommendedAction: a.RecommendedAction,
		Status:            string(status),
		AssignedTo:        a.AssignedTo,
		ResolvedAt:        a.ResolvedAt,
		Timestamp:         a.Timestamp,
	}
}

func (r AMLAlertRow) toAlert(riskIndicators []string) types.AMLAlert {
	return types.AMLAlert{
		AlertID:           r.AlertID,
		TransactionID:     r.TransactionID,
		AlertType:         r.AlertType,
		Severity:          types.AlertSeverity(r.Severity),
		Description:       r.Description,
		RiskIndicators:    riskIndicators,
		RecommendedAction: r.RecommendedAction,
		Status:            types.AlertStatus(r.Status),
		AssignedTo:        r.AssignedTo,
		ResolvedAt:        r.ResolvedAt,
		Timestamp:         r.Timestamp,
	}
}
