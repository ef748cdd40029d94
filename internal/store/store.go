package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlertFilter narrows GET /compliance/alerts the way the spec's query
// parameters do.
type AlertFilter struct {
	UserID   string
	From     time.Time
	To       time.Time
	Severity string
}

// Store is the persistence surface the compliance evaluator and its HTTP
// query API use. One implementation, GormStore, backs it with Postgres;
// tests may supply an in-memory fake implementing the same interface.
type Store interface {
	SaveTransaction(ctx context.Context, t types.Transaction) error
	UpsertKYCRecord(ctx context.Context, k types.KYCRecord) error
	GetKYCRecord(ctx context.Context, userID string) (*types.KYCRecord, error)
	SaveComplianceCheck(ctx context.Context, c types.ComplianceCheck) error
	SaveAMLAlert(ctx context.Context, a types.AMLAlert) error
	ListAlerts(ctx context.Context, filter AlertFilter) ([]types.AMLAlert, error)
	UpsertRiskProfile(ctx context.Context, p types.RiskProfile) error
	GetRiskProfile(ctx context.Context, entityID string) (*types.RiskProfile, error)
}

// GormStore implements Store over a *gorm.DB.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore wraps db, migrating the tables it owns if they don't exist.
func NewGormStore(db *gorm.DB, logger *zap.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(
		&TransactionRow{}, &KYCRecordRow{}, &ComplianceCheckRow{}, &AMLAlertRow{},
		&RiskStateRow{}, &RiskProfileRow{},
	); err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "running compliance store migrations")
	}
	return &GormStore{db: db, logger: logger.Named("store")}, nil
}

func (s *GormStore) SaveTransaction(ctx context.Context, t types.Transaction) error {
	row := transactionRow(t)
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "saving transaction")
	}
	return nil
}

func (s *GormStore) UpsertKYCRecord(ctx context.Context, k types.KYCRecord) error {
	docs, err := json.Marshal(k.Documents)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding kyc documents")
	}
	row := kycRow(k, string(docs))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "upserting kyc record")
	}
	return nil
}

func (s *GormStore) GetKYCRecord(ctx context.Context, userID string) (*types.KYCRecord, error) {
	var row KYCRecordRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "loading kyc record")
	}
	var docs []string
	_ = json.Unmarshal([]byte(row.Documents), &docs)
	record := row.toRecord(docs)
	return &record, nil
}

func (s *GormStore) SaveComplianceCheck(ctx context.Context, c types.ComplianceCheck) error {
	row := complianceCheckRow(c)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "saving compliance check")
	}
	return nil
}

func (s *GormStore) SaveAMLAlert(ctx context.Context, a types.AMLAlert) error {
	indicators, err := json.Marshal(a.RiskIndicators)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding risk indicators")
	}
	row := amlAlertRow(a, string(indicators))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "saving aml alert")
	}
	return nil
}

func (s *GormStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]types.AMLAlert, error) {
	q := s.db.WithContext(ctx).Model(&AMLAlertRow{})
	if filter.UserID != "" {
		q = q.Joins("JOIN transactions ON transactions.transaction_id = aml_alerts.transaction_id").
			Where("transactions.user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		q = q.Where("aml_alerts.timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("aml_alerts.timestamp <= ?", filter.To)
	}
	if filter.Severity != "" {
		q = q.Where("aml_alerts.severity = ?", filter.Severity)
	}

	var rows []AMLAlertRow
	if err := q.Order("aml_alerts.timestamp DESC").Find(&rows).Error; err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "listing aml alerts")
	}

	alerts := make([]types.AMLAlert, 0, len(rows))
	for _, row := range rows {
		var indicators []string
		_ = json.Unmarshal([]byte(row.RiskIndicators), &indicators)
		alerts = append(alerts, row.toAlert(indicators))
	}
	return alerts, nil
}

func (s *GormStore) UpsertRiskProfile(ctx context.Context, p types.RiskProfile) error {
	factors, err := json.Marshal(p.RiskFactors)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding risk factors")
	}
	row := riskProfileRow(p, string(factors))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "upserting risk profile")
	}
	return nil
}

func (s *GormStore) GetRiskProfile(ctx context.Context, entityID string) (*types.RiskProfile, error) {
	var row RiskProfileRow
	err := s.db.WithContext(ctx).Where("entity_id = ?", entityID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "loading risk profile")
	}
	var factors []string
	_ = json.Unmarshal([]byte(row.RiskFactors), &factors)
	profile := row.toProfile(factors)
	return &profile, nil
}
