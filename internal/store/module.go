package store

import (
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Module provides a migrated Store to the fx graph for the compliance
// service.
var Module = fx.Module("store",
	fx.Provide(func(cfg *config.Config) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(cfg.Compliance.DatabaseDSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, pipeerr.Wrap(err, pipeerr.ErrDatabaseConnection, "connecting to compliance database")
		}
		return db, nil
	}),
	fx.Provide(func(db *gorm.DB, logger *zap.Logger) (Store, error) {
		return NewGormStore(db, logger)
	}),
)
