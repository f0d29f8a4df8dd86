package storage

import (
	"citegraph/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenPostgres verbindet sich mit der konfigurierten PostgreSQL-Datenbank.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// NewStoreFromConfig öffnet die Datenbank und übernimmt die Batch-Größen aus cfg.
func NewStoreFromConfig(cfg *config.Config) (*Store, error) {
	db, err := OpenPostgres(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(db, cfg.PaperBatchSize, cfg.CitationBatchSize), nil
}
