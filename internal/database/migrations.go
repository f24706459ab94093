package database

import (
	"swipestats/internal/logger"
	"swipestats/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Profile{},
		&models.DailyUsageRecord{},
		&models.Match{},
		&models.Message{},
		&models.ProfileMeta{},
		&models.CohortDefinition{},
		&models.IngestionRun{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_daily_usage_date ON daily_usage_records(date)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_computed_platform ON profiles(computed, platform)",
		"CREATE INDEX IF NOT EXISTS idx_ingestion_runs_status ON ingestion_runs(status, created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
