// Package migration applies the database schema.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/logger"
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.SubjectModel{},
		&models.ConsentRecordModel{},
		&models.AuditEntryModel{},
		&models.InteractionModel{},
	}
}

// Run applies the schema with gorm AutoMigrate. AutoMigrate only adds
// columns and indexes; it never drops, which suits an append-only audit
// store.
func Run(db *gorm.DB) error {
	modelList := Models()
	logger.Info("starting database migration", "models_count", len(modelList))

	if err := db.AutoMigrate(modelList...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("database migration completed")
	return nil
}
