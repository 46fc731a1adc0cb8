package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pharos/internal/domain/consent"
	"pharos/internal/infrastructure/persistence/mappers"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/db"
)

// ConsentRecordRepository persists consent records. Insert-only: a status
// change is a new row, never an update.
type ConsentRecordRepository struct {
	db     *gorm.DB
	mapper mappers.ConsentMapper
}

func NewConsentRecordRepository(database *gorm.DB) *ConsentRecordRepository {
	return &ConsentRecordRepository{
		db:     database,
		mapper: mappers.NewConsentMapper(),
	}
}

func (r *ConsentRecordRepository) Append(ctx context.Context, record *consent.Record) error {
	model := r.mapper.ToModel(record)

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to append consent record: %w", err)
	}

	return record.SetID(model.ID)
}

func (r *ConsentRecordRepository) ListForChannel(ctx context.Context, subjectID uint, channel consent.Channel) ([]*consent.Record, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var recordModels []models.ConsentRecordModel
	if err := tx.
		Where("subject_id = ? AND channel = ?", subjectID, channel.String()).
		Order("created_at DESC, id DESC").
		Find(&recordModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load consent history: %w", err)
	}

	return r.toDomainList(recordModels)
}

func (r *ConsentRecordRepository) ListForSubject(ctx context.Context, subjectID uint) ([]*consent.Record, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var recordModels []models.ConsentRecordModel
	if err := tx.
		Where("subject_id = ?", subjectID).
		Order("created_at DESC, id DESC").
		Find(&recordModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load consent history: %w", err)
	}

	return r.toDomainList(recordModels)
}

func (r *ConsentRecordRepository) toDomainList(recordModels []models.ConsentRecordModel) ([]*consent.Record, error) {
	records := make([]*consent.Record, len(recordModels))
	for i, model := range recordModels {
		record, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}
	return records, nil
}
