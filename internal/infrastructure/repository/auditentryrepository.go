package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pharos/internal/domain/audit"
	"pharos/internal/infrastructure/persistence/mappers"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
)

// AuditEntryRepository persists audit entries. Insert-only: this type
// deliberately exposes no update or delete operation.
type AuditEntryRepository struct {
	db     *gorm.DB
	mapper mappers.AuditMapper
}

func NewAuditEntryRepository(database *gorm.DB) *AuditEntryRepository {
	return &AuditEntryRepository{
		db:     database,
		mapper: mappers.NewAuditMapper(),
	}
}

func (r *AuditEntryRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model, err := r.mapper.ToModel(entry)
	if err != nil {
		return errors.NewAuditWriteFailedError("failed to encode audit entry", err.Error())
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return errors.NewAuditWriteFailedError("failed to append audit entry", err.Error())
	}

	return entry.SetID(model.ID)
}

func (r *AuditEntryRepository) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.AuditEntryModel{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", filter.Action.String())
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UnixMilli())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UnixMilli())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	var entryModels []models.AuditEntryModel
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&entryModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entry, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, 0, err
		}
		entries[i] = entry
	}

	return entries, total, nil
}

func (r *AuditEntryRepository) ListForEntity(ctx context.Context, entityType, entityID string) ([]*audit.Entry, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var entryModels []models.AuditEntryModel
	if err := tx.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit history: %w", err)
	}

	entries := make([]*audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entry, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}

	return entries, nil
}
