package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pharos/internal/domain/interaction"
	"pharos/internal/infrastructure/persistence/mappers"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/db"
)

// InteractionRepository persists channel engagements.
type InteractionRepository struct {
	db     *gorm.DB
	mapper mappers.InteractionMapper
}

func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{
		db:     database,
		mapper: mappers.NewInteractionMapper(),
	}
}

func (r *InteractionRepository) Save(ctx context.Context, i *interaction.Interaction) error {
	model := r.mapper.ToModel(i)

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}

	return i.SetID(model.ID)
}

func (r *InteractionRepository) ListForSubject(ctx context.Context, subjectID uint) ([]*interaction.Interaction, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var interactionModels []models.InteractionModel
	if err := tx.
		Where("subject_id = ?", subjectID).
		Order("occurred_at DESC, id DESC").
		Find(&interactionModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	interactions := make([]*interaction.Interaction, len(interactionModels))
	for i, model := range interactionModels {
		it, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, err
		}
		interactions[i] = it
	}

	return interactions, nil
}
