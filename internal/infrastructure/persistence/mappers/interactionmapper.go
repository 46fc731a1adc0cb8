package mappers

import (
	"pharos/internal/domain/consent"
	"pharos/internal/domain/interaction"
	"pharos/internal/infrastructure/persistence/models"
)

// InteractionMapper handles the conversion between interactions and
// persistence models.
type InteractionMapper interface {
	ToModel(i *interaction.Interaction) *models.InteractionModel
	ToDomain(model *models.InteractionModel) (*interaction.Interaction, error)
}

type InteractionMapperImpl struct{}

func NewInteractionMapper() InteractionMapper {
	return &InteractionMapperImpl{}
}

func (m *InteractionMapperImpl) ToModel(i *interaction.Interaction) *models.InteractionModel {
	return &models.InteractionModel{
		ID:         i.ID(),
		SubjectID:  i.SubjectID(),
		Channel:    i.Channel().String(),
		Status:     i.Status().String(),
		OccurredAt: i.OccurredAt().UnixMilli(),
		Notes:      i.Notes(),
		RecordedBy: i.RecordedBy(),
		CreatedAt:  i.CreatedAt().UnixMilli(),
		UpdatedAt:  i.UpdatedAt().UnixMilli(),
	}
}

func (m *InteractionMapperImpl) ToDomain(model *models.InteractionModel) (*interaction.Interaction, error) {
	return interaction.ReconstructInteraction(
		model.ID,
		model.SubjectID,
		consent.Channel(model.Channel),
		interaction.Status(model.Status),
		millisToTime(model.OccurredAt),
		model.Notes,
		model.RecordedBy,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
	)
}
