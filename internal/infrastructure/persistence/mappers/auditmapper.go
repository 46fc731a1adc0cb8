package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"pharos/internal/domain/audit"
	"pharos/internal/infrastructure/persistence/models"
)

// AuditMapper handles the conversion between audit entries and persistence
// models.
type AuditMapper interface {
	ToModel(e *audit.Entry) (*models.AuditEntryModel, error)
	ToDomain(model *models.AuditEntryModel) (*audit.Entry, error)
}

type AuditMapperImpl struct{}

func NewAuditMapper() AuditMapper {
	return &AuditMapperImpl{}
}

func (m *AuditMapperImpl) ToModel(e *audit.Entry) (*models.AuditEntryModel, error) {
	model := &models.AuditEntryModel{
		ID:            e.ID(),
		ActorID:       e.ActorID(),
		Action:        e.Action().String(),
		EntityType:    e.EntityType(),
		EntityID:      e.EntityID(),
		OriginAddress: e.OriginAddress(),
		ClientAgent:   e.ClientAgent(),
		CreatedAt:     e.CreatedAt().UnixMilli(),
	}

	if e.PreviousState() != nil {
		raw, err := json.Marshal(e.PreviousState())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal previous state: %w", err)
		}
		model.PreviousState = datatypes.JSON(raw)
	}
	if e.NewState() != nil {
		raw, err := json.Marshal(e.NewState())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal new state: %w", err)
		}
		model.NewState = datatypes.JSON(raw)
	}
	if len(e.Metadata()) > 0 {
		raw, err := json.Marshal(e.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		model.Metadata = datatypes.JSON(raw)
	}

	return model, nil
}

func (m *AuditMapperImpl) ToDomain(model *models.AuditEntryModel) (*audit.Entry, error) {
	var previousState, newState audit.Snapshot
	var metadata audit.Metadata

	if len(model.PreviousState) > 0 {
		if err := json.Unmarshal(model.PreviousState, &previousState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous state (id=%d): %w", model.ID, err)
		}
	}
	if len(model.NewState) > 0 {
		if err := json.Unmarshal(model.NewState, &newState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new state (id=%d): %w", model.ID, err)
		}
	}
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata (id=%d): %w", model.ID, err)
		}
	}

	return audit.ReconstructEntry(
		model.ID,
		model.ActorID,
		audit.Action(model.Action),
		model.EntityType,
		model.EntityID,
		previousState,
		newState,
		model.OriginAddress,
		model.ClientAgent,
		metadata,
		millisToTime(model.CreatedAt),
	)
}
