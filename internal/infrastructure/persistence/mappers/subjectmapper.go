package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"pharos/internal/domain/subject"
	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/infrastructure/persistence/models"
)

// SubjectMapper handles the conversion between Subject domain entities and
// persistence models.
type SubjectMapper interface {
	ToModel(s *subject.Subject) (*models.SubjectModel, error)
	ToDomain(model *models.SubjectModel) (*subject.Subject, error)
}

type SubjectMapperImpl struct{}

func NewSubjectMapper() SubjectMapper {
	return &SubjectMapperImpl{}
}

func (m *SubjectMapperImpl) ToModel(s *subject.Subject) (*models.SubjectModel, error) {
	c := s.Classification()

	languages, err := json.Marshal(c.Languages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal languages: %w", err)
	}
	areas, err := json.Marshal(c.TherapeuticAreas)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal therapeutic areas: %w", err)
	}
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	pii := s.PII()
	model := &models.SubjectModel{
		ID:               s.ID(),
		SID:              s.SID(),
		ExternalID:       s.ExternalID(),
		Specialty:        c.Specialty,
		InfluenceTier:    c.InfluenceTier.String(),
		TerritoryID:      c.TerritoryID,
		InstitutionID:    c.InstitutionID,
		YearsOfPractice:  c.YearsOfPractice,
		Languages:        datatypes.JSON(languages),
		TherapeuticAreas: datatypes.JSON(areas),
		Tags:             datatypes.JSON(tags),
		Metadata:         datatypes.JSON(metadata),
		IsActive:         s.IsActive(),
		IsAnonymized:     s.IsAnonymized(),
		Version:          s.Version(),
		CreatedAt:        s.CreatedAt().UnixMilli(),
		UpdatedAt:        s.UpdatedAt().UnixMilli(),
		DeletedAt:        timeToMillisPtr(s.DeletedAt()),
	}

	setEncryptedColumns(&model.FirstNameEnc, &model.FirstNameToken, pii.FirstName)
	setEncryptedColumns(&model.LastNameEnc, &model.LastNameToken, pii.LastName)
	setEncryptedColumns(&model.EmailEnc, &model.EmailToken, pii.Email)
	setEncryptedColumns(&model.PhoneEnc, &model.PhoneToken, pii.Phone)

	return model, nil
}

func (m *SubjectMapperImpl) ToDomain(model *models.SubjectModel) (*subject.Subject, error) {
	var languages, areas, tags []string
	var metadata map[string]string

	if len(model.Languages) > 0 {
		if err := json.Unmarshal(model.Languages, &languages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subject languages (id=%d): %w", model.ID, err)
		}
	}
	if len(model.TherapeuticAreas) > 0 {
		if err := json.Unmarshal(model.TherapeuticAreas, &areas); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subject therapeutic areas (id=%d): %w", model.ID, err)
		}
	}
	if len(model.Tags) > 0 {
		if err := json.Unmarshal(model.Tags, &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subject tags (id=%d): %w", model.ID, err)
		}
	}
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subject metadata (id=%d): %w", model.ID, err)
		}
	}

	classification := subject.Classification{
		Specialty:        model.Specialty,
		InfluenceTier:    vo.InfluenceTier(model.InfluenceTier),
		TerritoryID:      model.TerritoryID,
		InstitutionID:    model.InstitutionID,
		YearsOfPractice:  model.YearsOfPractice,
		Languages:        languages,
		TherapeuticAreas: areas,
		Tags:             tags,
		Metadata:         metadata,
	}

	pii := subject.PII{
		FirstName: encryptedField(model.FirstNameEnc, model.FirstNameToken),
		LastName:  encryptedField(model.LastNameEnc, model.LastNameToken),
		Email:     encryptedField(model.EmailEnc, model.EmailToken),
		Phone:     encryptedField(model.PhoneEnc, model.PhoneToken),
	}

	return subject.ReconstructSubject(
		model.ID,
		model.SID,
		model.ExternalID,
		pii,
		classification,
		model.IsActive,
		model.IsAnonymized,
		model.Version,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
		millisToTimePtr(model.DeletedAt),
	)
}

func setEncryptedColumns(enc, token **string, field vo.EncryptedField) {
	if field.IsZero() {
		*enc = nil
		*token = nil
		return
	}
	c := field.Ciphertext
	t := field.IndexToken
	*enc = &c
	*token = &t
}

func encryptedField(enc, token *string) vo.EncryptedField {
	field := vo.EncryptedField{}
	if enc != nil {
		field.Ciphertext = *enc
	}
	if token != nil {
		field.IndexToken = *token
	}
	return field
}
