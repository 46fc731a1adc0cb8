package mappers

import (
	"pharos/internal/domain/consent"
	"pharos/internal/infrastructure/persistence/models"
)

// ConsentMapper handles the conversion between consent records and
// persistence models.
type ConsentMapper interface {
	ToModel(r *consent.Record) *models.ConsentRecordModel
	ToDomain(model *models.ConsentRecordModel) (*consent.Record, error)
}

type ConsentMapperImpl struct{}

func NewConsentMapper() ConsentMapper {
	return &ConsentMapperImpl{}
}

func (m *ConsentMapperImpl) ToModel(r *consent.Record) *models.ConsentRecordModel {
	return &models.ConsentRecordModel{
		ID:          r.ID(),
		SubjectID:   r.SubjectID(),
		Channel:     r.Channel().String(),
		Status:      r.Status().String(),
		GrantedAt:   timeToMillisPtr(r.GrantedAt()),
		RevokedAt:   timeToMillisPtr(r.RevokedAt()),
		ExpiresAt:   timeToMillisPtr(r.ExpiresAt()),
		Source:      r.Source(),
		EvidenceRef: r.EvidenceRef(),
		RecordedBy:  r.RecordedBy(),
		Notes:       r.Notes(),
		CreatedAt:   r.CreatedAt().UnixMilli(),
	}
}

func (m *ConsentMapperImpl) ToDomain(model *models.ConsentRecordModel) (*consent.Record, error) {
	return consent.ReconstructRecord(
		model.ID,
		model.SubjectID,
		consent.Channel(model.Channel),
		consent.Status(model.Status),
		millisToTimePtr(model.GrantedAt),
		millisToTimePtr(model.RevokedAt),
		millisToTimePtr(model.ExpiresAt),
		model.Source,
		model.EvidenceRef,
		model.RecordedBy,
		model.Notes,
		millisToTime(model.CreatedAt),
	)
}
