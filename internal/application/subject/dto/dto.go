// Package dto defines the data transfer shapes returned by subject use
// cases. List items never carry decrypted PII; the detail DTO carries it only
// when the caller went through the view-audited read path.
package dto

import (
	"time"

	"pharos/internal/domain/subject"
)

// PIIDTO holds decrypted PII values for a single-subject read.
type PIIDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// SubjectDTO is the detail view of a subject.
type SubjectDTO struct {
	SID              string            `json:"sid"`
	ExternalID       *string           `json:"external_id,omitempty"`
	PII              *PIIDTO           `json:"pii,omitempty"`
	Specialty        string            `json:"specialty"`
	InfluenceTier    string            `json:"influence_tier"`
	TerritoryID      *uint             `json:"territory_id,omitempty"`
	InstitutionID    *uint             `json:"institution_id,omitempty"`
	YearsOfPractice  int               `json:"years_of_practice"`
	Languages        []string          `json:"languages"`
	TherapeuticAreas []string          `json:"therapeutic_areas"`
	Tags             []string          `json:"tags"`
	Metadata         map[string]string `json:"metadata"`
	IsActive         bool              `json:"is_active"`
	IsAnonymized     bool              `json:"is_anonymized"`
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SubjectListItemDTO is the search result view. PII attributes appear only as
// presence flags.
type SubjectListItemDTO struct {
	SID           string `json:"sid"`
	Specialty     string `json:"specialty"`
	InfluenceTier string `json:"influence_tier"`
	TerritoryID   *uint  `json:"territory_id,omitempty"`
	HasFirstName  bool   `json:"has_first_name"`
	HasLastName   bool   `json:"has_last_name"`
	HasEmail      bool   `json:"has_email"`
	HasPhone      bool   `json:"has_phone"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// ToSubjectDTO maps a subject without PII. Attach decrypted values separately
// when the read path allows it.
func ToSubjectDTO(s *subject.Subject) *SubjectDTO {
	if s == nil {
		return nil
	}

	c := s.Classification()
	return &SubjectDTO{
		SID:              s.SID(),
		ExternalID:       s.ExternalID(),
		Specialty:        c.Specialty,
		InfluenceTier:    c.InfluenceTier.String(),
		TerritoryID:      c.TerritoryID,
		InstitutionID:    c.InstitutionID,
		YearsOfPractice:  c.YearsOfPractice,
		Languages:        c.Languages,
		TherapeuticAreas: c.TherapeuticAreas,
		Tags:             c.Tags,
		Metadata:         c.Metadata,
		IsActive:         s.IsActive(),
		IsAnonymized:     s.IsAnonymized(),
		Version:          s.Version(),
		CreatedAt:        s.CreatedAt(),
		UpdatedAt:        s.UpdatedAt(),
	}
}

// ToSubjectListItemDTO maps a subject for search results.
func ToSubjectListItemDTO(s *subject.Subject) SubjectListItemDTO {
	c := s.Classification()
	pii := s.PII()
	return SubjectListItemDTO{
		SID:           s.SID(),
		Specialty:     c.Specialty,
		InfluenceTier: c.InfluenceTier.String(),
		TerritoryID:   c.TerritoryID,
		HasFirstName:  !pii.FirstName.IsZero(),
		HasLastName:   !pii.LastName.IsZero(),
		HasEmail:      !pii.Email.IsZero(),
		HasPhone:      !pii.Phone.IsZero(),
		IsActive:      s.IsActive(),
		CreatedAt:     s.CreatedAt().Format(time.RFC3339),
	}
}
