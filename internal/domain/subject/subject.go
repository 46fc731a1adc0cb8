// Package subject defines the healthcare-professional record protected by
// the trust layer. PII attributes live on the aggregate only as
// (ciphertext, index token) pairs; plaintext never touches this package.
package subject

import (
	"fmt"
	"time"

	vo "pharos/internal/domain/subject/valueobjects"
)

// EntityType is the audit trail entity type for subjects.
const EntityType = "subject"

// Classification holds the non-PII attributes of a subject.
type Classification struct {
	Specialty        string
	InfluenceTier    vo.InfluenceTier
	TerritoryID      *uint
	InstitutionID    *uint
	YearsOfPractice  int
	Languages        []string
	TherapeuticAreas []string
	Tags             []string
	Metadata         map[string]string
}

// PII holds the encrypted attribute pairs of a subject.
type PII struct {
	FirstName vo.EncryptedField
	LastName  vo.EncryptedField
	Email     vo.EncryptedField
	Phone     vo.EncryptedField
}

// IsCleared reports whether no PII pair remains.
func (p PII) IsCleared() bool {
	return p.FirstName.IsZero() && p.LastName.IsZero() && p.Email.IsZero() && p.Phone.IsZero()
}

// Subject is the aggregate root.
type Subject struct {
	id             uint
	sid            string
	externalID     *string
	pii            PII
	classification Classification
	active         bool
	anonymized     bool
	version        int
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewSubject creates an active subject. The SID is the public identifier.
func NewSubject(sid string, externalID *string, pii PII, classification Classification) (*Subject, error) {
	if sid == "" {
		return nil, fmt.Errorf("subject SID is required")
	}
	if classification.InfluenceTier != "" && !classification.InfluenceTier.IsValid() {
		return nil, fmt.Errorf("invalid influence tier: %s", classification.InfluenceTier)
	}
	if externalID != nil && *externalID == "" {
		externalID = nil
	}

	now := time.Now().UTC()
	return &Subject{
		sid:            sid,
		externalID:     externalID,
		pii:            pii,
		classification: normalizeClassification(classification),
		active:         true,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructSubject rebuilds a subject from persistence.
func ReconstructSubject(
	id uint,
	sid string,
	externalID *string,
	pii PII,
	classification Classification,
	active bool,
	anonymized bool,
	version int,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) (*Subject, error) {
	if id == 0 {
		return nil, fmt.Errorf("subject ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("subject SID is required")
	}
	return &Subject{
		id:             id,
		sid:            sid,
		externalID:     externalID,
		pii:            pii,
		classification: normalizeClassification(classification),
		active:         active,
		anonymized:     anonymized,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		deletedAt:      deletedAt,
	}, nil
}

func normalizeClassification(c Classification) Classification {
	if c.Languages == nil {
		c.Languages = []string{}
	}
	if c.TherapeuticAreas == nil {
		c.TherapeuticAreas = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	return c
}

func (s *Subject) ID() uint                       { return s.id }
func (s *Subject) SID() string                    { return s.sid }
func (s *Subject) ExternalID() *string            { return s.externalID }
func (s *Subject) PII() PII                       { return s.pii }
func (s *Subject) Classification() Classification { return s.classification }
func (s *Subject) IsActive() bool                 { return s.active }
func (s *Subject) IsAnonymized() bool             { return s.anonymized }
func (s *Subject) Version() int                   { return s.version }
func (s *Subject) CreatedAt() time.Time           { return s.createdAt }
func (s *Subject) UpdatedAt() time.Time           { return s.updatedAt }
func (s *Subject) DeletedAt() *time.Time          { return s.deletedAt }

// SetID assigns the persistence identifier after insertion.
func (s *Subject) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subject ID already set")
	}
	if id == 0 {
		return fmt.Errorf("subject ID cannot be zero")
	}
	s.id = id
	return nil
}

// AdvanceVersion records the version bump the repository persisted with its
// optimistic-lock update.
func (s *Subject) AdvanceVersion() {
	s.version++
}

// UpdatePII replaces only the supplied PII pairs; nil leaves a pair untouched.
func (s *Subject) UpdatePII(firstName, lastName, email, phone *vo.EncryptedField) error {
	if s.anonymized {
		return fmt.Errorf("subject is anonymized; PII can no longer change")
	}
	if firstName != nil {
		s.pii.FirstName = *firstName
	}
	if lastName != nil {
		s.pii.LastName = *lastName
	}
	if email != nil {
		s.pii.Email = *email
	}
	if phone != nil {
		s.pii.Phone = *phone
	}
	s.touch()
	return nil
}

// UpdateClassification replaces the non-PII attributes.
func (s *Subject) UpdateClassification(c Classification) error {
	if s.anonymized {
		return fmt.Errorf("subject is anonymized; attributes can no longer change")
	}
	if c.InfluenceTier != "" && !c.InfluenceTier.IsValid() {
		return fmt.Errorf("invalid influence tier: %s", c.InfluenceTier)
	}
	s.classification = normalizeClassification(c)
	s.touch()
	return nil
}

// SetExternalID updates the external identifier.
func (s *Subject) SetExternalID(externalID *string) error {
	if s.anonymized {
		return fmt.Errorf("subject is anonymized; attributes can no longer change")
	}
	if externalID != nil && *externalID == "" {
		externalID = nil
	}
	s.externalID = externalID
	s.touch()
	return nil
}

// Deactivate marks the subject inactive without destroying anything.
func (s *Subject) Deactivate() {
	s.active = false
	s.touch()
}

// Anonymize irreversibly replaces every PII pair with the sentinel field,
// clears the external identifier, deactivates the subject, and stamps the
// deletion time if unset. Terminal: no further mutation is allowed.
func (s *Subject) Anonymize(sentinel vo.EncryptedField, now time.Time) error {
	if s.anonymized {
		return fmt.Errorf("subject is already anonymized")
	}

	s.pii = PII{
		FirstName: sentinel,
		LastName:  sentinel,
		Email:     sentinel,
		Phone:     sentinel,
	}
	s.externalID = nil
	s.active = false
	s.anonymized = true
	if s.deletedAt == nil {
		s.deletedAt = &now
	}
	s.touch()
	return nil
}

// touch updates the modification timestamp. The version column is advanced
// by the repository inside the optimistic-lock update, not here.
func (s *Subject) touch() {
	s.updatedAt = time.Now().UTC()
}
