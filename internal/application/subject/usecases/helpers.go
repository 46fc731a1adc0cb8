package usecases

import (
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/infrastructure/vault"
)

// sealField encrypts and tokenizes one PII value. Empty values map to nil so
// partial updates can distinguish "absent" from "clear".
func sealField(fv *vault.FieldVault, value string) (*vo.EncryptedField, error) {
	if value == "" {
		return nil, nil
	}
	ciphertext, err := fv.Encrypt(value)
	if err != nil {
		return nil, err
	}
	return &vo.EncryptedField{
		Ciphertext: ciphertext,
		IndexToken: fv.IndexToken(value),
	}, nil
}

// classificationSnapshot builds the redacted audit view of a subject: the
// non-PII attributes plus presence flags for the encrypted pairs. Decrypted
// PII never enters a snapshot.
func classificationSnapshot(s *subject.Subject) audit.Snapshot {
	c := s.Classification()
	pii := s.PII()
	return audit.Snapshot{
		"specialty":         c.Specialty,
		"influence_tier":    c.InfluenceTier.String(),
		"territory_id":      c.TerritoryID,
		"institution_id":    c.InstitutionID,
		"years_of_practice": c.YearsOfPractice,
		"is_active":         s.IsActive(),
		"is_anonymized":     s.IsAnonymized(),
		"has_first_name":    !pii.FirstName.IsZero(),
		"has_last_name":     !pii.LastName.IsZero(),
		"has_email":         !pii.Email.IsZero(),
		"has_phone":         !pii.Phone.IsZero(),
	}
}
