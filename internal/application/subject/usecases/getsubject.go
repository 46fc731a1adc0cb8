package usecases

import (
	"context"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/application/subject/dto"
	"pharos/internal/domain/subject"
	"pharos/internal/infrastructure/vault"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
)

type GetSubjectQuery struct {
	SID        string
	Provenance auditapp.Provenance
}

// GetSubjectUseCase loads one subject and decrypts its PII. Every execution
// leaves a best-effort view entry in the audit trail; the entry never blocks
// or fails the read.
type GetSubjectUseCase struct {
	subjectRepo subject.Repository
	fieldVault  *vault.FieldVault
	trail       *auditapp.Trail
	logger      logger.Interface
}

func NewGetSubjectUseCase(
	subjectRepo subject.Repository,
	fieldVault *vault.FieldVault,
	trail *auditapp.Trail,
	logger logger.Interface,
) *GetSubjectUseCase {
	return &GetSubjectUseCase{
		subjectRepo: subjectRepo,
		fieldVault:  fieldVault,
		trail:       trail,
		logger:      logger,
	}
}

func (uc *GetSubjectUseCase) Execute(ctx context.Context, query GetSubjectQuery) (*dto.SubjectDTO, error) {
	s, err := uc.findSubject(ctx, query.SID)
	if err != nil {
		return nil, err
	}

	pii, err := uc.decryptPII(s)
	if err != nil {
		uc.logger.Errorw("failed to decrypt subject PII", "sid", s.SID(), "error", err)
		return nil, err
	}

	result := dto.ToSubjectDTO(s)
	result.PII = pii

	uc.trail.RecordView(ctx, query.Provenance, subject.EntityType, s.SID())

	return result, nil
}

// findSubject resolves the SID. Soft-deleted subjects are hidden, but an
// anonymized record remains retrievable: erasure destroys the PII, not the
// record.
func (uc *GetSubjectUseCase) findSubject(ctx context.Context, sid string) (*subject.Subject, error) {
	s, err := uc.subjectRepo.FindBySID(ctx, sid)
	if err == nil {
		return s, nil
	}
	if !errors.IsNotFoundError(err) {
		return nil, err
	}

	s, unscopedErr := uc.subjectRepo.FindBySIDIncludingDeleted(ctx, sid)
	if unscopedErr != nil || !s.IsAnonymized() {
		return nil, err
	}
	return s, nil
}

func (uc *GetSubjectUseCase) decryptPII(s *subject.Subject) (*dto.PIIDTO, error) {
	pii := s.PII()
	result := &dto.PIIDTO{}

	for _, f := range []struct {
		ciphertext string
		target     *string
	}{
		{pii.FirstName.Ciphertext, &result.FirstName},
		{pii.LastName.Ciphertext, &result.LastName},
		{pii.Email.Ciphertext, &result.Email},
		{pii.Phone.Ciphertext, &result.Phone},
	} {
		if f.ciphertext == "" {
			continue
		}
		plaintext, err := uc.fieldVault.Decrypt(f.ciphertext)
		if err != nil {
			return nil, err
		}
		*f.target = plaintext
	}

	return result, nil
}
