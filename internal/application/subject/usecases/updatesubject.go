package usecases

import (
	"context"
	"fmt"
	"time"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/infrastructure/vault"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
)

// UpdateSubjectCommand is a partial update: nil pointers leave the attribute
// untouched. Supplied PII values are re-encrypted and re-tokenized; the other
// pairs keep their stored ciphertext.
type UpdateSubjectCommand struct {
	SID string

	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string

	Specialty        *string
	InfluenceTier    *string
	TerritoryID      *uint
	InstitutionID    *uint
	YearsOfPractice  *int
	Languages        []string
	TherapeuticAreas []string
	Tags             []string
	Metadata         map[string]string

	Provenance auditapp.Provenance
}

type UpdateSubjectResult struct {
	SID       string
	Version   int
	UpdatedAt time.Time
}

type UpdateSubjectUseCase struct {
	subjectRepo subject.Repository
	fieldVault  *vault.FieldVault
	trail       *auditapp.Trail
	txManager   *db.TransactionManager
	logger      logger.Interface
}

func NewUpdateSubjectUseCase(
	subjectRepo subject.Repository,
	fieldVault *vault.FieldVault,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *UpdateSubjectUseCase {
	return &UpdateSubjectUseCase{
		subjectRepo: subjectRepo,
		fieldVault:  fieldVault,
		trail:       trail,
		txManager:   txManager,
		logger:      logger,
	}
}

func (uc *UpdateSubjectUseCase) Execute(ctx context.Context, cmd UpdateSubjectCommand) (*UpdateSubjectResult, error) {
	uc.logger.Infow("executing update subject use case", "sid", cmd.SID)

	s, err := uc.subjectRepo.FindBySID(ctx, cmd.SID)
	if err != nil {
		return nil, err
	}
	if s.IsAnonymized() {
		return nil, errors.NewConflictError("subject is anonymized and can no longer change")
	}

	before := classificationSnapshot(s)

	if err := uc.applyPII(s, cmd); err != nil {
		return nil, err
	}
	if err := uc.applyClassification(s, cmd); err != nil {
		return nil, err
	}

	after := classificationSnapshot(s)

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.subjectRepo.Update(txCtx, s); err != nil {
			return err
		}
		return uc.trail.Record(txCtx, cmd.Provenance, audit.ActionUpdate,
			subject.EntityType, s.SID(), before, after, nil)
	})
	if err != nil {
		uc.logger.Errorw("failed to update subject", "sid", cmd.SID, "error", err)
		return nil, err
	}

	uc.logger.Infow("subject updated", "sid", s.SID())

	return &UpdateSubjectResult{
		SID:       s.SID(),
		Version:   s.Version(),
		UpdatedAt: s.UpdatedAt(),
	}, nil
}

func (uc *UpdateSubjectUseCase) applyPII(s *subject.Subject, cmd UpdateSubjectCommand) error {
	seal := func(value *string) (*vo.EncryptedField, error) {
		if value == nil {
			return nil, nil
		}
		sealed, err := sealField(uc.fieldVault, *value)
		if err != nil {
			return nil, err
		}
		if sealed == nil {
			// An explicit empty string clears the pair.
			return &vo.EncryptedField{}, nil
		}
		return sealed, nil
	}

	firstName, err := seal(cmd.FirstName)
	if err != nil {
		return err
	}
	lastName, err := seal(cmd.LastName)
	if err != nil {
		return err
	}
	email, err := seal(cmd.Email)
	if err != nil {
		return err
	}
	phone, err := seal(cmd.Phone)
	if err != nil {
		return err
	}

	if firstName == nil && lastName == nil && email == nil && phone == nil {
		return nil
	}
	if err := s.UpdatePII(firstName, lastName, email, phone); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func (uc *UpdateSubjectUseCase) applyClassification(s *subject.Subject, cmd UpdateSubjectCommand) error {
	c := s.Classification()
	changed := false

	if cmd.Specialty != nil {
		c.Specialty = *cmd.Specialty
		changed = true
	}
	if cmd.InfluenceTier != nil {
		tier := vo.InfluenceTier(*cmd.InfluenceTier)
		if tier != "" && !tier.IsValid() {
			return errors.NewValidationError(fmt.Sprintf("invalid influence tier: %s", *cmd.InfluenceTier))
		}
		c.InfluenceTier = tier
		changed = true
	}
	if cmd.TerritoryID != nil {
		c.TerritoryID = cmd.TerritoryID
		changed = true
	}
	if cmd.InstitutionID != nil {
		c.InstitutionID = cmd.InstitutionID
		changed = true
	}
	if cmd.YearsOfPractice != nil {
		c.YearsOfPractice = *cmd.YearsOfPractice
		changed = true
	}
	if cmd.Languages != nil {
		c.Languages = cmd.Languages
		changed = true
	}
	if cmd.TherapeuticAreas != nil {
		c.TherapeuticAreas = cmd.TherapeuticAreas
		changed = true
	}
	if cmd.Tags != nil {
		c.Tags = cmd.Tags
		changed = true
	}
	if cmd.Metadata != nil {
		c.Metadata = cmd.Metadata
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.UpdateClassification(c); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
