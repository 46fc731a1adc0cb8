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
	"pharos/internal/shared/id"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type CreateSubjectCommand struct {
	ExternalID string

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Specialty        string
	InfluenceTier    string
	TerritoryID      *uint
	InstitutionID    *uint
	YearsOfPractice  int
	Languages        []string
	TherapeuticAreas []string
	Tags             []string
	Metadata         map[string]string

	Provenance auditapp.Provenance
}

type CreateSubjectResult struct {
	SID       string
	CreatedAt time.Time
}

type CreateSubjectUseCase struct {
	subjectRepo subject.Repository
	fieldVault  *vault.FieldVault
	trail       *auditapp.Trail
	txManager   *db.TransactionManager
	logger      logger.Interface
}

func NewCreateSubjectUseCase(
	subjectRepo subject.Repository,
	fieldVault *vault.FieldVault,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *CreateSubjectUseCase {
	return &CreateSubjectUseCase{
		subjectRepo: subjectRepo,
		fieldVault:  fieldVault,
		trail:       trail,
		txManager:   txManager,
		logger:      logger,
	}
}

func (uc *CreateSubjectUseCase) Execute(ctx context.Context, cmd CreateSubjectCommand) (*CreateSubjectResult, error) {
	uc.logger.Infow("executing create subject use case", "external_id", cmd.ExternalID)

	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	if cmd.ExternalID != "" {
		taken, err := uc.subjectRepo.ExistsByExternalID(ctx, cmd.ExternalID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.NewConflictError("external ID is already in use")
		}
	}

	uc.logger.Debugw("sealing subject PII",
		"email", utils.MaskEmail(cmd.Email), "phone", utils.MaskPhone(cmd.Phone))

	pii, err := uc.sealPII(cmd)
	if err != nil {
		uc.logger.Errorw("failed to seal subject PII", "error", err)
		return nil, err
	}

	sid, err := id.NewSubjectID()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate subject ID")
	}

	var externalID *string
	if cmd.ExternalID != "" {
		externalID = &cmd.ExternalID
	}

	newSubject, err := subject.NewSubject(sid, externalID, pii, subject.Classification{
		Specialty:        cmd.Specialty,
		InfluenceTier:    vo.InfluenceTier(cmd.InfluenceTier),
		TerritoryID:      cmd.TerritoryID,
		InstitutionID:    cmd.InstitutionID,
		YearsOfPractice:  cmd.YearsOfPractice,
		Languages:        cmd.Languages,
		TherapeuticAreas: cmd.TherapeuticAreas,
		Tags:             cmd.Tags,
		Metadata:         cmd.Metadata,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.subjectRepo.Save(txCtx, newSubject); err != nil {
			return err
		}
		return uc.trail.Record(txCtx, cmd.Provenance, audit.ActionCreate,
			subject.EntityType, newSubject.SID(), nil, classificationSnapshot(newSubject), nil)
	})
	if err != nil {
		uc.logger.Errorw("failed to create subject", "error", err)
		return nil, err
	}

	uc.logger.Infow("subject created", "sid", newSubject.SID())

	return &CreateSubjectResult{
		SID:       newSubject.SID(),
		CreatedAt: newSubject.CreatedAt(),
	}, nil
}

func (uc *CreateSubjectUseCase) sealPII(cmd CreateSubjectCommand) (subject.PII, error) {
	var pii subject.PII

	for _, f := range []struct {
		value  string
		target *vo.EncryptedField
	}{
		{cmd.FirstName, &pii.FirstName},
		{cmd.LastName, &pii.LastName},
		{cmd.Email, &pii.Email},
		{cmd.Phone, &pii.Phone},
	} {
		sealed, err := sealField(uc.fieldVault, f.value)
		if err != nil {
			return subject.PII{}, err
		}
		if sealed != nil {
			*f.target = *sealed
		}
	}

	return pii, nil
}

func (uc *CreateSubjectUseCase) validateCommand(cmd CreateSubjectCommand) error {
	if cmd.FirstName == "" || cmd.LastName == "" {
		return errors.NewValidationError("first name and last name are required")
	}
	if cmd.InfluenceTier != "" && !vo.InfluenceTier(cmd.InfluenceTier).IsValid() {
		return errors.NewValidationError(fmt.Sprintf("invalid influence tier: %s", cmd.InfluenceTier))
	}
	return nil
}
