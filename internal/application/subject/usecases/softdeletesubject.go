package usecases

import (
	"context"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	"pharos/internal/shared/db"
	"pharos/internal/shared/logger"
)

type SoftDeleteSubjectCommand struct {
	SID        string
	Provenance auditapp.Provenance
}

// SoftDeleteSubjectUseCase stamps the deletion time. Reversible: no data is
// destroyed, the row only leaves default query scopes.
type SoftDeleteSubjectUseCase struct {
	subjectRepo subject.Repository
	trail       *auditapp.Trail
	txManager   *db.TransactionManager
	logger      logger.Interface
}

func NewSoftDeleteSubjectUseCase(
	subjectRepo subject.Repository,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *SoftDeleteSubjectUseCase {
	return &SoftDeleteSubjectUseCase{
		subjectRepo: subjectRepo,
		trail:       trail,
		txManager:   txManager,
		logger:      logger,
	}
}

func (uc *SoftDeleteSubjectUseCase) Execute(ctx context.Context, cmd SoftDeleteSubjectCommand) error {
	uc.logger.Infow("executing soft delete subject use case", "sid", cmd.SID)

	s, err := uc.subjectRepo.FindBySID(ctx, cmd.SID)
	if err != nil {
		return err
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.subjectRepo.SoftDelete(txCtx, s.ID()); err != nil {
			return err
		}
		return uc.trail.Record(txCtx, cmd.Provenance, audit.ActionDelete,
			subject.EntityType, s.SID(), classificationSnapshot(s), nil, nil)
	})
	if err != nil {
		uc.logger.Errorw("failed to soft delete subject", "sid", cmd.SID, "error", err)
		return err
	}

	uc.logger.Infow("subject soft deleted", "sid", cmd.SID)
	return nil
}
