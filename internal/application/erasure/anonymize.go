// Package erasure implements GDPR-style erasure: irreversible anonymization
// of a subject's PII and the read-only data subject access report. History
// rows (consent, audit) are deliberately left untouched; proving that the
// past happened is the point of keeping them.
package erasure

import (
	"context"
	"time"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/infrastructure/cache"
	"pharos/internal/infrastructure/vault"
	"pharos/internal/shared/constants"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
)

type AnonymizeSubjectCommand struct {
	SID        string
	Provenance auditapp.Provenance
}

type AnonymizeSubjectResult struct {
	SID          string
	AnonymizedAt time.Time
}

// AnonymizeSubjectUseCase destroys a subject's recoverable PII. Every PII
// pair is replaced by the sealed sentinel, so former plaintexts no longer
// match any stored ciphertext or index token. The subject row, its consent
// history, and its audit trail all survive.
type AnonymizeSubjectUseCase struct {
	subjectRepo subject.Repository
	fieldVault  *vault.FieldVault
	trail       *auditapp.Trail
	txManager   *db.TransactionManager
	statusCache *cache.ConsentStatusCache
	logger      logger.Interface
}

func NewAnonymizeSubjectUseCase(
	subjectRepo subject.Repository,
	fieldVault *vault.FieldVault,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	statusCache *cache.ConsentStatusCache,
	logger logger.Interface,
) *AnonymizeSubjectUseCase {
	return &AnonymizeSubjectUseCase{
		subjectRepo: subjectRepo,
		fieldVault:  fieldVault,
		trail:       trail,
		txManager:   txManager,
		statusCache: statusCache,
		logger:      logger,
	}
}

func (uc *AnonymizeSubjectUseCase) Execute(ctx context.Context, cmd AnonymizeSubjectCommand) (*AnonymizeSubjectResult, error) {
	uc.logger.Infow("executing anonymize subject use case", "sid", cmd.SID)

	s, err := uc.subjectRepo.FindBySIDIncludingDeleted(ctx, cmd.SID)
	if err != nil {
		return nil, err
	}
	if s.IsAnonymized() {
		return nil, errors.NewConflictError("subject is already anonymized")
	}

	ciphertext, err := uc.fieldVault.Encrypt(constants.AnonymizedSentinel)
	if err != nil {
		return nil, err
	}
	sentinel := vo.EncryptedField{
		Ciphertext: ciphertext,
		IndexToken: uc.fieldVault.IndexToken(constants.AnonymizedSentinel),
	}

	before := subjectSnapshot(s)
	now := time.Now().UTC()
	if err := s.Anonymize(sentinel, now); err != nil {
		return nil, errors.NewConflictError(err.Error())
	}

	// The PII wipe and its delete entry commit or roll back together; a
	// half-anonymized subject must not be observable.
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.subjectRepo.Update(txCtx, s); err != nil {
			return err
		}

		meta := audit.Metadata{audit.MetaKeyType: audit.MetaTypeGDPRAnonymization}
		return uc.trail.Record(txCtx, cmd.Provenance, audit.ActionDelete,
			subject.EntityType, s.SID(), before, subjectSnapshot(s), meta)
	})
	if err != nil {
		uc.logger.Errorw("failed to anonymize subject", "sid", cmd.SID, "error", err)
		return nil, err
	}

	if cacheErr := uc.statusCache.InvalidateSubject(ctx, s.ID()); cacheErr != nil {
		uc.logger.Warnw("failed to invalidate consent status cache",
			"subject_id", s.ID(), "error", cacheErr)
	}

	uc.logger.Infow("subject anonymized", "sid", s.SID())

	return &AnonymizeSubjectResult{
		SID:          s.SID(),
		AnonymizedAt: now,
	}, nil
}

// subjectSnapshot mirrors the redacted audit view used by the subject use
// cases: classification fields and presence flags only.
func subjectSnapshot(s *subject.Subject) audit.Snapshot {
	c := s.Classification()
	pii := s.PII()
	return audit.Snapshot{
		"specialty":      c.Specialty,
		"influence_tier": c.InfluenceTier.String(),
		"territory_id":   c.TerritoryID,
		"is_active":      s.IsActive(),
		"is_anonymized":  s.IsAnonymized(),
		"has_first_name": !pii.FirstName.IsZero(),
		"has_last_name":  !pii.LastName.IsZero(),
		"has_email":      !pii.Email.IsZero(),
		"has_phone":      !pii.Phone.IsZero(),
	}
}
