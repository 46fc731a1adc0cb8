// Package interaction provides the engagement-recording use case. This is
// the mutation the consent gate protects: no interaction is persisted for a
// channel whose current consent status is anything but granted.
package interaction

import (
	"context"
	"fmt"
	"strconv"
	"time"

	auditapp "pharos/internal/application/audit"
	consentapp "pharos/internal/application/consent"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/consent"
	"pharos/internal/domain/interaction"
	"pharos/internal/domain/subject"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type RecordInteractionCommand struct {
	SubjectSID string
	Channel    string
	Status     string
	OccurredAt time.Time
	Notes      string
	Provenance auditapp.Provenance
}

type RecordInteractionResult struct {
	InteractionID uint
	CreatedAt     time.Time
}

type RecordInteractionUseCase struct {
	interactionRepo interaction.Repository
	subjectRepo     subject.Repository
	ledger          *consentapp.Ledger
	trail           *auditapp.Trail
	txManager       *db.TransactionManager
	logger          logger.Interface
}

func NewRecordInteractionUseCase(
	interactionRepo interaction.Repository,
	subjectRepo subject.Repository,
	ledger *consentapp.Ledger,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *RecordInteractionUseCase {
	return &RecordInteractionUseCase{
		interactionRepo: interactionRepo,
		subjectRepo:     subjectRepo,
		ledger:          ledger,
		trail:           trail,
		txManager:       txManager,
		logger:          logger,
	}
}

func (uc *RecordInteractionUseCase) Execute(ctx context.Context, cmd RecordInteractionCommand) (*RecordInteractionResult, error) {
	uc.logger.Infow("executing record interaction use case",
		"subject_sid", cmd.SubjectSID, "channel", cmd.Channel)

	channel := consent.Channel(cmd.Channel)
	if !channel.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid channel: %s", cmd.Channel))
	}

	s, err := uc.subjectRepo.FindBySID(ctx, cmd.SubjectSID)
	if err != nil {
		return nil, err
	}

	// The gate: denied consent means nothing below this line runs.
	if err := uc.ledger.Enforce(ctx, s.ID(), channel); err != nil {
		uc.logger.Warnw("interaction blocked by consent gate",
			"subject_sid", cmd.SubjectSID, "channel", cmd.Channel)
		return nil, err
	}

	occurredAt := cmd.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	newInteraction, err := interaction.NewInteraction(
		s.ID(),
		channel,
		interaction.Status(cmd.Status),
		occurredAt,
		utils.SanitizeText(cmd.Notes),
		cmd.Provenance.ActorID,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.interactionRepo.Save(txCtx, newInteraction); err != nil {
			return err
		}

		meta := audit.Metadata{audit.MetaKeyChannel: channel.String()}
		return uc.trail.Record(txCtx, cmd.Provenance, audit.ActionCreate,
			interaction.EntityType, strconv.FormatUint(uint64(newInteraction.ID()), 10),
			nil, audit.Snapshot{
				"subject_sid": s.SID(),
				"channel":     channel.String(),
				"status":      newInteraction.Status().String(),
			}, meta)
	})
	if err != nil {
		uc.logger.Errorw("failed to record interaction",
			"subject_sid", cmd.SubjectSID, "error", err)
		return nil, err
	}

	uc.logger.Infow("interaction recorded",
		"interaction_id", newInteraction.ID(), "subject_sid", s.SID())

	return &RecordInteractionResult{
		InteractionID: newInteraction.ID(),
		CreatedAt:     newInteraction.CreatedAt(),
	}, nil
}
