// Package consent provides the application service around the consent
// ledger: recording assertions, resolving current status, and enforcing the
// gate in front of channel engagements.
package consent

import (
	"context"
	"fmt"
	"time"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/consent"
	"pharos/internal/domain/subject"
	"pharos/internal/infrastructure/cache"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

// RecordConsentCommand captures one consent assertion for a subject.
type RecordConsentCommand struct {
	SubjectSID  string
	Channel     string
	Status      string
	Source      string
	EvidenceRef string
	Notes       string
	ExpiresAt   *time.Time
	Provenance  auditapp.Provenance
}

// ChannelStatus pairs a channel with its resolved status.
type ChannelStatus struct {
	Channel consent.Channel `json:"channel"`
	Status  consent.Status  `json:"status"`
}

// Ledger is the application surface of the consent ledger.
type Ledger struct {
	records     consent.Repository
	subjects    subject.Repository
	trail       *auditapp.Trail
	txManager   *db.TransactionManager
	statusCache *cache.ConsentStatusCache
	logger      logger.Interface
}

func NewLedger(
	records consent.Repository,
	subjects subject.Repository,
	trail *auditapp.Trail,
	txManager *db.TransactionManager,
	statusCache *cache.ConsentStatusCache,
	logger logger.Interface,
) *Ledger {
	return &Ledger{
		records:     records,
		subjects:    subjects,
		trail:       trail,
		txManager:   txManager,
		statusCache: statusCache,
		logger:      logger,
	}
}

// RecordConsent appends a consent record and its consent_change audit entry
// in one transaction, then invalidates the cached status for the pair.
func (l *Ledger) RecordConsent(ctx context.Context, cmd RecordConsentCommand) (*consent.Record, error) {
	channel := consent.Channel(cmd.Channel)
	if !channel.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid consent channel: %s", cmd.Channel))
	}
	status := consent.Status(cmd.Status)
	if !status.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid consent status: %s", cmd.Status))
	}
	if cmd.Source == "" {
		return nil, errors.NewValidationError("consent source is required")
	}

	subj, err := l.subjects.FindBySID(ctx, cmd.SubjectSID)
	if err != nil {
		return nil, err
	}
	if subj.IsAnonymized() {
		return nil, errors.NewConflictError("subject is anonymized; consent can no longer change")
	}

	record, err := consent.NewRecord(
		subj.ID(),
		channel,
		status,
		cmd.Source,
		cmd.EvidenceRef,
		cmd.Provenance.ActorID,
		utils.SanitizeText(cmd.Notes),
		cmd.ExpiresAt,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = l.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := l.records.Append(txCtx, record); err != nil {
			return err
		}

		meta := audit.Metadata{
			audit.MetaKeyChannel: channel.String(),
			audit.MetaKeyStatus:  status.String(),
		}
		return l.trail.Record(txCtx, cmd.Provenance, audit.ActionConsentChange,
			subject.EntityType, subj.SID(), nil, nil, meta)
	})
	if err != nil {
		l.logger.Errorw("failed to record consent",
			"subject_sid", cmd.SubjectSID, "channel", cmd.Channel, "error", err)
		return nil, err
	}

	if cacheErr := l.statusCache.Invalidate(ctx, subj.ID(), channel); cacheErr != nil {
		l.logger.Warnw("failed to invalidate consent status cache",
			"subject_id", subj.ID(), "channel", channel.String(), "error", cacheErr)
	}

	l.logger.Infow("consent recorded",
		"subject_sid", subj.SID(), "channel", channel.String(), "status", status.String())

	return record, nil
}

// CurrentStatus resolves the current status for one (subject, channel) pair,
// reading through the cache when one is configured.
func (l *Ledger) CurrentStatus(ctx context.Context, subjectID uint, channel consent.Channel) (consent.Status, error) {
	if !channel.IsValid() {
		return consent.StatusNone, errors.NewValidationError(fmt.Sprintf("invalid consent channel: %s", channel))
	}

	if status, ok := l.statusCache.Get(ctx, subjectID, channel); ok {
		return status, nil
	}

	records, err := l.records.ListForChannel(ctx, subjectID, channel)
	if err != nil {
		return consent.StatusNone, err
	}

	now := time.Now().UTC()
	status := consent.Resolve(records, now)

	var expiresAt *time.Time
	if len(records) > 0 {
		expiresAt = records[0].ExpiresAt()
	}
	if cacheErr := l.statusCache.Set(ctx, subjectID, channel, status, expiresAt); cacheErr != nil {
		l.logger.Warnw("failed to cache consent status",
			"subject_id", subjectID, "channel", channel.String(), "error", cacheErr)
	}

	return status, nil
}

// StatusOverview resolves every channel's status for a subject.
func (l *Ledger) StatusOverview(ctx context.Context, sid string) ([]ChannelStatus, error) {
	subj, err := l.subjects.FindBySIDIncludingDeleted(ctx, sid)
	if err != nil {
		return nil, err
	}

	overview := make([]ChannelStatus, 0, len(consent.Channels()))
	for _, channel := range consent.Channels() {
		status, err := l.CurrentStatus(ctx, subj.ID(), channel)
		if err != nil {
			return nil, err
		}
		overview = append(overview, ChannelStatus{Channel: channel, Status: status})
	}
	return overview, nil
}

// Enforce blocks unless the pair's current status is granted. Every other
// status, including none, denies with a consent_required error.
func (l *Ledger) Enforce(ctx context.Context, subjectID uint, channel consent.Channel) error {
	status, err := l.CurrentStatus(ctx, subjectID, channel)
	if err != nil {
		return err
	}
	if status != consent.StatusGranted {
		return errors.NewConsentRequiredError(
			fmt.Sprintf("channel %q requires granted consent, current status is %q", channel, status))
	}
	return nil
}

// History returns every consent record for a subject, newest first. The
// history survives anonymization untouched.
func (l *Ledger) History(ctx context.Context, sid string) ([]*consent.Record, error) {
	subj, err := l.subjects.FindBySIDIncludingDeleted(ctx, sid)
	if err != nil {
		return nil, err
	}
	return l.records.ListForSubject(ctx, subj.ID())
}
