package erasure

import (
	"context"
	"time"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/consent"
	"pharos/internal/domain/interaction"
	"pharos/internal/domain/subject"
	"pharos/internal/shared/id"
	"pharos/internal/shared/logger"
)

// SubjectReport is the data subject access report: everything currently held
// about one subject, assembled read-only. PII appears only as presence flags.
type SubjectReport struct {
	ReportID    string    `json:"report_id"`
	SubjectSID  string    `json:"subject_sid"`
	GeneratedAt time.Time `json:"generated_at"`

	Profile        ProfileSection     `json:"profile"`
	ConsentHistory []ConsentEventView `json:"consent_history"`
	Interactions   []InteractionView  `json:"interactions"`
	AIDecisions    []AIDecisionView   `json:"ai_decisions"`
	AuditLog       []AuditEntryView   `json:"audit_log"`
}

type ProfileSection struct {
	Specialty        string   `json:"specialty"`
	InfluenceTier    string   `json:"influence_tier"`
	TerritoryID      *uint    `json:"territory_id,omitempty"`
	InstitutionID    *uint    `json:"institution_id,omitempty"`
	YearsOfPractice  int      `json:"years_of_practice"`
	Languages        []string `json:"languages"`
	TherapeuticAreas []string `json:"therapeutic_areas"`
	IsActive         bool     `json:"is_active"`
	IsAnonymized     bool     `json:"is_anonymized"`
	HasFirstName     bool     `json:"has_first_name"`
	HasLastName      bool     `json:"has_last_name"`
	HasEmail         bool     `json:"has_email"`
	HasPhone         bool     `json:"has_phone"`
}

type ConsentEventView struct {
	Channel    string     `json:"channel"`
	Status     string     `json:"status"`
	Source     string     `json:"source"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// InteractionView carries identifiers and status only; free-text notes stay
// out of the report.
type InteractionView struct {
	ID         uint      `json:"id"`
	Channel    string    `json:"channel"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AIDecisionView struct {
	Model     string    `json:"model"`
	Factors   string    `json:"factors"`
	DecidedAt time.Time `json:"decided_at"`
}

type AuditEntryView struct {
	Action    string    `json:"action"`
	ActorID   *uint     `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerateReportQuery struct {
	SID        string
	Provenance auditapp.Provenance
}

// GenerateReportUseCase assembles the access report and appends the export
// entry that documents the disclosure. The report works identically before
// and after anonymization: history sections are read from append-only stores
// that erasure never touches.
type GenerateReportUseCase struct {
	subjectRepo     subject.Repository
	consentRepo     consent.Repository
	interactionRepo interaction.Repository
	trail           *auditapp.Trail
	logger          logger.Interface
}

func NewGenerateReportUseCase(
	subjectRepo subject.Repository,
	consentRepo consent.Repository,
	interactionRepo interaction.Repository,
	trail *auditapp.Trail,
	logger logger.Interface,
) *GenerateReportUseCase {
	return &GenerateReportUseCase{
		subjectRepo:     subjectRepo,
		consentRepo:     consentRepo,
		interactionRepo: interactionRepo,
		trail:           trail,
		logger:          logger,
	}
}

func (uc *GenerateReportUseCase) Execute(ctx context.Context, query GenerateReportQuery) (*SubjectReport, error) {
	uc.logger.Infow("generating data subject access report", "sid", query.SID)

	s, err := uc.subjectRepo.FindBySIDIncludingDeleted(ctx, query.SID)
	if err != nil {
		return nil, err
	}

	consentRecords, err := uc.consentRepo.ListForSubject(ctx, s.ID())
	if err != nil {
		return nil, err
	}

	interactions, err := uc.interactionRepo.ListForSubject(ctx, s.ID())
	if err != nil {
		return nil, err
	}

	trailEntries, err := uc.trail.History(ctx, subject.EntityType, s.SID())
	if err != nil {
		return nil, err
	}

	reportID, err := id.NewReportID()
	if err != nil {
		return nil, err
	}

	report := &SubjectReport{
		ReportID:       reportID,
		SubjectSID:     s.SID(),
		GeneratedAt:    time.Now().UTC(),
		Profile:        buildProfile(s),
		ConsentHistory: buildConsentHistory(consentRecords),
		Interactions:   buildInteractions(interactions),
		AIDecisions:    buildAIDecisions(trailEntries),
		AuditLog:       buildAuditLog(trailEntries),
	}

	// The disclosure itself is an audited event; a report that cannot be
	// accounted for is not released.
	meta := audit.Metadata{audit.MetaKeyReportID: reportID}
	if err := uc.trail.Record(ctx, query.Provenance, audit.ActionExport,
		subject.EntityType, s.SID(), nil, nil, meta); err != nil {
		uc.logger.Errorw("failed to record report export", "sid", s.SID(), "error", err)
		return nil, err
	}

	uc.logger.Infow("data subject access report generated",
		"sid", s.SID(), "report_id", reportID)

	return report, nil
}

func buildProfile(s *subject.Subject) ProfileSection {
	c := s.Classification()
	pii := s.PII()
	return ProfileSection{
		Specialty:        c.Specialty,
		InfluenceTier:    c.InfluenceTier.String(),
		TerritoryID:      c.TerritoryID,
		InstitutionID:    c.InstitutionID,
		YearsOfPractice:  c.YearsOfPractice,
		Languages:        c.Languages,
		TherapeuticAreas: c.TherapeuticAreas,
		IsActive:         s.IsActive(),
		IsAnonymized:     s.IsAnonymized(),
		HasFirstName:     !pii.FirstName.IsZero(),
		HasLastName:      !pii.LastName.IsZero(),
		HasEmail:         !pii.Email.IsZero(),
		HasPhone:         !pii.Phone.IsZero(),
	}
}

func buildConsentHistory(records []*consent.Record) []ConsentEventView {
	views := make([]ConsentEventView, len(records))
	for i, r := range records {
		views[i] = ConsentEventView{
			Channel:    r.Channel().String(),
			Status:     r.Status().String(),
			Source:     r.Source(),
			ExpiresAt:  r.ExpiresAt(),
			RecordedAt: r.CreatedAt(),
		}
	}
	return views
}

func buildInteractions(interactions []*interaction.Interaction) []InteractionView {
	views := make([]InteractionView, len(interactions))
	for i, in := range interactions {
		views[i] = InteractionView{
			ID:         in.ID(),
			Channel:    in.Channel().String(),
			Status:     in.Status().String(),
			OccurredAt: in.OccurredAt(),
		}
	}
	return views
}

func buildAIDecisions(entries []*audit.Entry) []AIDecisionView {
	views := make([]AIDecisionView, 0)
	for _, e := range entries {
		if e.Action() != audit.ActionAIDecision {
			continue
		}
		views = append(views, AIDecisionView{
			Model:     e.Metadata()[audit.MetaKeyModel],
			Factors:   e.Metadata()[audit.MetaKeyFactors],
			DecidedAt: e.CreatedAt(),
		})
	}
	return views
}

func buildAuditLog(entries []*audit.Entry) []AuditEntryView {
	views := make([]AuditEntryView, len(entries))
	for i, e := range entries {
		views[i] = AuditEntryView{
			Action:    e.Action().String(),
			ActorID:   e.ActorID(),
			CreatedAt: e.CreatedAt(),
		}
	}
	return views
}
