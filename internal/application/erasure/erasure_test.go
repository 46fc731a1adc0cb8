package erasure

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditapp "pharos/internal/application/audit"
	consentapp "pharos/internal/application/consent"
	"pharos/internal/application/subject/usecases"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/infrastructure/repository"
	"pharos/internal/infrastructure/vault"
	"pharos/internal/shared/config"
	"pharos/internal/shared/constants"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/logger"
)

const testMasterKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type erasureFixture struct {
	database   *gorm.DB
	fieldVault *vault.FieldVault
	trail      *auditapp.Trail

	createSubject *usecases.CreateSubjectUseCase
	getSubject    *usecases.GetSubjectUseCase
	search        *usecases.SearchSubjectsUseCase
	ledger        *consentapp.Ledger
	anonymize     *AnonymizeSubjectUseCase
	report        *GenerateReportUseCase
}

func setupErasure(t *testing.T) *erasureFixture {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.SubjectModel{},
		&models.ConsentRecordModel{},
		&models.InteractionModel{},
		&models.AuditEntryModel{},
	))

	fieldVault, err := vault.New(&config.VaultConfig{MasterKey: testMasterKey})
	require.NoError(t, err)

	log := logger.NewLogger()
	subjectRepo := repository.NewSubjectRepository(database)
	consentRepo := repository.NewConsentRecordRepository(database)
	interactionRepo := repository.NewInteractionRepository(database)
	trail := auditapp.NewTrail(repository.NewAuditEntryRepository(database), log)
	txManager := db.NewTransactionManager(database)

	ledger := consentapp.NewLedger(consentRepo, subjectRepo, trail, txManager, nil, log)

	return &erasureFixture{
		database:      database,
		fieldVault:    fieldVault,
		trail:         trail,
		createSubject: usecases.NewCreateSubjectUseCase(subjectRepo, fieldVault, trail, txManager, log),
		getSubject:    usecases.NewGetSubjectUseCase(subjectRepo, fieldVault, trail, log),
		search:        usecases.NewSearchSubjectsUseCase(subjectRepo, fieldVault, log),
		ledger:        ledger,
		anonymize:     NewAnonymizeSubjectUseCase(subjectRepo, fieldVault, trail, txManager, nil, log),
		report:        NewGenerateReportUseCase(subjectRepo, consentRepo, interactionRepo, trail, log),
	}
}

func (f *erasureFixture) newSubject(t *testing.T, email string) string {
	result, err := f.createSubject.Execute(context.Background(), usecases.CreateSubjectCommand{
		FirstName: "Carla",
		LastName:  "Iglesias",
		Email:     email,
		Phone:     "+34911222333",
		Specialty: "cardiology",
	})
	require.NoError(t, err)
	return result.SID
}

func (f *erasureFixture) grantConsent(t *testing.T, sid, channel string) {
	_, err := f.ledger.RecordConsent(context.Background(), consentapp.RecordConsentCommand{
		SubjectSID: sid,
		Channel:    channel,
		Status:     "granted",
		Source:     "web_form",
	})
	require.NoError(t, err)
}

func TestAnonymizeSubjectUseCase(t *testing.T) {
	f := setupErasure(t)
	ctx := context.Background()

	t.Run("anonymized subject drops out of search but stays retrievable", func(t *testing.T) {
		email := "erase.me@example.com"
		sid := f.newSubject(t, email)

		hits, err := f.search.Execute(ctx, usecases.SearchSubjectsQuery{Email: email})
		require.NoError(t, err)
		require.Equal(t, int64(1), hits.Total)

		_, err = f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		hits, err = f.search.Execute(ctx, usecases.SearchSubjectsQuery{Email: email})
		require.NoError(t, err)
		assert.Equal(t, int64(0), hits.Total)

		result, err := f.getSubject.Execute(ctx, usecases.GetSubjectQuery{SID: sid})
		require.NoError(t, err)
		assert.Equal(t, sid, result.SID)
	})

	t.Run("former PII decrypts only to the sentinel", func(t *testing.T) {
		sid := f.newSubject(t, "gone@example.com")

		_, err := f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		result, err := f.getSubject.Execute(ctx, usecases.GetSubjectQuery{SID: sid})
		require.NoError(t, err)
		require.NotNil(t, result.PII)
		assert.Equal(t, constants.AnonymizedSentinel, result.PII.FirstName)
		assert.Equal(t, constants.AnonymizedSentinel, result.PII.LastName)
		assert.Equal(t, constants.AnonymizedSentinel, result.PII.Email)
		assert.Equal(t, constants.AnonymizedSentinel, result.PII.Phone)
		assert.False(t, result.IsActive)
		assert.True(t, result.IsAnonymized)
	})

	t.Run("stored tokens no longer match former plaintext", func(t *testing.T) {
		email := "token.check@example.com"
		sid := f.newSubject(t, email)

		_, err := f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		var model models.SubjectModel
		require.NoError(t, f.database.Unscoped().Where("sid = ?", sid).First(&model).Error)
		require.NotNil(t, model.EmailToken)
		assert.NotEqual(t, f.fieldVault.IndexToken(email), *model.EmailToken)
		assert.NotNil(t, model.DeletedAt)
	})

	t.Run("consent and audit history keep their row counts", func(t *testing.T) {
		sid := f.newSubject(t, "history@example.com")
		f.grantConsent(t, sid, "email")
		f.grantConsent(t, sid, "phone")

		historyBefore, err := f.ledger.History(ctx, sid)
		require.NoError(t, err)
		entriesBefore, err := f.trail.History(ctx, subject.EntityType, sid)
		require.NoError(t, err)

		_, err = f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		historyAfter, err := f.ledger.History(ctx, sid)
		require.NoError(t, err)
		require.Len(t, historyAfter, len(historyBefore))
		for i := range historyBefore {
			assert.Equal(t, historyBefore[i].Channel(), historyAfter[i].Channel())
			assert.Equal(t, historyBefore[i].Status(), historyAfter[i].Status())
		}

		entriesAfter, err := f.trail.History(ctx, subject.EntityType, sid)
		require.NoError(t, err)
		// One new entry documents the erasure itself; the prior log is intact.
		require.Len(t, entriesAfter, len(entriesBefore)+1)
		last := entriesAfter[len(entriesAfter)-1]
		assert.Equal(t, audit.ActionDelete, last.Action())
		assert.Equal(t, audit.MetaTypeGDPRAnonymization, last.Metadata()[audit.MetaKeyType])
	})

	t.Run("second anonymize is a conflict", func(t *testing.T) {
		sid := f.newSubject(t, "twice@example.com")

		_, err := f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		_, err = f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		assert.Error(t, err)
		assert.True(t, errors.IsConflictError(err))
	})
}

func TestGenerateReportUseCase(t *testing.T) {
	f := setupErasure(t)
	ctx := context.Background()

	t.Run("report covers consent history and audit log", func(t *testing.T) {
		sid := f.newSubject(t, "report@example.com")
		f.grantConsent(t, sid, "email")

		meta := audit.Metadata{
			audit.MetaKeyModel:   "hcp-scoring-v3",
			audit.MetaKeyFactors: "prescription volume, engagement recency",
		}
		require.NoError(t, f.trail.Record(ctx, auditapp.Provenance{},
			audit.ActionAIDecision, subject.EntityType, sid, nil, nil, meta))

		report, err := f.report.Execute(ctx, GenerateReportQuery{SID: sid})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(report.ReportID, "rpt_"))
		assert.Equal(t, sid, report.SubjectSID)
		assert.Equal(t, "cardiology", report.Profile.Specialty)
		assert.True(t, report.Profile.HasEmail)
		require.Len(t, report.ConsentHistory, 1)
		assert.Equal(t, "email", report.ConsentHistory[0].Channel)
		assert.Equal(t, "granted", report.ConsentHistory[0].Status)
		require.Len(t, report.AIDecisions, 1)
		assert.Equal(t, "hcp-scoring-v3", report.AIDecisions[0].Model)
		// create + consent_change were logged before the report ran.
		assert.GreaterOrEqual(t, len(report.AuditLog), 2)
	})

	t.Run("generating a report appends an export entry", func(t *testing.T) {
		sid := f.newSubject(t, "export@example.com")

		report, err := f.report.Execute(ctx, GenerateReportQuery{SID: sid})
		require.NoError(t, err)

		entries, err := f.trail.History(ctx, subject.EntityType, sid)
		require.NoError(t, err)
		last := entries[len(entries)-1]
		assert.Equal(t, audit.ActionExport, last.Action())
		assert.Equal(t, report.ReportID, last.Metadata()[audit.MetaKeyReportID])
	})

	t.Run("consent history is identical before and after anonymization", func(t *testing.T) {
		sid := f.newSubject(t, "before.after@example.com")
		f.grantConsent(t, sid, "email")
		f.grantConsent(t, sid, "marketing")

		before, err := f.report.Execute(ctx, GenerateReportQuery{SID: sid})
		require.NoError(t, err)

		_, err = f.anonymize.Execute(ctx, AnonymizeSubjectCommand{SID: sid})
		require.NoError(t, err)

		after, err := f.report.Execute(ctx, GenerateReportQuery{SID: sid})
		require.NoError(t, err)

		assert.Equal(t, before.ConsentHistory, after.ConsentHistory)
		assert.True(t, after.Profile.IsAnonymized)
		assert.False(t, after.Profile.IsActive)
	})

	t.Run("unknown subject is not found", func(t *testing.T) {
		_, err := f.report.Execute(ctx, GenerateReportQuery{SID: "hcp_ghost"})
		assert.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestRenderReport(t *testing.T) {
	report := &SubjectReport{
		ReportID:    "rpt_test1234",
		SubjectSID:  "hcp_render1",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Profile: ProfileSection{
			Specialty:     "oncology",
			InfluenceTier: "high",
			IsActive:      true,
			HasEmail:      true,
		},
		ConsentHistory: []ConsentEventView{
			{Channel: "email", Status: "granted", Source: "web_form", RecordedAt: time.Now()},
		},
		AuditLog: []AuditEntryView{
			{Action: "create", CreatedAt: time.Now()},
		},
	}

	t.Run("markdown lists every section", func(t *testing.T) {
		md := RenderMarkdown(report)
		assert.Contains(t, md, "rpt_test1234")
		assert.Contains(t, md, "## Profile")
		assert.Contains(t, md, "## Consent history (1 records)")
		assert.Contains(t, md, "| email | granted |")
		assert.Contains(t, md, "## Access and change log (1 entries)")
	})

	t.Run("html renders the tables", func(t *testing.T) {
		html, err := RenderHTML(report)
		require.NoError(t, err)
		assert.Contains(t, html, "<table>")
		assert.Contains(t, html, "rpt_test1234")
	})
}
