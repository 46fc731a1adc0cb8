package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharos/internal/domain/consent"
)

func appendTestRecord(t *testing.T, repo *ConsentRecordRepository, subjectID uint, channel consent.Channel, status consent.Status) *consent.Record {
	record, err := consent.NewRecord(subjectID, channel, status, "web_form", "", nil, "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), record))
	return record
}

func TestConsentRecordRepository_Append(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConsentRecordRepository(db)
	ctx := context.Background()

	t.Run("append record successfully", func(t *testing.T) {
		recordedBy := uint(9)
		expiry := time.Now().Add(365 * 24 * time.Hour).UTC()
		record, err := consent.NewRecord(1, consent.ChannelEmail, consent.StatusGranted,
			"rep_visit", "evd_abc123", &recordedBy, "signed at booth", &expiry)
		require.NoError(t, err)

		err = repo.Append(ctx, record)
		assert.NoError(t, err)
		assert.NotZero(t, record.ID())
	})

	t.Run("append round-trips all attributes", func(t *testing.T) {
		recordedBy := uint(4)
		record, err := consent.NewRecord(2, consent.ChannelPhone, consent.StatusRevoked,
			"call_center", "evd_rev1", &recordedBy, "asked to stop calls", nil)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, record))

		records, err := repo.ListForChannel(ctx, 2, consent.ChannelPhone)
		assert.NoError(t, err)
		require.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, consent.StatusRevoked, got.Status())
		assert.Equal(t, "call_center", got.Source())
		assert.Equal(t, "evd_rev1", got.EvidenceRef())
		assert.Equal(t, "asked to stop calls", got.Notes())
		assert.NotNil(t, got.RevokedAt())
		assert.Nil(t, got.GrantedAt())
		require.NotNil(t, got.RecordedBy())
		assert.Equal(t, recordedBy, *got.RecordedBy())
	})

	t.Run("supersession inserts a new row", func(t *testing.T) {
		appendTestRecord(t, repo, 3, consent.ChannelMarketing, consent.StatusGranted)
		appendTestRecord(t, repo, 3, consent.ChannelMarketing, consent.StatusRevoked)

		records, err := repo.ListForChannel(ctx, 3, consent.ChannelMarketing)
		assert.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestConsentRecordRepository_ListForChannel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConsentRecordRepository(db)
	ctx := context.Background()

	appendTestRecord(t, repo, 1, consent.ChannelEmail, consent.StatusGranted)
	appendTestRecord(t, repo, 1, consent.ChannelEmail, consent.StatusRevoked)
	appendTestRecord(t, repo, 1, consent.ChannelPhone, consent.StatusGranted)
	appendTestRecord(t, repo, 2, consent.ChannelEmail, consent.StatusGranted)

	t.Run("scoped to subject and channel, newest first", func(t *testing.T) {
		records, err := repo.ListForChannel(ctx, 1, consent.ChannelEmail)
		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, consent.StatusRevoked, records[0].Status())
		assert.Equal(t, consent.StatusGranted, records[1].Status())
	})

	t.Run("history resolves to the latest assertion", func(t *testing.T) {
		records, err := repo.ListForChannel(ctx, 1, consent.ChannelEmail)
		require.NoError(t, err)

		status := consent.Resolve(records, time.Now().UTC())
		assert.Equal(t, consent.StatusRevoked, status)
	})

	t.Run("no history resolves to none", func(t *testing.T) {
		records, err := repo.ListForChannel(ctx, 9, consent.ChannelVisit)
		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, consent.StatusNone, consent.Resolve(records, time.Now().UTC()))
	})
}

func TestConsentRecordRepository_ListForSubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConsentRecordRepository(db)
	ctx := context.Background()

	appendTestRecord(t, repo, 5, consent.ChannelEmail, consent.StatusGranted)
	appendTestRecord(t, repo, 5, consent.ChannelPhone, consent.StatusPending)
	appendTestRecord(t, repo, 5, consent.ChannelVisit, consent.StatusGranted)
	appendTestRecord(t, repo, 6, consent.ChannelEmail, consent.StatusGranted)

	records, err := repo.ListForSubject(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, uint(5), r.SubjectID())
	}
}
