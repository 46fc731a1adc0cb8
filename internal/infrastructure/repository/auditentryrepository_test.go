package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharos/internal/domain/audit"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/query"
)

func appendTestEntry(t *testing.T, repo *AuditEntryRepository, action audit.Action, entityType, entityID string, actorID *uint) *audit.Entry {
	entry, err := audit.NewEntry(actorID, action, entityType, entityID)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestAuditEntryRepository_Append(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditEntryRepository(db)
	ctx := context.Background()

	t.Run("append entry successfully", func(t *testing.T) {
		actorID := uint(7)
		entry, err := audit.NewEntry(&actorID, audit.ActionCreate, "subject", "hcp_abc123")
		require.NoError(t, err)
		entry.WithStates(nil, audit.Snapshot{"specialty": "cardiology"}).
			WithProvenance("203.0.113.9", "pharos-cli/1.0").
			WithMeta(audit.MetaKeyType, "onboarding")

		err = repo.Append(ctx, entry)
		assert.NoError(t, err)
		assert.NotZero(t, entry.ID())
	})

	t.Run("append round-trips snapshots and metadata", func(t *testing.T) {
		actorID := uint(3)
		entry, err := audit.NewEntry(&actorID, audit.ActionUpdate, "subject", "hcp_round1")
		require.NoError(t, err)
		entry.WithStates(
			audit.Snapshot{"specialty": "cardiology", "is_active": true},
			audit.Snapshot{"specialty": "oncology", "is_active": true},
		)

		require.NoError(t, repo.Append(ctx, entry))

		entries, err := repo.ListForEntity(ctx, "subject", "hcp_round1")
		assert.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "cardiology", entries[0].PreviousState()["specialty"])
		assert.Equal(t, "oncology", entries[0].NewState()["specialty"])
		require.NotNil(t, entries[0].ActorID())
		assert.Equal(t, actorID, *entries[0].ActorID())
	})

	t.Run("system entry with nil actor", func(t *testing.T) {
		entry, err := audit.NewEntry(nil, audit.ActionDelete, "subject", "hcp_sys1")
		require.NoError(t, err)
		entry.WithMeta(audit.MetaKeyType, audit.MetaTypeGDPRAnonymization)

		require.NoError(t, repo.Append(ctx, entry))

		entries, err := repo.ListForEntity(ctx, "subject", "hcp_sys1")
		assert.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].ActorID())
		assert.Equal(t, audit.MetaTypeGDPRAnonymization, entries[0].Metadata()[audit.MetaKeyType])
	})

	t.Run("append failure is tagged", func(t *testing.T) {
		closed := setupTestDB(t)
		sqlDB, err := closed.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		brokenRepo := NewAuditEntryRepository(closed)
		entry, err := audit.NewEntry(nil, audit.ActionCreate, "subject", "hcp_broken")
		require.NoError(t, err)

		err = brokenRepo.Append(ctx, entry)
		assert.Error(t, err)
		assert.True(t, errors.IsAuditWriteFailedError(err))
	})
}

func TestAuditEntryRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditEntryRepository(db)
	ctx := context.Background()

	actor1 := uint(1)
	actor2 := uint(2)

	appendTestEntry(t, repo, audit.ActionCreate, "subject", "hcp_a", &actor1)
	appendTestEntry(t, repo, audit.ActionUpdate, "subject", "hcp_a", &actor1)
	appendTestEntry(t, repo, audit.ActionCreate, "subject", "hcp_b", &actor2)
	appendTestEntry(t, repo, audit.ActionConsentChange, "subject", "hcp_b", &actor2)
	appendTestEntry(t, repo, audit.ActionCreate, "interaction", "42", &actor1)

	baseFilter := query.NewBaseFilter()

	t.Run("list all entries", func(t *testing.T) {
		entries, total, err := repo.List(ctx, audit.Filter{BaseFilter: baseFilter})
		assert.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, entries, 5)
	})

	t.Run("filter by actor", func(t *testing.T) {
		_, total, err := repo.List(ctx, audit.Filter{
			ActorID:    &actor2,
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("filter by action", func(t *testing.T) {
		action := audit.ActionConsentChange
		entries, total, err := repo.List(ctx, audit.Filter{
			Action:     &action,
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, audit.ActionConsentChange, entries[0].Action())
	})

	t.Run("filter by entity", func(t *testing.T) {
		_, total, err := repo.List(ctx, audit.Filter{
			EntityType: "subject",
			EntityID:   "hcp_a",
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("filter by time window", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		_, total, err := repo.List(ctx, audit.Filter{
			From:       &future,
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)

		past := time.Now().Add(-time.Hour)
		_, total, err = repo.List(ctx, audit.Filter{
			From:       &past,
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("pagination", func(t *testing.T) {
		entries, total, err := repo.List(ctx, audit.Filter{
			BaseFilter: query.NewBaseFilter(query.WithPage(2, 3)),
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, entries, 2)
	})
}

func TestAuditEntryRepository_ListForEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditEntryRepository(db)
	ctx := context.Background()

	actor := uint(1)
	appendTestEntry(t, repo, audit.ActionCreate, "subject", "hcp_hist", &actor)
	appendTestEntry(t, repo, audit.ActionUpdate, "subject", "hcp_hist", &actor)
	appendTestEntry(t, repo, audit.ActionView, "subject", "hcp_hist", &actor)

	t.Run("entries come back oldest first", func(t *testing.T) {
		entries, err := repo.ListForEntity(ctx, "subject", "hcp_hist")
		assert.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, audit.ActionCreate, entries[0].Action())
		assert.Equal(t, audit.ActionUpdate, entries[1].Action())
		assert.Equal(t, audit.ActionView, entries[2].Action())
	})

	t.Run("history feeds the integrity check", func(t *testing.T) {
		entries, err := repo.ListForEntity(ctx, "subject", "hcp_hist")
		require.NoError(t, err)

		result := audit.CheckIntegrity(entries)
		assert.True(t, result.Consistent)
		assert.Empty(t, result.Issues)
	})

	t.Run("unknown entity yields empty history", func(t *testing.T) {
		entries, err := repo.ListForEntity(ctx, "subject", "hcp_none")
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}
