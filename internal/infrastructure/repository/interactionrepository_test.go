package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharos/internal/domain/consent"
	"pharos/internal/domain/interaction"
)

func TestInteractionRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := context.Background()

	t.Run("save interaction successfully", func(t *testing.T) {
		recordedBy := uint(11)
		i, err := interaction.NewInteraction(1, consent.ChannelVisit,
			interaction.StatusCompleted, time.Now().UTC(), "product discussion", &recordedBy)
		require.NoError(t, err)

		err = repo.Save(ctx, i)
		assert.NoError(t, err)
		assert.NotZero(t, i.ID())
	})

	t.Run("saved interaction round-trips", func(t *testing.T) {
		occurred := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Millisecond)
		i, err := interaction.NewInteraction(2, consent.ChannelEmail,
			interaction.StatusPlanned, occurred, "follow-up mail", nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, i))

		found, err := repo.ListForSubject(ctx, 2)
		assert.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, consent.ChannelEmail, found[0].Channel())
		assert.Equal(t, interaction.StatusPlanned, found[0].Status())
		assert.Equal(t, occurred.UnixMilli(), found[0].OccurredAt().UnixMilli())
		assert.Equal(t, "follow-up mail", found[0].Notes())
		assert.Nil(t, found[0].RecordedBy())
	})
}

func TestInteractionRepository_ListForSubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	for _, offset := range []time.Duration{-3 * time.Hour, -1 * time.Hour, -2 * time.Hour} {
		in, err := interaction.NewInteraction(7, consent.ChannelVisit,
			interaction.StatusCompleted, base.Add(offset), "", nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, in))
	}

	other, err := interaction.NewInteraction(8, consent.ChannelPhone,
		interaction.StatusCancelled, base, "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	t.Run("ordered by occurrence, newest first", func(t *testing.T) {
		found, err := repo.ListForSubject(ctx, 7)
		assert.NoError(t, err)
		require.Len(t, found, 3)
		assert.True(t, found[0].OccurredAt().After(found[1].OccurredAt()))
		assert.True(t, found[1].OccurredAt().After(found[2].OccurredAt()))
	})

	t.Run("scoped to the subject", func(t *testing.T) {
		found, err := repo.ListForSubject(ctx, 8)
		assert.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, interaction.StatusCancelled, found[0].Status())
	})

	t.Run("no interactions yields empty list", func(t *testing.T) {
		found, err := repo.ListForSubject(ctx, 99)
		assert.NoError(t, err)
		assert.Empty(t, found)
	})
}
