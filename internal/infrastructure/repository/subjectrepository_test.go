package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharos/internal/domain/subject"
	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/errors"
	"pharos/internal/shared/id"
	"pharos/internal/shared/query"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SubjectModel{},
		&models.ConsentRecordModel{},
		&models.AuditEntryModel{},
		&models.InteractionModel{},
	)
	require.NoError(t, err)

	return db
}

func encField(ciphertext, token string) vo.EncryptedField {
	return vo.EncryptedField{Ciphertext: ciphertext, IndexToken: token}
}

func createTestSubject(t *testing.T, opts ...func(*subject.Classification)) *subject.Subject {
	classification := subject.Classification{
		Specialty:        "cardiology",
		InfluenceTier:    vo.TierHigh,
		TherapeuticAreas: []string{"cardiovascular"},
		Languages:        []string{"en"},
	}
	for _, opt := range opts {
		opt(&classification)
	}

	pii := subject.PII{
		FirstName: encField("enc-first", "token-first"),
		LastName:  encField("enc-last", "token-last"),
		Email:     encField("enc-email", "token-email"),
	}

	s, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), nil, pii, classification)
	require.NoError(t, err)
	return s
}

func TestSubjectRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	t.Run("save new subject successfully", func(t *testing.T) {
		s := createTestSubject(t)
		err := repo.Save(ctx, s)
		assert.NoError(t, err)
		assert.NotZero(t, s.ID())
	})

	t.Run("saved subject round-trips encrypted pairs", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindByID(ctx, s.ID())
		assert.NoError(t, err)
		assert.Equal(t, s.SID(), found.SID())
		assert.Equal(t, "enc-first", found.PII().FirstName.Ciphertext)
		assert.Equal(t, "token-first", found.PII().FirstName.IndexToken)
		assert.Equal(t, "cardiology", found.Classification().Specialty)
		assert.Equal(t, []string{"cardiovascular"}, found.Classification().TherapeuticAreas)
		assert.Equal(t, 1, found.Version())
	})

	t.Run("duplicate SID should fail", func(t *testing.T) {
		s1 := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s1))

		pii := subject.PII{FirstName: encField("enc", "tok")}
		s2, err := subject.NewSubject(s1.SID(), nil, pii, subject.Classification{})
		require.NoError(t, err)

		err = repo.Save(ctx, s2)
		assert.Error(t, err)
	})

	t.Run("duplicate external ID should fail", func(t *testing.T) {
		ext := "crm-ext-1"
		pii := subject.PII{FirstName: encField("enc", "tok")}

		s1, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), &ext, pii, subject.Classification{})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, s1))

		s2, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), &ext, pii, subject.Classification{})
		require.NoError(t, err)
		err = repo.Save(ctx, s2)
		assert.Error(t, err)
	})
}

func TestSubjectRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	t.Run("update advances version", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))

		c := s.Classification()
		c.Specialty = "oncology"
		require.NoError(t, s.UpdateClassification(c))
		require.NoError(t, repo.Update(ctx, s))

		// The entity reflects the persisted bump without a reload.
		assert.Equal(t, 2, s.Version())

		found, err := repo.FindByID(ctx, s.ID())
		assert.NoError(t, err)
		assert.Equal(t, "oncology", found.Classification().Specialty)
		assert.Equal(t, 2, found.Version())
	})

	t.Run("stale version surfaces as conflict", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))

		s1, err := repo.FindByID(ctx, s.ID())
		require.NoError(t, err)
		s2, err := repo.FindByID(ctx, s.ID())
		require.NoError(t, err)

		c := s1.Classification()
		c.Specialty = "neurology"
		require.NoError(t, s1.UpdateClassification(c))
		require.NoError(t, repo.Update(ctx, s1))

		c2 := s2.Classification()
		c2.Specialty = "dermatology"
		require.NoError(t, s2.UpdateClassification(c2))
		err = repo.Update(ctx, s2)
		assert.Error(t, err)
		assert.True(t, errors.IsConflictError(err))
	})

	t.Run("update non-existent subject should fail", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, s.SetID(99999))

		err := repo.Update(ctx, s)
		assert.Error(t, err)
		assert.True(t, errors.IsConflictError(err))
	})
}

func TestSubjectRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	t.Run("find by SID", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindBySID(ctx, s.SID())
		assert.NoError(t, err)
		assert.Equal(t, s.ID(), found.ID())
	})

	t.Run("find non-existent subject", func(t *testing.T) {
		found, err := repo.FindByID(ctx, 99999)
		assert.Error(t, err)
		assert.Nil(t, found)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("soft-deleted subject is not found", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.SoftDelete(ctx, s.ID()))

		found, err := repo.FindByID(ctx, s.ID())
		assert.Error(t, err)
		assert.Nil(t, found)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("unscoped lookup still resolves soft-deleted subject", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.SoftDelete(ctx, s.ID()))

		found, err := repo.FindBySIDIncludingDeleted(ctx, s.SID())
		assert.NoError(t, err)
		assert.Equal(t, s.ID(), found.ID())
	})
}

func TestSubjectRepository_ExistsByExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	ext := "crm-42"
	pii := subject.PII{FirstName: encField("enc", "tok")}
	s, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), &ext, pii, subject.Classification{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	exists, err := repo.ExistsByExternalID(ctx, "crm-42")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByExternalID(ctx, "crm-unknown")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSubjectRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	territory1 := uint(1)
	territory2 := uint(2)

	s1 := createTestSubject(t, func(c *subject.Classification) {
		c.TerritoryID = &territory1
	})
	require.NoError(t, repo.Save(ctx, s1))

	s2 := createTestSubject(t, func(c *subject.Classification) {
		c.Specialty = "oncology"
		c.InfluenceTier = vo.TierKeyOpinionLeader
		c.TerritoryID = &territory2
		c.TherapeuticAreas = []string{"oncology", "hematology"}
	})
	require.NoError(t, repo.Save(ctx, s2))

	s3 := createTestSubject(t, func(c *subject.Classification) {
		c.TerritoryID = &territory2
	})
	require.NoError(t, repo.Save(ctx, s3))

	baseFilter := query.NewBaseFilter()

	t.Run("list all subjects", func(t *testing.T) {
		subjects, total, err := repo.List(ctx, subject.Filter{BaseFilter: baseFilter})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, subjects, 3)
	})

	t.Run("filter by specialty", func(t *testing.T) {
		subjects, total, err := repo.List(ctx, subject.Filter{
			Specialty:  "oncology",
			BaseFilter: baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, s2.SID(), subjects[0].SID())
	})

	t.Run("filter by influence tier", func(t *testing.T) {
		_, total, err := repo.List(ctx, subject.Filter{
			InfluenceTier: vo.TierKeyOpinionLeader.String(),
			BaseFilter:    baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("filter by therapeutic area", func(t *testing.T) {
		_, total, err := repo.List(ctx, subject.Filter{
			TherapeuticArea: "hematology",
			BaseFilter:      baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("territory scope is a hard boundary", func(t *testing.T) {
		subjects, total, err := repo.List(ctx, subject.Filter{
			TerritoryScope: []uint{territory2},
			BaseFilter:     baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, s := range subjects {
			require.NotNil(t, s.Classification().TerritoryID)
			assert.Equal(t, territory2, *s.Classification().TerritoryID)
		}
	})

	t.Run("anonymized subjects excluded by default", func(t *testing.T) {
		sentinel := encField("enc-sentinel", "token-sentinel")
		require.NoError(t, s3.Anonymize(sentinel, time.Now().UTC()))
		require.NoError(t, repo.Update(ctx, s3))

		_, total, err := repo.List(ctx, subject.Filter{
			IncludeAnonymized: false,
			BaseFilter:        baseFilter,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := subject.Filter{
			BaseFilter: query.NewBaseFilter(query.WithPage(1, 1)),
		}
		subjects, total, err := repo.List(ctx, filter)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, subjects, 1)
	})
}

func TestSubjectRepository_TokenSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	pii := subject.PII{
		FirstName: encField("enc-maria-1", "token-maria"),
		LastName:  encField("enc-garcia-1", "token-garcia"),
	}
	s1, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), nil, pii, subject.Classification{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s1))

	// Same plaintext yields the same token but distinct ciphertext.
	pii2 := subject.PII{
		FirstName: encField("enc-maria-2", "token-maria"),
		LastName:  encField("enc-lopez-1", "token-lopez"),
	}
	s2, err := subject.NewSubject(id.MustGenerateWithPrefix(id.PrefixSubject, id.DefaultLength), nil, pii2, subject.Classification{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s2))

	t.Run("token equality matches all rows with that plaintext", func(t *testing.T) {
		_, total, err := repo.List(ctx, subject.Filter{
			FirstNameToken: "token-maria",
			BaseFilter:     query.NewBaseFilter(),
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("conjunction of token criteria", func(t *testing.T) {
		subjects, total, err := repo.List(ctx, subject.Filter{
			FirstNameToken: "token-maria",
			LastNameToken:  "token-garcia",
			BaseFilter:     query.NewBaseFilter(),
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, s1.SID(), subjects[0].SID())
	})

	t.Run("unknown token matches nothing", func(t *testing.T) {
		_, total, err := repo.List(ctx, subject.Filter{
			EmailToken: "token-nobody",
			BaseFilter: query.NewBaseFilter(),
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestSubjectRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	t.Run("soft delete retains the row", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.SoftDelete(ctx, s.ID()))

		var model models.SubjectModel
		err := db.Unscoped().First(&model, s.ID()).Error
		assert.NoError(t, err)
		assert.NotNil(t, model.DeletedAt)
	})

	t.Run("soft delete non-existent subject", func(t *testing.T) {
		err := repo.SoftDelete(ctx, 99999)
		assert.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("double soft delete fails", func(t *testing.T) {
		s := createTestSubject(t)
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.SoftDelete(ctx, s.ID()))

		err := repo.SoftDelete(ctx, s.ID())
		assert.Error(t, err)
	})
}
