package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pharos/internal/domain/subject"
	"pharos/internal/infrastructure/persistence/mappers"
	"pharos/internal/infrastructure/persistence/models"
	"pharos/internal/shared/db"
	"pharos/internal/shared/errors"
)

// allowedSubjectOrderByFields defines the whitelist of allowed ORDER BY
// fields to prevent SQL injection. PII fields sort by their index token
// columns; token order is not human-meaningful order.
var allowedSubjectOrderByFields = map[string]string{
	"id":             "id",
	"sid":            "sid",
	"specialty":      "specialty",
	"influence_tier": "influence_tier",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"first_name":     "first_name_token",
	"last_name":      "last_name_token",
	"email":          "email_token",
}

// SubjectRepository persists subjects.
type SubjectRepository struct {
	db     *gorm.DB
	mapper mappers.SubjectMapper
}

func NewSubjectRepository(database *gorm.DB) *SubjectRepository {
	return &SubjectRepository{
		db:     database,
		mapper: mappers.NewSubjectMapper(),
	}
}

func (r *SubjectRepository) Save(ctx context.Context, s *subject.Subject) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save subject: %w", err)
	}

	return s.SetID(model.ID)
}

// Update persists a modified subject under an optimistic version guard. Two
// concurrent updates to the same row cannot interleave: the second one sees
// no affected rows and surfaces as a conflict.
func (r *SubjectRepository) Update(ctx context.Context, s *subject.Subject) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.
		Model(&models.SubjectModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"external_id":       model.ExternalID,
			"first_name_enc":    model.FirstNameEnc,
			"first_name_token":  model.FirstNameToken,
			"last_name_enc":     model.LastNameEnc,
			"last_name_token":   model.LastNameToken,
			"email_enc":         model.EmailEnc,
			"email_token":       model.EmailToken,
			"phone_enc":         model.PhoneEnc,
			"phone_token":       model.PhoneToken,
			"specialty":         model.Specialty,
			"influence_tier":    model.InfluenceTier,
			"territory_id":      model.TerritoryID,
			"institution_id":    model.InstitutionID,
			"years_of_practice": model.YearsOfPractice,
			"languages":         model.Languages,
			"therapeutic_areas": model.TherapeuticAreas,
			"tags":              model.Tags,
			"metadata":          model.Metadata,
			"is_active":         model.IsActive,
			"is_anonymized":     model.IsAnonymized,
			"deleted_at":        model.DeletedAt,
			"updated_at":        model.UpdatedAt,
			"version":           model.Version + 1,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("subject was modified concurrently")
	}

	s.AdvanceVersion()
	return nil
}

func (r *SubjectRepository) FindByID(ctx context.Context, id uint) (*subject.Subject, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *SubjectRepository) FindBySID(ctx context.Context, sid string) (*subject.Subject, error) {
	return r.findOne(ctx, "sid = ?", sid)
}

func (r *SubjectRepository) FindBySIDIncludingDeleted(ctx context.Context, sid string) (*subject.Subject, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.SubjectModel
	if err := tx.
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("subject not found")
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SubjectRepository) findOne(ctx context.Context, cond string, value interface{}) (*subject.Subject, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.SubjectModel
	if err := tx.
		Scopes(db.NotDeleted()).
		Where(cond, value).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("subject not found")
		}
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SubjectRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	if err := tx.
		Model(&models.SubjectModel{}).
		Where("external_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check external ID: %w", err)
	}

	return count > 0, nil
}

func (r *SubjectRepository) List(ctx context.Context, filter subject.Filter) ([]*subject.Subject, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.SubjectModel{}).Scopes(db.NotDeleted())

	if filter.Specialty != "" {
		query = query.Where("specialty = ?", filter.Specialty)
	}
	if filter.InfluenceTier != "" {
		query = query.Where("influence_tier = ?", filter.InfluenceTier)
	}
	if filter.TerritoryID != nil {
		query = query.Where("territory_id = ?", *filter.TerritoryID)
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.TherapeuticArea != "" {
		// Lists are stored as JSON arrays of strings; a quoted substring
		// match works on both MySQL and SQLite.
		query = query.Where("therapeutic_areas LIKE ?", fmt.Sprintf(`%%"%s"%%`, filter.TherapeuticArea))
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if !filter.IncludeAnonymized {
		query = query.Where("is_anonymized = ?", false)
	}

	// PII criteria match index tokens only; rows are never decrypted here.
	if filter.FirstNameToken != "" {
		query = query.Where("first_name_token = ?", filter.FirstNameToken)
	}
	if filter.LastNameToken != "" {
		query = query.Where("last_name_token = ?", filter.LastNameToken)
	}
	if filter.EmailToken != "" {
		query = query.Where("email_token = ?", filter.EmailToken)
	}
	if filter.PhoneToken != "" {
		query = query.Where("phone_token = ?", filter.PhoneToken)
	}

	// A supplied territory scope is a hard visibility boundary.
	if len(filter.TerritoryScope) > 0 {
		query = query.Where("territory_id IN ?", filter.TerritoryScope)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subjects: %w", err)
	}

	sortBy := strings.ToLower(filter.SortBy)
	if column, ok := allowedSubjectOrderByFields[sortBy]; ok && sortBy != "" {
		order := "ASC"
		if filter.IsDescending() {
			order = "DESC"
		}
		query = query.Order(column + " " + order)
	} else {
		query = query.Order("created_at DESC")
	}

	var subjectModels []models.SubjectModel
	if err := query.
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&subjectModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subjects: %w", err)
	}

	subjects := make([]*subject.Subject, len(subjectModels))
	for i, model := range subjectModels {
		s, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, 0, err
		}
		subjects[i] = s
	}

	return subjects, total, nil
}

func (r *SubjectRepository) SoftDelete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	now := time.Now().UnixMilli()
	result := tx.
		Model(&models.SubjectModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"updated_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to soft delete subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("subject not found")
	}

	return nil
}
