package usecases

import (
	"context"

	"pharos/internal/application/subject/dto"
	"pharos/internal/domain/subject"
	"pharos/internal/infrastructure/vault"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/query"
)

// SearchSubjectsQuery filters by non-PII attributes directly and by PII
// values only through index-token equality. Plaintext criteria are tokenized
// here; the repository never sees them. A non-empty TerritoryScope is a hard
// visibility boundary on the results.
type SearchSubjectsQuery struct {
	Specialty       string
	InfluenceTier   string
	TerritoryID     *uint
	InstitutionID   *uint
	TherapeuticArea string
	ActiveOnly      bool

	FirstName string
	LastName  string
	Email     string
	Phone     string

	TerritoryScope []uint

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type SearchSubjectsResult struct {
	Subjects []dto.SubjectListItemDTO
	Total    int64
}

type SearchSubjectsUseCase struct {
	subjectRepo subject.Repository
	fieldVault  *vault.FieldVault
	logger      logger.Interface
}

func NewSearchSubjectsUseCase(
	subjectRepo subject.Repository,
	fieldVault *vault.FieldVault,
	logger logger.Interface,
) *SearchSubjectsUseCase {
	return &SearchSubjectsUseCase{
		subjectRepo: subjectRepo,
		fieldVault:  fieldVault,
		logger:      logger,
	}
}

func (uc *SearchSubjectsUseCase) Execute(ctx context.Context, q SearchSubjectsQuery) (*SearchSubjectsResult, error) {
	filter := subject.Filter{
		Specialty:       q.Specialty,
		InfluenceTier:   q.InfluenceTier,
		TerritoryID:     q.TerritoryID,
		InstitutionID:   q.InstitutionID,
		TherapeuticArea: q.TherapeuticArea,
		ActiveOnly:      q.ActiveOnly,
		TerritoryScope:  q.TerritoryScope,
		BaseFilter: query.NewBaseFilter(
			query.WithPage(q.Page, q.PageSize),
			query.WithSort(q.SortBy, q.SortOrder),
		),
	}

	if q.FirstName != "" {
		filter.FirstNameToken = uc.fieldVault.IndexToken(q.FirstName)
	}
	if q.LastName != "" {
		filter.LastNameToken = uc.fieldVault.IndexToken(q.LastName)
	}
	if q.Email != "" {
		filter.EmailToken = uc.fieldVault.IndexToken(q.Email)
	}
	if q.Phone != "" {
		filter.PhoneToken = uc.fieldVault.IndexToken(q.Phone)
	}

	subjects, total, err := uc.subjectRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to search subjects", "error", err)
		return nil, err
	}

	items := make([]dto.SubjectListItemDTO, len(subjects))
	for i, s := range subjects {
		items[i] = dto.ToSubjectListItemDTO(s)
	}

	return &SearchSubjectsResult{
		Subjects: items,
		Total:    total,
	}, nil
}
