package subject

import (
	auditapp "pharos/internal/application/audit"
	"pharos/internal/application/subject/usecases"
)

type CreateSubjectRequest struct {
	ExternalID string `json:"external_id"`

	FirstName string `json:"first_name" binding:"required,max=128"`
	LastName  string `json:"last_name" binding:"required,max=128"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,max=32"`

	Specialty        string            `json:"specialty" binding:"max=128"`
	InfluenceTier    string            `json:"influence_tier" binding:"omitempty,influencetier"`
	TerritoryID      *uint             `json:"territory_id"`
	InstitutionID    *uint             `json:"institution_id"`
	YearsOfPractice  int               `json:"years_of_practice" binding:"min=0"`
	Languages        []string          `json:"languages"`
	TherapeuticAreas []string          `json:"therapeutic_areas"`
	Tags             []string          `json:"tags"`
	Metadata         map[string]string `json:"metadata"`
}

func (r CreateSubjectRequest) ToCommand(prov auditapp.Provenance) usecases.CreateSubjectCommand {
	return usecases.CreateSubjectCommand{
		ExternalID:       r.ExternalID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Specialty:        r.Specialty,
		InfluenceTier:    r.InfluenceTier,
		TerritoryID:      r.TerritoryID,
		InstitutionID:    r.InstitutionID,
		YearsOfPractice:  r.YearsOfPractice,
		Languages:        r.Languages,
		TherapeuticAreas: r.TherapeuticAreas,
		Tags:             r.Tags,
		Metadata:         r.Metadata,
		Provenance:       prov,
	}
}

// UpdateSubjectRequest is a partial update: absent fields stay untouched, an
// explicit empty string clears the attribute.
type UpdateSubjectRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty"`
	Phone     *string `json:"phone"`

	Specialty        *string           `json:"specialty"`
	InfluenceTier    *string           `json:"influence_tier" binding:"omitempty,influencetier"`
	TerritoryID      *uint             `json:"territory_id"`
	InstitutionID    *uint             `json:"institution_id"`
	YearsOfPractice  *int              `json:"years_of_practice"`
	Languages        []string          `json:"languages"`
	TherapeuticAreas []string          `json:"therapeutic_areas"`
	Tags             []string          `json:"tags"`
	Metadata         map[string]string `json:"metadata"`
}

func (r UpdateSubjectRequest) ToCommand(sid string, prov auditapp.Provenance) usecases.UpdateSubjectCommand {
	return usecases.UpdateSubjectCommand{
		SID:              sid,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Specialty:        r.Specialty,
		InfluenceTier:    r.InfluenceTier,
		TerritoryID:      r.TerritoryID,
		InstitutionID:    r.InstitutionID,
		YearsOfPractice:  r.YearsOfPractice,
		Languages:        r.Languages,
		TherapeuticAreas: r.TherapeuticAreas,
		Tags:             r.Tags,
		Metadata:         r.Metadata,
		Provenance:       prov,
	}
}

type SearchSubjectsRequest struct {
	Specialty       string `form:"specialty"`
	InfluenceTier   string `form:"influence_tier"`
	TerritoryID     *uint  `form:"territory_id"`
	InstitutionID   *uint  `form:"institution_id"`
	TherapeuticArea string `form:"therapeutic_area"`
	ActiveOnly      bool   `form:"active_only"`

	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`

	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

func (r SearchSubjectsRequest) ToQuery(page, pageSize int, scope []uint) usecases.SearchSubjectsQuery {
	return usecases.SearchSubjectsQuery{
		Specialty:       r.Specialty,
		InfluenceTier:   r.InfluenceTier,
		TerritoryID:     r.TerritoryID,
		InstitutionID:   r.InstitutionID,
		TherapeuticArea: r.TherapeuticArea,
		ActiveOnly:      r.ActiveOnly,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		TerritoryScope:  scope,
		Page:            page,
		PageSize:        pageSize,
		SortBy:          r.SortBy,
		SortOrder:       r.SortOrder,
	}
}
