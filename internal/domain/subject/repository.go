package subject

import (
	"context"

	"pharos/internal/shared/query"
)

// Filter narrows subject searches. PII criteria are expressed only as index
// tokens computed by the caller; the repository never decrypts to match.
// TerritoryScope, when non-empty, is a hard visibility boundary: no subject
// outside the listed territories is matched or returned.
type Filter struct {
	Specialty         string
	InfluenceTier     string
	TerritoryID       *uint
	InstitutionID     *uint
	TherapeuticArea   string
	ActiveOnly        bool
	IncludeAnonymized bool

	FirstNameToken string
	LastNameToken  string
	EmailToken     string
	PhoneToken     string

	TerritoryScope []uint

	query.BaseFilter
}

// Repository is the persistence port for subjects.
type Repository interface {
	// Save inserts a new subject and assigns its ID.
	Save(ctx context.Context, s *Subject) error

	// Update persists a modified subject under an optimistic version guard.
	// A stale version surfaces as a conflict error.
	Update(ctx context.Context, s *Subject) error

	// FindByID returns the subject or a not-found error when it is absent or
	// soft-deleted.
	FindByID(ctx context.Context, id uint) (*Subject, error)

	// FindBySID looks a subject up by its public identifier.
	FindBySID(ctx context.Context, sid string) (*Subject, error)

	// FindBySIDIncludingDeleted looks a subject up regardless of soft
	// deletion. Consent history and audit trails outlive anonymization, so
	// their lookups must still resolve the subject.
	FindBySIDIncludingDeleted(ctx context.Context, sid string) (*Subject, error)

	// ExistsByExternalID reports whether an external identifier is taken.
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)

	// List returns subjects matching the filter with the total count.
	List(ctx context.Context, filter Filter) ([]*Subject, int64, error)

	// SoftDelete stamps the deletion time. Reversible; data is retained.
	SoftDelete(ctx context.Context, id uint) error
}
