package audit

import (
	"context"
	"time"

	"pharos/internal/shared/query"
)

// Filter narrows audit queries. Zero values mean "no constraint".
type Filter struct {
	ActorID    *uint
	Action     *Action
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time

	query.BaseFilter
}

// Repository is the persistence port for audit entries. Implementations must
// only ever insert; there is no update or delete.
type Repository interface {
	// Append inserts one entry. It participates in the ambient transaction
	// from the context when one is present.
	Append(ctx context.Context, entry *Entry) error

	// List returns entries matching the filter, newest first, with total count.
	List(ctx context.Context, filter Filter) ([]*Entry, int64, error)

	// ListForEntity returns the full history for one entity in ascending
	// creation order, for integrity verification.
	ListForEntity(ctx context.Context, entityType, entityID string) ([]*Entry, error)
}
