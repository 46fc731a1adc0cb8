package interaction

import "context"

// Repository is the persistence port for interactions.
type Repository interface {
	// Save inserts a new interaction and assigns its ID.
	Save(ctx context.Context, i *Interaction) error

	// ListForSubject returns a subject's interactions, newest first.
	ListForSubject(ctx context.Context, subjectID uint) ([]*Interaction, error)
}
