package consent

import "context"

// Repository is the persistence port for consent records. Append-only:
// implementations never update or delete rows.
type Repository interface {
	// Append inserts one record. It participates in the ambient transaction
	// from the context when one is present.
	Append(ctx context.Context, record *Record) error

	// ListForChannel returns the full history for a (subject, channel) pair,
	// newest first.
	ListForChannel(ctx context.Context, subjectID uint, channel Channel) ([]*Record, error)

	// ListForSubject returns the full history across all channels, newest
	// first, including superseded records.
	ListForSubject(ctx context.Context, subjectID uint) ([]*Record, error)
}
