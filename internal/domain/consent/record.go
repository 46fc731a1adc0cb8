// Package consent defines the append-only consent ledger. A record is one
// immutable assertion about a subject's consent for one channel; a status
// change is expressed as a new record, never an update to an existing row.
package consent

import (
	"fmt"
	"time"
)

// Record is one consent assertion. Immutable once constructed.
type Record struct {
	id          uint
	subjectID   uint
	channel     Channel
	status      Status
	grantedAt   *time.Time
	revokedAt   *time.Time
	expiresAt   *time.Time
	source      string
	evidenceRef string
	recordedBy  *uint
	notes       string
	createdAt   time.Time
}

// NewRecord creates a consent record. Source names the provenance of the
// assertion (web form, rep visit, import). A nil recordedBy marks a
// system-recorded assertion.
func NewRecord(
	subjectID uint,
	channel Channel,
	status Status,
	source string,
	evidenceRef string,
	recordedBy *uint,
	notes string,
	expiresAt *time.Time,
) (*Record, error) {
	if subjectID == 0 {
		return nil, fmt.Errorf("subject ID is required")
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid consent channel: %s", channel)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid consent status: %s", status)
	}
	if source == "" {
		return nil, fmt.Errorf("consent source is required")
	}

	now := time.Now().UTC()
	r := &Record{
		subjectID:   subjectID,
		channel:     channel,
		status:      status,
		source:      source,
		evidenceRef: evidenceRef,
		recordedBy:  recordedBy,
		notes:       notes,
		expiresAt:   expiresAt,
		createdAt:   now,
	}

	switch status {
	case StatusGranted:
		r.grantedAt = &now
	case StatusRevoked:
		r.revokedAt = &now
	}

	return r, nil
}

// ReconstructRecord rebuilds a record from persistence.
func ReconstructRecord(
	id uint,
	subjectID uint,
	channel Channel,
	status Status,
	grantedAt *time.Time,
	revokedAt *time.Time,
	expiresAt *time.Time,
	source string,
	evidenceRef string,
	recordedBy *uint,
	notes string,
	createdAt time.Time,
) (*Record, error) {
	if id == 0 {
		return nil, fmt.Errorf("record ID cannot be zero")
	}
	if subjectID == 0 {
		return nil, fmt.Errorf("subject ID is required")
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid consent channel: %s", channel)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid consent status: %s", status)
	}

	return &Record{
		id:          id,
		subjectID:   subjectID,
		channel:     channel,
		status:      status,
		grantedAt:   grantedAt,
		revokedAt:   revokedAt,
		expiresAt:   expiresAt,
		source:      source,
		evidenceRef: evidenceRef,
		recordedBy:  recordedBy,
		notes:       notes,
		createdAt:   createdAt,
	}, nil
}

func (r *Record) ID() uint              { return r.id }
func (r *Record) SubjectID() uint       { return r.subjectID }
func (r *Record) Channel() Channel      { return r.channel }
func (r *Record) Status() Status        { return r.status }
func (r *Record) GrantedAt() *time.Time { return r.grantedAt }
func (r *Record) RevokedAt() *time.Time { return r.revokedAt }
func (r *Record) ExpiresAt() *time.Time { return r.expiresAt }
func (r *Record) Source() string        { return r.source }
func (r *Record) EvidenceRef() string   { return r.evidenceRef }
func (r *Record) RecordedBy() *uint     { return r.recordedBy }
func (r *Record) Notes() string         { return r.notes }
func (r *Record) CreatedAt() time.Time  { return r.createdAt }

// SetID assigns the persistence identifier after insertion.
func (r *Record) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("record ID already set")
	}
	if id == 0 {
		return fmt.Errorf("record ID cannot be zero")
	}
	r.id = id
	return nil
}

// IsExpiredAt reports whether the record's expiry has passed at the given time.
func (r *Record) IsExpiredAt(now time.Time) bool {
	return r.expiresAt != nil && r.expiresAt.Before(now)
}
