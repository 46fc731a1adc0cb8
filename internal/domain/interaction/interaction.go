// Package interaction defines channel-specific engagement records. Recording
// one is the mutation the consent gate guards: the boundary must enforce
// current granted consent for the channel before the use case runs.
package interaction

import (
	"fmt"
	"time"

	"pharos/internal/domain/consent"
)

// EntityType is the audit trail entity type for interactions.
const EntityType = "interaction"

// Status of an engagement.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Interaction is one engagement with a subject over one channel.
type Interaction struct {
	id         uint
	subjectID  uint
	channel    consent.Channel
	status     Status
	occurredAt time.Time
	notes      string
	recordedBy *uint
	createdAt  time.Time
	updatedAt  time.Time
}

// NewInteraction creates an engagement record. Notes must already be
// sanitized by the caller.
func NewInteraction(
	subjectID uint,
	channel consent.Channel,
	status Status,
	occurredAt time.Time,
	notes string,
	recordedBy *uint,
) (*Interaction, error) {
	if subjectID == 0 {
		return nil, fmt.Errorf("subject ID is required")
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid channel: %s", channel)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if occurredAt.IsZero() {
		return nil, fmt.Errorf("occurrence time is required")
	}

	now := time.Now().UTC()
	return &Interaction{
		subjectID:  subjectID,
		channel:    channel,
		status:     status,
		occurredAt: occurredAt,
		notes:      notes,
		recordedBy: recordedBy,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructInteraction rebuilds an interaction from persistence.
func ReconstructInteraction(
	id uint,
	subjectID uint,
	channel consent.Channel,
	status Status,
	occurredAt time.Time,
	notes string,
	recordedBy *uint,
	createdAt, updatedAt time.Time,
) (*Interaction, error) {
	if id == 0 {
		return nil, fmt.Errorf("interaction ID cannot be zero")
	}
	if subjectID == 0 {
		return nil, fmt.Errorf("subject ID is required")
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid channel: %s", channel)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	return &Interaction{
		id:         id,
		subjectID:  subjectID,
		channel:    channel,
		status:     status,
		occurredAt: occurredAt,
		notes:      notes,
		recordedBy: recordedBy,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (i *Interaction) ID() uint                 { return i.id }
func (i *Interaction) SubjectID() uint          { return i.subjectID }
func (i *Interaction) Channel() consent.Channel { return i.channel }
func (i *Interaction) Status() Status           { return i.status }
func (i *Interaction) OccurredAt() time.Time    { return i.occurredAt }
func (i *Interaction) Notes() string            { return i.notes }
func (i *Interaction) RecordedBy() *uint        { return i.recordedBy }
func (i *Interaction) CreatedAt() time.Time     { return i.createdAt }
func (i *Interaction) UpdatedAt() time.Time     { return i.updatedAt }

// SetID assigns the persistence identifier after insertion.
func (i *Interaction) SetID(id uint) error {
	if i.id != 0 {
		return fmt.Errorf("interaction ID already set")
	}
	if id == 0 {
		return fmt.Errorf("interaction ID cannot be zero")
	}
	i.id = id
	return nil
}
