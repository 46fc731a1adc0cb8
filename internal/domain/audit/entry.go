// Package audit defines the append-only audit trail: entries are inserted
// once and never updated or deleted. The trail is the single source of truth
// for whether a state change happened.
package audit

import (
	"fmt"
	"time"
)

// Snapshot is a redacted before/after view of an entity attached to an entry.
// Snapshots carry classification fields and presence flags only; decrypted
// PII never enters the trail.
type Snapshot map[string]any

// Metadata is a flat string map with a fixed set of documented keys.
const (
	// MetaKeyType tags the kind of event, e.g. MetaTypeGDPRAnonymization.
	MetaKeyType = "type"
	// MetaKeyReportID references a generated subject access report.
	MetaKeyReportID = "report_id"
	// MetaKeyChannel records the consent channel a consent_change concerns.
	MetaKeyChannel = "channel"
	// MetaKeyStatus records the consent status a consent_change moved to.
	MetaKeyStatus = "status"
	// MetaKeyModel and MetaKeyFactors describe ai_decision entries.
	MetaKeyModel   = "model"
	MetaKeyFactors = "factors"
)

const (
	// MetaTypeGDPRAnonymization marks the delete entry written by the
	// erasure engine.
	MetaTypeGDPRAnonymization = "gdpr_anonymization"
)

type Metadata map[string]string

// Entry is one observed event. Immutable once constructed; there are no
// setters beyond SetID, which the repository calls after insertion.
type Entry struct {
	id            uint
	actorID       *uint
	action        Action
	entityType    string
	entityID      string
	previousState Snapshot
	newState      Snapshot
	originAddress string
	clientAgent   string
	metadata      Metadata
	createdAt     time.Time
}

// NewEntry creates an audit entry for the given action and target. A nil
// actorID marks a system-initiated event.
func NewEntry(actorID *uint, action Action, entityType, entityID string) (*Entry, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid audit action: %s", action)
	}
	if entityType == "" {
		return nil, fmt.Errorf("entity type is required")
	}
	if entityID == "" {
		return nil, fmt.Errorf("entity id is required")
	}

	return &Entry{
		actorID:    actorID,
		action:     action,
		entityType: entityType,
		entityID:   entityID,
		metadata:   Metadata{},
		createdAt:  time.Now().UTC(),
	}, nil
}

// ReconstructEntry rebuilds an entry from persistence.
func ReconstructEntry(
	id uint,
	actorID *uint,
	action Action,
	entityType string,
	entityID string,
	previousState Snapshot,
	newState Snapshot,
	originAddress string,
	clientAgent string,
	metadata Metadata,
	createdAt time.Time,
) (*Entry, error) {
	if id == 0 {
		return nil, fmt.Errorf("entry ID cannot be zero")
	}
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid audit action: %s", action)
	}
	if metadata == nil {
		metadata = Metadata{}
	}

	return &Entry{
		id:            id,
		actorID:       actorID,
		action:        action,
		entityType:    entityType,
		entityID:      entityID,
		previousState: previousState,
		newState:      newState,
		originAddress: originAddress,
		clientAgent:   clientAgent,
		metadata:      metadata,
		createdAt:     createdAt,
	}, nil
}

func (e *Entry) ID() uint                { return e.id }
func (e *Entry) ActorID() *uint          { return e.actorID }
func (e *Entry) Action() Action          { return e.action }
func (e *Entry) EntityType() string      { return e.entityType }
func (e *Entry) EntityID() string        { return e.entityID }
func (e *Entry) PreviousState() Snapshot { return e.previousState }
func (e *Entry) NewState() Snapshot      { return e.newState }
func (e *Entry) OriginAddress() string   { return e.originAddress }
func (e *Entry) ClientAgent() string     { return e.clientAgent }
func (e *Entry) Metadata() Metadata      { return e.metadata }
func (e *Entry) CreatedAt() time.Time    { return e.createdAt }

// SetID assigns the persistence identifier after insertion.
func (e *Entry) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("entry ID already set")
	}
	if id == 0 {
		return fmt.Errorf("entry ID cannot be zero")
	}
	e.id = id
	return nil
}

// WithStates attaches redacted before/after snapshots.
func (e *Entry) WithStates(previous, next Snapshot) *Entry {
	e.previousState = previous
	e.newState = next
	return e
}

// WithProvenance attaches request origin information.
func (e *Entry) WithProvenance(originAddress, clientAgent string) *Entry {
	e.originAddress = originAddress
	e.clientAgent = clientAgent
	return e
}

// WithMeta sets one metadata key.
func (e *Entry) WithMeta(key, value string) *Entry {
	if e.metadata == nil {
		e.metadata = Metadata{}
	}
	e.metadata[key] = value
	return e
}
