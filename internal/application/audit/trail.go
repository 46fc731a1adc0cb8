// Package audit provides the application service around the append-only
// trail. Mutation entries ride inside the caller's transaction so a failed
// append rolls the mutation back with it; observation entries are recorded
// best-effort off the request path.
package audit

import (
	"context"

	"pharos/internal/domain/audit"
	"pharos/internal/shared/goroutine"
	"pharos/internal/shared/logger"
)

// Provenance carries request-origin attribution for an entry.
type Provenance struct {
	ActorID       *uint
	OriginAddress string
	ClientAgent   string
}

// Trail is the write and query surface of the audit log.
type Trail struct {
	repo   audit.Repository
	logger logger.Interface
}

func NewTrail(repo audit.Repository, logger logger.Interface) *Trail {
	return &Trail{
		repo:   repo,
		logger: logger,
	}
}

// Record appends a mutation entry. It participates in the ambient transaction
// from the context: callers wrap the mutation and this call in one
// transaction, so the entry and the change commit or roll back together.
func (t *Trail) Record(ctx context.Context, prov Provenance, action audit.Action, entityType, entityID string, previous, next audit.Snapshot, meta audit.Metadata) error {
	entry, err := audit.NewEntry(prov.ActorID, action, entityType, entityID)
	if err != nil {
		return err
	}
	entry.WithStates(previous, next).WithProvenance(prov.OriginAddress, prov.ClientAgent)
	for k, v := range meta {
		entry.WithMeta(k, v)
	}

	return t.repo.Append(ctx, entry)
}

// RecordView logs a read of decrypted PII asynchronously. View entries never
// block or fail the read they document; an append failure is logged and
// dropped.
func (t *Trail) RecordView(ctx context.Context, prov Provenance, entityType, entityID string) {
	entry, err := audit.NewEntry(prov.ActorID, audit.ActionView, entityType, entityID)
	if err != nil {
		t.logger.Errorw("failed to build view audit entry",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return
	}
	entry.WithProvenance(prov.OriginAddress, prov.ClientAgent)

	goroutine.SafeGo(t.logger, "audit.record_view", func() {
		// Detached from the request context so cancellation of the read
		// does not lose the entry.
		if err := t.repo.Append(context.Background(), entry); err != nil {
			t.logger.Errorw("failed to append view audit entry",
				"entity_type", entityType, "entity_id", entityID, "error", err)
		}
	})
}

// Query returns entries matching the filter, newest first, with total count.
func (t *Trail) Query(ctx context.Context, filter audit.Filter) ([]*audit.Entry, int64, error) {
	return t.repo.List(ctx, filter)
}

// History returns one entity's full trail in ascending creation order.
func (t *Trail) History(ctx context.Context, entityType, entityID string) ([]*audit.Entry, error) {
	return t.repo.ListForEntity(ctx, entityType, entityID)
}

// VerifyIntegrity loads one entity's history and checks its shape.
func (t *Trail) VerifyIntegrity(ctx context.Context, entityType, entityID string) (audit.IntegrityResult, error) {
	entries, err := t.repo.ListForEntity(ctx, entityType, entityID)
	if err != nil {
		return audit.IntegrityResult{}, err
	}
	return audit.CheckIntegrity(entries), nil
}
