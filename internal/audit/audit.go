// Package audit provides the single append-only write path for
// AuditEvent rows, per spec.md §4.7. There is no update or delete path by
// design: Recorder.Log is the only mutation this package exposes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/idutil"
)

// Writer is the persistence-side append used by Recorder. Implementations
// must participate in the caller's transaction: an audit append cannot
// outlive a rolled-back mutation (spec.md §5).
type Writer interface {
	InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error
}

// Recorder is the single write path: log_event(entity_type, entity_id,
// action, actor_id?, payload?) from spec.md §4.7.
type Recorder struct {
	writer Writer
	now    func() time.Time
}

// NewRecorder builds a Recorder over the given Writer. now defaults to
// time.Now when nil; tests may override it for deterministic timestamps.
func NewRecorder(writer Writer, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{writer: writer, now: now}
}

// Log appends one immutable event. payload is marshaled as-is; pass nil for
// actions with no structured payload.
func (r *Recorder) Log(ctx context.Context, entityType, entityID, action string, actorID *string, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}

	event := domain.AuditEvent{
		ID:         idutil.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Payload:    raw,
		OccurredAt: r.now().UTC(),
	}

	return r.writer.InsertAuditEvent(ctx, event)
}
