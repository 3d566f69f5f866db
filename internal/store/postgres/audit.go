package postgres

import (
	"context"
	"fmt"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

// InsertAuditEvent appends one audit row. seq_no is a database-generated
// bigserial, guaranteeing insertion-order tie-breaking even when two
// events share an occurred_at timestamp (spec.md §5 "Ordering
// guarantees"). There is deliberately no UpdateAuditEvent or
// DeleteAuditEvent method anywhere in this package: audit_events is
// append-only (spec.md §4.7).
func (db *DB) InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	const q = `INSERT INTO audit_events (id, entity_type, entity_id, action, actor_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db.conn.ExecContext(ctx, q, event.ID, event.EntityType, event.EntityID, event.Action, event.ActorID, event.Payload, event.OccurredAt)
	return mapErr(err)
}

// ListAuditEvents applies every non-zero field of filter as an AND'd
// predicate, per spec.md §4.7's "filter by entity, actor, action, and time
// range". Results are always ordered (occurred_at, seq_no) ascending to
// match the totally-ordered-within-one-entity guarantee in spec.md §5.
func (db *DB) ListAuditEvents(ctx context.Context, filter store.AuditFilter, page store.Page) (store.PageResult[domain.AuditEvent], error) {
	where, args := auditWhere(filter)

	q := fmt.Sprintf(`SELECT id, entity_type, entity_id, action, actor_id, payload, occurred_at, seq_no
		FROM audit_events WHERE %s
		ORDER BY occurred_at ASC, seq_no ASC OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	args = append(args, page.Offset, page.Limit)

	var events []domain.AuditEvent
	if err := db.conn.SelectContext(ctx, &events, q, args...); err != nil {
		return store.PageResult[domain.AuditEvent]{}, mapErr(err)
	}

	total, err := db.countRows(ctx, "audit_events", where, args[:len(args)-2])
	if err != nil {
		return store.PageResult[domain.AuditEvent]{}, err
	}
	return store.PageResult[domain.AuditEvent]{Items: events, Total: total}, nil
}

// auditWhere builds an AND'd predicate from filter's non-zero fields,
// defaulting to "true" so the query is always well-formed when every
// field is omitted.
func auditWhere(filter store.AuditFilter) (string, []interface{}) {
	clauses := []string{"true"}
	var args []interface{}

	add := func(clause, value string) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.EntityType != "" {
		add("entity_type = $%d", filter.EntityType)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	where := clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}
