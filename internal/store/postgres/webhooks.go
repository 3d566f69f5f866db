package postgres

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const webhookColumns = `id, event_type, payload, url, status, attempts, last_error, last_status_code, created_at, delivered_at`

func (db *DB) EnqueueWebhook(ctx context.Context, w *domain.WebhookDelivery) error {
	const q = `INSERT INTO webhook_deliveries (` + webhookColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db.conn.ExecContext(ctx, q, w.ID, w.EventType, w.Payload, w.URL, w.Status, w.Attempts, w.LastError, w.LastStatusCode, w.CreatedAt, w.DeliveredAt)
	return mapErr(err)
}

// ClaimPending locks up to limit pending deliveries for the calling worker,
// skipping rows already locked by a concurrent worker (spec.md §4.9's
// supplemented background delivery worker runs with more than one
// replica).
func (db *DB) ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error) {
	q := `SELECT ` + webhookColumns + ` FROM webhook_deliveries
		WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1 FOR UPDATE SKIP LOCKED`
	var ws []domain.WebhookDelivery
	if err := db.conn.SelectContext(ctx, &ws, q, limit); err != nil {
		return nil, mapErr(err)
	}
	return ws, nil
}

func (db *DB) MarkDelivered(ctx context.Context, id string, at time.Time, statusCode int) error {
	const q = `UPDATE webhook_deliveries SET status = 'delivered', delivered_at = $2, last_status_code = $3, attempts = attempts + 1 WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, q, id, at, statusCode)
	return mapErr(err)
}

// RecordAttemptFailure increments attempts and records the failure detail
// of one retriable delivery attempt, leaving status=pending so a later
// ClaimPending call retries it.
func (db *DB) RecordAttemptFailure(ctx context.Context, id string, lastError string, statusCode int) error {
	const q = `UPDATE webhook_deliveries SET last_error = $2, last_status_code = $3, attempts = attempts + 1 WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, q, id, lastError, statusCode)
	return mapErr(err)
}

func (db *DB) MarkFailed(ctx context.Context, id string, lastError string, statusCode int) error {
	const q = `UPDATE webhook_deliveries SET status = 'failed', last_error = $2, last_status_code = $3, attempts = attempts + 1 WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, q, id, lastError, statusCode)
	return mapErr(err)
}
