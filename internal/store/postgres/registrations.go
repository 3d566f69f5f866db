package postgres

import (
	"context"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

const registrationColumns = `id, contract_id, consumer_team_id, pinned_version, status, registered_at, acknowledged_at`

// CreateRegistration inserts a Registration row. The unique index on
// (contract_id, consumer_team_id) enforces spec.md §3's one-registration-
// per-consumer-per-contract invariant; a duplicate surfaces as
// store.ErrAlreadyExists.
func (db *DB) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	const q = `INSERT INTO registrations (` + registrationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db.conn.ExecContext(ctx, q, r.ID, r.ContractID, r.ConsumerTeamID, r.PinnedVersion, r.Status, r.RegisteredAt, r.AcknowledgedAt)
	return mapErr(err)
}

func (db *DB) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	var r domain.Registration
	if err := db.conn.GetContext(ctx, &r, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (db *DB) ListRegistrationsByContract(ctx context.Context, contractID string) ([]domain.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE contract_id = $1`
	var rs []domain.Registration
	if err := db.conn.SelectContext(ctx, &rs, q, contractID); err != nil {
		return nil, mapErr(err)
	}
	return rs, nil
}

func (db *DB) ListRegistrationsByConsumer(ctx context.Context, consumerTeamID string, page store.Page) (store.PageResult[domain.Registration], error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE consumer_team_id = $1
		ORDER BY registered_at DESC OFFSET $2 LIMIT $3`
	var rs []domain.Registration
	if err := db.conn.SelectContext(ctx, &rs, q, consumerTeamID, page.Offset, page.Limit); err != nil {
		return store.PageResult[domain.Registration]{}, mapErr(err)
	}
	total, err := db.countRows(ctx, "registrations", "consumer_team_id = $1", []interface{}{consumerTeamID})
	if err != nil {
		return store.PageResult[domain.Registration]{}, err
	}
	return store.PageResult[domain.Registration]{Items: rs, Total: total}, nil
}

func (db *DB) UpdateRegistration(ctx context.Context, r *domain.Registration) error {
	const q = `UPDATE registrations SET pinned_version = $2, status = $3, acknowledged_at = $4 WHERE id = $1`
	res, err := db.conn.ExecContext(ctx, q, r.ID, r.PinnedVersion, r.Status, r.AcknowledgedAt)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteRegistration(ctx context.Context, id string) error {
	const q = `DELETE FROM registrations WHERE id = $1`
	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}
