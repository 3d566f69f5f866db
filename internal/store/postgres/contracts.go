package postgres

import (
	"context"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const contractColumns = `id, asset_id, version, schema_def, compatibility_mode, guarantees, status, published_at, published_by`

// CreateContract inserts a new contract. The partial unique index
// ux_contracts_one_active_per_asset (on asset_id WHERE status = 'active')
// is what actually enforces spec.md §3's "at most one active contract per
// asset" invariant; this method surfaces that as store.ErrAlreadyExists via
// mapErr rather than re-checking it in application code.
func (db *DB) CreateContract(ctx context.Context, c *domain.Contract) error {
	const q = `INSERT INTO contracts (` + contractColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := db.conn.ExecContext(ctx, q, c.ID, c.AssetID, c.Version, c.SchemaDef, c.CompatibilityMode, c.Guarantees, c.Status, c.PublishedAt, c.PublishedBy)
	return mapErr(err)
}

func (db *DB) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	q := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	var c domain.Contract
	if err := db.conn.GetContext(ctx, &c, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (db *DB) GetActiveContract(ctx context.Context, assetID string) (*domain.Contract, error) {
	q := `SELECT ` + contractColumns + ` FROM contracts WHERE asset_id = $1 AND status = 'active'`
	var c domain.Contract
	if err := db.conn.GetContext(ctx, &c, q, assetID); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (db *DB) GetContractByVersion(ctx context.Context, assetID, version string) (*domain.Contract, error) {
	q := `SELECT ` + contractColumns + ` FROM contracts WHERE asset_id = $1 AND version = $2`
	var c domain.Contract
	if err := db.conn.GetContext(ctx, &c, q, assetID, version); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (db *DB) ListContractsByAsset(ctx context.Context, assetID string) ([]domain.Contract, error) {
	q := `SELECT ` + contractColumns + ` FROM contracts WHERE asset_id = $1 ORDER BY published_at DESC`
	var contracts []domain.Contract
	if err := db.conn.SelectContext(ctx, &contracts, q, assetID); err != nil {
		return nil, mapErr(err)
	}
	return contracts, nil
}

func (db *DB) UpdateContractStatus(ctx context.Context, id string, status domain.ContractStatus) error {
	const q = `UPDATE contracts SET status = $2 WHERE id = $1`
	res, err := db.conn.ExecContext(ctx, q, id, status)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}
