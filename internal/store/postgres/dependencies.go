package postgres

import (
	"context"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const dependencyColumns = `id, dependent_asset_id, dependency_asset_id, dependency_type, created_at`

// CreateDependency inserts an AssetDependency edge. Self-loops are
// rejected at the HTTP layer (internal/httpapi), not here: the
// constraint this relies on is the unique index on the ordered pair, which
// surfaces a repeat edge as store.ErrAlreadyExists.
func (db *DB) CreateDependency(ctx context.Context, d *domain.AssetDependency) error {
	const q = `INSERT INTO asset_dependencies (` + dependencyColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := db.conn.ExecContext(ctx, q, d.ID, d.DependentAssetID, d.DependencyAssetID, d.DependencyType, d.CreatedAt)
	return mapErr(err)
}

func (db *DB) ListDependenciesOf(ctx context.Context, dependentAssetID string) ([]domain.AssetDependency, error) {
	q := `SELECT ` + dependencyColumns + ` FROM asset_dependencies WHERE dependent_asset_id = $1`
	var deps []domain.AssetDependency
	if err := db.conn.SelectContext(ctx, &deps, q, dependentAssetID); err != nil {
		return nil, mapErr(err)
	}
	return deps, nil
}

func (db *DB) ListDependentsOf(ctx context.Context, dependencyAssetID string) ([]domain.AssetDependency, error) {
	q := `SELECT ` + dependencyColumns + ` FROM asset_dependencies WHERE dependency_asset_id = $1`
	var deps []domain.AssetDependency
	if err := db.conn.SelectContext(ctx, &deps, q, dependencyAssetID); err != nil {
		return nil, mapErr(err)
	}
	return deps, nil
}

func (db *DB) DeleteDependency(ctx context.Context, id string) error {
	const q = `DELETE FROM asset_dependencies WHERE id = $1`
	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}
