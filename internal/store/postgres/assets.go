package postgres

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

func (db *DB) CreateAsset(ctx context.Context, a *domain.Asset) error {
	const q = `INSERT INTO assets (id, fqn, owner_team_id, owner_user_id, environment, resource_type, guarantee_mode, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := db.conn.ExecContext(ctx, q, a.ID, a.FQN, a.OwnerTeamID, a.OwnerUserID, a.Environment, a.ResourceType, a.GuaranteeMode, a.Metadata, a.CreatedAt)
	return mapErr(err)
}

const assetColumns = `id, fqn, owner_team_id, owner_user_id, environment, resource_type, guarantee_mode, metadata, created_at, deleted_at`

func (db *DB) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	var a domain.Asset
	if err := db.conn.GetContext(ctx, &a, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (db *DB) GetAssetByFQN(ctx context.Context, fqn, environment string) (*domain.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE fqn = $1 AND environment = $2 AND deleted_at IS NULL`
	var a domain.Asset
	if err := db.conn.GetContext(ctx, &a, q, fqn, environment); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (db *DB) ListAssetsByTeam(ctx context.Context, teamID string, page store.Page) (store.PageResult[domain.Asset], error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE owner_team_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`
	var assets []domain.Asset
	if err := db.conn.SelectContext(ctx, &assets, q, teamID, page.Offset, page.Limit); err != nil {
		return store.PageResult[domain.Asset]{}, mapErr(err)
	}
	total, err := db.countRows(ctx, "assets", "owner_team_id = $1 AND deleted_at IS NULL", []interface{}{teamID})
	if err != nil {
		return store.PageResult[domain.Asset]{}, err
	}
	return store.PageResult[domain.Asset]{Items: assets, Total: total}, nil
}

// SearchAssets implements the supplemented global-search endpoint
// (SPEC_FULL.md), matching on FQN substring.
func (db *DB) SearchAssets(ctx context.Context, query string, page store.Page) (store.PageResult[domain.Asset], error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE fqn ILIKE $1 AND deleted_at IS NULL
		ORDER BY fqn OFFSET $2 LIMIT $3`
	var assets []domain.Asset
	if err := db.conn.SelectContext(ctx, &assets, q, "%"+query+"%", page.Offset, page.Limit); err != nil {
		return store.PageResult[domain.Asset]{}, mapErr(err)
	}
	var total int
	if err := db.conn.GetContext(ctx, &total, `SELECT count(*) FROM assets WHERE fqn ILIKE $1 AND deleted_at IS NULL`, "%"+query+"%"); err != nil {
		return store.PageResult[domain.Asset]{}, mapErr(err)
	}
	return store.PageResult[domain.Asset]{Items: assets, Total: total}, nil
}

func (db *DB) UpdateAsset(ctx context.Context, a *domain.Asset) error {
	const q = `UPDATE assets SET guarantee_mode = $2, metadata = $3 WHERE id = $1 AND deleted_at IS NULL`
	res, err := db.conn.ExecContext(ctx, q, a.ID, a.GuaranteeMode, a.Metadata)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (db *DB) SoftDeleteAsset(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE assets SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := db.conn.ExecContext(ctx, q, id, at)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}
