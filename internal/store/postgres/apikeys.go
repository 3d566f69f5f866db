package postgres

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

const apiKeyColumns = `id, key_hash, key_prefix, name, team_id, scopes, expires_at, revoked_at, last_used_at, created_at`

func (db *DB) CreateAPIKey(ctx context.Context, k *domain.APIKey) error {
	const q = `INSERT INTO api_keys (` + apiKeyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db.conn.ExecContext(ctx, q, k.ID, k.KeyHash, k.KeyPrefix, k.Name, k.TeamID, k.Scopes, k.ExpiresAt, k.RevokedAt, k.LastUsedAt, k.CreatedAt)
	return mapErr(err)
}

// FindByPrefix implements auth.KeyLookup: it returns every non-revoked,
// unexpired key sharing prefix, leaving per-candidate hash verification
// to internal/auth (spec.md §4.6 step 2).
func (db *DB) FindByPrefix(ctx context.Context, prefix string) ([]domain.APIKey, error) {
	q := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE key_prefix = $1 AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > now())`
	var keys []domain.APIKey
	if err := db.conn.SelectContext(ctx, &keys, q, prefix); err != nil {
		return nil, mapErr(err)
	}
	return keys, nil
}

func (db *DB) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	const q = `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`
	_, err := db.conn.ExecContext(ctx, q, keyID, at)
	return mapErr(err)
}

func (db *DB) RevokeAPIKey(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE api_keys SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	res, err := db.conn.ExecContext(ctx, q, id, at)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (db *DB) ListAPIKeysByTeam(ctx context.Context, teamID string) ([]domain.APIKey, error) {
	q := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE team_id = $1 ORDER BY created_at DESC`
	var keys []domain.APIKey
	if err := db.conn.SelectContext(ctx, &keys, q, teamID); err != nil {
		return nil, mapErr(err)
	}
	return keys, nil
}
