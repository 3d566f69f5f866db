package postgres

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

func (db *DB) CreateTeam(ctx context.Context, t *domain.Team) error {
	const q = `INSERT INTO teams (id, name, metadata, created_at) VALUES ($1, $2, $3, $4)`
	_, err := db.conn.ExecContext(ctx, q, t.ID, t.Name, t.Metadata, t.CreatedAt)
	return mapErr(err)
}

func (db *DB) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	const q = `SELECT id, name, metadata, created_at, deleted_at FROM teams WHERE id = $1`
	var t domain.Team
	if err := db.conn.GetContext(ctx, &t, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (db *DB) ListTeams(ctx context.Context, page store.Page) (store.PageResult[domain.Team], error) {
	const q = `SELECT id, name, metadata, created_at, deleted_at FROM teams
		WHERE deleted_at IS NULL ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	var teams []domain.Team
	if err := db.conn.SelectContext(ctx, &teams, q, page.Offset, page.Limit); err != nil {
		return store.PageResult[domain.Team]{}, mapErr(err)
	}
	total, err := db.countRows(ctx, "teams", "deleted_at IS NULL", nil)
	if err != nil {
		return store.PageResult[domain.Team]{}, err
	}
	return store.PageResult[domain.Team]{Items: teams, Total: total}, nil
}

func (db *DB) SoftDeleteTeam(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE teams SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := db.conn.ExecContext(ctx, q, id, at)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// countRows builds "SELECT count(*) FROM <table> WHERE <where>" with
// placeholder args bound positionally, never string-concatenated, even
// though table/where are trusted call-site constants in this codebase.
func (db *DB) countRows(ctx context.Context, table, where string, args []interface{}) (int, error) {
	q := "SELECT count(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := db.conn.GetContext(ctx, &n, q, args...); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func requireAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
