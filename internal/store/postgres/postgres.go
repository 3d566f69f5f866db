// Package postgres implements internal/store.Store over PostgreSQL via
// sqlx and the pgx driver, following the teacher's connection-pool
// lifecycle (explicit Open/Close, configured pool limits, a context-scoped
// health check) and the candidate-then-verify error-sentinel pattern from
// axonops-schema-registry's internal/storage package.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/tessera-contracts/tessera/internal/store"
)

// pgUniqueViolation is PostgreSQL's SQLSTATE for a unique constraint
// violation.
const pgUniqueViolation = "23505"

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx, letting every query
// method below run unmodified whether or not it's inside WithTx.
type dbtx interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Config holds the connection-pool settings, mirroring
// internal/config.PersistenceConfig.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxOverflowConns int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration
}

// DB is the postgres-backed store.Store implementation.
type DB struct {
	pool *sqlx.DB
	conn dbtx
}

// Open connects to PostgreSQL through the pgx stdlib driver and applies
// the configured pool limits.
func Open(cfg Config) (*DB, error) {
	pool, err := sqlx.Connect("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns + cfg.MaxOverflowConns)
	pool.SetMaxIdleConns(cfg.MaxOpenConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return &DB{pool: pool, conn: pool}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.pool.Close()
}

// Ping verifies connectivity, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.PingContext(ctx)
}

// WithTx runs fn inside a transaction. A non-nil return rolls back;
// otherwise the transaction commits (spec.md §7: multi-statement
// operations like publish and acknowledge are atomic).
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	sqlTx, err := db.pool.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txDB := &DB{pool: db.pool, conn: sqlTx}
	if err := fn(ctx, txDB); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	return sqlTx.Commit()
}

// mapErr turns driver errors into the store package's sentinel errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}
