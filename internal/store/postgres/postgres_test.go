package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	pool := sqlx.NewDb(sqlDB, "pgx")
	return &DB{pool: pool, conn: pool}, mock
}

func TestCreateTeam_Success(t *testing.T) {
	db, mock := newMockDB(t)
	team := &domain.Team{ID: "t-1", Name: "data-platform", CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO teams").
		WithArgs(team.ID, team.Name, team.Metadata, team.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := db.CreateTeam(context.Background(), team); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTeam_DuplicateMapsToAlreadyExists(t *testing.T) {
	db, mock := newMockDB(t)
	team := &domain.Team{ID: "t-1", Name: "data-platform", CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO teams").
		WithArgs(team.ID, team.Name, team.Metadata, team.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := db.CreateTeam(context.Background(), team)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("CreateTeam() error = %v, want store.ErrAlreadyExists", err)
	}
}

func TestGetTeam_NotFoundMapsToErrNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM teams").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "metadata", "created_at", "deleted_at"}))

	_, err := db.GetTeam(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetTeam() error = %v, want store.ErrNotFound", err)
	}
}

func TestSoftDeleteTeam_NoRowsAffectedIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE teams SET deleted_at").
		WithArgs("t-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.SoftDeleteTeam(context.Background(), "t-1", time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("SoftDeleteTeam() error = %v, want store.ErrNotFound", err)
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(ctx context.Context, tx store.Store) error {
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.WithTx(context.Background(), func(ctx context.Context, tx store.Store) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
