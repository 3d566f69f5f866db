package postgres

import (
	"context"

	"github.com/tessera-contracts/tessera/internal/domain"
)

func (db *DB) CreateUser(ctx context.Context, u *domain.User) error {
	const q = `INSERT INTO users (id, email, name, team_id, password_hash, role, notification_preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.conn.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.TeamID, u.PasswordHash, u.Role, u.NotificationPreferences, u.CreatedAt)
	return mapErr(err)
}

func (db *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT id, email, name, team_id, password_hash, role, notification_preferences, created_at, deactivated_at
		FROM users WHERE id = $1`
	var u domain.User
	if err := db.conn.GetContext(ctx, &u, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT id, email, name, team_id, password_hash, role, notification_preferences, created_at, deactivated_at
		FROM users WHERE email = $1`
	var u domain.User
	if err := db.conn.GetContext(ctx, &u, q, email); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
