package domain

import "time"

// Role is a coarse user role that maps to a fixed scope set for the session
// fallback authentication path (spec.md §4.6).
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTeamAdmin Role = "team_admin"
	RoleUser      Role = "user"
)

// User is a human principal, optionally belonging to a team.
type User struct {
	ID                      string                 `json:"id" db:"id"`
	Email                   string                 `json:"email" db:"email"`
	Name                    string                 `json:"name" db:"name"`
	TeamID                  *string                `json:"team_id,omitempty" db:"team_id"`
	PasswordHash            string                 `json:"-" db:"password_hash"`
	Role                    Role                   `json:"role" db:"role"`
	NotificationPreferences JSONMap                `json:"notification_preferences,omitempty" db:"notification_preferences"`
	CreatedAt               time.Time              `json:"created_at" db:"created_at"`
	DeactivatedAt           *time.Time             `json:"deactivated_at,omitempty" db:"deactivated_at"`
}

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool {
	return u.DeactivatedAt == nil
}
