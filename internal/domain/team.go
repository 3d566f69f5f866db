// Package domain holds Tessera's entity types, exactly as enumerated in
// spec.md §3. These are plain structs: persistence-agnostic, with json and
// db tags for the HTTP and sqlx boundaries respectively.
package domain

import "time"

// Team owns assets and registers as a consumer of others' contracts.
type Team struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Metadata  JSONMap    `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the team has been soft-deleted.
func (t *Team) IsDeleted() bool {
	return t.DeletedAt != nil
}
