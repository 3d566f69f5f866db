package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Scope is a coarse API-key capability. Admin implies all others
// (spec.md §4.6).
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
	ScopeAdmin Scope = "admin"
)

// APIKey is a stored, hashed API credential. The raw key is never
// persisted; only its salted hash and a short lookup prefix are.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	KeyHash    string     `json:"-" db:"key_hash"`
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"`
	Name       string     `json:"name" db:"name"`
	TeamID     string     `json:"team_id" db:"team_id"`
	Scopes     ScopeList  `json:"scopes" db:"scopes"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// HasScope reports whether the key carries scope s directly or via admin.
func (k *APIKey) HasScope(s Scope) bool {
	for _, have := range k.Scopes {
		if have == ScopeAdmin || have == s {
			return true
		}
	}
	return false
}

// IsUsable reports whether the key is neither revoked nor expired as of now.
func (k *APIKey) IsUsable(now time.Time) bool {
	if k.RevokedAt != nil {
		return false
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}

// ScopeList is a Postgres text[] scoped column, stored and read back as a
// native array rather than JSON.
type ScopeList []Scope

// Value implements driver.Valuer using Postgres array literal syntax.
func (s ScopeList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	parts := make([]string, len(s))
	for i, scope := range s {
		parts[i] = string(scope)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Scan implements sql.Scanner for the "{a,b,c}" Postgres array wire format.
func (s *ScopeList) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw string
	switch v := src.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("ScopeList.Scan: unsupported source type %T", src)
	}
	raw = strings.TrimPrefix(strings.TrimSuffix(raw, "}"), "{")
	if raw == "" {
		*s = ScopeList{}
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(ScopeList, len(parts))
	for i, p := range parts {
		out[i] = Scope(p)
	}
	*s = out
	return nil
}
