package domain

import (
	"regexp"
	"time"
)

// ResourceType enumerates the kinds of data asset Tessera tracks contracts
// for.
type ResourceType string

const (
	ResourceTypeTable    ResourceType = "table"
	ResourceTypeEndpoint ResourceType = "endpoint"
	ResourceTypeStream   ResourceType = "stream"
	ResourceTypeFile     ResourceType = "file"
)

// GuaranteeMode controls how seriously a consumer should treat an asset's
// data-quality guarantees.
type GuaranteeMode string

const (
	GuaranteeModeNotify GuaranteeMode = "notify"
	GuaranteeModeStrict GuaranteeMode = "strict"
	GuaranteeModeIgnore GuaranteeMode = "ignore"
)

// fqnSegment matches one dot-separated segment of a fully qualified name:
// starts with a letter or underscore, then letters/digits/underscores.
var fqnSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const maxFQNLength = 1000

// ValidFQN reports whether fqn conforms to spec.md §3's
// `segment(.segment)+` grammar.
func ValidFQN(fqn string) bool {
	if fqn == "" || len(fqn) > maxFQNLength {
		return false
	}
	start := 0
	segments := 0
	for i := 0; i <= len(fqn); i++ {
		if i == len(fqn) || fqn[i] == '.' {
			seg := fqn[start:i]
			if !fqnSegment.MatchString(seg) {
				return false
			}
			segments++
			start = i + 1
		}
	}
	return segments >= 2
}

// Asset is a named data artifact: a warehouse table, API endpoint, or
// stream, identified by a fully qualified name.
type Asset struct {
	ID            string                 `json:"id" db:"id"`
	FQN           string                 `json:"fqn" db:"fqn"`
	OwnerTeamID   string                 `json:"owner_team_id" db:"owner_team_id"`
	OwnerUserID   *string                `json:"owner_user_id,omitempty" db:"owner_user_id"`
	Environment   string                 `json:"environment" db:"environment"`
	ResourceType  ResourceType           `json:"resource_type" db:"resource_type"`
	GuaranteeMode GuaranteeMode          `json:"guarantee_mode" db:"guarantee_mode"`
	Metadata      JSONMap                `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	DeletedAt     *time.Time             `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the asset has been soft-deleted.
func (a *Asset) IsDeleted() bool {
	return a.DeletedAt != nil
}

// DefaultEnvironment is applied when an asset is created without one.
const DefaultEnvironment = "production"
