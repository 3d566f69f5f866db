package domain

import (
	"encoding/json"
	"time"
)

// CompatibilityMode selects which structural changes count as breaking for
// a contract, per spec.md §4.2.
type CompatibilityMode string

const (
	CompatibilityBackward CompatibilityMode = "backward"
	CompatibilityForward  CompatibilityMode = "forward"
	CompatibilityFull     CompatibilityMode = "full"
	CompatibilityNone     CompatibilityMode = "none"
)

// ContractStatus is a contract's lifecycle state.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusDeprecated ContractStatus = "deprecated"
	ContractStatusRetired    ContractStatus = "retired"
)

// MaxSchemaBytes is the serialized size cap for a contract's schema_def,
// per spec.md §3.
const MaxSchemaBytes = 1 << 20

// MaxSchemaTopLevelProperties caps the number of top-level properties in a
// contract's schema_def, per spec.md §3.
const MaxSchemaTopLevelProperties = 1000

// ValidSchemaSize reports whether schemaDef is within the serialized-size
// and top-level-property-count caps of spec.md §3. A schema that fails to
// unmarshal as an object is reported valid here; schemadiff.Diff is the
// one place a malformed schema is rejected, so the error message names
// the actual parse failure instead of a generic size complaint.
func ValidSchemaSize(schemaDef json.RawMessage) bool {
	if len(schemaDef) > MaxSchemaBytes {
		return false
	}
	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(schemaDef, &doc); err != nil {
		return true
	}
	return len(doc.Properties) <= MaxSchemaTopLevelProperties
}

// Guarantees is the structured sub-document describing data-quality
// commitments attached to a contract.
type Guarantees struct {
	Freshness       *FreshnessGuarantee `json:"freshness,omitempty"`
	Volume          *VolumeGuarantee    `json:"volume,omitempty"`
	Nullability     map[string]bool     `json:"nullability,omitempty"`
	AcceptedValues  map[string][]string `json:"accepted_values,omitempty"`
}

// FreshnessGuarantee bounds how stale the asset's data may be.
type FreshnessGuarantee struct {
	MaxLagMinutes int `json:"max_lag_minutes"`
}

// VolumeGuarantee bounds expected row/event volume.
type VolumeGuarantee struct {
	MinRows int64 `json:"min_rows,omitempty"`
	MaxRows int64 `json:"max_rows,omitempty"`
}

// Contract is a versioned schema, plus optional guarantees, governing one
// asset. At most one contract per asset may have status=active at any time
// (spec.md §3 invariant, enforced by a partial unique index in storage).
type Contract struct {
	ID                string             `json:"id" db:"id"`
	AssetID           string             `json:"asset_id" db:"asset_id"`
	Version           string             `json:"version" db:"version"`
	SchemaDef         json.RawMessage    `json:"schema_def" db:"schema_def"`
	CompatibilityMode CompatibilityMode  `json:"compatibility_mode" db:"compatibility_mode"`
	Guarantees        *Guarantees        `json:"guarantees,omitempty" db:"guarantees"`
	Status            ContractStatus     `json:"status" db:"status"`
	PublishedAt       time.Time          `json:"published_at" db:"published_at"`
	PublishedBy       string             `json:"published_by" db:"published_by"`
}
