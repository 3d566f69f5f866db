package domain

import (
	"encoding/json"
	"time"

	"github.com/tessera-contracts/tessera/internal/schemadiff"
)

// ChangeType is the derived magnitude of a schema change, per spec.md §4.1.
type ChangeType string

const (
	ChangeTypePatch ChangeType = "patch"
	ChangeTypeMinor ChangeType = "minor"
	ChangeTypeMajor ChangeType = "major"
)

// ProposalStatus is a proposal's single terminal transition out of pending,
// per spec.md §4.4.
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusApproved  ProposalStatus = "approved"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
	ProposalStatusExpired   ProposalStatus = "expired"
)

// Proposal is a breaking change pending consumer sign-off.
type Proposal struct {
	ID              string                    `json:"id" db:"id"`
	AssetID         string                    `json:"asset_id" db:"asset_id"`
	ProposedSchema  json.RawMessage           `json:"proposed_schema" db:"proposed_schema"`
	ChangeType      ChangeType                `json:"change_type" db:"change_type"`
	BreakingChanges schemadiff.ChangeRecords  `json:"breaking_changes" db:"breaking_changes"`
	Status          ProposalStatus            `json:"status" db:"status"`
	ProposedBy      string                    `json:"proposed_by" db:"proposed_by"`
	ProposedAt      time.Time                 `json:"proposed_at" db:"proposed_at"`
	ResolvedAt      *time.Time                `json:"resolved_at,omitempty" db:"resolved_at"`
	ExpiresAt       *time.Time                `json:"expires_at,omitempty" db:"expires_at"`
	AutoExpire      bool                      `json:"auto_expire" db:"auto_expire"`
}

// IsTerminal reports whether the proposal has left the pending state.
func (p *Proposal) IsTerminal() bool {
	return p.Status != ProposalStatusPending
}

// AcknowledgmentResponse is a consumer team's verdict on a proposal.
type AcknowledgmentResponse string

const (
	ResponseApproved  AcknowledgmentResponse = "approved"
	ResponseBlocked   AcknowledgmentResponse = "blocked"
	ResponseMigrating AcknowledgmentResponse = "migrating"
)

// Acknowledgment is one consumer team's response to a proposal. Unique on
// (proposal_id, consumer_team_id).
type Acknowledgment struct {
	ID                string                  `json:"id" db:"id"`
	ProposalID        string                  `json:"proposal_id" db:"proposal_id"`
	ConsumerTeamID    string                  `json:"consumer_team_id" db:"consumer_team_id"`
	Response          AcknowledgmentResponse  `json:"response" db:"response"`
	MigrationDeadline *time.Time              `json:"migration_deadline,omitempty" db:"migration_deadline"`
	Notes             string                  `json:"notes,omitempty" db:"notes"`
	RespondedAt       time.Time               `json:"responded_at" db:"responded_at"`
}
