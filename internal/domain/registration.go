package domain

import "time"

// RegistrationStatus is a consumer's declared relationship to a contract.
type RegistrationStatus string

const (
	RegistrationStatusActive    RegistrationStatus = "active"
	RegistrationStatusMigrating RegistrationStatus = "migrating"
	RegistrationStatusInactive  RegistrationStatus = "inactive"
)

// Registration is a consumer team's declared dependency on a specific
// contract. Unique on (contract_id, consumer_team_id).
type Registration struct {
	ID              string             `json:"id" db:"id"`
	ContractID      string             `json:"contract_id" db:"contract_id"`
	ConsumerTeamID  string             `json:"consumer_team_id" db:"consumer_team_id"`
	PinnedVersion   *string            `json:"pinned_version,omitempty" db:"pinned_version"`
	Status          RegistrationStatus `json:"status" db:"status"`
	RegisteredAt    time.Time          `json:"registered_at" db:"registered_at"`
	AcknowledgedAt  *time.Time         `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
}
