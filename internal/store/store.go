// Package store defines the persistence interfaces every workflow package
// (publication, proposal, impact) programs against, and the sentinel
// errors a concrete backend (internal/store/postgres) must surface so
// callers can distinguish "not found" and "already exists" from opaque
// infrastructure failures.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

// Sentinel errors returned by every Store implementation. Callers compare
// with errors.Is; concrete backends wrap driver-specific errors (e.g. a
// pgx unique-violation) into these before returning.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Page describes an offset-limit page request, per spec.md's pagination
// supplement.
type Page struct {
	Offset int
	Limit  int
}

// PageResult wraps a page of results with the total row count, so callers
// can compute whether more pages remain.
type PageResult[T any] struct {
	Items []T
	Total int
}

// TeamStore persists Team rows.
type TeamStore interface {
	CreateTeam(ctx context.Context, t *domain.Team) error
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	ListTeams(ctx context.Context, page Page) (PageResult[domain.Team], error)
	SoftDeleteTeam(ctx context.Context, id string, at time.Time) error
}

// UserStore persists User rows.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AssetStore persists Asset rows.
type AssetStore interface {
	CreateAsset(ctx context.Context, a *domain.Asset) error
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	GetAssetByFQN(ctx context.Context, fqn, environment string) (*domain.Asset, error)
	ListAssetsByTeam(ctx context.Context, teamID string, page Page) (PageResult[domain.Asset], error)
	SearchAssets(ctx context.Context, query string, page Page) (PageResult[domain.Asset], error)
	UpdateAsset(ctx context.Context, a *domain.Asset) error
	SoftDeleteAsset(ctx context.Context, id string, at time.Time) error
}

// ContractStore persists Contract rows, including the "at most one active
// contract per asset" invariant (spec.md §3) enforced by the backend's
// schema (a partial unique index), not by application-level locking.
type ContractStore interface {
	CreateContract(ctx context.Context, c *domain.Contract) error
	GetContract(ctx context.Context, id string) (*domain.Contract, error)
	GetActiveContract(ctx context.Context, assetID string) (*domain.Contract, error)
	GetContractByVersion(ctx context.Context, assetID, version string) (*domain.Contract, error)
	ListContractsByAsset(ctx context.Context, assetID string) ([]domain.Contract, error)
	UpdateContractStatus(ctx context.Context, id string, status domain.ContractStatus) error
}

// RegistrationStore persists Registration rows, unique on (contract_id,
// consumer_team_id).
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, r *domain.Registration) error
	GetRegistration(ctx context.Context, id string) (*domain.Registration, error)
	ListRegistrationsByContract(ctx context.Context, contractID string) ([]domain.Registration, error)
	ListRegistrationsByConsumer(ctx context.Context, consumerTeamID string, page Page) (PageResult[domain.Registration], error)
	UpdateRegistration(ctx context.Context, r *domain.Registration) error
	DeleteRegistration(ctx context.Context, id string) error
}

// ProposalStore persists Proposal and Acknowledgment rows.
type ProposalStore interface {
	CreateProposal(ctx context.Context, p *domain.Proposal) error
	GetProposal(ctx context.Context, id string) (*domain.Proposal, error)
	ListProposalsByAsset(ctx context.Context, assetID string) ([]domain.Proposal, error)
	ListPendingExpirable(ctx context.Context, asOf time.Time) ([]domain.Proposal, error)
	UpdateProposalStatus(ctx context.Context, id string, status domain.ProposalStatus, resolvedAt time.Time) error

	UpsertAcknowledgment(ctx context.Context, a *domain.Acknowledgment) error
	ListAcknowledgments(ctx context.Context, proposalID string) ([]domain.Acknowledgment, error)
}

// DependencyStore persists AssetDependency rows.
type DependencyStore interface {
	CreateDependency(ctx context.Context, d *domain.AssetDependency) error
	ListDependenciesOf(ctx context.Context, dependentAssetID string) ([]domain.AssetDependency, error)
	ListDependentsOf(ctx context.Context, dependencyAssetID string) ([]domain.AssetDependency, error)
	DeleteDependency(ctx context.Context, id string) error
}

// AuditFilter narrows a ListAuditEvents query. Every field is optional;
// a zero value (empty string / zero time) omits that predicate, per
// spec.md §4.7 "filter by entity, actor, action, and time range".
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Since      time.Time
	Until      time.Time
}

// AuditStore appends AuditEvent rows; it is the concrete Writer that
// internal/audit.Recorder talks to.
type AuditStore interface {
	InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error
	ListAuditEvents(ctx context.Context, filter AuditFilter, page Page) (PageResult[domain.AuditEvent], error)
}

// APIKeyStore persists APIKey rows and implements auth.KeyLookup.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, k *domain.APIKey) error
	FindByPrefix(ctx context.Context, prefix string) ([]domain.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
	RevokeAPIKey(ctx context.Context, id string, at time.Time) error
	ListAPIKeysByTeam(ctx context.Context, teamID string) ([]domain.APIKey, error)
}

// WebhookStore persists WebhookDelivery rows for the background worker.
type WebhookStore interface {
	EnqueueWebhook(ctx context.Context, w *domain.WebhookDelivery) error
	ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error)
	MarkDelivered(ctx context.Context, id string, at time.Time, statusCode int) error
	// RecordAttemptFailure increments attempts and records the error/status
	// for a retriable failure, leaving status=pending for the next sweep.
	RecordAttemptFailure(ctx context.Context, id string, lastError string, statusCode int) error
	// MarkFailed marks a delivery permanently failed after exhausting the
	// configured retry policy (internal/webhook.Config.MaxAttempts).
	MarkFailed(ctx context.Context, id string, lastError string, statusCode int) error
}

// Store is the full persistence surface, implemented by
// internal/store/postgres.DB. Workflow packages depend on the narrower
// per-entity interfaces above; Store exists for wiring in cmd/tessera-api.
type Store interface {
	TeamStore
	UserStore
	AssetStore
	ContractStore
	RegistrationStore
	ProposalStore
	DependencyStore
	AuditStore
	APIKeyStore
	WebhookStore

	// WithTx runs fn inside a single database transaction, committing on a
	// nil return and rolling back otherwise. Workflow packages use this to
	// make multi-statement operations (publish, acknowledge) atomic.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
