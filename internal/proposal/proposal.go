// Package proposal implements the breaking-change sign-off workflow:
// create, acknowledge, withdraw, force-approve, and the expiration sweep,
// per spec.md §4.4.
package proposal

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/audit"
	"github.com/tessera-contracts/tessera/internal/cache"
	"github.com/tessera-contracts/tessera/internal/compatibility"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
	"github.com/tessera-contracts/tessera/internal/schemadiff"
	"github.com/tessera-contracts/tessera/internal/store"
)

// Service implements the proposal workflow.
type Service struct {
	store             store.Store
	cache             *cache.Cache
	webhooks          WebhookEnqueuer
	defaultExpiration time.Duration
	now               func() time.Time
}

// WebhookEnqueuer mirrors internal/publication.WebhookEnqueuer so both
// packages can share one background worker without importing each other.
type WebhookEnqueuer interface {
	Enqueue(ctx context.Context, eventType string, payload interface{}) error
}

// New builds a proposal Service. defaultExpiration comes from
// config.ProposalConfig.DefaultExpirationDays.
func New(st store.Store, c *cache.Cache, webhooks WebhookEnqueuer, defaultExpiration time.Duration) *Service {
	return &Service{store: st, cache: c, webhooks: webhooks, defaultExpiration: defaultExpiration, now: time.Now}
}

// CreateRequest is the input to Create.
type CreateRequest struct {
	AssetID        string
	ProposedSchema []byte
	ProposedBy     string
	AutoExpire     bool
}

// Create records a pending proposal for a breaking schema change against
// the asset's active contract. The diff is computed and stored eagerly so
// every consumer acknowledgment and the eventual publish decision work off
// the same breaking-change list (spec.md §4.4).
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Proposal, error) {
	if !domain.ValidSchemaSize(req.ProposedSchema) {
		return nil, errs.New(errs.CodeInvalidSchema, "proposed_schema exceeds maximum size or top-level property count")
	}

	active, err := s.store.GetActiveContract(ctx, req.AssetID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, errs.New(errs.CodeContractNotFound, "asset has no active contract to propose a change against")
		}
		return nil, errs.Wrap(errs.CodeInternal, "look up active contract", err)
	}

	diff, err := schemadiff.Diff(active.SchemaDef, req.ProposedSchema)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidSchema, "diff proposed schema", err)
	}
	result := compatibility.Classify(diff, compatibility.Mode(active.CompatibilityMode))
	if result.IsCompatible {
		return nil, errs.New(errs.CodeValidation, "proposed schema contains no breaking changes under the active contract's compatibility mode; publish directly instead")
	}

	now := s.now()
	p := &domain.Proposal{
		ID:              idutil.New(),
		AssetID:         req.AssetID,
		ProposedSchema:  req.ProposedSchema,
		ChangeType:      domain.ChangeType(diff.ChangeType),
		BreakingChanges: schemadiff.ChangeRecords(result.BreakingChanges),
		Status:          domain.ProposalStatusPending,
		ProposedBy:      req.ProposedBy,
		ProposedAt:      now,
		AutoExpire:      req.AutoExpire,
	}
	if req.AutoExpire {
		expires := now.Add(s.defaultExpiration)
		p.ExpiresAt = &expires
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateProposal(ctx, p); err != nil {
			return err
		}
		return logEvent(ctx, tx, "proposal", p.ID, domain.ActionProposalCreated, req.ProposedBy, map[string]interface{}{
			"change_type":      p.ChangeType,
			"breaking_changes": p.BreakingChanges,
		})
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "create proposal", err)
	}

	if s.webhooks != nil {
		_ = s.webhooks.Enqueue(ctx, "proposal.created", p)
	}
	return p, nil
}

// AcknowledgeRequest is the input to Acknowledge.
type AcknowledgeRequest struct {
	ProposalID        string
	ConsumerTeamID    string
	Response          domain.AcknowledgmentResponse
	MigrationDeadline *time.Time
	Notes             string
}

// Acknowledge records one consumer team's verdict. It never transitions
// the proposal itself: a proposal leaves pending only through a separate
// explicit action (ForceApprove, Withdraw) or the expiration sweep, per the
// Open Question decision in DESIGN.md — acknowledgments are advisory
// input, not votes that automatically tally to a resolution.
func (s *Service) Acknowledge(ctx context.Context, req AcknowledgeRequest) (*domain.Acknowledgment, error) {
	p, err := s.store.GetProposal(ctx, req.ProposalID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, errs.NotFound(errs.CodeProposalNotFound, "proposal", req.ProposalID)
		}
		return nil, errs.Wrap(errs.CodeInternal, "look up proposal", err)
	}
	if p.IsTerminal() {
		return nil, errs.New(errs.CodeConflict, "proposal is no longer pending")
	}

	ack := &domain.Acknowledgment{
		ID:                idutil.New(),
		ProposalID:        req.ProposalID,
		ConsumerTeamID:    req.ConsumerTeamID,
		Response:          req.Response,
		MigrationDeadline: req.MigrationDeadline,
		Notes:             req.Notes,
		RespondedAt:       s.now(),
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.UpsertAcknowledgment(ctx, ack); err != nil {
			return err
		}
		return logEvent(ctx, tx, "proposal", p.ID, domain.ActionProposalAcknowledged, req.ConsumerTeamID, ack)
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "acknowledge proposal", err)
	}
	return ack, nil
}

// Withdraw moves a pending proposal to withdrawn. Only the proposing team
// (or an admin, enforced by the caller via internal/auth) may withdraw.
func (s *Service) Withdraw(ctx context.Context, proposalID, actorID string) error {
	return s.resolve(ctx, proposalID, domain.ProposalStatusWithdrawn, domain.ActionProposalWithdrawn, actorID)
}

// ForceApprove moves a pending proposal to approved without requiring
// every consumer to have acknowledged — an escalation path for an admin,
// enforced by the caller.
func (s *Service) ForceApprove(ctx context.Context, proposalID, actorID string) error {
	return s.resolve(ctx, proposalID, domain.ProposalStatusApproved, domain.ActionProposalForceApproved, actorID)
}

func (s *Service) resolve(ctx context.Context, proposalID string, status domain.ProposalStatus, action, actorID string) error {
	p, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		if err == store.ErrNotFound {
			return errs.NotFound(errs.CodeProposalNotFound, "proposal", proposalID)
		}
		return errs.Wrap(errs.CodeInternal, "look up proposal", err)
	}
	if p.IsTerminal() {
		return errs.New(errs.CodeConflict, "proposal is no longer pending")
	}

	now := s.now()
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.UpdateProposalStatus(ctx, proposalID, status, now); err != nil {
			return err
		}
		return logEvent(ctx, tx, "proposal", proposalID, action, actorID, map[string]interface{}{"status": status})
	})
	if err != nil {
		return errs.Wrap(errs.CodeInternal, "resolve proposal", err)
	}
	s.cache.InvalidateLineage(ctx, p.AssetID)
	return nil
}

// ExpireSweep expires every pending proposal that the store reports as
// expirable: one whose explicit expires_at has passed, or an auto-expiring
// one whose acknowledgment migration deadlines have all passed. It is
// invoked periodically by the background
// worker started in cmd/tessera-api (SPEC_FULL.md's supplemented
// proposal-expiration sweep).
func (s *Service) ExpireSweep(ctx context.Context) (int, error) {
	now := s.now()
	expirable, err := s.store.ListPendingExpirable(ctx, now)
	if err != nil {
		return 0, errs.Wrap(errs.CodeInternal, "list expirable proposals", err)
	}

	count := 0
	for _, p := range expirable {
		err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
			if err := tx.UpdateProposalStatus(ctx, p.ID, domain.ProposalStatusExpired, now); err != nil {
				return err
			}
			return logEvent(ctx, tx, "proposal", p.ID, domain.ActionProposalExpired, "", nil)
		})
		if err != nil {
			return count, errs.Wrap(errs.CodeInternal, "expire proposal "+p.ID, err)
		}
		count++
	}
	return count, nil
}

func logEvent(ctx context.Context, tx store.Store, entityType, entityID, action, actorID string, payload interface{}) error {
	rec := audit.NewRecorder(tx, time.Now)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	return rec.Log(ctx, entityType, entityID, action, actor, payload)
}
