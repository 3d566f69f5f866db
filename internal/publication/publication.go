// Package publication implements the contract publication state machine:
// no-predecessor, compatible, breaking-without-force, and breaking-with-
// force paths, per spec.md §4.2.
package publication

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
	"github.com/tessera-contracts/tessera/internal/semver"
	"github.com/tessera-contracts/tessera/internal/store"
)

// Action enumerates the possible outcomes of a Publish call, per the
// action field of spec.md §6's response envelope.
type Action string

const (
	ActionPublished       Action = "published"
	ActionForcePublished  Action = "force_published"
	ActionProposalCreated Action = "proposal_created"
)

// Request is the input to Publish.
type Request struct {
	AssetID           string
	Version           string // optional; empty triggers auto-bump
	SchemaDef         []byte
	CompatibilityMode domain.CompatibilityMode
	Guarantees        *domain.Guarantees
	PublishedBy       string
	Force             bool // publishes a breaking change instead of creating a proposal
}

// Service implements the publish operation.
type Service struct {
	store             store.Store
	cache             *cache.Cache
	webhooks          WebhookEnqueuer
	defaultExpiration time.Duration
	now               func() time.Time
}

// WebhookEnqueuer lets publication enqueue a notification without importing
// internal/webhook directly (avoiding an import cycle, since the webhook
// worker depends on store, not on publication).
type WebhookEnqueuer interface {
	Enqueue(ctx context.Context, eventType string, payload interface{}) error
}

// New builds a publication Service. The audit trail is always written
// through the transaction's own Store (see auditOn), so Service needs no
// separate *audit.Recorder dependency. defaultExpiration comes from
// config.ProposalConfig.DefaultExpirationDays and seeds Proposal.ExpiresAt
// when a breaking change falls through to the proposal path.
func New(st store.Store, c *cache.Cache, webhooks WebhookEnqueuer, defaultExpiration time.Duration) *Service {
	return &Service{store: st, cache: c, webhooks: webhooks, defaultExpiration: defaultExpiration, now: time.Now}
}

// Result reports the outcome of a publish attempt.
type Result struct {
	Action          Action
	Contract        *domain.Contract // set when Action is published or force_published
	Proposal        *domain.Proposal // set when Action is proposal_created
	ChangeType      schemadiff.ChangeType
	BreakingChanges []schemadiff.ChangeRecord
}

// Publish runs the publication state machine described in spec.md §4.3:
//  1. No predecessor active contract: publish outright (version required).
//  2. Predecessor exists, diff is compatible under the contract's mode:
//     deprecate predecessor, publish new version (auto-bumped if omitted).
//  3. Predecessor exists, diff is breaking, Force is false: insert a
//     pending Proposal instead of a contract; Result.Action is
//     ActionProposalCreated and Result.Contract is nil.
//  4. Predecessor exists, diff is breaking, Force is true: publish anyway,
//     recording the breaking changes on the new contract's audit trail.
func (s *Service) Publish(ctx context.Context, req Request) (*Result, error) {
	if !domain.ValidSchemaSize(req.SchemaDef) {
		return nil, errs.New(errs.CodeInvalidSchema, "schema_def exceeds maximum size or top-level property count")
	}

	predecessor, err := s.store.GetActiveContract(ctx, req.AssetID)
	if err != nil && err != store.ErrNotFound {
		return nil, errs.Wrap(errs.CodeInternal, "look up active contract", err)
	}

	var (
		changeType      schemadiff.ChangeType
		breakingChanges []schemadiff.ChangeRecord
		compatible      = true
	)

	if predecessor != nil {
		diff, err := schemadiff.Diff(predecessor.SchemaDef, req.SchemaDef)
		if err != nil {
			return nil, errs.Wrap(errs.CodeInvalidSchema, "diff against active contract", err)
		}
		changeType = diff.ChangeType
		result := compatibility.Classify(diff, compatibility.Mode(req.CompatibilityMode))
		compatible = result.IsCompatible
		breakingChanges = result.BreakingChanges

		if !compatible && !req.Force {
			return s.createProposal(ctx, req, changeType, breakingChanges)
		}
	}

	version, err := s.resolveVersion(req.Version, predecessor, changeType)
	if err != nil {
		return nil, err
	}

	contract := &domain.Contract{
		ID:                idutil.New(),
		AssetID:           req.AssetID,
		Version:           version,
		SchemaDef:         req.SchemaDef,
		CompatibilityMode: req.CompatibilityMode,
		Guarantees:        req.Guarantees,
		Status:            domain.ContractStatusActive,
		PublishedAt:       s.now(),
		PublishedBy:       req.PublishedBy,
	}

	auditAction := domain.ActionContractPublished
	resultAction := ActionPublished
	if !compatible && req.Force {
		auditAction = domain.ActionContractForcePublished
		resultAction = ActionForcePublished
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if predecessor != nil {
			if err := tx.UpdateContractStatus(ctx, predecessor.ID, domain.ContractStatusDeprecated); err != nil {
				return err
			}
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}
		payload := map[string]interface{}{
			"version":     contract.Version,
			"change_type": string(changeType),
		}
		if len(breakingChanges) > 0 {
			payload["breaking_changes"] = breakingChanges
		}
		return auditOn(ctx, tx, "contract", contract.ID, auditAction, req.PublishedBy, payload)
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "publish contract", err)
	}

	s.cache.InvalidateContract(ctx, contract.ID, req.AssetID)

	if s.webhooks != nil {
		eventType := "contract.published"
		if resultAction == ActionForcePublished {
			eventType = "contract.force_published"
		}
		_ = s.webhooks.Enqueue(ctx, eventType, contract)
	}

	return &Result{Action: resultAction, Contract: contract, ChangeType: changeType, BreakingChanges: breakingChanges}, nil
}

// createProposal implements spec.md §4.3 state transition 3: a breaking
// change with force=false never reaches the contract table. It becomes a
// pending Proposal instead, leaving the predecessor contract untouched.
func (s *Service) createProposal(ctx context.Context, req Request, changeType schemadiff.ChangeType, breakingChanges []schemadiff.ChangeRecord) (*Result, error) {
	now := s.now()
	p := &domain.Proposal{
		ID:              idutil.New(),
		AssetID:         req.AssetID,
		ProposedSchema:  req.SchemaDef,
		ChangeType:      domain.ChangeType(changeType),
		BreakingChanges: schemadiff.ChangeRecords(breakingChanges),
		Status:          domain.ProposalStatusPending,
		ProposedBy:      req.PublishedBy,
		ProposedAt:      now,
		AutoExpire:      true,
	}
	if s.defaultExpiration > 0 {
		expires := now.Add(s.defaultExpiration)
		p.ExpiresAt = &expires
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateProposal(ctx, p); err != nil {
			return err
		}
		return auditOn(ctx, tx, "proposal", p.ID, domain.ActionProposalCreated, req.PublishedBy, map[string]interface{}{
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

	return &Result{
		Action:          ActionProposalCreated,
		Proposal:        p,
		ChangeType:      changeType,
		BreakingChanges: breakingChanges,
	}, nil
}

// resolveVersion applies spec.md §4.3's version rules: an explicit version
// must parse and must exceed the predecessor's; an omitted version is
// auto-bumped by changeType when a predecessor exists, and rejected
// outright when there is none (see DESIGN.md's Open Question decision).
func (s *Service) resolveVersion(requested string, predecessor *domain.Contract, changeType schemadiff.ChangeType) (string, error) {
	if requested != "" {
		v, err := semver.Parse(requested)
		if err != nil {
			return "", errs.Wrap(errs.CodeInvalidVersion, "parse version", err)
		}
		if predecessor != nil {
			prev, err := semver.Parse(predecessor.Version)
			if err != nil {
				return "", errs.Wrap(errs.CodeInternal, "parse predecessor version", err)
			}
			if v.Compare(prev) <= 0 {
				return "", errs.New(errs.CodeInvalidVersion, "version must be greater than the active contract's version")
			}
		}
		return v.String(), nil
	}

	if predecessor == nil {
		return "", errs.New(errs.CodeInvalidVersion, "version is required for a contract with no predecessor")
	}

	prev, err := semver.Parse(predecessor.Version)
	if err != nil {
		return "", errs.Wrap(errs.CodeInternal, "parse predecessor version", err)
	}
	bumped := prev.ApplyBump(bumpFor(changeType))
	return bumped.String(), nil
}

func bumpFor(ct schemadiff.ChangeType) semver.Bump {
	switch ct {
	case schemadiff.ChangeTypeMajor:
		return semver.BumpMajor
	case schemadiff.ChangeTypeMinor:
		return semver.BumpMinor
	default:
		return semver.BumpPatch
	}
}

// auditOn records an audit event using tx as the writer, so the entry
// commits atomically with the rest of the transaction.
func auditOn(ctx context.Context, tx store.Store, entityType, entityID, action, actorID string, payload interface{}) error {
	rec := audit.NewRecorder(tx, time.Now)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	return rec.Log(ctx, entityType, entityID, action, actor, payload)
}
