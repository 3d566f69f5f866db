package publication

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

// fakeStore embeds the store.Store interface so it satisfies the full
// surface by promotion; tests override only the methods Publish actually
// calls. Calling anything else panics on a nil embedded interface, which
// is the point: it flags a test that needs a new override, not a silent
// no-op.
type fakeStore struct {
	store.Store

	activeContract    *domain.Contract
	activeContractErr error
	createdContract   *domain.Contract
	createdProposal   *domain.Proposal
	deprecatedID      string
	auditEvents       []domain.AuditEvent
}

func (f *fakeStore) GetActiveContract(ctx context.Context, assetID string) (*domain.Contract, error) {
	if f.activeContractErr != nil {
		return nil, f.activeContractErr
	}
	if f.activeContract == nil {
		return nil, store.ErrNotFound
	}
	return f.activeContract, nil
}

func (f *fakeStore) CreateContract(ctx context.Context, c *domain.Contract) error {
	f.createdContract = c
	return nil
}

func (f *fakeStore) UpdateContractStatus(ctx context.Context, id string, status domain.ContractStatus) error {
	f.deprecatedID = id
	return nil
}

func (f *fakeStore) CreateProposal(ctx context.Context, p *domain.Proposal) error {
	f.createdProposal = p
	return nil
}

func (f *fakeStore) InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	f.auditEvents = append(f.auditEvents, event)
	return nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, f)
}

func TestPublish_NoPredecessor_RequiresExplicitVersion(t *testing.T) {
	s := New(&fakeStore{}, nil, nil, 0)
	_, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"}}}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
	})
	if err == nil {
		t.Fatal("expected an error for missing version with no predecessor")
	}
}

func TestPublish_NoPredecessor_Succeeds(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, nil, nil, 0)

	result, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		Version:           "1.0.0",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"}}}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.Contract.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", result.Contract.Version)
	}
	if fs.createdContract == nil {
		t.Fatal("expected a contract to be created")
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionContractPublished {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestPublish_CompatibleChange_AutoBumpsMinor(t *testing.T) {
	predecessor := &domain.Contract{
		ID:                "c-0",
		AssetID:           "a-1",
		Version:           "1.0.0",
		SchemaDef:         json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		Status:            domain.ContractStatusActive,
	}
	fs := &fakeStore{activeContract: predecessor}
	s := New(fs, nil, nil, 0)

	result, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"}},"required":["id"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.Contract.Version != "1.1.0" {
		t.Errorf("Version = %q, want 1.1.0 (auto-bumped minor)", result.Contract.Version)
	}
	if fs.deprecatedID != "c-0" {
		t.Errorf("expected predecessor c-0 to be deprecated, got %q", fs.deprecatedID)
	}
}

func TestPublish_BreakingChange_CreatesProposalWithoutForce(t *testing.T) {
	predecessor := &domain.Contract{
		ID:                "c-0",
		AssetID:           "a-1",
		Version:           "1.0.0",
		SchemaDef:         json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"}},"required":["id","email"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		Status:            domain.ContractStatusActive,
	}
	fs := &fakeStore{activeContract: predecessor}
	s := New(fs, nil, nil, 0)

	result, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.Action != ActionProposalCreated {
		t.Errorf("Action = %q, want %q", result.Action, ActionProposalCreated)
	}
	if result.Contract != nil {
		t.Error("no contract should be set on a proposal_created result")
	}
	if fs.createdContract != nil {
		t.Error("no contract should have been created")
	}
	if fs.createdProposal == nil || fs.createdProposal.Status != domain.ProposalStatusPending {
		t.Fatalf("expected a pending proposal to be created, got %+v", fs.createdProposal)
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionProposalCreated {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestPublish_BreakingChange_ForcedSucceeds(t *testing.T) {
	predecessor := &domain.Contract{
		ID:                "c-0",
		AssetID:           "a-1",
		Version:           "1.0.0",
		SchemaDef:         json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"}},"required":["id","email"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		Status:            domain.ContractStatusActive,
	}
	fs := &fakeStore{activeContract: predecessor}
	s := New(fs, nil, nil, 0)

	result, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		Version:           "2.0.0",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
		Force:             true,
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(result.BreakingChanges) == 0 {
		t.Error("expected BreakingChanges to be populated")
	}
	if fs.auditEvents[0].Action != domain.ActionContractForcePublished {
		t.Errorf("action = %q, want %q", fs.auditEvents[0].Action, domain.ActionContractForcePublished)
	}
}

func TestPublish_ExplicitVersionMustExceedPredecessor(t *testing.T) {
	predecessor := &domain.Contract{
		ID:        "c-0",
		AssetID:   "a-1",
		Version:   "2.0.0",
		SchemaDef: json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}}}`),
		Status:    domain.ContractStatusActive,
	}
	fs := &fakeStore{activeContract: predecessor}
	s := New(fs, nil, nil, 0)

	_, err := s.Publish(context.Background(), Request{
		AssetID:           "a-1",
		Version:           "1.0.0",
		SchemaDef:         []byte(`{"type":"object","properties":{"id":{"type":"string"}}}`),
		CompatibilityMode: domain.CompatibilityBackward,
		PublishedBy:       "team-a",
	})
	if err == nil {
		t.Fatal("expected rejection of a version not greater than the predecessor's")
	}
}
