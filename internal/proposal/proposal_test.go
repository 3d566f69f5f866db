package proposal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

// fakeStore embeds store.Store so it satisfies the full surface by
// promotion; tests override only the methods Service actually calls.
// Calling anything else panics on a nil embedded interface, flagging a
// test that needs a new override rather than silently no-opping.
type fakeStore struct {
	store.Store

	activeContract    *domain.Contract
	activeContractErr error

	proposal    *domain.Proposal
	proposalErr error

	createdProposal *domain.Proposal
	upsertedAck     *domain.Acknowledgment
	updatedStatus   domain.ProposalStatus
	updatedID       string
	resolvedAt      time.Time

	expirable []domain.Proposal

	auditEvents []domain.AuditEvent
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

func (f *fakeStore) CreateProposal(ctx context.Context, p *domain.Proposal) error {
	f.createdProposal = p
	return nil
}

func (f *fakeStore) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	if f.proposalErr != nil {
		return nil, f.proposalErr
	}
	if f.proposal == nil {
		return nil, store.ErrNotFound
	}
	return f.proposal, nil
}

func (f *fakeStore) UpsertAcknowledgment(ctx context.Context, a *domain.Acknowledgment) error {
	f.upsertedAck = a
	return nil
}

func (f *fakeStore) UpdateProposalStatus(ctx context.Context, id string, status domain.ProposalStatus, resolvedAt time.Time) error {
	f.updatedID = id
	f.updatedStatus = status
	f.resolvedAt = resolvedAt
	return nil
}

func (f *fakeStore) ListPendingExpirable(ctx context.Context, asOf time.Time) ([]domain.Proposal, error) {
	return f.expirable, nil
}

func (f *fakeStore) InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	f.auditEvents = append(f.auditEvents, event)
	return nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, f)
}

func activeContractFor(assetID string) *domain.Contract {
	return &domain.Contract{
		ID:                "c-0",
		AssetID:           assetID,
		Version:           "1.0.0",
		SchemaDef:         json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"}},"required":["id","email"]}`),
		CompatibilityMode: domain.CompatibilityBackward,
		Status:            domain.ContractStatusActive,
	}
}

func TestCreate_NoActiveContract_Fails(t *testing.T) {
	s := New(&fakeStore{}, nil, nil, 0)
	_, err := s.Create(context.Background(), CreateRequest{
		AssetID:        "a-1",
		ProposedSchema: []byte(`{"type":"object"}`),
		ProposedBy:     "team-a",
	})
	if err == nil {
		t.Fatal("expected an error when no active contract exists to diff against")
	}
}

func TestCreate_CompatibleChange_Rejected(t *testing.T) {
	fs := &fakeStore{activeContract: activeContractFor("a-1")}
	s := New(fs, nil, nil, 0)

	_, err := s.Create(context.Background(), CreateRequest{
		AssetID:        "a-1",
		ProposedSchema: []byte(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"},"phone":{"type":"string"}},"required":["id","email"]}`),
		ProposedBy:     "team-a",
	})
	if err == nil {
		t.Fatal("expected a non-breaking change to be rejected with a publish-directly error")
	}
}

func TestCreate_BreakingChange_Succeeds(t *testing.T) {
	fs := &fakeStore{activeContract: activeContractFor("a-1")}
	s := New(fs, nil, nil, 30*24*time.Hour)

	p, err := s.Create(context.Background(), CreateRequest{
		AssetID:        "a-1",
		ProposedSchema: []byte(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`),
		ProposedBy:     "team-a",
		AutoExpire:     true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Status != domain.ProposalStatusPending {
		t.Errorf("Status = %q, want pending", p.Status)
	}
	if p.ExpiresAt == nil {
		t.Fatal("expected ExpiresAt to be set when AutoExpire requested")
	}
	if len(p.BreakingChanges) == 0 {
		t.Error("expected breaking changes to be recorded")
	}
	if fs.createdProposal == nil {
		t.Fatal("expected a proposal row to be created")
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionProposalCreated {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestAcknowledge_Pending_Succeeds(t *testing.T) {
	fs := &fakeStore{proposal: &domain.Proposal{ID: "p-1", Status: domain.ProposalStatusPending}}
	s := New(fs, nil, nil, 0)

	ack, err := s.Acknowledge(context.Background(), AcknowledgeRequest{
		ProposalID:     "p-1",
		ConsumerTeamID: "ml-team",
		Response:       domain.ResponseApproved,
	})
	if err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}
	if ack.ConsumerTeamID != "ml-team" {
		t.Errorf("ConsumerTeamID = %q, want ml-team", ack.ConsumerTeamID)
	}
	if fs.upsertedAck == nil {
		t.Fatal("expected an acknowledgment row to be upserted")
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionProposalAcknowledged {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestAcknowledge_TerminalProposal_Rejected(t *testing.T) {
	fs := &fakeStore{proposal: &domain.Proposal{ID: "p-1", Status: domain.ProposalStatusWithdrawn}}
	s := New(fs, nil, nil, 0)

	_, err := s.Acknowledge(context.Background(), AcknowledgeRequest{
		ProposalID:     "p-1",
		ConsumerTeamID: "ml-team",
		Response:       domain.ResponseApproved,
	})
	if err == nil {
		t.Fatal("expected acknowledgment of a non-pending proposal to be rejected")
	}
}

func TestWithdraw_Pending_TransitionsToWithdrawn(t *testing.T) {
	fs := &fakeStore{proposal: &domain.Proposal{ID: "p-1", AssetID: "a-1", Status: domain.ProposalStatusPending}}
	s := New(fs, nil, nil, 0)

	if err := s.Withdraw(context.Background(), "p-1", "team-a"); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if fs.updatedStatus != domain.ProposalStatusWithdrawn {
		t.Errorf("updated status = %q, want withdrawn", fs.updatedStatus)
	}
	if fs.resolvedAt.IsZero() {
		t.Error("expected resolvedAt to be stamped")
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionProposalWithdrawn {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestWithdraw_AlreadyTerminal_Rejected(t *testing.T) {
	fs := &fakeStore{proposal: &domain.Proposal{ID: "p-1", Status: domain.ProposalStatusExpired}}
	s := New(fs, nil, nil, 0)

	if err := s.Withdraw(context.Background(), "p-1", "team-a"); err == nil {
		t.Fatal("expected withdraw of an already-terminal proposal to be rejected")
	}
}

func TestForceApprove_Pending_TransitionsToApproved(t *testing.T) {
	fs := &fakeStore{proposal: &domain.Proposal{ID: "p-1", AssetID: "a-1", Status: domain.ProposalStatusPending}}
	s := New(fs, nil, nil, 0)

	if err := s.ForceApprove(context.Background(), "p-1", "admin-1"); err != nil {
		t.Fatalf("ForceApprove() error = %v", err)
	}
	if fs.updatedStatus != domain.ProposalStatusApproved {
		t.Errorf("updated status = %q, want approved", fs.updatedStatus)
	}
	if len(fs.auditEvents) != 1 || fs.auditEvents[0].Action != domain.ActionProposalForceApproved {
		t.Errorf("audit events = %+v", fs.auditEvents)
	}
}

func TestExpireSweep_ExpiresEachCandidate(t *testing.T) {
	fs := &fakeStore{expirable: []domain.Proposal{
		{ID: "p-1", Status: domain.ProposalStatusPending},
		{ID: "p-2", Status: domain.ProposalStatusPending},
	}}
	s := New(fs, nil, nil, 0)

	n, err := s.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("ExpireSweep() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expired count = %d, want 2", n)
	}
	if len(fs.auditEvents) != 2 {
		t.Errorf("audit events = %d, want 2", len(fs.auditEvents))
	}
	for _, ev := range fs.auditEvents {
		if ev.Action != domain.ActionProposalExpired {
			t.Errorf("action = %q, want proposal.expired", ev.Action)
		}
	}
}

func TestExpireSweep_NoCandidates_NoOp(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, nil, nil, 0)

	n, err := s.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("ExpireSweep() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expired count = %d, want 0", n)
	}
}
