package impact

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/store"
)

// fakeStore models the graph from spec.md §8 Scenario E: A <- B <- C, with
// t1 consuming A's contract and t2 consuming B's contract.
type fakeStore struct {
	store.Store

	contracts     map[string]*domain.Contract
	registrations map[string][]domain.Registration
	dependents    map[string][]domain.AssetDependency
}

func (f *fakeStore) GetActiveContract(ctx context.Context, assetID string) (*domain.Contract, error) {
	c, ok := f.contracts[assetID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListRegistrationsByContract(ctx context.Context, contractID string) ([]domain.Registration, error) {
	return f.registrations[contractID], nil
}

func (f *fakeStore) ListDependentsOf(ctx context.Context, dependencyAssetID string) ([]domain.AssetDependency, error) {
	return f.dependents[dependencyAssetID], nil
}

func scenarioEStore() *fakeStore {
	schemaOld := json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"}},"required":["id","email"]}`)
	return &fakeStore{
		contracts: map[string]*domain.Contract{
			"A": {ID: "contract-A", AssetID: "A", SchemaDef: schemaOld, CompatibilityMode: domain.CompatibilityBackward, Status: domain.ContractStatusActive},
			"B": {ID: "contract-B", AssetID: "B", SchemaDef: schemaOld, CompatibilityMode: domain.CompatibilityBackward, Status: domain.ContractStatusActive},
		},
		registrations: map[string][]domain.Registration{
			"contract-A": {{ID: "r1", ContractID: "contract-A", ConsumerTeamID: "t1", Status: domain.RegistrationStatusActive}},
			"contract-B": {{ID: "r2", ContractID: "contract-B", ConsumerTeamID: "t2", Status: domain.RegistrationStatusActive}},
		},
		dependents: map[string][]domain.AssetDependency{
			"A": {{ID: "d1", DependentAssetID: "B", DependencyAssetID: "A", DependencyType: domain.DependencyConsumes}},
			"B": {{ID: "d2", DependentAssetID: "C", DependencyAssetID: "B", DependencyType: domain.DependencyConsumes}},
		},
	}
}

func TestAnalyze_TwoHopImpact(t *testing.T) {
	fs := scenarioEStore()
	s := New(fs, nil, 0, 0)

	result, err := s.Analyze(context.Background(), "A",
		[]byte(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`), 3)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.SafeToPublish {
		t.Error("expected SafeToPublish = false for a breaking change")
	}

	consumers := append([]ConsumerImpact{}, result.ImpactedConsumers...)
	sort.Slice(consumers, func(i, j int) bool { return consumers[i].TeamID < consumers[j].TeamID })
	wantConsumers := []ConsumerImpact{
		{TeamID: "t1", Level: 1},
		{TeamID: "t2", Level: 2},
	}
	if diff := cmp.Diff(wantConsumers, consumers); diff != "" {
		t.Errorf("ImpactedConsumers mismatch (-want +got):\n%s", diff)
	}

	assets := append([]AssetImpact{}, result.ImpactedAssets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].AssetID < assets[j].AssetID })
	wantAssets := []AssetImpact{
		{AssetID: "B", Level: 1},
		{AssetID: "C", Level: 2},
	}
	if diff := cmp.Diff(wantAssets, assets); diff != "" {
		t.Errorf("ImpactedAssets mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_NoActiveContract_SafeToPublish(t *testing.T) {
	fs := &fakeStore{contracts: map[string]*domain.Contract{}}
	s := New(fs, nil, 0, 0)

	result, err := s.Analyze(context.Background(), "new-asset", []byte(`{"type":"object"}`), 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !result.SafeToPublish {
		t.Error("expected SafeToPublish = true when there is no active contract")
	}
	if result.ChangeType != "minor" {
		t.Errorf("ChangeType = %q, want minor", result.ChangeType)
	}
}

func TestAnalyze_DepthClampedToMax(t *testing.T) {
	fs := scenarioEStore()
	s := New(fs, nil, 5, 10)

	result, err := s.Analyze(context.Background(), "A", []byte(`{"type":"object"}`), 99)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.TraversalDepth != 10 {
		t.Errorf("TraversalDepth = %d, want clamped to 10", result.TraversalDepth)
	}
}

func TestAnalyze_MonotoneInDepth(t *testing.T) {
	fs := scenarioEStore()
	s := New(fs, nil, 0, 0)

	shallow, err := s.Analyze(context.Background(), "A", []byte(`{"type":"object"}`), 1)
	if err != nil {
		t.Fatal(err)
	}
	deep, err := s.Analyze(context.Background(), "A", []byte(`{"type":"object"}`), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(deep.ImpactedAssets) < len(shallow.ImpactedAssets) {
		t.Errorf("impact(a,2) has fewer assets than impact(a,1): %d < %d", len(deep.ImpactedAssets), len(shallow.ImpactedAssets))
	}
}
