package auth

import (
	"context"
	"testing"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

type fakeKeyLookup struct {
	byPrefix map[string][]domain.APIKey
	touched  []string
	err      error
}

func (f *fakeKeyLookup) FindByPrefix(ctx context.Context, prefix string) ([]domain.APIKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byPrefix[prefix], nil
}

func (f *fakeKeyLookup) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	f.touched = append(f.touched, keyID)
	return nil
}

func TestAuthenticator_BootstrapKey(t *testing.T) {
	a := NewAuthenticator(&fakeKeyLookup{}, BootstrapKey{Raw: "bootstrap-secret", TeamID: "team-ops"})

	p, err := a.Authenticate(context.Background(), "bootstrap-secret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if !p.IsAdmin() || p.TeamID != "team-ops" {
		t.Errorf("principal = %+v, want admin scope and team-ops", p)
	}
}

func TestAuthenticator_ValidKey(t *testing.T) {
	gk, _ := GenerateKey("production")
	key := domain.APIKey{ID: "k1", KeyHash: gk.KeyHash, KeyPrefix: gk.KeyPrefix, TeamID: "team-a", Scopes: []domain.Scope{domain.ScopeRead, domain.ScopeWrite}}
	lookup := &fakeKeyLookup{byPrefix: map[string][]domain.APIKey{gk.KeyPrefix: {key}}}
	a := NewAuthenticator(lookup, BootstrapKey{})

	p, err := a.Authenticate(context.Background(), gk.Raw)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if p.TeamID != "team-a" || !p.HasScope(domain.ScopeWrite) {
		t.Errorf("principal = %+v", p)
	}
	if len(lookup.touched) != 1 || lookup.touched[0] != "k1" {
		t.Errorf("expected last-used touch for k1, got %v", lookup.touched)
	}
}

func TestAuthenticator_RevokedKeyRejected(t *testing.T) {
	gk, _ := GenerateKey("production")
	revoked := time.Now()
	key := domain.APIKey{ID: "k1", KeyHash: gk.KeyHash, KeyPrefix: gk.KeyPrefix, RevokedAt: &revoked}
	lookup := &fakeKeyLookup{byPrefix: map[string][]domain.APIKey{gk.KeyPrefix: {key}}}
	a := NewAuthenticator(lookup, BootstrapKey{})

	if _, err := a.Authenticate(context.Background(), gk.Raw); err == nil {
		t.Error("expected a revoked key to be rejected")
	}
}

func TestAuthenticator_ExpiredKeyRejected(t *testing.T) {
	gk, _ := GenerateKey("production")
	expired := time.Now().Add(-time.Hour)
	key := domain.APIKey{ID: "k1", KeyHash: gk.KeyHash, KeyPrefix: gk.KeyPrefix, ExpiresAt: &expired}
	lookup := &fakeKeyLookup{byPrefix: map[string][]domain.APIKey{gk.KeyPrefix: {key}}}
	a := NewAuthenticator(lookup, BootstrapKey{})

	if _, err := a.Authenticate(context.Background(), gk.Raw); err == nil {
		t.Error("expected an expired key to be rejected")
	}
}

func TestAuthenticator_MalformedKeyRejected(t *testing.T) {
	a := NewAuthenticator(&fakeKeyLookup{}, BootstrapKey{})
	if _, err := a.Authenticate(context.Background(), "garbage"); err == nil {
		t.Error("expected malformed key to be rejected")
	}
}

func TestAuthenticator_NoCandidatesRejected(t *testing.T) {
	gk, _ := GenerateKey("production")
	a := NewAuthenticator(&fakeKeyLookup{}, BootstrapKey{})
	if _, err := a.Authenticate(context.Background(), gk.Raw); err == nil {
		t.Error("expected rejection when no candidates share the key's prefix")
	}
}
