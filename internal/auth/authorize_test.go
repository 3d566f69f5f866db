package auth

import (
	"testing"

	"github.com/tessera-contracts/tessera/internal/domain"
)

func TestPrincipal_HasScope_AdminImpliesAll(t *testing.T) {
	p := Principal{Scopes: []domain.Scope{domain.ScopeAdmin}}
	if !p.HasScope(domain.ScopeRead) || !p.HasScope(domain.ScopeWrite) || !p.HasScope(domain.ScopeAdmin) {
		t.Error("admin scope should imply read, write, and admin")
	}
}

func TestPrincipal_HasScope_NoImplicitEscalation(t *testing.T) {
	p := Principal{Scopes: []domain.Scope{domain.ScopeRead}}
	if p.HasScope(domain.ScopeWrite) {
		t.Error("read scope must not imply write")
	}
}

func TestPrincipal_OwnsTeam(t *testing.T) {
	p := Principal{TeamID: "team-a"}
	if !p.OwnsTeam("team-a") {
		t.Error("should own its own team")
	}
	if p.OwnsTeam("team-b") {
		t.Error("should not own a different team")
	}

	admin := Principal{TeamID: "team-a", Scopes: []domain.Scope{domain.ScopeAdmin}}
	if !admin.OwnsTeam("team-b") {
		t.Error("admin should own any team")
	}
}

func TestPrincipal_OwnsAsset(t *testing.T) {
	asset := &domain.Asset{OwnerTeamID: "team-a"}
	if !(Principal{TeamID: "team-a"}).OwnsAsset(asset) {
		t.Error("owning team should own the asset")
	}
	if (Principal{TeamID: "team-b"}).OwnsAsset(asset) {
		t.Error("non-owning team should not own the asset")
	}
	if (Principal{TeamID: "team-b"}).OwnsAsset(nil) {
		t.Error("nil asset should never be owned")
	}
}

func TestSessionRole(t *testing.T) {
	cases := []struct {
		role   domain.Role
		scopes []domain.Scope
	}{
		{domain.RoleAdmin, []domain.Scope{domain.ScopeAdmin}},
		{domain.RoleTeamAdmin, []domain.Scope{domain.ScopeRead, domain.ScopeWrite}},
		{domain.RoleUser, []domain.Scope{domain.ScopeRead}},
	}
	for _, c := range cases {
		got := SessionRole(c.role)
		if len(got) != len(c.scopes) {
			t.Errorf("SessionRole(%v) = %v, want %v", c.role, got, c.scopes)
			continue
		}
		for i := range got {
			if got[i] != c.scopes[i] {
				t.Errorf("SessionRole(%v) = %v, want %v", c.role, got, c.scopes)
			}
		}
	}
}

func TestRequireScope(t *testing.T) {
	p := Principal{Scopes: []domain.Scope{domain.ScopeRead}}
	if err := RequireScope(p, domain.ScopeRead); err != nil {
		t.Errorf("RequireScope(read) on read-scoped principal: %v", err)
	}
	if err := RequireScope(p, domain.ScopeWrite); err == nil {
		t.Error("expected RequireScope(write) to fail for a read-only principal")
	}
}

func TestRequireAssetOwner(t *testing.T) {
	asset := &domain.Asset{OwnerTeamID: "team-a"}
	if err := RequireAssetOwner(Principal{TeamID: "team-a"}, asset); err != nil {
		t.Errorf("owning team should pass: %v", err)
	}
	if err := RequireAssetOwner(Principal{TeamID: "team-b"}, asset); err == nil {
		t.Error("non-owning team should fail")
	}
}
