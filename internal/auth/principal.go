package auth

import "github.com/tessera-contracts/tessera/internal/domain"

// Principal is the authenticated caller identity attached to a request
// context, regardless of whether authentication was via API key or
// session cookie (spec.md §4.6).
type Principal struct {
	TeamID string
	UserID string
	KeyID  string // set when authenticated via API key; empty for session/bootstrap callers
	Scopes []domain.Scope
}

// RateLimitKey identifies the bucket internal/ratelimit tracks requests
// against: the specific API key when present, falling back to the
// authenticated team (session-cookie or bootstrap callers have no key id).
func (p Principal) RateLimitKey() string {
	if p.KeyID != "" {
		return "key:" + p.KeyID
	}
	return "team:" + p.TeamID
}

// HasScope reports whether the principal carries scope s, directly or via
// admin (admin implies all, per spec.md §4.6).
func (p Principal) HasScope(s domain.Scope) bool {
	for _, have := range p.Scopes {
		if have == domain.ScopeAdmin || have == s {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal has the admin scope.
func (p Principal) IsAdmin() bool {
	return p.HasScope(domain.ScopeAdmin)
}

// OwnsTeam reports whether the principal may act on behalf of teamID: it is
// the same team, or the principal has admin scope. Per spec.md §4.6, every
// write operation on a team-scoped resource (asset, acknowledgment,
// registration) is gated by this check.
func (p Principal) OwnsTeam(teamID string) bool {
	return p.IsAdmin() || p.TeamID == teamID
}

// OwnsAsset reports whether the principal may modify asset, per the
// resource-ownership rule in spec.md §4.6: caller's team must match the
// asset's owning team, or the caller has admin scope.
func (p Principal) OwnsAsset(asset *domain.Asset) bool {
	if asset == nil {
		return false
	}
	return p.OwnsTeam(asset.OwnerTeamID)
}

// SessionRole maps a logged-in user's role to the scopes their session
// carries, per spec.md §4.6's session-cookie fallback.
func SessionRole(role domain.Role) []domain.Scope {
	switch role {
	case domain.RoleAdmin:
		return []domain.Scope{domain.ScopeAdmin}
	case domain.RoleTeamAdmin:
		return []domain.Scope{domain.ScopeRead, domain.ScopeWrite}
	default:
		return []domain.Scope{domain.ScopeRead}
	}
}

// PrincipalFromUser builds a Principal for a session-cookie authenticated
// user.
func PrincipalFromUser(u *domain.User) Principal {
	p := Principal{UserID: u.ID, Scopes: SessionRole(u.Role)}
	if u.TeamID != nil {
		p.TeamID = *u.TeamID
	}
	return p
}

// PrincipalFromAPIKey builds a Principal for an API-key authenticated
// caller.
func PrincipalFromAPIKey(k *domain.APIKey) Principal {
	return Principal{TeamID: k.TeamID, KeyID: k.ID, Scopes: k.Scopes}
}
