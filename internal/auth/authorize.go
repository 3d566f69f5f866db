package auth

import (
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
)

// RequireScope returns a domain error if p lacks scope s, for use at the
// top of each handler per spec.md §4.6's scope matrix (read for GET,
// write for mutating endpoints, admin for team/api-key management).
func RequireScope(p Principal, s domain.Scope) error {
	if !p.HasScope(s) {
		return errs.New(errs.CodeInsufficientScope, "missing required scope: "+string(s))
	}
	return nil
}

// RequireTeam returns a domain error if p may not act on behalf of teamID.
func RequireTeam(p Principal, teamID string) error {
	if !p.OwnsTeam(teamID) {
		return errs.New(errs.CodeUnauthorizedTeam, "caller's team does not match resource's owning team")
	}
	return nil
}

// RequireAssetOwner returns a domain error if p may not modify asset.
func RequireAssetOwner(p Principal, asset *domain.Asset) error {
	if !p.OwnsAsset(asset) {
		return errs.New(errs.CodeUnauthorizedTeam, "caller's team does not own this asset")
	}
	return nil
}
