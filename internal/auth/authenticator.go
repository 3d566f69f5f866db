package auth

import (
	"context"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
)

// KeyLookup fetches the non-revoked, unexpired API key candidates sharing a
// lookup prefix. Persistence (internal/store) implements this by filtering
// on key_prefix, revoked_at IS NULL, and expires_at IS NULL OR expires_at >
// now at query time.
type KeyLookup interface {
	FindByPrefix(ctx context.Context, prefix string) ([]domain.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
}

// BootstrapKey, when non-empty, is a single admin-scoped credential checked
// in constant time before any database lookup. It exists so a fresh
// deployment has a way in before any APIKey rows exist (spec.md §4.6).
type BootstrapKey struct {
	Raw    string
	TeamID string
}

// Authenticator resolves a raw API key (or bootstrap key) to a Principal.
type Authenticator struct {
	lookup    KeyLookup
	bootstrap BootstrapKey
	now       func() time.Time
}

// NewAuthenticator builds an Authenticator. A zero-value BootstrapKey
// disables the bootstrap path.
func NewAuthenticator(lookup KeyLookup, bootstrap BootstrapKey) *Authenticator {
	return &Authenticator{lookup: lookup, bootstrap: bootstrap, now: time.Now}
}

// Authenticate resolves raw to a Principal following spec.md §4.6's lookup
// flow: bootstrap key check, then prefix lookup, then hash verification
// over the candidate set, then a best-effort last-used touch.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (Principal, error) {
	if a.bootstrap.Raw != "" && ConstantTimeEqual(a.bootstrap.Raw, raw) {
		return Principal{TeamID: a.bootstrap.TeamID, Scopes: []domain.Scope{domain.ScopeAdmin}}, nil
	}

	prefix, ok := ParsePrefix(raw)
	if !ok {
		return Principal{}, errs.New(errs.CodeInvalidAPIKey, "malformed API key")
	}

	candidates, err := a.lookup.FindByPrefix(ctx, prefix)
	if err != nil {
		return Principal{}, errs.Wrap(errs.CodeInvalidAPIKey, "authenticate API key", err)
	}

	now := a.now()
	usable := candidates[:0]
	for _, c := range candidates {
		if c.IsUsable(now) {
			usable = append(usable, c)
		}
	}

	match, ok := FindMatchingKey(usable, raw)
	if !ok {
		return Principal{}, errs.New(errs.CodeInvalidAPIKey, "API key not recognized")
	}

	// Best-effort: a failure to record last-used must not fail the request.
	_ = a.lookup.TouchLastUsed(ctx, match.ID, now)

	return PrincipalFromAPIKey(match), nil
}
