package httpapi

import (
	"context"

	"github.com/tessera-contracts/tessera/internal/auth"
)

type contextKey int

const (
	principalContextKey contextKey = iota
	requestIDContextKey
)

func withPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// principalFrom returns the authenticated caller attached by the auth
// middleware. Handlers call this after the middleware chain has already
// rejected unauthenticated requests, so the zero value is never observed
// in practice.
func principalFrom(ctx context.Context) auth.Principal {
	p, _ := ctx.Value(principalContextKey).(auth.Principal)
	return p
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
