package http

import (
	"context"

	"github.com/goonthug/sport-kursach/internal/domain"
)

type contextKey int

const identityKey contextKey = iota

func withIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated actor placed by the
// auth middleware, or nil on unauthenticated routes.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityKey).(*domain.Identity)
	return identity
}
