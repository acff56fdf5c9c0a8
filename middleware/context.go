package middleware

import (
	"context"

	"github.com/ibartley/employee-api/entra"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"

	// IdentityKey is the context key for the caller's email identity
	IdentityKey contextKey = "identity"
)

// GetClaimsFromContext retrieves verified token claims from context
func GetClaimsFromContext(ctx context.Context) *entra.Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*entra.Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds verified token claims to the context
func WithClaims(ctx context.Context, claims *entra.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetIdentityFromContext retrieves the caller identity from context
func GetIdentityFromContext(ctx context.Context) string {
	if val := ctx.Value(IdentityKey); val != nil {
		if identity, ok := val.(string); ok {
			return identity
		}
	}
	return ""
}

// WithIdentity adds the caller identity to the context
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
