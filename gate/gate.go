// Package gate decides whether a request is admitted to the employee
// API. Admission runs an ordered chain of checks: verify the bearer
// token, require a scope, require an identity claim. The first failing
// check produces the terminal Denial for the request.
package gate

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ibartley/employee-api/entra"
)

// TokenVerifier defines the interface for validating bearer tokens
type TokenVerifier interface {
	// ValidateToken validates a raw token and returns its claims
	ValidateToken(ctx context.Context, token string) (*entra.Claims, error)
}

// Admission is the successful outcome of the chain: the verified claims
// plus the extracted caller identity.
type Admission struct {
	Identity string
	Claims   *entra.Claims
}

// Denial is the terminal rejection outcome of a single check
type Denial struct {
	Status int
	Reason string
}

// check runs one admission step against the in-progress Admission,
// returning nil to continue or a Denial to stop the chain
type check func(ctx context.Context, adm *Admission) *Denial

// Gate composes token verification, scope authorization and identity
// extraction into one request-admission decision.
type Gate struct {
	verifier      TokenVerifier
	identityClaim string
	logger        *zap.Logger
}

// New creates a new Gate. identityClaim names the claim carrying the
// caller identity (normally "email").
func New(verifier TokenVerifier, identityClaim string, logger *zap.Logger) *Gate {
	return &Gate{
		verifier:      verifier,
		identityClaim: identityClaim,
		logger:        logger,
	}
}

// Admit runs the admission chain for one request. requiredScope is the
// fully qualified scope URI for the operation. Exactly one of the
// returns is non-nil.
func (g *Gate) Admit(ctx context.Context, rawToken, requiredScope string) (*Admission, *Denial) {
	adm := &Admission{}
	checks := []check{
		g.verifyToken(rawToken),
		g.requireScope(requiredScope),
		g.requireIdentity(),
	}

	for _, c := range checks {
		if denial := c(ctx, adm); denial != nil {
			return nil, denial
		}
	}
	return adm, nil
}

// verifyToken authenticates the bearer token and attaches its claims
func (g *Gate) verifyToken(rawToken string) check {
	return func(ctx context.Context, adm *Admission) *Denial {
		if rawToken == "" {
			return &Denial{
				Status: http.StatusUnauthorized,
				Reason: "Missing or invalid authorization",
			}
		}

		claims, err := g.verifier.ValidateToken(ctx, rawToken)
		if err != nil {
			g.logger.Warn("token validation failed", zap.Error(err))
			return &Denial{
				Status: http.StatusUnauthorized,
				Reason: "Invalid or expired token",
			}
		}

		adm.Claims = claims
		return nil
	}
}

// requireScope checks the token's scope set for the required scope's
// short name
func (g *Gate) requireScope(requiredScope string) check {
	return func(_ context.Context, adm *Admission) *Denial {
		if !adm.Claims.HasScope(ShortScopeName(requiredScope)) {
			return &Denial{
				Status: http.StatusForbidden,
				Reason: "Insufficient scope",
			}
		}
		return nil
	}
}

// requireIdentity extracts the configured identity claim
func (g *Gate) requireIdentity() check {
	return func(_ context.Context, adm *Admission) *Denial {
		identity := adm.Claims.StringClaim(g.identityClaim)
		if identity == "" {
			return &Denial{
				Status: http.StatusBadRequest,
				Reason: "No email claim present",
			}
		}
		adm.Identity = identity
		return nil
	}
}

// ShortScopeName reduces a fully qualified scope URI to its final path
// segment, the form tokens carry in scp. Any scope URI ending in the
// same segment is treated as equivalent, matching the identity
// provider's token format rather than requiring exact-URI equality.
func ShortScopeName(scope string) string {
	if idx := strings.LastIndex(scope, "/"); idx >= 0 {
		return scope[idx+1:]
	}
	return scope
}
