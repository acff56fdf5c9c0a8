package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ibartley/employee-api/gate"
	"github.com/ibartley/employee-api/utils"
)

// AuthMiddleware guards routes with the authorization gate
type AuthMiddleware struct {
	gate   *gate.Gate
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(g *gate.Gate, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		gate:   g,
		logger: logger,
	}
}

// Require returns middleware admitting only requests whose bearer token
// passes the gate for the given fully qualified scope. Admitted requests
// carry the verified claims and caller identity in their context.
func (m *AuthMiddleware) Require(requiredScope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := chimiddleware.GetReqID(ctx)

			token := extractBearerToken(r)

			admission, denial := m.gate.Admit(ctx, token, requiredScope)
			if denial != nil {
				m.logger.Warn("request denied",
					zap.String("request_id", requestID),
					zap.Int("status", denial.Status),
					zap.String("reason", denial.Reason))
				_ = utils.WriteError(w, denial.Status, denial.Reason)
				return
			}

			m.logger.Debug("request admitted",
				zap.String("request_id", requestID),
				zap.String("identity", admission.Identity))

			ctx = WithClaims(ctx, admission.Claims)
			ctx = WithIdentity(ctx, admission.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
