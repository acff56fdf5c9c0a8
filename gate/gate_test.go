package gate

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ibartley/employee-api/entra"
)

const requiredWriteScope = "api://app-id/Employee.Write.All"

// MockTokenVerifier is a mock implementation of TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) ValidateToken(ctx context.Context, token string) (*entra.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entra.Claims), args.Error(1)
}

func testClaims(scope, email string) *entra.Claims {
	return &entra.Claims{Scope: scope, Email: email}
}

func TestAdmitSuccess(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	claims := testClaims("Employee.Write.All User.Read", "alice@example.com")
	verifier.On("ValidateToken", mock.Anything, "valid-token").Return(claims, nil)

	admission, denial := g.Admit(context.Background(), "valid-token", requiredWriteScope)
	require.Nil(t, denial)
	require.NotNil(t, admission)
	assert.Equal(t, "alice@example.com", admission.Identity)
	assert.Equal(t, claims, admission.Claims)
	verifier.AssertExpectations(t)
}

func TestAdmitMissingToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	admission, denial := g.Admit(context.Background(), "", requiredWriteScope)
	require.Nil(t, admission)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
	assert.Equal(t, "Missing or invalid authorization", denial.Reason)

	// The verifier is never consulted for an absent token
	verifier.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestAdmitInvalidToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	verifier.On("ValidateToken", mock.Anything, "garbled").
		Return(nil, entra.ErrTokenMalformed)

	admission, denial := g.Admit(context.Background(), "garbled", requiredWriteScope)
	require.Nil(t, admission)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
	assert.Equal(t, "Invalid or expired token", denial.Reason)
}

func TestAdmitExpiredToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	verifier.On("ValidateToken", mock.Anything, "expired").
		Return(nil, entra.ErrTokenExpired)

	_, denial := g.Admit(context.Background(), "expired", requiredWriteScope)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
}

func TestAdmitKeyUnavailable(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	verifier.On("ValidateToken", mock.Anything, "token").
		Return(nil, entra.ErrKeyUnavailable)

	_, denial := g.Admit(context.Background(), "token", requiredWriteScope)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
}

func TestAdmitInsufficientScope(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	// Read-only token against the write scope
	claims := testClaims("Employee.Read.All", "alice@example.com")
	verifier.On("ValidateToken", mock.Anything, "read-token").Return(claims, nil)

	admission, denial := g.Admit(context.Background(), "read-token", requiredWriteScope)
	require.Nil(t, admission)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)
	assert.Equal(t, "Insufficient scope", denial.Reason)
}

func TestAdmitEmptyScopeClaim(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	claims := testClaims("", "alice@example.com")
	verifier.On("ValidateToken", mock.Anything, "scopeless").Return(claims, nil)

	_, denial := g.Admit(context.Background(), "scopeless", requiredWriteScope)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)
}

func TestAdmitMissingIdentity(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "email", zap.NewNop())

	// Scope check passes, email claim absent
	claims := testClaims("Employee.Write.All", "")
	verifier.On("ValidateToken", mock.Anything, "no-email").Return(claims, nil)

	admission, denial := g.Admit(context.Background(), "no-email", requiredWriteScope)
	require.Nil(t, admission)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusBadRequest, denial.Status)
	assert.Equal(t, "No email claim present", denial.Reason)
}

func TestAdmitConfigurableIdentityClaim(t *testing.T) {
	verifier := new(MockTokenVerifier)
	g := New(verifier, "preferred_username", zap.NewNop())

	claims := testClaims("Employee.Write.All", "")
	claims.Extra = map[string]interface{}{"preferred_username": "bob@example.com"}
	verifier.On("ValidateToken", mock.Anything, "upn-token").Return(claims, nil)

	admission, denial := g.Admit(context.Background(), "upn-token", requiredWriteScope)
	require.Nil(t, denial)
	assert.Equal(t, "bob@example.com", admission.Identity)
}

func TestShortScopeName(t *testing.T) {
	tests := []struct {
		scope string
		want  string
	}{
		{"api://app-id/Employee.Read.All", "Employee.Read.All"},
		{"api://app-id/nested/Employee.Write.All", "Employee.Write.All"},
		{"Employee.Read.All", "Employee.Read.All"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortScopeName(tt.scope), "scope %q", tt.scope)
	}
}
