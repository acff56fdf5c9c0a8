package entra

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token fails validation for a
	// reason not covered by a more specific error
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenMalformed is returned when the token is not a well-formed JWT
	ErrTokenMalformed = errors.New("malformed token")

	// ErrUnexpectedAlgorithm is returned when the token is not signed with RS256
	ErrUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

	// ErrInvalidSignature is returned when the signature does not verify
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrInvalidAudience is returned when the token audience is invalid
	ErrInvalidAudience = errors.New("invalid audience")
)

// Validator validates access tokens issued by a single Entra ID tenant
type Validator struct {
	issuer   string
	audience string
	keys     *KeyProvider
}

// Config holds configuration for Validator
type Config struct {
	// IssuerURL is the exact issuer string expected in tokens
	IssuerURL string

	// JWKSURL is the tenant's signing-key discovery endpoint
	JWKSURL string

	// Audience is the API application ID expected in the aud claim
	Audience string

	KeyProvider KeyProviderConfig
}

// NewValidator creates a new token validator for the configured tenant
func NewValidator(config Config) *Validator {
	kpConfig := config.KeyProvider
	kpConfig.JWKSURL = config.JWKSURL

	return &Validator{
		issuer:   config.IssuerURL,
		audience: config.Audience,
		keys:     NewKeyProvider(kpConfig),
	}
}

// Keys exposes the underlying key provider
func (v *Validator) Keys() *KeyProvider {
	return v.keys
}

// ValidateToken verifies a raw bearer token's signature, algorithm,
// expiry, issuer and audience, returning its claims on success.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// RS256 is the only accepted algorithm
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok || token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedAlgorithm, token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: kid header not found", ErrKeyUnavailable)
		}

		publicKey, err := v.keys.Key(ctx, kid)
		if err != nil {
			return nil, err
		}
		return publicKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, ErrUnexpectedAlgorithm) || errors.Is(err, ErrKeyUnavailable):
			return nil, err
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Issuer must match the configured tenant exactly
	if claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidIssuer, v.issuer, claims.Issuer)
	}

	// Audience must contain the API application ID
	if !containsAudience(claims.Audience, v.audience) {
		return nil, ErrInvalidAudience
	}

	return claims, nil
}

// containsAudience checks if the audience list contains the expected app ID
func containsAudience(audiences jwt.ClaimStrings, appID string) bool {
	for _, aud := range audiences {
		if aud == appID {
			return true
		}
	}
	return false
}
