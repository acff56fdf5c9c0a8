package entra

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signature-verified payload of an access token. The
// fields this API acts on are typed; everything else the token carries
// lands in Extra so downstream code never re-inspects raw JSON.
type Claims struct {
	jwt.RegisteredClaims

	// Scope is the space-delimited list of scopes granted to the token
	Scope string `json:"scp"`

	// Email is the caller's email identity, used for audit attribution
	Email string `json:"email"`

	// Extra holds unrecognized claims by name
	Extra map[string]interface{} `json:"-"`
}

// typedClaimNames are the top-level claim names captured by typed fields
var typedClaimNames = []string{
	"iss", "sub", "aud", "exp", "nbf", "iat", "jti", "scp", "email",
}

// UnmarshalJSON decodes the typed fields and collects the remaining
// claims into Extra
func (c *Claims) UnmarshalJSON(data []byte) error {
	type alias Claims
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, name := range typedClaimNames {
		delete(raw, name)
	}

	a.Extra = raw
	*c = Claims(a)
	return nil
}

// HasScope reports whether the token's scope string contains the given
// short scope name. An empty or absent scope claim matches nothing.
func (c *Claims) HasScope(name string) bool {
	if c.Scope == "" || name == "" {
		return false
	}
	for _, s := range strings.Split(c.Scope, " ") {
		if s == name {
			return true
		}
	}
	return false
}

// StringClaim returns the named claim as a string, consulting the typed
// fields first and falling back to Extra. Missing or non-string claims
// return "".
func (c *Claims) StringClaim(name string) string {
	switch name {
	case "email":
		return c.Email
	case "scp":
		return c.Scope
	case "iss":
		return c.Issuer
	case "sub":
		return c.Subject
	}
	if v, ok := c.Extra[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
