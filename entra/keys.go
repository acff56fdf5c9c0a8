package entra

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// ErrKeyUnavailable is returned when a signing key cannot be resolved,
// whether because the JWKS fetch failed, the fetch budget is exhausted,
// or the key set has no entry for the requested kid.
var ErrKeyUnavailable = errors.New("signing key unavailable")

// JWKS represents the JSON Web Key Set published by the tenant's
// discovery endpoint
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeyProvider resolves RSA signing keys by kid from the tenant's JWKS
// endpoint, caching both the fetched document and the parsed keys.
// Fetch attempts are bounded by a process-wide rolling-window budget so a
// flood of unresolvable kids cannot hammer the identity provider.
type KeyProvider struct {
	jwksURL    string
	httpClient *http.Client

	// Cache for the fetched JWKS document
	jwksCache    *JWKS
	jwksCacheExp time.Time
	jwksCacheTTL time.Duration
	cacheMu      sync.RWMutex

	// Cache for parsed public keys, each entry carrying its own
	// freshness window so retired kids age out
	keyCache   map[string]cachedKey
	keyCacheMu sync.RWMutex

	// fetchMu serializes cache-miss handling so a burst of concurrent
	// misses performs a single fetch
	fetchMu sync.Mutex

	limiter *fetchLimiter
}

// cachedKey is a parsed public key plus its expiry
type cachedKey struct {
	key *rsa.PublicKey
	exp time.Time
}

// KeyProviderConfig holds configuration for KeyProvider
type KeyProviderConfig struct {
	JWKSURL          string
	CacheTTL         time.Duration
	HTTPTimeout      time.Duration
	FetchesPerMinute int
}

// NewKeyProvider creates a new KeyProvider
func NewKeyProvider(config KeyProviderConfig) *KeyProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = 1 * time.Hour
	}
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 10 * time.Second
	}
	if config.FetchesPerMinute == 0 {
		config.FetchesPerMinute = 5
	}

	return &KeyProvider{
		jwksURL:      config.JWKSURL,
		jwksCacheTTL: config.CacheTTL,
		httpClient: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		keyCache: make(map[string]cachedKey),
		limiter:  newFetchLimiter(config.FetchesPerMinute, time.Minute),
	}
}

// Key returns the RSA public key for the given kid, fetching the JWKS
// when the key is not cached or its cache entry has expired. An unknown
// kid against a cache-served document forces one refetch before giving
// up.
func (p *KeyProvider) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	// Fast path: already parsed and still fresh
	if key, ok := p.freshKey(kid); ok {
		return key, nil
	}

	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	// A concurrent miss may have resolved the key while we waited
	if key, ok := p.freshKey(kid); ok {
		return key, nil
	}

	jwks, fromCache, err := p.fetchJWKS(ctx, false)
	if err != nil {
		return nil, err
	}

	jwk := findKey(jwks, kid)
	if jwk == nil && fromCache {
		// The cached document may predate a key rollover
		jwks, _, err = p.fetchJWKS(ctx, true)
		if err != nil {
			return nil, err
		}
		jwk = findKey(jwks, kid)
	}
	if jwk == nil {
		return nil, fmt.Errorf("%w: kid %s not found in JWKS", ErrKeyUnavailable, kid)
	}

	publicKey, err := jwkToRSAPublicKey(jwk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	p.keyCacheMu.Lock()
	p.keyCache[kid] = cachedKey{key: publicKey, exp: time.Now().Add(p.jwksCacheTTL)}
	p.keyCacheMu.Unlock()

	return publicKey, nil
}

// freshKey returns the cached key for kid when present and still fresh.
func (p *KeyProvider) freshKey(kid string) (*rsa.PublicKey, bool) {
	p.keyCacheMu.RLock()
	defer p.keyCacheMu.RUnlock()

	entry, exists := p.keyCache[kid]
	if !exists || !time.Now().Before(entry.exp) {
		return nil, false
	}
	return entry.key, true
}

// fetchJWKS returns the JWKS, serving the cached document while fresh
// unless force is set. Network fetches consume the rolling fetch budget;
// an exhausted budget fails fast without touching the network.
func (p *KeyProvider) fetchJWKS(ctx context.Context, force bool) (jwks *JWKS, fromCache bool, err error) {
	if !force {
		p.cacheMu.RLock()
		if p.jwksCache != nil && time.Now().Before(p.jwksCacheExp) {
			defer p.cacheMu.RUnlock()
			return p.jwksCache, true, nil
		}
		p.cacheMu.RUnlock()
	}

	if !p.limiter.allow(time.Now()) {
		return nil, false, fmt.Errorf("%w: JWKS fetch budget exhausted", ErrKeyUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.jwksURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: status code %d", ErrKeyUnavailable, resp.StatusCode)
	}

	var fetched JWKS
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return nil, false, fmt.Errorf("%w: decode failed: %v", ErrKeyUnavailable, err)
	}

	p.cacheMu.Lock()
	p.jwksCache = &fetched
	p.jwksCacheExp = time.Now().Add(p.jwksCacheTTL)
	p.cacheMu.Unlock()

	return &fetched, false, nil
}

// InvalidateCache drops the JWKS document and parsed key caches
func (p *KeyProvider) InvalidateCache() {
	p.cacheMu.Lock()
	p.jwksCache = nil
	p.jwksCacheExp = time.Time{}
	p.cacheMu.Unlock()

	p.keyCacheMu.Lock()
	p.keyCache = make(map[string]cachedKey)
	p.keyCacheMu.Unlock()
}

// findKey returns the JWK with the given kid, or nil
func findKey(jwks *JWKS, kid string) *JWK {
	for i := range jwks.Keys {
		if jwks.Keys[i].Kid == kid {
			return &jwks.Keys[i]
		}
	}
	return nil
}

// jwkToRSAPublicKey converts a JWK to an RSA public key
func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)

	var e int
	for _, b := range eBytes {
		e = e*256 + int(b)
	}

	return &rsa.PublicKey{N: n, E: e}, nil
}

// fetchLimiter bounds outbound JWKS fetches to limit events per rolling
// window, shared by all concurrent verifications.
type fetchLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	events []time.Time
}

func newFetchLimiter(limit int, window time.Duration) *fetchLimiter {
	return &fetchLimiter{limit: limit, window: window}
}

// allow records an attempt and reports whether it fits the budget
func (l *fetchLimiter) allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.events[:0]
	for _, t := range l.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.events = kept

	if len(l.events) >= l.limit {
		return false
	}
	l.events = append(l.events, now)
	return true
}
