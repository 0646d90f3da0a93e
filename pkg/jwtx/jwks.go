package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// DefaultJWKSCacheTTL is how long fetched provider keys are reused before a
// refresh. Providers rotate signing keys rarely; an hour keeps us current
// without hammering the JWKS endpoint.
const DefaultJWKSCacheTTL = 1 * time.Hour

// KeySet caches the identity provider's published JWKS and resolves signing
// keys by kid. Refreshes happen lazily when the cache goes stale or an
// unknown kid shows up (key rotation).
type KeySet struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration

	mu        sync.RWMutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
}

// NewKeySet creates a KeySet for the given JWKS URL. A zero ttl falls back
// to DefaultJWKSCacheTTL.
func NewKeySet(url string, ttl time.Duration) *KeySet {
	if ttl <= 0 {
		ttl = DefaultJWKSCacheTTL
	}
	return &KeySet{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ttl:        ttl,
	}
}

// Key returns the public key for kid, refreshing the cached set if it is
// stale or the kid is unknown.
func (ks *KeySet) Key(ctx context.Context, kid string) (any, error) {
	if key, ok := ks.lookup(kid); ok {
		return key, nil
	}

	// Stale cache or rotated key: refresh once and retry the lookup.
	if err := ks.refresh(ctx); err != nil {
		return nil, err
	}

	if key, ok := ks.lookup(kid); ok {
		return key, nil
	}
	return nil, ErrUnknownKID
}

// IsReady reports whether at least one key has been fetched successfully.
func (ks *KeySet) IsReady() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.keys != nil && len(ks.keys.Keys) > 0
}

func (ks *KeySet) lookup(kid string) (any, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.keys == nil || time.Since(ks.fetchedAt) > ks.ttl {
		return nil, false
	}

	for _, jwk := range ks.keys.Key(kid) {
		if jwk.Valid() && jwk.IsPublic() {
			return jwk.Key, true
		}
	}
	return nil, false
}

func (ks *KeySet) refresh(ctx context.Context) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if ks.keys != nil && time.Since(ks.fetchedAt) < ks.ttl/2 {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build jwks request: %w", err)
	}

	resp, err := ks.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: jwks endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("jwtx: read jwks response: %w", err)
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("jwtx: decode jwks: %w", err)
	}

	ks.keys = &set
	ks.fetchedAt = time.Now()
	return nil
}
