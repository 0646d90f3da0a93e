package identity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/qbankhq/qbank/pkg/jwtx"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryMax     = 3
	defaultRetryBackoff = 250 * time.Millisecond

	// tokenExpiryBuffer forces a refresh slightly before the cached M2M
	// token actually expires.
	tokenExpiryBuffer = 30 * time.Second
)

// Client implements Provider against a real identity provider deployment.
// Management API calls authenticate with a cached machine-to-machine token.
type Client struct {
	endpoint     string
	m2mAppID     string
	m2mAppSecret string
	httpClient   *http.Client
	verifier     jwtx.Verifier

	retryMax     int
	retryBackoff time.Duration

	tokenMu     sync.RWMutex
	cachedToken *m2mToken
}

type m2mToken struct {
	accessToken string
	expiresAt   time.Time
}

// NewClient creates a provider client. The verifier handles ID token
// signature checks against the provider's JWKS.
func NewClient(endpoint, m2mAppID, m2mAppSecret string, verifier jwtx.Verifier) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("identity: endpoint cannot be empty")
	}
	if m2mAppID == "" || m2mAppSecret == "" {
		return nil, fmt.Errorf("identity: m2m credentials cannot be empty")
	}

	return &Client{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		m2mAppID:     m2mAppID,
		m2mAppSecret: m2mAppSecret,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		verifier:     verifier,
		retryMax:     defaultRetryMax,
		retryBackoff: defaultRetryBackoff,
	}, nil
}

// VerifyIDToken validates an ID token and returns its subject.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	claims, err := c.verifier.Verify(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// SetCustomClaims stores role and company claims on the subject's account.
func (c *Client) SetCustomClaims(ctx context.Context, subject string, claims CustomClaims) error {
	payload, err := json.Marshal(map[string]any{
		"customData": claims,
	})
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s/api/users/%s/custom-data", c.endpoint, url.PathEscape(subject))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	token, err := c.m2mAccessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}
	return nil
}

// Ping checks if the provider is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/status", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}

// m2mAccessToken returns a cached machine-to-machine token, refreshing it via
// client credentials grant when it is close to expiring.
func (c *Client) m2mAccessToken(ctx context.Context) (string, error) {
	// Fast path: check cached token with read lock
	c.tokenMu.RLock()
	if c.cachedToken != nil && time.Now().Add(tokenExpiryBuffer).Before(c.cachedToken.expiresAt) {
		token := c.cachedToken.accessToken
		c.tokenMu.RUnlock()
		return token, nil
	}
	c.tokenMu.RUnlock()

	// Slow path: acquire write lock and double-check
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.cachedToken != nil && time.Now().Add(tokenExpiryBuffer).Before(c.cachedToken.expiresAt) {
		return c.cachedToken.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("resource", c.endpoint+"/api")
	data.Set("scope", "all")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/oidc/token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.m2mAppID + ":" + c.m2mAppSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: m2m auth: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: m2m auth: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: m2m auth failed with status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: m2m auth: %w", ErrUpstream, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: m2m auth returned empty token", ErrUpstream)
	}

	c.cachedToken = &m2mToken{
		accessToken: tokenResp.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}
	return c.cachedToken.accessToken, nil
}

// doWithRetry executes an HTTP request with exponential backoff retry on
// retryable status codes (408, 429, 500, 502, 503, 504) and network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt < c.retryMax; attempt++ {
		// Reset body reader for retries (if body exists)
		if req.GetBody != nil {
			newBody, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = newBody
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !c.shouldRetry(ctx, attempt, backoff) {
				return nil, lastErr
			}
			backoff = nextBackoff(backoff)
			continue
		}

		if isRetryableStatus(resp.StatusCode) {
			// Read and discard body before retry
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			lastErr = fmt.Errorf("retryable status %d", resp.StatusCode)
			if !c.shouldRetry(ctx, attempt, backoff) {
				return nil, lastErr
			}
			backoff = nextBackoff(backoff)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// shouldRetry waits for the backoff duration respecting context cancellation.
func (c *Client) shouldRetry(ctx context.Context, attempt int, backoff time.Duration) bool {
	if attempt >= c.retryMax-1 {
		return false
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextBackoff doubles the backoff and adds 0-50% jitter.
func nextBackoff(current time.Duration) time.Duration {
	jitter := time.Duration(rand.Int64N(int64(current / 2)))
	return current*2 + jitter
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
