// Package auth obtains and caches access tokens from the credential
// provider. Tokens are shared by all concurrent upstream calls; the cache
// refreshes at most once per expiry window.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrTokenUnavailable indicates the credential provider could not issue a token.
var ErrTokenUnavailable = errors.New("access token unavailable")

// Token is an issued access token with its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (t Token) valid(now time.Time) bool {
	return t.Value != "" && t.ExpiresAt.After(now)
}

// TokenSource yields a valid bearer token for upstream calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client fetches tokens from the credential provider using the
// client-credentials grant.
type Client struct {
	http         *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	scopes       []string
	logger       *slog.Logger
}

// NewClient creates a credential provider client.
func NewClient(httpClient *http.Client, tokenURL, clientID, clientSecret string, scopes []string, logger *slog.Logger) *Client {
	return &Client{
		http:         httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       scopes,
		logger:       logger.With("component", "auth"),
	}
}

// FetchToken requests a fresh token from the credential provider.
func (c *Client) FetchToken(ctx context.Context) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", strings.Join(c.scopes, " "))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("%w: read response: %v", ErrTokenUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("credential provider rejected token request", "status", resp.StatusCode)
		return Token{}, fmt.Errorf("%w: credential provider returned status %d", ErrTokenUnavailable, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Token{}, fmt.Errorf("%w: parse response: %v", ErrTokenUnavailable, err)
	}
	if payload.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: empty access_token in response", ErrTokenUnavailable)
	}

	return Token{
		Value:     payload.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// TokenFetcher is implemented by Client and by test fakes.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (Token, error)
}

// expiryLeeway refreshes tokens slightly before their reported expiry so a
// token never expires mid-request.
const expiryLeeway = 10 * time.Second

// CachedSource caches tokens between requests. Reads of a still-valid token
// take the read lock only; refresh is serialized behind the write lock so
// concurrent expiry detection triggers a single upstream fetch.
type CachedSource struct {
	fetcher TokenFetcher

	mu     sync.RWMutex
	cached Token
}

// NewCachedSource wraps fetcher with a single-flight token cache.
func NewCachedSource(fetcher TokenFetcher) *CachedSource {
	return &CachedSource{fetcher: fetcher}
}

// AccessToken returns the cached token, refreshing it when expired.
func (s *CachedSource) AccessToken(ctx context.Context) (string, error) {
	now := time.Now().Add(expiryLeeway)

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached.valid(now) {
		return cached.Value, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if s.cached.valid(now) {
		return s.cached.Value, nil
	}

	token, err := s.fetcher.FetchToken(ctx)
	if err != nil {
		s.cached = Token{}
		return "", err
	}
	s.cached = token
	return token.Value, nil
}
