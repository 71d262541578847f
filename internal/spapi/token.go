package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/sethvargo/go-retry"
)

// Tokens expire after an hour; refresh a minute early so an in-flight
// request never carries a token that dies mid-call.
const tokenExpiryBuffer = 60 * time.Second

// TokenProvider exchanges a long-lived LWA refresh token for short-lived
// access tokens and caches them until just before expiry.
type TokenProvider struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// TokenProviderParams configure the provider.
type TokenProviderParams struct {
	HTTPClient   *http.Client
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	Now          func() time.Time
}

// NewTokenProvider validates credentials and builds a provider.
func NewTokenProvider(params TokenProviderParams) (*TokenProvider, error) {
	if params.TokenURL == "" {
		return nil, fmt.Errorf("token URL required")
	}
	if params.ClientID == "" || params.ClientSecret == "" || params.RefreshToken == "" {
		return nil, fmt.Errorf("LWA credentials required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &TokenProvider{
		httpClient:   httpClient,
		tokenURL:     params.TokenURL,
		clientID:     params.ClientID,
		clientSecret: params.ClientSecret,
		refreshToken: params.RefreshToken,
		now:          now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken returns a cached token, refreshing when it is within the
// expiry buffer. Callers serialize on the refresh so a burst of requests
// triggers one exchange, not one each.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && p.now().Before(p.expiresAt.Add(-tokenExpiryBuffer)) {
		return p.accessToken, nil
	}

	var parsed tokenResponse
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := p.exchange(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		parsed = *resp
		return nil
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "token refresh failed")
	}
	if parsed.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "token endpoint returned no access token")
	}

	p.accessToken = parsed.AccessToken
	p.expiresAt = p.now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return p.accessToken, nil
}

func (p *TokenProvider) exchange(ctx context.Context) (*tokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.refreshToken},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Invalidate drops the cached token so the next call refreshes. Used after
// an upstream 401 or 403.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	p.accessToken = ""
	p.expiresAt = time.Time{}
	p.mu.Unlock()
}
