package spapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/metrics"
)

const maxResponseBytes = 16 << 20

type tokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Invalidate()
}

// Client is the authenticated HTTP core shared by every SP-API operation.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	marketplaceID string
	tokens        tokenSource
	logg          *logger.Logger
	met           *metrics.UpstreamMetrics
}

// ClientParams configure the client.
type ClientParams struct {
	HTTPClient    *http.Client
	Endpoint      string
	MarketplaceID string
	Tokens        tokenSource
	Logger        *logger.Logger
	Metrics       *metrics.UpstreamMetrics
}

// NewClient validates required wiring and builds a client.
func NewClient(params ClientParams) (*Client, error) {
	if params.Endpoint == "" {
		return nil, fmt.Errorf("endpoint required")
	}
	if params.MarketplaceID == "" {
		return nil, fmt.Errorf("marketplace id required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:    httpClient,
		endpoint:      params.Endpoint,
		marketplaceID: params.MarketplaceID,
		tokens:        params.Tokens,
		logg:          params.Logger,
		met:           params.Metrics,
	}, nil
}

// MarketplaceID returns the marketplace this client is bound to.
func (c *Client) MarketplaceID() string {
	return c.marketplaceID
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	return c.doJSON(ctx, operation, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, operation, path string, body, out any) error {
	return c.doJSON(ctx, operation, http.MethodPost, path, nil, body, out)
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	started := time.Now()
	err := c.roundTrip(ctx, method, path, query, body, out)
	c.met.Observe(operation, err, time.Since(started))
	if err != nil && c.logg != nil {
		c.logg.Error(c.logg.WithField(ctx, "operation", operation), "upstream call failed", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "marketplace request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read marketplace response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode marketplace response")
	}
	return nil
}

func (c *Client) statusError(status int, payload []byte) error {
	detail := upstreamDetail(payload)
	switch {
	case status == http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.CodeRateLimit, "marketplace throttled the request")
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "marketplace resource not found")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// Token may have been revoked; force a refresh on the next call.
		c.tokens.Invalidate()
		return pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("marketplace rejected credentials (%d)", status)).WithDetails(detail)
	default:
		return pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("marketplace returned %d", status)).WithDetails(detail)
	}
}

type upstreamErrorBody struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func upstreamDetail(payload []byte) any {
	var parsed upstreamErrorBody
	if err := json.Unmarshal(payload, &parsed); err != nil || len(parsed.Errors) == 0 {
		return nil
	}
	return parsed.Errors
}
