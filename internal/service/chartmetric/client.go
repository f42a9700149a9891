package chartmetric

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client is the authenticated HTTP transport for the Chartmetric API. It
// performs no retries and no throttling itself; both live with the caller so
// each endpoint family can pick its own cadence. A 429 surfaces as a typed
// RateLimitError for the retry helper to recognize.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     oauth2.TokenSource
	offline    bool
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, baseURL string, tokens oauth2.TokenSource, offline bool, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens:     tokens,
		offline:    offline,
		logger:     logger,
	}
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.offline {
		return nil, errors.NewAccessError("Chartmetric access blocked (OFFLINE)", map[string]any{
			"path": path,
		})
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, errors.NewAccessError("failed to obtain Chartmetric access token", nil).WithCause(err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("request failed", 0, map[string]any{"url": reqURL}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read response body", resp.StatusCode, map[string]any{"url": reqURL}).WithCause(err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Rate limited by Chartmetric",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewRateLimitError("too many requests", resp.StatusCode, map[string]any{"url": reqURL})
	}

	if resp.StatusCode >= 400 {
		return nil, errors.NewAPIError(fmt.Sprintf("Chartmetric error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"url":  reqURL,
			"body": string(body),
		})
	}

	return body, nil
}
