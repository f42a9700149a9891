package chartmetric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// refreshTokenSource exchanges the long-lived refresh token for a short-lived
// access token at POST {base}/token. Wrapped in oauth2.ReuseTokenSource so
// the exchange only happens when the cached token expires.
type refreshTokenSource struct {
	httpClient   *http.Client
	baseURL      string
	refreshToken string
	logger       *zap.Logger
}

type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *refreshTokenSource) Token() (*oauth2.Token, error) {
	payload, err := json.Marshal(map[string]string{"refreshtoken": s.refreshToken})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("token exchange response malformed: %w", err)
	}

	access := parsed.Token
	if access == "" {
		access = parsed.AccessToken
	}
	if access == "" {
		return nil, fmt.Errorf("token exchange response carried no token")
	}

	expiresIn := parsed.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	s.logger.Info("Chartmetric access token refreshed",
		zap.Int("expires_in_seconds", expiresIn),
	)

	return &oauth2.Token{
		AccessToken: access,
		Expiry:      time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// NewTokenSource builds the token source for API authentication. A static
// access token wins when provided; otherwise tokens are minted on demand
// from the refresh token.
func NewTokenSource(httpClient *http.Client, baseURL, accessToken, refreshToken string, logger *zap.Logger) oauth2.TokenSource {
	if accessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	}
	return oauth2.ReuseTokenSource(nil, &refreshTokenSource{
		httpClient:   httpClient,
		baseURL:      baseURL,
		refreshToken: refreshToken,
		logger:       logger,
	})
}
