package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnauthorized the request stayed unauthorized after the single refresh attempt.
var ErrUnauthorized = errors.New("unauthorized")

// APIError non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// TokenPair body of /auth/login and /auth/refresh responses
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// APIClient JSON client for the PropertyPal REST contract.
// No automatic retries except one token refresh on a 401.
type APIClient struct {
	httpClient *resty.Client
	tokens     *TokenStore
	logger     *zap.Logger
	refreshMu  sync.Mutex
}

// NewAPIClient creates a client for baseURL.
func NewAPIClient(baseURL string, timeout time.Duration, tokens *TokenStore, logger *zap.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &APIClient{
		httpClient: client,
		tokens:     tokens,
		logger:     logger,
	}
}

// Do sends a request with the stored bearer token and decodes the JSON
// response into out (which may be nil).
func (c *APIClient) Do(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.send(ctx, method, path, body, true)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if !c.refresh(ctx) {
			return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
		}
		resp, err = c.send(ctx, method, path, body, true)
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			c.tokens.Clear(ctx)
			return fmt.Errorf("%w: %s %s after refresh", ErrUnauthorized, method, path)
		}
	}

	return decode(resp, out)
}

// Login exchanges operator credentials for a token pair and stores it.
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return err
	}
	var pair TokenPair
	if err := decode(resp, &pair); err != nil {
		return err
	}
	if pair.AccessToken == "" {
		return errors.New("login response has no access token")
	}
	return c.tokens.SetTokens(ctx, pair.AccessToken, pair.RefreshToken)
}

// Logout forgets the stored tokens.
func (c *APIClient) Logout(ctx context.Context) {
	c.tokens.Clear(ctx)
}

func (c *APIClient) send(ctx context.Context, method, path string, body any, auth bool) (*resty.Response, error) {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if auth {
		if token := c.tokens.AccessToken(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	return resp, nil
}

// refresh swaps the refresh token for a new pair. On any failure the stored
// tokens are cleared and false is returned.
func (c *APIClient) refresh(ctx context.Context) bool {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	refreshToken := c.tokens.RefreshToken(ctx)
	if refreshToken == "" {
		return false
	}

	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refreshToken}, false)
	if err != nil || resp.IsError() {
		c.logger.Warn("Token refresh failed", zap.Error(err))
		c.tokens.Clear(ctx)
		return false
	}

	var pair TokenPair
	if err := json.Unmarshal(resp.Body(), &pair); err != nil || pair.AccessToken == "" {
		c.logger.Warn("Token refresh returned no access token", zap.Error(err))
		c.tokens.Clear(ctx)
		return false
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	if err := c.tokens.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		c.logger.Warn("Failed to store refreshed tokens", zap.Error(err))
	}
	return true
}

func decode(resp *resty.Response, out any) error {
	if resp.IsError() {
		return parseAPIError(resp)
	}
	if out == nil || resp.StatusCode() == http.StatusNoContent || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *resty.Response) error {
	apiErr := &APIError{Status: resp.StatusCode(), Message: "Request failed."}
	body := resp.Body()
	var payload struct {
		Message string `json:"message"`
	}
	if json.Valid(body) {
		apiErr.Details = json.RawMessage(body)
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		}
	} else if s := strings.TrimSpace(string(body)); s != "" {
		apiErr.Message = s
	}
	return apiErr
}
