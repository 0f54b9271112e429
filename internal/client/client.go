package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/careerontrack/internal/apperr"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds every request made by the client
	DefaultTimeout = 15 * time.Second
	// APIPrefix is prepended to every request path
	APIPrefix = "/api"
	// maxErrorBodyBytes caps how much of an error response is read
	maxErrorBodyBytes = 64 << 10
)

// Client wraps outbound HTTP calls to the CareerOnTrack backend.
// Authenticated calls carry the current token as a bearer credential.
type Client struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
	logger    *zap.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func(token string)
}

// Option configures a Client
type Option func(*Client)

// WithTransport sets the base round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logpkg.OrNop(logger) }
}

// New creates a client for the backend at baseURL (e.g. http://localhost:3000)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token used for authenticated calls. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetUnauthorizedHandler registers fn to be called when an authenticated call
// is rejected with 401. fn receives the token that the rejected request carried.
func (c *Client) SetUnauthorizedHandler(fn func(token string)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// errorBody is the error envelope returned by the backend
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// call performs one request. in is JSON-encoded when non-nil; out is decoded on 2xx when non-nil.
func (c *Client) call(ctx context.Context, method, path string, authenticated bool, in, out any) error {
	op := method + " " + APIPrefix + path

	var token string
	httpClient := &http.Client{Transport: c.transport, Timeout: c.timeout}
	if authenticated {
		token = c.Token()
		if token == "" {
			return &apperr.AuthenticationError{Message: "Not logged in"}
		}
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		}
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+APIPrefix+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api_request_failed",
			zap.String("op", op),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("api_request",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp, authenticated, token)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &apperr.NetworkError{Op: op, Err: err}
		}
		return &apperr.ServerError{StatusCode: resp.StatusCode, Message: "Invalid response from server"}
	}
	return nil
}

func (c *Client) responseError(resp *http.Response, authenticated bool, token string) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	_ = json.Unmarshal(raw, &eb)

	message := firstNonEmpty(eb.Error, eb.Message)

	if resp.StatusCode == http.StatusUnauthorized {
		if authenticated {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook(token)
			}
		}
		return &apperr.AuthenticationError{Message: message}
	}

	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}
	return &apperr.ServerError{StatusCode: resp.StatusCode, Type: eb.Code, Message: message}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
