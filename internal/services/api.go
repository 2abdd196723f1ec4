// HTTP transport for the Resonate API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://localhost:3000"

// Client performs requests against the Resonate API, one method per read or write operation.
//
// It owns no shared state beyond its rate limiter: results are returned to the caller, never cached here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	requestID  func() string
}

// NewClient creates a new [Client] from the api section of the config.
//
// When httpClient is nil one is built with cfg.Timeout as its whole-request timeout.
func NewClient(cfg shared.APIConfig, httpClient *http.Client, logger *log.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     shared.WithLogger(logger, "component", "api"),
		requestID:  uuid.NewString,
	}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.exchange(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, err
	}
	return c.exchange(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", c.requestID())
	return req, nil
}

func (c *Client) exchange(req *http.Request) (*APIResponse, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", req.Header.Get("X-Request-Id"), "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-Id"),
		"duration", time.Since(start))

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// call describes one API operation.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// uid is sent as X-User-Id when set.
	uid string
	// token is sent as a Bearer credential when set.
	token string
	// fallback is the message used when the server gives none.
	fallback string
}

// do executes op and returns its JSON object payload.
//
// An empty or non-JSON body is treated as an empty object. A non-2xx status, or a 2xx whose body
// carries an "error" string, becomes an [HTTPError] with the server's message or the fallback.
func (c *Client) do(ctx context.Context, op call) (map[string]any, error) {
	var body []byte
	if op.body != nil {
		data, err := json.Marshal(op.body)
		if err != nil {
			return nil, NewValidationError("%s: %v", op.fallback, err)
		}
		body = data
	}

	path := op.path
	if len(op.query) > 0 {
		path += "?" + op.query.Encode()
	}

	req, err := c.newRequest(ctx, op.method, path, body)
	if err != nil {
		return nil, networkError(op.fallback, err)
	}
	if op.uid != "" {
		req.Header.Set("X-User-Id", op.uid)
	}
	if op.token != "" {
		(&oauth2.Token{AccessToken: op.token}).SetAuthHeader(req)
	}

	resp, err := c.exchange(req)
	if err != nil {
		return nil, networkError(op.fallback, err)
	}

	payload := asObject(resp.JSONData)
	serverMsg := strings.TrimSpace(asString(payload["error"]))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := serverMsg
		if msg == "" {
			msg = op.fallback
		}
		c.logger.Warn("request rejected", "method", op.method, "path", op.path, "status", resp.StatusCode, "error", msg)
		return nil, httpError(resp.StatusCode, msg)
	}

	if serverMsg != "" {
		return nil, httpError(resp.StatusCode, serverMsg)
	}

	return payload, nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

// requireUser rejects user-scoped operations without an identity.
func requireUser(uid, message string) error {
	if strings.TrimSpace(uid) == "" {
		return NewValidationError("%s", message)
	}
	return nil
}
