// Package client provides a typed Go SDK for the copilot REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client is the copilot API client.
type Client struct {
	baseURL    string
	clientID   string
	role       string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithIdentity sets the client identity forwarded in the request headers.
func WithIdentity(clientID, role string) Option {
	return func(c *Client) {
		c.clientID = clientID
		c.role = role
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL (e.g. "http://localhost:3040").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Health returns the health check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Preview proposes a structured payload and returns the engine's verdict.
func (c *Client) Preview(ctx context.Context, payload map[string]any) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/mutations/preview", previewRequest{Payload: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PreviewPrompt proposes a natural-language prompt.
func (c *Client) PreviewPrompt(ctx context.Context, prompt string) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/mutations/preview", previewRequest{Prompt: prompt}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resolve answers a pending clarification with the chosen candidate id.
func (c *Client) Resolve(ctx context.Context, resolutionID, selectedID string) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/mutations/resolve/"+resolutionID, resolveRequest{SelectedID: selectedID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentAudit returns the newest audit entries, capped at limit. A limit
// of zero uses the server default.
func (c *Client) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	path := "/api/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp auditResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Commit commits a pending preview.
func (c *Client) Commit(ctx context.Context, previewID string) (*CommitResponse, error) {
	var resp CommitResponse
	if err := c.do(ctx, http.MethodPost, "/api/mutations/"+previewID+"/commit", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes an HTTP request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-Id", c.clientID)
	}
	if c.role != "" {
		req.Header.Set("X-Client-Role", c.role)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
