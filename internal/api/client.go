// Package api implements the client for the platform's query and
// function-invocation HTTP APIs. The query endpoint is an opaque tabular
// RPC: it accepts a structured query object and returns rows of scalars
// whose columns are interpreted positionally by each call site.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single API round trip.
const DefaultTimeout = 60 * time.Second

// Config holds the connection settings for a Client.
type Config struct {
	// Host is the base URL of the platform, e.g. "https://us.example.com".
	Host string

	// EnvironmentID scopes every call to one environment.
	EnvironmentID string

	// Token is the personal API key sent as a bearer token.
	Token string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client issues requests against one environment of the platform API.
type Client struct {
	httpClient *http.Client
	host       string
	env        string
	token      string
	logger     *zap.Logger
}

// New creates a Client from the given configuration.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		host:       strings.TrimRight(cfg.Host, "/"),
		env:        cfg.EnvironmentID,
		token:      cfg.Token,
		logger:     logger,
	}
}

// do sends a JSON request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.host + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("api request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// envPath builds an environment-scoped API path.
func (c *Client) envPath(suffix string) string {
	return fmt.Sprintf("/api/environments/%s%s", c.env, suffix)
}

// queryResponse is the tabular envelope returned by the query endpoint.
type queryResponse struct {
	Results [][]any `json:"results"`
}

// runQuery submits a structured query object and returns the raw rows.
func (c *Client) runQuery(ctx context.Context, query any) ([][]any, error) {
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, c.envPath("/query"), map[string]any{"query": query}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// stringAt reads a column as a string, tolerating nulls.
func stringAt(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	s, _ := row[i].(string)
	return s
}
