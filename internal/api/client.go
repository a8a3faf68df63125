// Package api provides the HTTP client for the recipe RPC and upload endpoints
package api

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

	"github.com/patrickmn/go-cache"
)

const (
	// RPCPath is the mount point of the RPC procedures
	RPCPath = "/api/trpc"
	// UploadPath is the image upload endpoint
	UploadPath = "/api/v1/upload"

	defaultTimeout = 30 * time.Second
	defaultRetries = 1
)

// Client represents the API client for the recipe service
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *cache.Cache
	retries    int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCacheTTL enables caching of fetched recipes for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithRetries sets how many times a failed fetch is retried
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// NewClient creates a new API client
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	return resp, nil
}

// envelope is the response shape of every procedure call
type envelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result,omitempty"`
	Error *RPCError `json:"error,omitempty"`
}

// query calls a read-only procedure, input travels in the query string
func (c *Client) query(ctx context.Context, procedure string, input any) (json.RawMessage, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	path := fmt.Sprintf("%s/%s?%s", RPCPath, procedure, url.Values{"input": {string(encoded)}}.Encode())
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	return c.parseResponse(resp)
}

// mutate calls a procedure with side effects, input travels as the JSON body
func (c *Client) mutate(ctx context.Context, procedure string, input any) (json.RawMessage, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	path := fmt.Sprintf("%s/%s", RPCPath, procedure)
	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return nil, err
	}
	return c.parseResponse(resp)
}

// parseResponse unwraps the procedure envelope and returns the raw result data
func (c *Client) parseResponse(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Error != nil {
		if env.Error.Data.HTTPStatus == 0 {
			env.Error.Data.HTTPStatus = resp.StatusCode
		}
		return nil, env.Error
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &RPCError{
				Message: "Unauthorized",
				Data:    RPCErrorData{Code: CodeUnauthorized, HTTPStatus: resp.StatusCode},
			}
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if env.Result == nil {
		return nil, fmt.Errorf("failed to parse response: missing result")
	}

	return env.Result.Data, nil
}
