// Package apiclient is the HTTP adapter for the task-management backend.
// It builds URLs, attaches bearer credentials, encodes and decodes JSON and
// maps non-success responses to *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client performs requests against a single backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for baseURL. Trailing slashes are ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	// Token is sent as a bearer credential when non-empty.
	Token string
	// Body is JSON-encoded when non-nil.
	Body any
	// Query values that are nil, nil pointers or empty strings are dropped.
	Query Query
}

// Do performs req. On a 2xx response with a body, the body is decoded into
// out (when out is non-nil) and Do reports true. An empty 2xx body reports
// false and leaves out untouched.
//
// A 2xx body that is not JSON becomes {"detail": <raw text>}. Only untyped
// targets (*any, *map[string]any, *map[string]string) receive it; a typed out
// is left untouched and Do reports false.
func (c *Client) Do(ctx context.Context, req Request, out any) (bool, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.BuildURL(req.Path, req.Query)
	if err != nil {
		return false, err
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return false, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.clientFor(req.Token).Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &TransportError{Err: err}
	}
	c.logger.Debug("request",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	payload := normalizeBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, newError(resp.StatusCode, payload)
	}
	if payload == nil {
		return false, nil
	}
	if !json.Valid(raw) {
		c.logger.Debug("response body is not json", "method", method, "path", req.Path, "request_id", requestID, "detail", string(raw))
		if !acceptsDetail(out) {
			return false, nil
		}
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return true, fmt.Errorf("decode %s %s response: %w", method, req.Path, err)
		}
	}
	return true, nil
}

// clientFor returns an HTTP client that adds the bearer header for token.
func (c *Client) clientFor(token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
	}
}

// BuildURL joins the base URL, path and the non-empty query values.
func (c *Client) BuildURL(path string, query Query) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if values := query.Values(); len(values) > 0 {
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

// acceptsDetail reports whether out can hold a {"detail": <text>} object.
func acceptsDetail(out any) bool {
	switch out.(type) {
	case *any, *map[string]any, *map[string]string:
		return true
	}
	return false
}

// normalizeBody returns nil for an empty body, the body itself when it is
// JSON, or {"detail": <text>} otherwise.
func normalizeBody(raw []byte) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"detail": string(raw)})
	return wrapped
}
