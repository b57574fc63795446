// Package taskapi implements the service.Service interface over the
// task-management REST API.
package taskapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"taskboard/internal/apiclient"
	"taskboard/internal/config"
	"taskboard/internal/service"
)

// Client implements service.Service using the REST API.
// Authenticated calls take their bearer token from a TokenSource, normally
// the session manager.
type Client struct {
	api            *apiclient.Client
	tokens         oauth2.TokenSource
	onUnauthorized func(token string, err error)
}

var _ service.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithUnauthorizedHandler registers fn to run whenever an authenticated call
// is rejected with 401. fn receives the token the request was sent with. The
// session manager uses it to tear itself down.
func WithUnauthorizedHandler(fn func(token string, err error)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for the configured base URL.
func New(cfg *config.Config, tokens oauth2.TokenSource, opts ...Option) *Client {
	api := apiclient.New(cfg.BaseURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(cfg.Logger),
	)
	return NewWithAPIClient(api, tokens, opts...)
}

// NewWithAPIClient creates a client over an existing adapter (for testing).
func NewWithAPIClient(api *apiclient.Client, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{api: api, tokens: tokens}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// public performs an unauthenticated call.
func (c *Client) public(ctx context.Context, req apiclient.Request, out any) (bool, error) {
	present, err := c.api.Do(ctx, req, out)
	return present, wrapError(err)
}

// authed performs a call with the current bearer token.
func (c *Client) authed(ctx context.Context, req apiclient.Request, out any) (bool, error) {
	if c.tokens == nil {
		return false, errors.New("no token source configured")
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return false, err
	}
	req.Token = tok.AccessToken

	present, err := c.api.Do(ctx, req, out)
	if err != nil && apiclient.IsUnauthorized(err) && c.onUnauthorized != nil {
		c.onUnauthorized(req.Token, err)
	}
	return present, wrapError(err)
}

func get(path string, query apiclient.Query) apiclient.Request {
	return apiclient.Request{Method: http.MethodGet, Path: path, Query: query}
}

func post(path string, body any) apiclient.Request {
	return apiclient.Request{Method: http.MethodPost, Path: path, Body: body}
}

func patch(path string, body any) apiclient.Request {
	return apiclient.Request{Method: http.MethodPatch, Path: path, Body: body}
}

// wrapError replaces context errors with user-facing messages and keeps
// backend errors intact so callers can inspect status and body.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
