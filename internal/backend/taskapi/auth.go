package taskapi

import (
	"context"
	"net/http"

	"taskboard/internal/apiclient"
	"taskboard/internal/service"
)

// Register creates an account via POST /auth/register.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (service.User, error) {
	if len(req.Roles) == 0 {
		req.Roles = nil
	}
	var user service.User
	_, err := c.public(ctx, post("/auth/register", req), &user)
	return user, err
}

// Login exchanges credentials for an access token via POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (service.AuthToken, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var tok service.AuthToken
	_, err := c.public(ctx, post("/auth/login", body), &tok)
	return tok, err
}

// Me fetches the profile of token via GET /auth/me.
// It does not trigger the unauthorized handler: the session manager
// handles profile failures itself.
func (c *Client) Me(ctx context.Context, token string) (service.User, error) {
	var user service.User
	_, err := c.public(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  token,
	}, &user)
	return user, err
}
