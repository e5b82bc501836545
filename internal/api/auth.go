// internal/api/auth.go
package api

import (
	"context"
	"net/http"
)

// AuthTokens is the payload of a successful login.
type AuthTokens struct {
	AccessToken string `json:"accessToken"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates and installs the returned access token on the
// client so subsequent requests carry it.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthTokens, error) {
	var tokens AuthTokens
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Username: username, Password: password}, &tokens); err != nil {
		return nil, err
	}
	c.SetAuthToken(tokens.AccessToken)
	return &tokens, nil
}

// Me fetches the signed-in account's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if _, err := c.get(ctx, "/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout invalidates the server session and clears the local token
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.SetAuthToken("")
	return err
}
