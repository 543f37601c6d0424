package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidconv/vidconv/internal/session"
	"github.com/vidconv/vidconv/pkg/models"
)

// Login authenticates with username and password. On success the token is
// persisted in the session store and returned. Login is the one operation
// besides Health that needs no token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, validationError("username and password are required")
	}

	var out models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "auth/login", false, models.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}

	if err := session.SetToken(c.store, out.Token); err != nil {
		return nil, networkError(err)
	}
	return &out, nil
}

// Logout clears the persisted token and user snapshot. Token invalidation is
// the server's concern; the client only stops presenting it.
func (c *Client) Logout() error {
	return session.Clear(c.store)
}

// TokenClaims decodes the persisted token's claims without verifying the
// signature — the secret belongs to the server. Useful for showing who is
// logged in without a network round trip.
func (c *Client) TokenClaims() (*models.JWTClaims, error) {
	token := session.Token(c.store)
	if token == "" {
		return nil, errNoToken()
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &Error{Kind: KindAuth, StatusCode: http.StatusUnauthorized, Message: "malformed token"}
	}

	var claims struct {
		models.JWTClaims
		jwt.RegisteredClaims
	}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, &Error{Kind: KindAuth, StatusCode: http.StatusUnauthorized, Message: "malformed token"}
	}
	return &claims.JWTClaims, nil
}
