package client

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/naveenspark/moneta/pkg/domain"
	"github.com/naveenspark/moneta/pkg/session"
)

// Login exchanges email and password for an access token with the OAuth2
// password grant on POST /token and starts a new session with it.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Token, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("client.Login: email and password are required")
	}
	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + session.PathLogin,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, fmt.Errorf("client.Login: %w", newHTTPError(re.Response.StatusCode, re.Body))
		}
		return nil, fmt.Errorf("client.Login: %w", err)
	}

	if c.guard != nil {
		if err := c.guard.Begin(tok.AccessToken); err != nil {
			return nil, fmt.Errorf("client.Login: %w", err)
		}
	}
	c.log.Debug().Msg("logged in")
	return &domain.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := domain.Validate(creds); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	var u domain.User
	if err := c.post(ctx, "/users", creds, &u); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// Logout tells the backend to end the session, then destroys the local
// credential whatever the backend answered.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, session.PathLogout, nil, nil); err != nil {
		c.log.Debug().Err(err).Msg("server-side logout failed")
	}
	if c.guard == nil {
		return nil
	}
	if err := c.guard.End(); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}
