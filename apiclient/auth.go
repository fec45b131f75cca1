package apiclient

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-lms-client/session"
	"github.com/pkg/errors"
)

var _ session.Notifier = (*Client)(nil)

// User is the viewer record returned by /auth/me.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

type meResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// Login submits credentials and returns the issued bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/login")
	if err != nil {
		return "", errors.Wrap(err, "[Client.Login] post")
	}
	if err := checkStatus(resp, "Client.Login"); err != nil {
		return "", err
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", errors.Wrap(err, "[Client.Login] unmarshal")
	}
	if body.Token == "" {
		return "", errors.New("[Client.Login] no token in response")
	}
	return body.Token, nil
}

// Register creates an account and returns the issued bearer token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		Post("/auth/register")
	if err != nil {
		return "", errors.Wrap(err, "[Client.Register] post")
	}
	if err := checkStatus(resp, "Client.Register"); err != nil {
		return "", err
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", errors.Wrap(err, "[Client.Register] unmarshal")
	}
	if body.Token == "" {
		return "", errors.New("[Client.Register] no token in response")
	}
	return body.Token, nil
}

// Me fetches the current viewer.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/auth/me")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Me] get")
	}
	if err := checkStatus(resp, "Client.Me"); err != nil {
		return nil, err
	}

	var body meResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "[Client.Me] unmarshal")
	}
	if body.User == nil {
		return nil, errors.New("[Client.Me] no user in response")
	}
	return body.User, nil
}

// NotifyLogout tells the server to tear the session down. Callers treat this
// as best-effort; the local session is cleared regardless.
func (c *Client) NotifyLogout(ctx context.Context) error {
	resp, err := c.rest.R().SetContext(ctx).Post("/auth/logout")
	if err != nil {
		return errors.Wrap(err, "[Client.NotifyLogout] post")
	}
	return checkStatus(resp, "Client.NotifyLogout")
}
