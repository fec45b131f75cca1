// Package apiclient is the typed REST client for the LMS backend. Every
// request carries the viewer's bearer token and a request ID; any 401 the
// backend returns is surfaced through the OnUnauthorized hook so the session
// layer can purge itself, no matter which call observed it.
package apiclient

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenProvider supplies the current bearer token, or empty when logged out.
type TokenProvider func() string

// Client talks to the LMS REST API.
type Client struct {
	rest           *resty.Client
	log            zerolog.Logger
	validate       *validator.Validate
	tokens         TokenProvider
	onUnauthorized func()
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithTokenProvider wires where bearer tokens come from.
func WithTokenProvider(tokens TokenProvider) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithOnUnauthorized wires the hook invoked whenever the server answers 401.
func WithOnUnauthorized(hook func()) ClientOption {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// WithTimeout caps every request round trip.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.rest.SetTimeout(timeout)
	}
}

// New creates a Client against baseURL.
func New(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		log:      zerolog.Nop(),
		validate: validator.New(),
	}
	client.rest = resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")

	for _, opt := range options {
		opt(client)
	}

	client.rest.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if client.tokens != nil {
			if token := client.tokens(); token != "" {
				req.SetAuthToken(token)
			}
		}
		req.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	client.rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized && client.onUnauthorized != nil {
			client.log.Info().
				Str("url", resp.Request.URL).
				Msg("server answered 401, invalidating session")
			client.onUnauthorized()
		}
		return nil
	})

	return client
}

// checkStatus turns a non-2xx response into an error.
func checkStatus(resp *resty.Response, op string) error {
	if resp.IsError() {
		return errors.Errorf("[%s] unexpected status %d", op, resp.StatusCode())
	}
	return nil
}

// decodeList handles the backend's two list shapes: a bare JSON array, or an
// envelope object keyed by the collection name.
func decodeList[T any](body []byte, key string) ([]T, error) {
	var bare []T
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "decodeList unmarshal")
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, nil
	}
	var wrapped []T
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrapf(err, "decodeList unmarshal %q", key)
	}
	return wrapped, nil
}

// decodeObject handles the backend's two object shapes: a bare object, or an
// envelope keyed by the entity name. An envelope without the key decodes the
// envelope itself, matching the `res.data.course || res.data` fallbacks the
// backend's other consumers rely on.
func decodeObject[T any](body []byte, key string) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "decodeObject unmarshal")
	}
	raw := json.RawMessage(body)
	if wrapped, ok := envelope[key]; ok {
		raw = wrapped
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrapf(err, "decodeObject unmarshal %q", key)
	}
	return &out, nil
}
