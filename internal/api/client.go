// Package api is a typed client for the business-admin REST API. Every
// endpoint has one method; transport errors, non-2xx responses and
// malformed bodies are all surfaced as wrapped errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/biz/internal/auth"
	"github.com/jesses-code-adventures/biz/internal/models"
)

var ErrMalformedResponse = errors.New("malformed response")

// Error is a non-2xx response. Message comes from the body's "message" or
// "error" field, falling back to "HTTP <status>".
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	auth    *auth.Context
	http    *http.Client
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the base transport. The bearer token is still
// attached on top of it.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = cl.auth.HTTPClient(c)
	}
}

func NewClient(baseURL string, authCtx *auth.Context, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    authCtx,
		http:    authCtx.HTTPClient(nil),
		log:     log.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type normalizer interface {
	Normalize() error
}

// send performs one request and returns the raw response body of a 2xx reply.
func (c *Client) send(ctx context.Context, method, path, accept string, query url.Values, body any) ([]byte, error) {
	if err := c.auth.Check(); err != nil {
		return nil, err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	requestID := models.NewUUID()
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, method, path, data)
	}
	return data, nil
}

func decodeError(status int, method, path string, data []byte) error {
	apiErr := &Error{StatusCode: status, Method: method, Path: path}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", status)
	}
	return apiErr
}

// call sends a request and decodes the reply into out. Objects may arrive bare
// or wrapped under key (or "data"); lists may arrive as a bare array or wrapped
// the same way.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any, key string, out any) error {
	data, err := c.send(ctx, method, path, "application/json", query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeInto(data, key, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func decodeInto(data []byte, key string, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty body")
	}

	if data[0] == '{' && key != "" {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return err
		}
		for _, k := range []string{key, "data"} {
			if raw, ok := envelope[k]; ok && len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
				data = raw
				break
			}
		}
	}
	return json.Unmarshal(data, out)
}

func getOne[T any, PT interface {
	*T
	normalizer
}](ctx context.Context, c *Client, method, path string, body any, key string) (*T, error) {
	var v T
	if err := c.call(ctx, method, path, nil, body, key, &v); err != nil {
		return nil, err
	}
	if err := PT(&v).Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, path, err)
	}
	return &v, nil
}

func getList[T any, PT interface {
	*T
	normalizer
}](ctx context.Context, c *Client, path string, query url.Values, key string) ([]T, error) {
	var items []T
	if err := c.call(ctx, http.MethodGet, path, query, nil, key, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if err := PT(&items[i]).Normalize(); err != nil {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrMalformedResponse, path, err)
		}
	}
	return items, nil
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
