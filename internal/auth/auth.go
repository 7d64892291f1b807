// Package auth carries the bearer token as an explicit capability handed to the
// API client instead of being looked up from ambient storage.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in: please log in with `biz auth login --token <token>`")
	ErrTokenExpired = errors.New("session expired: please log in again")
)

// Context holds the bearer token for one user session.
type Context struct {
	token string
	now   func() time.Time
}

func New(token string) *Context {
	return &Context{token: strings.TrimSpace(token), now: time.Now}
}

// WithClock is used by tests to pin the expiry check.
func (c *Context) WithClock(now func() time.Time) *Context {
	c.now = now
	return c
}

func (c *Context) LoggedIn() bool {
	return c != nil && c.token != ""
}

// Check fails fast when there is no token or the token is a JWT that has already
// expired. Opaque tokens are accepted as-is; the server has the final word.
func (c *Context) Check() error {
	_, err := c.Token()
	return err
}

// ExpiresAt returns the JWT exp claim, if the token carries one.
func (c *Context) ExpiresAt() (time.Time, bool) {
	if !c.LoggedIn() {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Token implements oauth2.TokenSource.
func (c *Context) Token() (*oauth2.Token, error) {
	if !c.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	tok := &oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}
	if exp, ok := c.ExpiresAt(); ok {
		if !exp.After(c.now()) {
			return nil, ErrTokenExpired
		}
		tok.Expiry = exp
	}
	return tok, nil
}

// HTTPClient wraps base so every request carries the Authorization header.
func (c *Context) HTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: c,
			Base:   base.Transport,
		},
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
	}
}
