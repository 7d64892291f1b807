package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestMissingTokenShortCircuits(t *testing.T) {
	assert.ErrorIs(t, New("").Check(), ErrNotLoggedIn)
	assert.ErrorIs(t, New("   ").Check(), ErrNotLoggedIn)
	var nilCtx *Context
	assert.False(t, nilCtx.LoggedIn())
}

func TestOpaqueTokenAccepted(t *testing.T) {
	c := New("abc123")
	require.NoError(t, c.Check())
	_, ok := c.ExpiresAt()
	assert.False(t, ok)
}

func TestJWTExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	valid := New(signed(t, now.Add(time.Hour))).WithClock(clock)
	tok, err := valid.Token()
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(now.Add(time.Hour).Truncate(time.Second)))

	expired := New(signed(t, now.Add(-time.Minute))).WithClock(clock)
	assert.ErrorIs(t, expired.Check(), ErrTokenExpired)
}

func TestHTTPClientAttachesBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := New("abc123").HTTPClient(nil)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer abc123", got)
}
