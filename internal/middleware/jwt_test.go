package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticketing/internal/config"
	"github.com/iliyamo/movie-ticketing/internal/utils"
)

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestJWTAuth_MissingToken(t *testing.T) {
	rec := runProtected(t, "", JWTAuth("secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	rec := runProtected(t, "Bearer not.a.jwt", JWTAuth("secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "alice", "user", 5)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+at.Token, JWTAuth("secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ValidTokenPassesClaims(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 7, "alice", "admin", 5)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := JWTAuth("secret")(func(c echo.Context) error {
		called = true
		assert.Equal(t, "alice", c.Get("username"))
		assert.Equal(t, "admin", c.Get("role"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called)
}

func TestRequireRole(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 7, "alice", "user", 5)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+at.Token, JWTAuth("secret"), RequireRole("admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runProtected(t, "Bearer "+at.Token, JWTAuth("secret"), RequireRole("user", "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheAndLimiterDisabledWithoutRedis(t *testing.T) {
	rec := runProtected(t, "",
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
