package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticketing/internal/config"
)

func keyFor(t *testing.T, method, target string) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return cacheKey("cache", c)
}

func TestPathGroup(t *testing.T) {
	assert.Equal(t, "/v1/movies", pathGroup("/v1/movies"))
	assert.Equal(t, "/v1/movies", pathGroup("/v1/movies/Dune"))
	assert.Equal(t, "/v1/showings", pathGroup("/v1/showings/upcoming"))
	assert.Equal(t, "/healthz", pathGroup("/healthz"))
}

func TestCacheKeyGroupsByPathPrefix(t *testing.T) {
	dune := keyFor(t, http.MethodGet, "/v1/movies/Dune")
	tron := keyFor(t, http.MethodGet, "/v1/movies/Tron")
	list := keyFor(t, http.MethodGet, "/v1/movies")

	// Distinct entries per concrete path, one shared group for all of them.
	assert.NotEqual(t, dune, tron)
	assert.NotEqual(t, dune, list)
	for _, k := range []string{dune, tron, list} {
		assert.Contains(t, k, "cache:/v1/movies:")
	}

	upcoming := keyFor(t, http.MethodGet, "/v1/showings/upcoming")
	assert.Contains(t, upcoming, "cache:/v1/showings:")
}

func TestCacheInvalidatorDisabledWithoutRedis(t *testing.T) {
	mw := NewCacheInvalidator(config.CacheConfig{Enabled: true}, nil, "/v1/movies")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
