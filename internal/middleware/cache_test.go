package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saishivram/paperroute/internal/config"
	"github.com/Saishivram/paperroute/internal/utils"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestCacheKeyIncludesUser(t *testing.T) {
	cfg := testCacheConfig()
	e := echo.New()

	keyFor := func(uid interface{}) string {
		req := httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/subscriptions")
		if uid != nil {
			c.Set("user_id", uid)
		}
		return cacheKeyFrom(cfg, c)
	}

	owner1 := keyFor(float64(1))
	owner2 := keyFor(float64(2))
	anon := keyFor(nil)

	assert.NotEqual(t, owner1, owner2)
	assert.NotEqual(t, owner1, anon)
	assert.Equal(t, owner1, keyFor(float64(1)))
}

// The cache sits behind JWTAuth on protected groups; a cached response
// must only ever be replayed to the same authenticated owner.
func TestCacheScopedToAuthenticatedOwner(t *testing.T) {
	const secret = "test-secret"

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	e := echo.New()
	g := e.Group("/v1", JWTAuth(secret), NewRedisCache(testCacheConfig(), rdb))
	g.GET("/subscriptions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"owner": currentUserID(c)})
	})

	tokenFor := func(uid uint64) string {
		at, err := utils.NewAccessToken(secret, uid, "OWNER", 5)
		require.NoError(t, err)
		return at.Token
	}
	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// Owner 1 warms the cache.
	rec := do(tokenFor(1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"owner":"1"`)

	// No token: authentication still runs, nothing is replayed.
	rec = do("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	// Owner 2 gets their own data, never owner 1's cached body.
	rec = do(tokenFor(2))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"owner":"2"`)

	// Owner 1 again is a hit, still with owner 1's body.
	rec = do(tokenFor(1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"owner":"1"`)
}
