package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisStore "school-points-backend/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(t *testing.T, rule RateLimitRule) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redisStore.NewRateLimitStore(client)

	router := gin.New()
	router.POST("/award", RateLimiter(store, "award", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return router, mr
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, RateLimitRule{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/award", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, RateLimitRule{Limit: 1, Window: time.Minute})

	req := httptest.NewRequest(http.MethodPost, "/award", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/award", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_DegradedModeAllowsOnRedisFailure(t *testing.T) {
	router, mr := newRateLimitedRouter(t, RateLimitRule{Limit: 1, Window: time.Minute})
	mr.Close()

	// With Redis down every request is allowed.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/award", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
