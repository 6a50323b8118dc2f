package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func practiceRouter(accountID int64, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/practice",
		func(c *gin.Context) { c.Set("account_id", accountID); c.Next() },
		PracticeRateLimit(limit, time.Minute),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) },
	)
	return r
}

func TestPracticeRateLimitFailOpen(t *testing.T) {
	saved := redisClient
	redisClient = nil
	defer func() { redisClient = saved }()

	r := practiceRouter(1, 1)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/practice", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d without redis = %d; want 200 (fail-open)", i, w.Code)
		}
	}
}

func TestPracticeRateLimitPerAccount(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	saved := redisClient
	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer func() { redisClient = saved }()
	if redisClient == nil {
		t.Fatalf("redis at %s unreachable", addr)
	}

	// fresh account id per run so leftover window keys don't interfere
	accountID := time.Now().UnixNano()
	r := practiceRouter(accountID, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/practice", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d = %d; want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/practice", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request over limit = %d; want 429", w.Code)
	}
	if got := w.Header().Get("X-PracticeRateLimit-Limit"); got != "2" {
		t.Fatalf("limit header = %q; want 2", got)
	}

	// a different account is not affected
	other := practiceRouter(accountID+1, 2)
	w = httptest.NewRecorder()
	other.ServeHTTP(w, httptest.NewRequest("POST", "/practice", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("other account blocked = %d; want 200", w.Code)
	}
}

func TestPracticeRateLimitRequiresAccount(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	saved := redisClient
	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer func() { redisClient = saved }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/practice", PracticeRateLimit(2, time.Minute),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/practice", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("request without account_id = %d; want 401", w.Code)
	}
}
