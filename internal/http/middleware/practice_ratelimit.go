package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PracticeRateLimit caps practice completions per account (not per IP)
// using Redis, so a misbehaving client cannot farm vibe accrual — the
// window holds across instances. Requires JWT middleware to run before
// this; fail-open when Redis is not configured.
func PracticeRateLimit(maxCompletions int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		accountIDVal, exists := c.Get("account_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		accountID, ok := accountIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid account"})
			return
		}

		key := "practice_rl:" + strconv.FormatInt(accountID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// on Redis error, fail-open but flag it
			c.Header("X-PracticeRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-PracticeRateLimit-Limit", strconv.Itoa(maxCompletions))
		c.Header("X-PracticeRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxCompletions)-val), 10))

		if val > int64(maxCompletions) {
			RLBlocked.WithLabelValues("practice:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many completions, slow down",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("practice:" + c.FullPath()).Inc()
		c.Next()
	}
}
