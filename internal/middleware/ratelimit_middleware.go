package middleware

import (
	"net/http"
	"strconv"

	"payshare-notifier/internal/redis"
	"payshare-notifier/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SubscriptionRateLimitMiddleware limits push-subscription writes per user.
// Apply after auth middleware.
func SubscriptionRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c.Request.Context())
		if !ok {
			// No user context, auth middleware will handle it.
			c.Next()
			return
		}

		result, err := limiter.AllowSubscriptionWrite(c.Request.Context(), strconv.FormatInt(userID, 10))
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(int(result.ResetIn.Seconds())))
}
