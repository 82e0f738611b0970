package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter admits at most max requests per client within each fixed window.
type RateLimiter struct {
	limiter *limiter.Limiter
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return &RateLimiter{
		limiter: limiter.New(memory.NewStore(), rate),
	}
}

// Middleware limits by client IP and sets the RateLimit-* headers.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		quota, err := l.limiter.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error interno del servidor",
			})
			return
		}

		resetSeconds := quota.Reset - time.Now().Unix()
		if resetSeconds < 0 {
			resetSeconds = 0
		}
		c.Header("RateLimit-Limit", strconv.FormatInt(quota.Limit, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(quota.Remaining, 10))
		c.Header("RateLimit-Reset", strconv.FormatInt(resetSeconds, 10))

		if quota.Reached {
			c.Header("Retry-After", strconv.FormatInt(resetSeconds, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}
