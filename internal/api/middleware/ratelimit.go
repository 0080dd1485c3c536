package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"enforcement-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware applies the given limiter keyed by client IP and
// endpoint group. A limiter failure never blocks the request.
func RateLimitMiddleware(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.ClientIP()
		endpoint := endpointGroup(c)

		allowed, retryAfter, err := limiter.Allow(clientID, endpoint)
		if err != nil {
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"message":    fmt.Sprintf("Too many requests. Try again in %v", retryAfter),
				"retryAfter": int(retryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func endpointGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.Contains(path, "/scan"):
		return "scan"
	case strings.Contains(path, "/fines"):
		return "fines"
	case strings.Contains(path, "/auth/login"):
		return "auth_login"
	default:
		return "default"
	}
}
