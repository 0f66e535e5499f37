package api

import (
	"net/http"

	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware rejects requests once the client's IP exceeded the
// limiter's ceiling for the current window. Denial is final for the request;
// the client should back off and retry in a later window.
func RateLimitMiddleware(limiter ratelimit.Admitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Admit(ratelimit.Key("ip", c.ClientIP())) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
