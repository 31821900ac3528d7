package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket to the API.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		perSecond = 100
	}
	if burst <= 0 {
		burst = int(perSecond)
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, envelope{
				Message: "rate limit exceeded",
				Error:   "too many requests",
			})
			return
		}
		c.Next()
	}
}
