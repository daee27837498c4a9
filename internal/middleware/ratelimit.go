package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/logger"
	"kopilka/internal/ratelimit"
)

// RateLimit rejects requests beyond the limiter's budget for the client IP
// with 429 RATE_LIMITED. scope separates budgets of different route groups.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable", "error", err, "scope", scope)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(ratelimit.Window.Seconds())))
			c.AbortWithStatusJSON(apperrors.ErrRateLimited.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrRateLimited.Code,
					"message": apperrors.ErrRateLimited.Message,
				},
			})
			return
		}
		c.Next()
	}
}
