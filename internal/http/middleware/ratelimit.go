package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eqos-digital/contact-backend/internal/ratelimit"
)

// RateLimit gates a route group on the sliding-window limiter.
//
// Informational X-RateLimit-Limit / X-RateLimit-Remaining / X-RateLimit-Reset
// headers are set on every response, allowed or rejected. Rejections answer
// 429 with a Retry-After header and a JSON body carrying retryAfter (seconds)
// and resetTime (RFC3339).
//
// The limiter fails open: if checking the limit panics, the failure is logged
// and the request proceeds. Losing rate limiting briefly is preferable to
// refusing legitimate submissions.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ClientID(c)

		res, ok := checkLimit(c, limiter, clientID)
		if !ok {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", res.Reset.UTC().Format(time.RFC3339))

		if !res.Allowed {
			retryAfter := int(res.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			LoggerFrom(c).Warn().
				Str("client_id", clientID).
				Int("retry_after_s", retryAfter).
				Msg("rate limit exceeded")

			h.Set("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too many requests",
				"message":    "Rate limit exceeded. Please try again later.",
				"retryAfter": retryAfter,
				"resetTime":  res.Reset.UTC().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}

// checkLimit runs the limiter check, converting a panic into a fail-open
// signal. Returns ok=false when the limiter failed and the request should
// proceed unchecked.
func checkLimit(c *gin.Context, limiter *ratelimit.Limiter, clientID string) (res ratelimit.Result, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Str("client_id", clientID).
				Msg("rate limiter failure, allowing request")
			ok = false
		}
	}()
	return limiter.Check(clientID), true
}
