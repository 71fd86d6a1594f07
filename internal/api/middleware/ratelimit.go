package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/KXX-Hub/kxx-digital-album/internal/api/shared/errors"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/ratelimit"
)

// RateLimit rejects requests over the limiter budget with 429. Authenticated
// requests are keyed by caller, others by client IP. A nil limiter disables it.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if caller, ok := Caller(c); ok {
			key = "caller:" + caller.Hex()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// fail open, the ledger still guards itself
			logger.WarnCtx(c.Request.Context(), "Rate limiter unavailable", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierrors.NewRateLimitedError("retry after "+decision.RetryAfter.String()))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
