package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/bookingengine/internal/auth"
	"github.com/Domenick1991/bookingengine/internal/cache"
	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// RequestLogger assigns a request id (or keeps the caller's) and logs every
// request once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		log := logger.WithContext(c.Request.Context())
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}

type Limiter interface {
	Key(parts ...string) string
	Allow(ctx context.Context, key string) (cache.Decision, error)
}

// RateLimit throttles per authenticated user, or per client IP without one.
// Requests pass when Redis is unavailable.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var key string
		if actor, ok := auth.ActorFrom(c.Request.Context()); ok {
			key = l.Key("user", strconv.FormatInt(actor.UserID, 10))
		} else {
			key = l.Key("ip", c.ClientIP())
		}

		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// requireActor returns the authenticated caller or writes 401.
func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := auth.ActorFrom(c.Request.Context())
	if !ok {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	}
	return actor, ok
}
