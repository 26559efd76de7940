package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wshinigamic/wtg-backend/internal/clients/redis"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	maxIdempotencyKeyLen = 200
)

// Idempotency runs a mutation at most once per Idempotency-Key and caller
// within ttl. A repeated key is answered with 409; a failed request releases
// its key so the caller may retry. Requests without the header, or a nil
// store, pass through. A store outage fails open.
func Idempotency(store redis.IdempotencyStore, ttl time.Duration, m *observability.Metrics, log *logger.Logger) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("Middleware", "Idempotency")
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "idempotency key too long", "code": "invalid_request"},
			})
			return
		}
		key := scopedKey(c, raw)

		ok, err := store.Acquire(c.Request.Context(), key, ttl)
		if err != nil {
			m.IncIdempotency("error")
			log.Warn("Idempotency store unavailable; continuing", "error", err)
			c.Next()
			return
		}
		if !ok {
			m.IncIdempotency("duplicate")
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": gin.H{"message": "request with this idempotency key already processed or in progress", "code": "duplicate_request"},
			})
			return
		}
		m.IncIdempotency("acquired")

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(c.Request.Context(), key); err != nil {
				log.Warn("Idempotency key release failed", "error", err)
			}
		}
	}
}

func scopedKey(c *gin.Context, raw string) string {
	caller := "anonymous"
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		switch {
		case rd.ProfileToken != uuid.Nil:
			caller = "t:" + rd.ProfileToken.String()
		case rd.UserID != uuid.Nil:
			caller = "u:" + rd.UserID.String()
		}
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return caller + "|" + c.Request.Method + " " + route + "|" + raw
}
