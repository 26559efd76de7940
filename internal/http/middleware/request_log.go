package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

// RequestLogger emits one line per request at a level chosen by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		fields := requestFields(c, time.Since(start))
		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// identitySource names what a preference request was resolved from. A
// preference token wins over a user id.
func identitySource(rd *ctxutil.RequestData) string {
	switch {
	case rd == nil:
		return "none"
	case rd.ProfileToken != uuid.Nil:
		return "preference_token"
	case rd.UserID != uuid.Nil:
		return "user"
	default:
		return "none"
	}
}

func requestFields(c *gin.Context, elapsed time.Duration) []interface{} {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	fields := []interface{}{
		"method", c.Request.Method,
		"route", route,
		"status", c.Writer.Status(),
		"bytes", c.Writer.Size(),
		"duration_ms", elapsed.Milliseconds(),
		"identity", identitySource(rd),
	}
	if rd != nil && rd.UserID != uuid.Nil {
		fields = append(fields, "user_id", rd.UserID.String())
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		if td.TraceID != "" {
			fields = append(fields, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			fields = append(fields, "request_id", td.RequestID)
		}
	}
	if last := c.Errors.Last(); last != nil {
		if code := errs.CodeOf(last.Err); code != "" {
			fields = append(fields, "error_code", string(code))
		}
		fields = append(fields, "error", last.Error())
	}
	return fields
}
