package middleware

import (
	"time"

	"github.com/zepolnala/leave-management-system/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger stores a logger tagged with the request id on the request
// context and writes one access line when the request finishes. It expects
// RequestID to run first.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetString(ctxKeyRequestID)
		if rid == "" {
			rid = contextutil.GetRequestID(c.Request.Context())
		}

		reqLogger := logger.With(zap.String("request_id", rid))

		ctx := contextutil.WithLogger(c.Request.Context(), reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		reqLogger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
