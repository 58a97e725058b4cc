package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
	"github.com/zepolnala/leave-management-system/internal/shared/contextutil"
	"github.com/zepolnala/leave-management-system/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotentReplayed  = "Idempotent-Replayed"
	IdempotencyLockTTL        = 30 * time.Second
	DefaultIdempotencyTTL     = 24 * time.Hour
	idempotencyKeyPrefix      = "idemp:"
	idempotencyLockKeySuffix  = ":lock"
	idempotencyMaxCachedBytes = 1 << 20
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyKeys builds the cache and lock keys for a request path and the
// client supplied key.
func IdempotencyKeys(path, key string) (string, string) {
	cacheKey := idempotencyKeyPrefix + path + ":" + key
	return cacheKey, cacheKey + idempotencyLockKeySuffix
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// POST. A request that arrives while the first one is still running gets 409.
// Final responses are stored for ttl; see isReplayable. When Redis is
// unreachable requests pass through unprotected.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	base := logger.Named("middleware.idempotency")

	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, base)
		cacheKey, lockKey := IdempotencyKeys(c.FullPath(), idempKey)

		val, err := rdb.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var cached cachedResponse
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.Header(HeaderIdempotentReplayed, "true")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
			log.Warn("idempotency cached response unreadable", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			log.Warn("idempotency lookup failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", IdempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.Error(c, http.StatusConflict, apperror.CodeConflict,
				"A request with this Idempotency-Key is already being processed", nil)
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if isReplayable(status) && writer.body.Len() <= idempotencyMaxCachedBytes {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: writer.body.String()})
			if err := rdb.Set(ctx, cacheKey, string(payload), ttl).Err(); err != nil {
				log.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("idempotency unlock failed", zap.String("key", lockKey), zap.Error(err))
		}
	}
}

// isReplayable excludes server errors and 409 Conflict. Both tell the caller
// to retry, so a cached copy would pin the failure to the key.
func isReplayable(status int) bool {
	return status < http.StatusInternalServerError && status != http.StatusConflict
}
