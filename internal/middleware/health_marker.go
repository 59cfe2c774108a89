package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request statistics, read back by the health service.
const (
	KeyReqTotal    = "health:global:req_total"
	KeyReqErrors   = "health:global:req_errors"
	KeyReqRejected = "health:global:req_rejected"
	KeyResTime     = "health:global:res_time_total"
	KeyResCount    = "health:global:res_count"
	KeyStartTime   = "health:global:start_time"
	KeyLastReq     = "health:global:last_request"
	KeyErrorLog    = "health:global:error_log"
)

// ErrorLogSize bounds the error log list.
const ErrorLogSize = 50

// HealthMarker records request stats in Redis (skip /health*, favicon). A nil client disables it.
// 4xx responses count as rejected, 5xx as errors and are appended to the error log.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if rdb == nil || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		ctx := c.UserContext()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		_, _ = rdb.Set(ctx, KeyLastReq, b, 0).Result()
		_, _ = rdb.Incr(ctx, KeyReqTotal).Result()

		err := c.Next()

		_, _ = rdb.Incr(ctx, KeyResCount).Result()
		_, _ = rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds())).Result()
		switch status := c.Response().StatusCode(); {
		case status >= 500:
			_, _ = rdb.Incr(ctx, KeyReqErrors).Result()
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     time.Now(),
				"method":   c.Method(),
				"path":     c.OriginalURL(),
				"status":   status,
				"trace_id": GetTraceID(c),
				"message":  string(c.Response().Body()),
			})
			pipe := rdb.TxPipeline()
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
			_, _ = pipe.Exec(ctx)
		case status >= 400:
			_, _ = rdb.Incr(ctx, KeyReqRejected).Result()
		}
		return err
	}
}
