package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the health dashboard counters.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyLastReq   = "health:global:last_request"
)

// HealthMarker records request stats in Redis (skips /health* and uploads).
// A nil client disables marking entirely.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/uploads") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		lastReq := map[string]interface{}{
			"time":   time.Now(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		}
		b, _ := json.Marshal(lastReq)
		ctx := context.Background()
		_, _ = rdb.Set(ctx, KeyLastReq, b, 0).Result()
		_, _ = rdb.Incr(ctx, KeyReqTotal).Result()

		err := c.Next()

		ms := time.Since(start).Milliseconds()
		_, _ = rdb.Incr(ctx, KeyResCount).Result()
		_, _ = rdb.IncrByFloat(ctx, KeyResTime, float64(ms)).Result()
		if c.Response().StatusCode() >= 500 {
			_, _ = rdb.Incr(ctx, KeyReqErrors).Result()
		}
		return err
	}
}
