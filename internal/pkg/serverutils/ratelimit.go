package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware caps chat requests per client IP using a fixed
// one-minute Redis window. A nil client disables the limiter, so local
// development works without Redis.
func RateLimitMiddleware(rdb *redis.Client, perMinute int) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if rdb == nil || perMinute <= 0 {
			return ctx.Next()
		}

		key := fmt.Sprintf("ratelimit:chat:%s:%d", ctx.IP(), time.Now().Unix()/60)
		count, err := rdb.Incr(ctx.Context(), key).Result()
		if err != nil {
			// Redis down must not take chat down with it.
			return ctx.Next()
		}
		if count == 1 {
			rdb.Expire(ctx.Context(), key, time.Minute)
		}
		if count > int64(perMinute) {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse("Too many requests, slow down a little."))
		}
		return ctx.Next()
	}
}
