package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "X-Correlation-ID"
	// reservations expire on their own if the handler never finishes
	idempotencyLease = time.Minute
)

// replay is the stored outcome of a request. A zero Status marks a request
// that is still in flight.
type replay struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

var pendingReplay = []byte(`{"status":0}`)

// Idempotency replays the stored response of a mutating admin request carrying a
// previously seen X-Correlation-ID. Keys are scoped per admin. The first request
// reserves its key before running, so a duplicate arriving meanwhile gets 409
// instead of running the handler twice. A nil client disables it.
func Idempotency(client *redis.Client, ttl time.Duration, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	lease := idempotencyLease
	if ttl < lease {
		lease = ttl
	}

	return func(c *fiber.Ctx) error {
		if client == nil {
			return c.Next()
		}
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut && c.Method() != fiber.MethodPatch {
			return c.Next()
		}
		correlationID := c.Get(idempotencyHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := "idempotency:" + GetAdminSubject(c) + ":" + c.Method() + ":" + c.Path() + ":" + correlationID
		ctx := c.UserContext()

		cached, err := client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return sendReplay(c, cached)
		case !errors.Is(err, redis.Nil):
			logger.Warn("idempotency lookup failed", zap.Error(err))
			return c.Next()
		}

		reserved, err := client.SetNX(ctx, key, pendingReplay, lease).Result()
		if err != nil {
			logger.Warn("idempotency reserve failed", zap.Error(err))
			return c.Next()
		}
		if !reserved {
			// lost the race to a duplicate that reserved after our lookup
			if cached, err := client.Get(ctx, key).Bytes(); err == nil {
				return sendReplay(c, cached)
			}
			return inProgress(c)
		}

		storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Next(); err != nil {
			release(storeCtx, client, key, logger)
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			release(storeCtx, client, key, logger)
			return nil
		}
		data, err := json.Marshal(replay{Status: status, Body: c.Response().Body()})
		if err != nil {
			release(storeCtx, client, key, logger)
			return nil
		}
		if err := client.Set(storeCtx, key, data, ttl).Err(); err != nil {
			logger.Warn("idempotency store failed", zap.Error(err))
		}
		return nil
	}
}

func sendReplay(c *fiber.Ctx, cached []byte) error {
	var r replay
	if err := json.Unmarshal(cached, &r); err != nil || r.Status == 0 {
		return inProgress(c)
	}
	c.Set("X-Idempotent-Replay", "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(r.Status).Send(r.Body)
}

func inProgress(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"success": false,
		"error":   "request already in progress",
	})
}

// release drops a reservation so the client can retry a failed request.
func release(ctx context.Context, client *redis.Client, key string, logger *zap.Logger) {
	if err := client.Del(ctx, key).Err(); err != nil {
		logger.Warn("idempotency release failed", zap.Error(err))
	}
}
