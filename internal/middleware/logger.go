package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request, tagged with a fresh request id that
// is also returned in the X-Request-ID header.
func RequestLogger(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.New().String()
		c.Locals("requestId", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		log.Infow("request",
			"requestId", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"clientIP", c.IP(),
			"latency", time.Since(start).String(),
			"userAgent", c.Get(fiber.HeaderUserAgent),
		)
		return err
	}
}
