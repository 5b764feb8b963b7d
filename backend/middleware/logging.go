package middleware

import (
	"time"

	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		// Values from the ctx point into buffers fiber reuses once the request ends.
		fields := []interface{}{
			"method", fiberutils.CopyString(c.Method()),
			"path", fiberutils.CopyString(c.Path()),
			"status", status,
			"latency", time.Since(start),
			"ip", fiberutils.CopyString(c.IP()),
			"user_agent", fiberutils.CopyString(c.Get(fiber.HeaderUserAgent)),
		}
		if user := CurrentUser(c); user != nil {
			fields = append(fields, "user_id", user.ID)
		}

		switch {
		case err != nil:
			logger.Error("request failed", append(fields, "error", err)...)
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}
