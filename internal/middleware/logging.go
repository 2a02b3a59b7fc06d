package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger emits one structured log line per request.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status":  c.Response().StatusCode(),
			"method":  c.Method(),
			"path":    c.Path(),
			"ip":      c.IP(),
			"latency": time.Since(start).String(),
		})

		if err != nil {
			entry.WithError(err).Error("request")
			return err
		}

		entry.Info("request")
		return nil
	}
}
