// middleware/request_logger.go
package middleware

import (
	"time"

	"prediction-pool/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := utils.Log.WithFields(logrus.Fields{
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.IP(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			entry = entry.WithField("request_id", rid)
		}
		if id := Identity(c); id != nil {
			entry = entry.WithField("user_id", id.UserID)
		}

		switch {
		case status >= 500:
			entry.Error("Internal Server Error")
		case status >= 400:
			entry.Warn("Client Error")
		default:
			entry.Info("Request completed")
		}
		return nil
	}
}
