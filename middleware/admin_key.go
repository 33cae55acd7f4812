// middleware/admin_key.go
package middleware

import (
	"crypto/subtle"
	"encoding/json"

	"prediction-pool/services"
	"prediction-pool/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminKeyHeader carries the bootstrap key for creating administrators.
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware guards admin bootstrap routes with a shared key.
// An empty configured key disables the routes entirely.
func AdminKeyMiddleware(expectedKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expectedKey == "" {
			utils.Log.Warnf("🚫 [ADMIN_KEY] ADMIN_API_KEY not configured, rejecting %s", c.Path())
			return unauthorized(c, fiber.StatusForbidden, services.ErrAdminRequired)
		}

		key := adminKey(c)
		if key == "" {
			return unauthorized(c, fiber.StatusUnauthorized, services.ErrAdminRequired)
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
			utils.Log.Warnf("❌ [ADMIN_KEY] Invalid admin key for %s from %s", c.Path(), c.IP())
			return unauthorized(c, fiber.StatusForbidden, services.ErrAdminRequired)
		}

		return c.Next()
	}
}

// adminKey reads the key header, falling back to an "adminKey" field in a JSON body.
func adminKey(c *fiber.Ctx) string {
	if key := c.Get(AdminKeyHeader); key != "" {
		return key
	}
	var body struct {
		AdminKey string `json:"adminKey"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	return body.AdminKey
}
