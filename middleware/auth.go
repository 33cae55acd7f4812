// middleware/auth.go
package middleware

import (
	"strings"

	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityKey is the c.Locals key holding the *services.Identity of the caller.
	IdentityKey = "identity"
	// TokenCookie carries the session token for browser clients.
	TokenCookie = "token"
)

// TokenParser turns a session token into the caller's identity.
type TokenParser interface {
	ParseToken(token string) (*services.Identity, error)
}

// Identity returns the authenticated caller, or nil.
func Identity(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals(IdentityKey).(*services.Identity)
	return id
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the token cookie.
func bearerToken(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		if token := strings.TrimPrefix(auth, "Bearer "); token != auth {
			return strings.TrimSpace(token)
		}
	}
	return c.Cookies(TokenCookie)
}

func unauthorized(c *fiber.Ctx, status int, err *services.PoolError) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Message,
		"code":  err.Code,
	})
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authenticate(c, parser); err != nil {
			return unauthorized(c, fiber.StatusUnauthorized, err)
		}
		return c.Next()
	}
}

// RequireAdmin is RequireAuth plus the admin flag.
func RequireAdmin(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := authenticate(c, parser)
		if err != nil {
			return unauthorized(c, fiber.StatusUnauthorized, err)
		}
		if !id.IsAdmin {
			return unauthorized(c, fiber.StatusForbidden, services.ErrAdminRequired)
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, parser TokenParser) (*services.Identity, *services.PoolError) {
	token := bearerToken(c)
	if token == "" {
		return nil, services.ErrUnauthenticated
	}
	id, err := parser.ParseToken(token)
	if err != nil {
		return nil, services.ErrInvalidToken
	}
	c.Locals(IdentityKey, id)
	return id, nil
}

// OptionalAuth attaches the caller when a valid token is present and never rejects.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if id, err := parser.ParseToken(token); err == nil {
				c.Locals(IdentityKey, id)
			}
		}
		return c.Next()
	}
}
