// handlers/auth_routes.go
package handlers

import (
	"time"

	"prediction-pool/middleware"
	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func SetupAuthRoutes(api fiber.Router, authService *services.AuthService, adminKey string) {
	auth := api.Group("/auth")

	auth.Post("/register", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		res, err := authService.Register(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return respondError(c, err)
		}

		setSessionCookie(c, res.Token, res.ExpiresAt)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Registration successful",
			"user":    res.User,
			"token":   res.Token,
		})
	})

	auth.Post("/login", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		res, err := authService.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return respondError(c, err)
		}

		setSessionCookie(c, res.Token, res.ExpiresAt)
		return c.JSON(fiber.Map{
			"message": "Login successful",
			"user":    res.User,
			"token":   res.Token,
		})
	})

	auth.Post("/logout", func(c *fiber.Ctx) error {
		c.ClearCookie(middleware.TokenCookie)
		return c.JSON(fiber.Map{"message": "Logged out"})
	})

	auth.Get("/me", middleware.RequireAuth(authService), func(c *fiber.Ctx) error {
		user, err := authService.CurrentUser(c.UserContext(), middleware.Identity(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"authenticated": true,
			"user":          user,
		})
	})

	// 🔐 Admin bootstrap: guarded by ADMIN_API_KEY rather than a session
	api.Post("/admin/create", middleware.AdminKeyMiddleware(adminKey), func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		user, err := authService.CreateAdmin(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Admin user created successfully",
			"user":    user,
		})
	})
}
