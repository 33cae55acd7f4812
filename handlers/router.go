// handlers/router.go
package handlers

import (
	"errors"

	"prediction-pool/middleware"
	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	Auth        *services.AuthService
	Matches     *services.MatchService
	Predictions *services.PredictionService
	Leaderboard *services.LeaderboardService
}

// AppConfig holds the HTTP-facing settings.
type AppConfig struct {
	AllowedOrigins string
	AdminAPIKey    string
}

// NewApp builds the fiber app with global middleware and every /api route.
func NewApp(cfg AppConfig, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "prediction-pool",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: fallbackErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())

	origins := cfg.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Admin-Key",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	SetupAuthRoutes(api, svc.Auth, cfg.AdminAPIKey)
	SetupMatchRoutes(api, svc.Matches, svc.Predictions, svc.Auth)
	SetupPredictionRoutes(api, svc.Predictions, svc.Auth)
	SetupLeaderboardRoutes(api, svc.Leaderboard)

	return app
}

// fallbackErrorHandler covers errors that escape a handler, such as unknown routes.
func fallbackErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code := services.ReasonValidation
		if fe.Code == fiber.StatusNotFound || fe.Code == fiber.StatusMethodNotAllowed {
			code = services.ReasonNotFound
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message, "code": code})
	}
	return respondError(c, err)
}
