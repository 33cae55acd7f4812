// handlers/leaderboard_routes.go
package handlers

import (
	"prediction-pool/models"
	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(api fiber.Router, leaderboardService *services.LeaderboardService) {
	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := leaderboardService.Leaderboard(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		return c.JSON(fiber.Map{"leaderboard": entries})
	})
}
