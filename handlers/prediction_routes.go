// handlers/prediction_routes.go
package handlers

import (
	"prediction-pool/middleware"
	"prediction-pool/models"
	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
)

type predictionRequest struct {
	MatchID            string `json:"match_id" validate:"required"`
	PredictedHomeScore *int   `json:"predicted_home_score" validate:"required,min=0,max=50"`
	PredictedAwayScore *int   `json:"predicted_away_score" validate:"required,min=0,max=50"`
}

func SetupPredictionRoutes(api fiber.Router, predictionService *services.PredictionService, auth middleware.TokenParser) {
	// 🔐 Signed-in players only
	predictions := api.Group("/predictions", middleware.RequireAuth(auth))

	predictions.Get("/", func(c *fiber.Ctx) error {
		list, err := predictionService.ListUserPredictions(c.UserContext(), middleware.Identity(c))
		if err != nil {
			return respondError(c, err)
		}
		if list == nil {
			list = []models.PredictionWithMatch{}
		}
		return c.JSON(fiber.Map{"predictions": list})
	})

	predictions.Post("/", func(c *fiber.Ctx) error {
		var req predictionRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		prediction, err := predictionService.SubmitPrediction(c.UserContext(), middleware.Identity(c),
			req.MatchID, *req.PredictedHomeScore, *req.PredictedAwayScore)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Prediction submitted successfully",
			"prediction": prediction,
		})
	})
}
