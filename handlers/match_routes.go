// handlers/match_routes.go
package handlers

import (
	"strings"
	"time"

	"prediction-pool/middleware"
	"prediction-pool/models"
	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
)

type createMatchRequest struct {
	HomeTeam    string  `json:"home_team" validate:"required"`
	AwayTeam    string  `json:"away_team" validate:"required"`
	Competition string  `json:"competition"`
	Venue       *string `json:"venue"`
	MatchDate   string  `json:"match_date" validate:"required,datetime=2006-01-02"`
	KickoffTime string  `json:"kickoff_time" validate:"required"`
}

type updateMatchRequest struct {
	HomeTeam    *string `json:"home_team"`
	AwayTeam    *string `json:"away_team"`
	Competition *string `json:"competition"`
	Venue       *string `json:"venue"`
	MatchDate   *string `json:"match_date" validate:"omitempty,datetime=2006-01-02"`
	KickoffTime *string `json:"kickoff_time"`
	Status      *string `json:"status"`
}

type scoreRequest struct {
	HomeScore *int `json:"home_score" validate:"required,min=0,max=50"`
	AwayScore *int `json:"away_score" validate:"required,min=0,max=50"`
}

// kickoffLayouts are accepted for kickoff_time; values without a zone are read as UTC.
var kickoffLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseKickoff(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, services.ValidationError("kickoff_time must be an ISO-8601 timestamp")
}

func SetupMatchRoutes(api fiber.Router, matchService *services.MatchService, predictionService *services.PredictionService, auth middleware.TokenParser) {
	matches := api.Group("/matches")

	// 🔓 Public routes (caller's own prediction attached when signed in)
	matches.Get("/", middleware.OptionalAuth(auth), func(c *fiber.Ctx) error {
		list, err := matchService.ListMatches(c.UserContext(), services.MatchFilter{
			Status:      c.Query("status"),
			Competition: c.Query("competition"),
		}, middleware.Identity(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"matches": list})
	})

	matches.Get("/:id", func(c *fiber.Ctx) error {
		match, err := matchService.GetMatch(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"match": match})
	})

	matches.Get("/:id/predictions", func(c *fiber.Ctx) error {
		predictions, match, err := predictionService.ListMatchPredictions(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		if predictions == nil {
			predictions = []models.MatchPrediction{}
		}
		return c.JSON(fiber.Map{
			"predictions":  predictions,
			"match_status": match.Status,
		})
	})

	// 🔐 Admin routes
	admin := middleware.RequireAdmin(auth)

	matches.Post("/", admin, func(c *fiber.Ctx) error {
		var req createMatchRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		kickoff, err := parseKickoff(req.KickoffTime)
		if err != nil {
			return respondError(c, err)
		}

		match, err := matchService.CreateMatch(c.UserContext(), middleware.Identity(c), services.MatchInput{
			HomeTeam:    req.HomeTeam,
			AwayTeam:    req.AwayTeam,
			Competition: req.Competition,
			Venue:       req.Venue,
			MatchDate:   req.MatchDate,
			KickoffTime: kickoff,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Match created successfully",
			"match":   match,
		})
	})

	matches.Put("/:id", admin, func(c *fiber.Ctx) error {
		var req updateMatchRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		patch := services.MatchPatch{
			HomeTeam:    req.HomeTeam,
			AwayTeam:    req.AwayTeam,
			Competition: req.Competition,
			Venue:       req.Venue,
			MatchDate:   req.MatchDate,
		}
		if req.KickoffTime != nil {
			kickoff, err := parseKickoff(*req.KickoffTime)
			if err != nil {
				return respondError(c, err)
			}
			patch.KickoffTime = &kickoff
		}
		if req.Status != nil {
			status := models.MatchStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
			patch.Status = &status
		}

		match, err := matchService.UpdateMatch(c.UserContext(), middleware.Identity(c), c.Params("id"), patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Match updated successfully",
			"match":   match,
		})
	})

	matches.Delete("/:id", admin, func(c *fiber.Ctx) error {
		if err := matchService.DeleteMatch(c.UserContext(), middleware.Identity(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Match deleted successfully"})
	})

	matches.Post("/:id/score", admin, func(c *fiber.Ctx) error {
		var req scoreRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}

		outcome, err := matchService.SubmitResult(c.UserContext(), middleware.Identity(c), c.Params("id"), *req.HomeScore, *req.AwayScore)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":             "Score submitted successfully",
			"match":               outcome.Match,
			"predictions_updated": outcome.PredictionsRecomputed,
		})
	})
}
