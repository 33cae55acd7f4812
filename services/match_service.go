package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prediction-pool/models"
	"prediction-pool/utils"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const matchDateLayout = "2006-01-02"

// ResultHook is notified after a result has been committed.
type ResultHook interface {
	ResultSubmitted(ctx context.Context, match *models.Match)
}

type MatchService struct {
	DB    *gorm.DB
	Clock clockwork.Clock

	DefaultCompetition string
	Hooks              []ResultHook
}

func NewMatchService(db *gorm.DB, clock clockwork.Clock, defaultCompetition string, hooks ...ResultHook) *MatchService {
	if defaultCompetition == "" {
		defaultCompetition = "AFCON 2025"
	}
	return &MatchService{DB: db, Clock: clock, DefaultCompetition: defaultCompetition, Hooks: hooks}
}

// ResultOutcome is returned by SubmitResult.
type ResultOutcome struct {
	Match                 *models.Match `json:"match"`
	PredictionsRecomputed int           `json:"predictions_updated"`
}

// SubmitResult records a final score and rescores every prediction for the match.
// Calling it again on a FINISHED match is a correction: scores and all points are overwritten.
// Match update and recomputation commit together.
func (s *MatchService) SubmitResult(ctx context.Context, identity *Identity, matchID string, home, away int) (*ResultOutcome, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateScores(home, away); err != nil {
		return nil, err
	}

	outcome := &ResultOutcome{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Match{}).
			Where("id = ? AND status <> ?", matchID, models.MatchStatusCancelled).
			Updates(map[string]interface{}{
				"home_score": home,
				"away_score": away,
				"status":     models.MatchStatusFinished,
				"updated_at": s.Clock.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("finalize match %s: %w", matchID, res.Error)
		}
		if res.RowsAffected == 0 {
			return classifyMissingMatch(tx, matchID)
		}

		var match models.Match
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			return fmt.Errorf("reload match %s: %w", matchID, err)
		}

		n, err := recomputePoints(tx, &match)
		if err != nil {
			return err
		}
		outcome.Match = &match
		outcome.PredictionsRecomputed = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.WithMatch(matchID).Infof("🏆 Result %s %d-%d %s recorded, %d predictions scored",
		outcome.Match.HomeTeam, home, away, outcome.Match.AwayTeam, outcome.PredictionsRecomputed)

	for _, hook := range s.Hooks {
		hook.ResultSubmitted(ctx, outcome.Match)
	}
	return outcome, nil
}

// RecomputeMatchPoints rescores every prediction of a finished match from its stored result.
func (s *MatchService) RecomputeMatchPoints(ctx context.Context, matchID string) (int, error) {
	var n int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("load match %s: %w", matchID, err)
		}
		if match.Status != models.MatchStatusFinished || !match.HasResult() {
			return newPoolError(ReasonWrongStatus, "match %s has no final result", matchID)
		}

		var err error
		n, err = recomputePoints(tx, &match)
		return err
	})
	return n, err
}

// recomputePoints overwrites the points of every prediction for a finished match.
func recomputePoints(tx *gorm.DB, match *models.Match) (int, error) {
	if match.HomeScore == nil || match.AwayScore == nil {
		return 0, fmt.Errorf("match %s has no final score", match.ID)
	}

	var predictions []models.Prediction
	if err := tx.Where("match_id = ?", match.ID).Find(&predictions).Error; err != nil {
		return 0, fmt.Errorf("load predictions for match %s: %w", match.ID, err)
	}

	for _, p := range predictions {
		points := CalculatePoints(p.PredictedHomeScore, p.PredictedAwayScore, *match.HomeScore, *match.AwayScore)
		if err := tx.Model(&models.Prediction{}).
			Where("id = ?", p.ID).
			UpdateColumn("points", points).Error; err != nil {
			return 0, fmt.Errorf("score prediction %s: %w", p.ID, err)
		}
	}
	return len(predictions), nil
}

func classifyMissingMatch(tx *gorm.DB, matchID string) error {
	var match models.Match
	if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match.Status == models.MatchStatusCancelled {
		return ErrMatchCancelled
	}
	return newPoolError(ReasonWrongStatus, "match %s cannot be finalized from status %s", matchID, match.Status)
}

// MatchInput carries the admin-editable fields of a match.
type MatchInput struct {
	HomeTeam    string
	AwayTeam    string
	Competition string
	Venue       *string
	MatchDate   string // YYYY-MM-DD
	KickoffTime time.Time
}

// CreateMatch schedules a new fixture.
func (s *MatchService) CreateMatch(ctx context.Context, identity *Identity, in MatchInput) (*models.Match, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	home, away := normalizeTeam(in.HomeTeam), normalizeTeam(in.AwayTeam)
	if home == "" || away == "" || in.MatchDate == "" || in.KickoffTime.IsZero() {
		return nil, ValidationError("home team, away team, match date, and kickoff time are required")
	}
	if strings.EqualFold(home, away) {
		return nil, ValidationError("a team cannot play itself")
	}
	date, err := time.Parse(matchDateLayout, in.MatchDate)
	if err != nil {
		return nil, ValidationError("match_date must be YYYY-MM-DD")
	}

	competition := strings.TrimSpace(in.Competition)
	if competition == "" {
		competition = s.DefaultCompetition
	}

	match := &models.Match{
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: competition,
		Venue:       trimOptional(in.Venue),
		MatchDate:   datatypes.Date(date),
		KickoffTime: in.KickoffTime.UTC(),
		Status:      models.MatchStatusScheduled,
		Slug:        matchSlug(home, away, date),
	}
	if err := s.DB.WithContext(ctx).Create(match).Error; err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	utils.WithMatch(match.ID).Infof("📅 Match scheduled: %s vs %s at %s", home, away, match.KickoffTime.Format(time.RFC3339))
	return match, nil
}

// MatchPatch is a partial update; nil fields are left unchanged.
type MatchPatch struct {
	HomeTeam    *string
	AwayTeam    *string
	Competition *string
	Venue       *string
	MatchDate   *string
	KickoffTime *time.Time
	Status      *models.MatchStatus
}

// UpdateMatch edits fixture details. Status changes must follow the transition table;
// FINISHED is reachable only through SubmitResult.
func (s *MatchService) UpdateMatch(ctx context.Context, identity *Identity, matchID string, patch MatchPatch) (*models.Match, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	var updated models.Match
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("load match %s: %w", matchID, err)
		}

		changes := map[string]interface{}{}
		if patch.HomeTeam != nil {
			v := normalizeTeam(*patch.HomeTeam)
			if v == "" {
				return ValidationError("home_team cannot be empty")
			}
			changes["home_team"] = v
			updated.HomeTeam = v
		}
		if patch.AwayTeam != nil {
			v := normalizeTeam(*patch.AwayTeam)
			if v == "" {
				return ValidationError("away_team cannot be empty")
			}
			changes["away_team"] = v
			updated.AwayTeam = v
		}
		if patch.Competition != nil && strings.TrimSpace(*patch.Competition) != "" {
			changes["competition"] = strings.TrimSpace(*patch.Competition)
		}
		if patch.Venue != nil {
			changes["venue"] = trimOptional(patch.Venue)
		}
		date := time.Time(updated.MatchDate)
		if patch.MatchDate != nil {
			d, err := time.Parse(matchDateLayout, *patch.MatchDate)
			if err != nil {
				return ValidationError("match_date must be YYYY-MM-DD")
			}
			date = d
			changes["match_date"] = datatypes.Date(d)
		}
		if patch.KickoffTime != nil {
			if patch.KickoffTime.IsZero() {
				return ValidationError("kickoff_time cannot be empty")
			}
			changes["kickoff_time"] = patch.KickoffTime.UTC()
		}
		if patch.Status != nil && *patch.Status != updated.Status {
			next := *patch.Status
			if !next.IsValid() {
				return ValidationError("unknown status %q", next)
			}
			if next == models.MatchStatusFinished {
				return newPoolError(ReasonInvalidTransition, "submit a final score to finish a match")
			}
			if !updated.Status.CanTransitionTo(next) {
				return newPoolError(ReasonInvalidTransition, "cannot move match from %s to %s", updated.Status, next)
			}
			changes["status"] = next
		}
		if strings.EqualFold(updated.HomeTeam, updated.AwayTeam) {
			return ValidationError("a team cannot play itself")
		}
		if len(changes) == 0 {
			return nil
		}
		if patch.HomeTeam != nil || patch.AwayTeam != nil || patch.MatchDate != nil {
			changes["slug"] = matchSlug(updated.HomeTeam, updated.AwayTeam, date)
		}
		changes["updated_at"] = s.Clock.Now().UTC()

		if err := tx.Model(&models.Match{}).Where("id = ?", matchID).Updates(changes).Error; err != nil {
			return fmt.Errorf("update match %s: %w", matchID, err)
		}
		return tx.First(&updated, "id = ?", matchID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.WithMatch(matchID).Infof("✏️ Match updated: %s vs %s (%s)", updated.HomeTeam, updated.AwayTeam, updated.Status)
	return &updated, nil
}

// DeleteMatch removes a fixture nobody has predicted yet.
func (s *MatchService) DeleteMatch(ctx context.Context, identity *Identity, matchID string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock serialises against the gate's share lock on the same match.
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("lock match %s: %w", matchID, err)
		}

		var count int64
		if err := tx.Model(&models.Prediction{}).Where("match_id = ?", matchID).Count(&count).Error; err != nil {
			return fmt.Errorf("count predictions for match %s: %w", matchID, err)
		}
		if count > 0 {
			return ErrHasPredictions
		}

		res := tx.Where("id = ?", matchID).Delete(&models.Match{})
		if res.Error != nil {
			return fmt.Errorf("delete match %s: %w", matchID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrMatchNotFound
		}
		utils.WithMatch(matchID).Info("🗑️ Match deleted")
		return nil
	})
}

// GetMatch loads a single match.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	if err := s.DB.WithContext(ctx).First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	return &match, nil
}

// MatchFilter narrows ListMatches.
type MatchFilter struct {
	Status      string
	Competition string
}

// ListMatches returns fixtures in kickoff order with the caller's prediction attached.
func (s *MatchService) ListMatches(ctx context.Context, filter MatchFilter, identity *Identity) ([]models.MatchWithPrediction, error) {
	q := s.DB.WithContext(ctx).Model(&models.Match{})
	if filter.Status != "" {
		q = q.Where("status = ?", strings.ToUpper(filter.Status))
	}
	if filter.Competition != "" {
		q = q.Where("competition = ?", filter.Competition)
	}

	var matches []models.Match
	if err := q.Order("kickoff_time ASC").Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]models.MatchWithPrediction, len(matches))
	for i := range matches {
		out[i].Match = matches[i]
	}
	if identity == nil || identity.UserID == "" || len(matches) == 0 {
		return out, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	var predictions []models.Prediction
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND match_id IN ?", identity.UserID, ids).
		Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("load predictions for user %s: %w", identity.UserID, err)
	}
	byMatch := make(map[string]*models.Prediction, len(predictions))
	for i := range predictions {
		byMatch[predictions[i].MatchID] = &predictions[i]
	}
	for i := range out {
		out[i].UserPrediction = byMatch[out[i].ID]
	}
	return out, nil
}

// StartDueMatches moves SCHEDULED matches whose kickoff has passed to LIVE.
func (s *MatchService) StartDueMatches(ctx context.Context) (int64, error) {
	now := s.Clock.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.Match{}).
		Where("status = ? AND kickoff_time <= ? AND home_score IS NULL", models.MatchStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":     models.MatchStatusLive,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("start due matches: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		utils.Log.Infof("⏱️ %d match(es) kicked off and moved to LIVE", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// UnscoredFinishedMatches lists finished matches that still have predictions without points.
func (s *MatchService) UnscoredFinishedMatches(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).
		Model(&models.Match{}).
		Distinct("matches.id").
		Joins("JOIN predictions p ON p.match_id = matches.id").
		Where("matches.status = ? AND p.points IS NULL", models.MatchStatusFinished).
		Pluck("matches.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("find unscored matches: %w", err)
	}
	return ids, nil
}

var teamCaser = cases.Title(language.English)

// normalizeTeam collapses whitespace and title-cases a team name.
func normalizeTeam(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return teamCaser.String(name)
}

func matchSlug(home, away string, date time.Time) string {
	return slug.Make(fmt.Sprintf("%s vs %s %s", home, away, date.Format(matchDateLayout)))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
