package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction-pool/models"
	"prediction-pool/utils"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// errWriteRejected marks a conditional upsert that matched no eligible match row.
var errWriteRejected = errors.New("conditional prediction write affected no rows")

type PredictionService struct {
	DB    *gorm.DB
	Clock clockwork.Clock

	// beforeWrite runs between the eligibility read and the conditional write.
	beforeWrite func()
}

func NewPredictionService(db *gorm.DB, clock clockwork.Clock) *PredictionService {
	return &PredictionService{DB: db, Clock: clock}
}

// checkEligibility evaluates the prediction window against a loaded match.
func checkEligibility(match *models.Match, now time.Time) error {
	if match.Status != models.MatchStatusScheduled {
		return ErrNotPredictable
	}
	if match.HasKickedOff(now) {
		return ErrWindowClosed
	}
	if match.HasResult() {
		return ErrAlreadyScored
	}
	return nil
}

// SubmitPrediction creates or overwrites the caller's prediction for a match.
// The write re-checks eligibility inside the same statement; points are never touched.
func (s *PredictionService) SubmitPrediction(ctx context.Context, identity *Identity, matchID string, home, away int) (*models.Prediction, error) {
	if err := requireUser(identity); err != nil {
		return nil, err
	}
	if err := validateScores(home, away); err != nil {
		return nil, err
	}

	var match models.Match
	if err := s.DB.WithContext(ctx).First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}

	if err := checkEligibility(&match, s.Clock.Now().UTC()); err != nil {
		utils.WithUser(identity.UserID, matchID).Infof("🔒 Prediction rejected: %v", err)
		return nil, err
	}

	if s.beforeWrite != nil {
		s.beforeWrite()
	}

	prediction, err := s.upsertIfEligible(ctx, identity.UserID, matchID, home, away, s.Clock.Now().UTC())
	if errors.Is(err, errWriteRejected) {
		reason := s.lockReason(ctx, matchID)
		utils.WithUser(identity.UserID, matchID).Warnf("🏁 Prediction lost race against match update: %v", reason)
		return nil, reason
	}
	if err != nil {
		return nil, err
	}

	utils.WithUser(identity.UserID, matchID).Infof("✅ Prediction saved: %d-%d", home, away)
	return prediction, nil
}

// upsertIfEligible inserts or updates the (user, match) prediction only when the
// match row still satisfies the eligibility predicate at write time.
func (s *PredictionService) upsertIfEligible(ctx context.Context, userID, matchID string, home, away int, now time.Time) (*models.Prediction, error) {
	var prediction models.Prediction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(upsertPredictionSQL(tx.Dialector.Name()),
			uuid.NewString(), userID, home, away, now, now,
			matchID, models.MatchStatusScheduled, now,
		)
		if res.Error != nil {
			return fmt.Errorf("upsert prediction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errWriteRejected
		}
		if err := tx.Where("user_id = ? AND match_id = ?", userID, matchID).First(&prediction).Error; err != nil {
			return fmt.Errorf("reload prediction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// upsertPredictionSQL builds the conditional upsert. PostgreSQL share-locks the match
// row so a concurrent result submission is serialised against the write.
func upsertPredictionSQL(dialect string) string {
	ts, lock := "?", ""
	if dialect == "postgres" {
		ts, lock = "CAST(? AS TIMESTAMPTZ)", " FOR SHARE OF m"
	}
	return fmt.Sprintf(`INSERT INTO predictions (id, user_id, match_id, predicted_home_score, predicted_away_score, created_at, updated_at)
SELECT CAST(? AS VARCHAR(36)), CAST(? AS VARCHAR(36)), m.id, CAST(? AS INTEGER), CAST(? AS INTEGER), %[1]s, %[1]s
FROM matches m
WHERE m.id = ?
  AND m.status = ?
  AND m.kickoff_time > ?
  AND m.home_score IS NULL
  AND m.away_score IS NULL
  AND m.deleted_at IS NULL%[2]s
ON CONFLICT (user_id, match_id) DO UPDATE SET
  predicted_home_score = excluded.predicted_home_score,
  predicted_away_score = excluded.predicted_away_score,
  updated_at = excluded.updated_at`, ts, lock)
}

// lockReason explains a rejected conditional write from the current match state.
func (s *PredictionService) lockReason(ctx context.Context, matchID string) error {
	var match models.Match
	if err := s.DB.WithContext(ctx).First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		utils.WithMatch(matchID).WithError(err).Error("❌ Failed to reload match after rejected prediction write")
		return ErrPredictionLock
	}
	if match.HasResult() {
		return ErrAlreadyScored
	}
	if err := checkEligibility(&match, s.Clock.Now().UTC()); err != nil {
		return err
	}
	return ErrPredictionLock
}

// ListUserPredictions returns the caller's predictions, latest kickoff first.
func (s *PredictionService) ListUserPredictions(ctx context.Context, identity *Identity) ([]models.PredictionWithMatch, error) {
	if err := requireUser(identity); err != nil {
		return nil, err
	}

	var rows []models.PredictionWithMatch
	err := s.DB.WithContext(ctx).
		Table("predictions AS p").
		Select("p.*, m.home_team, m.away_team, m.competition, m.kickoff_time, m.home_score, m.away_score, m.status").
		Joins("JOIN matches m ON m.id = p.match_id AND m.deleted_at IS NULL").
		Where("p.user_id = ?", identity.UserID).
		Order("m.kickoff_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list predictions for user %s: %w", identity.UserID, err)
	}
	return rows, nil
}

// ListMatchPredictions returns everyone's predictions for a match. They stay hidden
// until kickoff so nobody can copy a rival's pick.
func (s *PredictionService) ListMatchPredictions(ctx context.Context, matchID string) ([]models.MatchPrediction, *models.Match, error) {
	var match models.Match
	if err := s.DB.WithContext(ctx).First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if !match.HasKickedOff(s.Clock.Now().UTC()) {
		return nil, &match, ErrPredictionsHide
	}

	var rows []models.MatchPrediction
	err := s.DB.WithContext(ctx).
		Table("predictions AS p").
		Select("p.id, u.username, p.predicted_home_score, p.predicted_away_score, p.points, p.created_at").
		Joins("JOIN users u ON u.id = p.user_id").
		Where("p.match_id = ?", matchID).
		Order("p.points DESC NULLS LAST, p.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("list predictions for match %s: %w", matchID, err)
	}
	return rows, &match, nil
}
