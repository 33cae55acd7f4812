package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction is one user's predicted score for one match.
// Points stays nil until the match result is submitted.
type Prediction struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	UserID             string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_predictions_user_match"`
	MatchID            string    `json:"match_id" gorm:"size:36;not null;uniqueIndex:idx_predictions_user_match;index"`
	PredictedHomeScore int       `json:"predicted_home_score" gorm:"not null"`
	PredictedAwayScore int       `json:"predicted_away_score" gorm:"not null"`
	Points             *int      `json:"points"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PredictionWithMatch is a user's prediction joined with its fixture.
type PredictionWithMatch struct {
	Prediction
	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	Competition string      `json:"competition"`
	KickoffTime time.Time   `json:"kickoff_time"`
	HomeScore   *int        `json:"home_score"`
	AwayScore   *int        `json:"away_score"`
	Status      MatchStatus `json:"status"`
}

// MatchPrediction is a prediction as shown on a match page once it has kicked off.
type MatchPrediction struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PredictedHomeScore int       `json:"predicted_home_score"`
	PredictedAwayScore int       `json:"predicted_away_score"`
	Points             *int      `json:"points"`
	CreatedAt          time.Time `json:"created_at"`
}

// MatchWithPrediction carries the caller's own prediction alongside a match listing.
type MatchWithPrediction struct {
	Match
	UserPrediction *Prediction `json:"user_prediction,omitempty" gorm:"-"`
}
