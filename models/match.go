package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchStatus is the lifecycle state of a fixture.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

// matchTransitions lists the statuses reachable from each status.
// FINISHED -> FINISHED is a result correction.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusScheduled: {MatchStatusLive, MatchStatusFinished, MatchStatusCancelled},
	MatchStatusLive:      {MatchStatusFinished, MatchStatusCancelled},
	MatchStatusFinished:  {MatchStatusFinished},
	MatchStatusCancelled: {},
}

func (s MatchStatus) IsValid() bool {
	_, ok := matchTransitions[s]
	return ok
}

// CanTransitionTo reports whether a match in status s may move to next.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true once no further transition (other than a correction) changes the status.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCancelled
}

// Match is a scheduled fixture users predict on.
type Match struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	HomeTeam    string         `json:"home_team" gorm:"size:100;not null"`
	AwayTeam    string         `json:"away_team" gorm:"size:100;not null"`
	Competition string         `json:"competition" gorm:"size:100;not null;default:'AFCON 2025'"`
	Venue       *string        `json:"venue,omitempty" gorm:"size:200"`
	Slug        string         `json:"slug" gorm:"size:255;index"`
	MatchDate   datatypes.Date `json:"match_date" gorm:"not null;index"`
	KickoffTime time.Time      `json:"kickoff_time" gorm:"not null"`

	// Final score: both set iff Status == FINISHED
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`

	Status MatchStatus `json:"status" gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`

	Timestamps
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MatchStatusScheduled
	}
	return nil
}

// HasResult reports whether a final score has been recorded.
func (m *Match) HasResult() bool {
	return m.HomeScore != nil || m.AwayScore != nil
}

// HasKickedOff is true from the kickoff instant onwards.
func (m *Match) HasKickedOff(now time.Time) bool {
	return !now.Before(m.KickoffTime)
}
