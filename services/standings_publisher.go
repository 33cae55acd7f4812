package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prediction-pool/models"
	"prediction-pool/utils"

	"github.com/jonboulle/clockwork"
)

const latestStandingsKey = "standings/latest.json"

// SnapshotUploader stores a JSON document under a key and returns its public URL.
type SnapshotUploader interface {
	PutJSON(ctx context.Context, key string, data []byte) (string, error)
}

// StandingsSnapshot is the published leaderboard document.
type StandingsSnapshot struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Match       *SnapshotMatch            `json:"match,omitempty"`
	Standings   []models.LeaderboardEntry `json:"standings"`
}

// SnapshotMatch is the result that triggered a snapshot.
type SnapshotMatch struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// StandingsPublisher uploads the leaderboard after every result.
type StandingsPublisher struct {
	Leaderboard *LeaderboardService
	Uploader    SnapshotUploader
	Clock       clockwork.Clock
}

func NewStandingsPublisher(leaderboard *LeaderboardService, uploader SnapshotUploader, clock clockwork.Clock) *StandingsPublisher {
	return &StandingsPublisher{Leaderboard: leaderboard, Uploader: uploader, Clock: clock}
}

// Publish writes the latest standings and, when match is set, a per-match copy.
func (p *StandingsPublisher) Publish(ctx context.Context, match *models.Match) error {
	entries, err := p.Leaderboard.Leaderboard(ctx)
	if err != nil {
		return err
	}

	snapshot := StandingsSnapshot{
		GeneratedAt: p.Clock.Now().UTC(),
		Standings:   entries,
	}
	if snapshot.Standings == nil {
		snapshot.Standings = []models.LeaderboardEntry{}
	}
	if match != nil && match.HomeScore != nil && match.AwayScore != nil {
		snapshot.Match = &SnapshotMatch{
			ID:        match.ID,
			Slug:      match.Slug,
			HomeTeam:  match.HomeTeam,
			AwayTeam:  match.AwayTeam,
			HomeScore: *match.HomeScore,
			AwayScore: *match.AwayScore,
		}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode standings: %w", err)
	}

	keys := []string{latestStandingsKey}
	if snapshot.Match != nil && snapshot.Match.Slug != "" {
		keys = append(keys, fmt.Sprintf("standings/%s.json", snapshot.Match.Slug))
	}
	for _, key := range keys {
		url, err := p.Uploader.PutJSON(ctx, key, data)
		if err != nil {
			return err
		}
		utils.Log.WithField("url", url).Info("📤 Standings published")
	}
	return nil
}

// ResultSubmitted implements ResultHook. Upload failures are logged, never returned.
func (p *StandingsPublisher) ResultSubmitted(ctx context.Context, match *models.Match) {
	if err := p.Publish(ctx, match); err != nil {
		utils.WithMatch(match.ID).WithError(err).Error("❌ Failed to publish standings")
	}
}
