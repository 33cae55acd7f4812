package services

import (
	"context"
	"testing"
	"time"

	"prediction-pool/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 12, 21, 15, 0, 0, 0, time.UTC)

var adminIdentity = &Identity{UserID: "admin-1", Username: "admin", IsAdmin: true}

// newTestDB opens a private in-memory database with the pool schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Match{}, &models.Prediction{}))
	return db
}

func newTestClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *Identity {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return &Identity{UserID: u.ID, Username: u.Username}
}

func seedMatch(t *testing.T, db *gorm.DB, kickoff time.Time, status models.MatchStatus) *models.Match {
	t.Helper()
	kickoff = kickoff.UTC()
	m := &models.Match{
		HomeTeam:    "Morocco",
		AwayTeam:    "Comoros",
		Competition: "AFCON 2025",
		MatchDate:   datatypes.Date(kickoff),
		KickoffTime: kickoff,
		Status:      status,
		Slug:        matchSlug("Morocco", "Comoros", kickoff),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedPrediction(t *testing.T, db *gorm.DB, user *Identity, match *models.Match, home, away int) *models.Prediction {
	t.Helper()
	p := &models.Prediction{
		UserID:             user.UserID,
		MatchID:            match.ID,
		PredictedHomeScore: home,
		PredictedAwayScore: away,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func finishMatch(t *testing.T, db *gorm.DB, matchID string, home, away int) {
	t.Helper()
	require.NoError(t, db.Model(&models.Match{}).Where("id = ?", matchID).Updates(map[string]interface{}{
		"home_score": home,
		"away_score": away,
		"status":     models.MatchStatusFinished,
	}).Error)
}

func loadPredictions(t *testing.T, db *gorm.DB, matchID string) []models.Prediction {
	t.Helper()
	var out []models.Prediction
	require.NoError(t, db.WithContext(context.Background()).Where("match_id = ?", matchID).Order("created_at ASC").Find(&out).Error)
	return out
}
