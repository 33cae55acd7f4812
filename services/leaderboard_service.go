package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prediction-pool/models"
	"prediction-pool/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leaderboardCacheKey = "leaderboard:global"

// LeaderboardCache stores the computed standings between result submissions.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []models.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

// RedisLeaderboardCache keeps the standings as a single JSON value.
type RedisLeaderboardCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{Client: client, TTL: ttl}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error) {
	data, err := c.Client.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read leaderboard cache: %w", err)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode leaderboard cache: %w", err)
	}
	return entries, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, entries []models.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode leaderboard cache: %w", err)
	}
	return c.Client.Set(ctx, leaderboardCacheKey, data, c.TTL).Err()
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, leaderboardCacheKey).Err()
}

type LeaderboardService struct {
	DB    *gorm.DB
	Cache LeaderboardCache // optional
}

func NewLeaderboardService(db *gorm.DB, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{DB: db, Cache: cache}
}

// Leaderboard returns every non-admin player ranked by total points, then username.
// Players level on points share a rank.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if s.Cache != nil {
		entries, ok, err := s.Cache.Get(ctx)
		if err != nil {
			utils.Log.WithError(err).Warn("⚠️ Leaderboard cache unavailable, reading from database")
		} else if ok {
			return entries, nil
		}
	}

	entries, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, entries); err != nil {
			utils.Log.WithError(err).Warn("⚠️ Failed to cache leaderboard")
		}
	}
	return entries, nil
}

func (s *LeaderboardService) compute(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.DB.WithContext(ctx).
		Table("users AS u").
		Select(`u.id AS user_id, u.username,
  COALESCE(SUM(p.points), 0) AS total_points,
  COUNT(p.id) AS total_predictions,
  COALESCE(SUM(CASE WHEN p.points = ? THEN 1 ELSE 0 END), 0) AS exact_scores`, PointsExactScore).
		Joins("LEFT JOIN predictions p ON p.user_id = u.id").
		Where("u.is_admin = ? AND u.deleted_at IS NULL", false).
		Group("u.id, u.username").
		Order("total_points DESC, u.username ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("compute leaderboard: %w", err)
	}

	assignRanks(entries)
	return entries, nil
}

// assignRanks numbers sorted entries 1, 2, 2, 4... on equal points.
func assignRanks(entries []models.LeaderboardEntry) {
	for i := range entries {
		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// Invalidate drops the cached standings.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		utils.Log.WithError(err).Warn("⚠️ Failed to invalidate leaderboard cache")
	}
}

// ResultSubmitted implements ResultHook.
func (s *LeaderboardService) ResultSubmitted(ctx context.Context, match *models.Match) {
	s.Invalidate(ctx)
}
