// config/config.go
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	AllowedOrigins string

	// Auth
	JWTSecret    string
	JWTExpiresIn time.Duration
	AdminAPIKey  string

	// Leaderboard cache (optional)
	RedisURL            string
	LeaderboardCacheTTL time.Duration

	// Standings snapshots to Cloudflare R2 (optional)
	CloudflareAccountID string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2BucketName        string
	CDNBaseURL          string

	// Background jobs
	KickoffSweepInterval time.Duration
	RepairInterval       time.Duration

	DefaultCompetition string

	LogLevel  string
	LogFormat string
}

// R2Enabled reports whether standings snapshots can be uploaded.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("⚠️  No .env file found, reading environment variables directly")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_EXPIRES_IN", "168h")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LEADERBOARD_CACHE_TTL", "1m")
	v.SetDefault("CLOUDFLARE_ACCOUNT_ID", "")
	v.SetDefault("R2_ACCESS_KEY_ID", "")
	v.SetDefault("R2_ACCESS_KEY_SECRET", "")
	v.SetDefault("R2_BUCKET_NAME", "")
	v.SetDefault("CDN_BASE_URL", "")
	v.SetDefault("KICKOFF_SWEEP_INTERVAL", "1m")
	v.SetDefault("REPAIR_INTERVAL", "5m")
	v.SetDefault("DEFAULT_COMPETITION", "AFCON 2025")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	return &Config{
		Port:                 v.GetString("PORT"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		AllowedOrigins:       normalizeOrigins(v.GetString("ALLOWED_ORIGINS")),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTExpiresIn:         durationOr(v.GetDuration("JWT_EXPIRES_IN"), 7*24*time.Hour),
		AdminAPIKey:          v.GetString("ADMIN_API_KEY"),
		RedisURL:             v.GetString("REDIS_URL"),
		LeaderboardCacheTTL:  durationOr(v.GetDuration("LEADERBOARD_CACHE_TTL"), time.Minute),
		CloudflareAccountID:  v.GetString("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:        v.GetString("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:    v.GetString("R2_ACCESS_KEY_SECRET"),
		R2BucketName:         v.GetString("R2_BUCKET_NAME"),
		CDNBaseURL:           v.GetString("CDN_BASE_URL"),
		KickoffSweepInterval: durationOr(v.GetDuration("KICKOFF_SWEEP_INTERVAL"), time.Minute),
		RepairInterval:       durationOr(v.GetDuration("REPAIR_INTERVAL"), 5*time.Minute),
		DefaultCompetition:   v.GetString("DEFAULT_COMPETITION"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
	}
}

// normalizeOrigins trims each comma-separated origin for fiber's CORS config.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
