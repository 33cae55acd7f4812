package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("R2_BUCKET_NAME", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "AFCON 2025", cfg.DefaultCompetition)
	assert.Equal(t, time.Minute, cfg.KickoffSweepInterval)
	assert.False(t, cfg.R2Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test ")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_ACCESS_KEY_SECRET", "secret")
	t.Setenv("R2_BUCKET_NAME", "standings")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "http://a.test,http://b.test", cfg.AllowedOrigins)
	assert.True(t, cfg.R2Enabled())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("REPAIR_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.RepairInterval)
}
