package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOYALTY_THRESHOLD", "")
	t.Setenv("VAPID_PUBLIC_KEY", "")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, 10, cfg.LoyaltyThreshold)
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.Push.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOYALTY_THRESHOLD", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("S3_BUCKET", "photos")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 5, cfg.LoyaltyThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.Push.Enabled())
}

func TestSlotDurationFallback(t *testing.T) {
	cfg := &Config{SlotMinutes: 0}
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration())
}
