package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"MONGODB_URI", "DB_NAME", "PORT", "APP_ENV", "CORS_ALLOWED_ORIGINS", "REDIS_DB", "ARCHIVE_SCHEDULE"} {
		t.Setenv(k, "") // 測試結束後還原
		os.Unsetenv(k)
	}
	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "travel_users", cfg.DBName)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "@hourly", cfg.ArchiveSchedule)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_SIZE", "many")

	cfg := LoadConfig()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 256, cfg.CacheSize)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg := LoadConfig()
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureJWTSecret)

	cfg.JWTSecret = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureJWTSecret)

	cfg.JWTSecret = "a-long-random-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateAllowsDefaultSecretInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	assert.NoError(t, LoadConfig().Validate())
}
