package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/hermes/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("HERMES_ENV", "local")
	t.Setenv("HERMES_PORT", "9090")
	t.Setenv("HERMES_API_TOKEN", "secret")
	t.Setenv("HERMES_PROVIDER_TYPE", "here")
	t.Setenv("HERMES_PROVIDER_KEY", "testAPIKey")
	t.Setenv("HERMES_PROVIDER_TIMEOUT", "5s")
	t.Setenv("HERMES_PROVIDER_RATE_LIMIT", "3")
	t.Setenv("HERMES_CACHE_ENABLED", "false")
	t.Setenv("HERMES_CACHE_BACKEND", "Redis")
	t.Setenv("HERMES_DEFAULT_MODES", "car, pedestrian,")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, "here", cfg.Provider.Type)
	assert.Equal(t, "testAPIKey", cfg.Provider.APIKey)
	assert.Equal(t, "bg", cfg.Provider.Language)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.RateLimit)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, config.BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, []string{"car", "pedestrian"}, cfg.DefaultModes)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("HERMES_API_TOKEN", "secret")

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "geoapify", cfg.Provider.Type)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.Zero(t, cfg.Provider.RateLimit)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, config.BackendPostgres, cfg.Cache.Backend)
	assert.Equal(t, []string{"pedestrian"}, cfg.DefaultModes)
	assert.Equal(t, "SOF", cfg.BoundaryCode)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Empty(t, cfg.POIDataset)
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("HERMES_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for http server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("HERMES_PROVIDER_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse provider timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Setenv("HERMES_PROVIDER_RATE_LIMIT", "-1")

	assert.PanicsWithValue(t, "failed to parse provider rate limit from configuration, must be a non-negative integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_CacheFlagError(t *testing.T) {
	t.Setenv("HERMES_CACHE_ENABLED", "sometimes")

	assert.PanicsWithValue(t, "failed to parse cache flag from configuration, must be a boolean", func() {
		config.MustLoad()
	})
}

func TestMustLoad_BackendError(t *testing.T) {
	t.Setenv("HERMES_CACHE_BACKEND", "mongo")

	assert.PanicsWithValue(t, "unknown cache backend in configuration, must be one of postgres, redis, memory", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RedisDBError(t *testing.T) {
	t.Setenv("REDIS_DB", "first")

	assert.PanicsWithValue(t, "failed to parse redis database from configuration, must be an integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MissingToken(t *testing.T) {
	t.Setenv("HERMES_API_TOKEN", "")

	assert.PanicsWithValue(t, "HERMES_API_TOKEN is required", func() {
		config.MustLoad()
	})
}
