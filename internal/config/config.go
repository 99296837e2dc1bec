package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds the configuration settings for the proxy.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port the HTTP server listens on.
// - APIToken: The shared secret every /api request must carry.
// - Provider: Which upstream to call and how.
// - Cache: Whether results are cached and where.
// - DefaultModes: Transport modes used when a route request names none.
// - POIDataset, BoundaryFile: Optional overrides for the bundled reference files.
type Config struct {
	Env          string
	Port         int
	APIToken     string
	Provider     ProviderConfig
	Cache        CacheConfig
	DefaultModes []string
	POIDataset   string
	BoundaryFile string
	BoundaryCode string
	Database     PostgresConfig
	Redis        RedisConfig
}

// ProviderConfig selects and tunes the upstream provider.
type ProviderConfig struct {
	Type      string
	APIKey    string
	Language  string
	Timeout   time.Duration
	RateLimit int // requests per second, 0 means unlimited
}

// CacheConfig controls the document store.
type CacheConfig struct {
	Enabled bool
	Backend string
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MustLoad reads .env (if present) and the process environment and returns the configuration.
// It panics on values that cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	port, err := strconv.Atoi(v.GetString("HERMES_PORT"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	timeout, err := time.ParseDuration(v.GetString("HERMES_PROVIDER_TIMEOUT"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("HERMES_PROVIDER_RATE_LIMIT"))
	if err != nil || rateLimit < 0 {
		panic("failed to parse provider rate limit from configuration, must be a non-negative integer")
	}

	cacheEnabled, err := strconv.ParseBool(v.GetString("HERMES_CACHE_ENABLED"))
	if err != nil {
		panic("failed to parse cache flag from configuration, must be a boolean")
	}

	backend := strings.ToLower(v.GetString("HERMES_CACHE_BACKEND"))
	switch backend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		panic("unknown cache backend in configuration, must be one of postgres, redis, memory")
	}

	redisDB, err := strconv.Atoi(v.GetString("REDIS_DB"))
	if err != nil {
		panic("failed to parse redis database from configuration, must be an integer")
	}

	token := v.GetString("HERMES_API_TOKEN")
	if token == "" {
		panic("HERMES_API_TOKEN is required")
	}

	return &Config{
		Env:      v.GetString("HERMES_ENV"),
		Port:     port,
		APIToken: token,
		Provider: ProviderConfig{
			Type:      v.GetString("HERMES_PROVIDER_TYPE"),
			APIKey:    v.GetString("HERMES_PROVIDER_KEY"),
			Language:  v.GetString("HERMES_PROVIDER_LANGUAGE"),
			Timeout:   timeout,
			RateLimit: rateLimit,
		},
		Cache: CacheConfig{
			Enabled: cacheEnabled,
			Backend: backend,
		},
		DefaultModes: splitList(v.GetString("HERMES_DEFAULT_MODES")),
		POIDataset:   v.GetString("HERMES_POI_DATASET"),
		BoundaryFile: v.GetString("HERMES_BOUNDARY_FILE"),
		BoundaryCode: v.GetString("HERMES_BOUNDARY_CODE"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HERMES_ENV", "production")
	v.SetDefault("HERMES_PORT", "8080")
	v.SetDefault("HERMES_PROVIDER_TYPE", "geoapify")
	v.SetDefault("HERMES_PROVIDER_LANGUAGE", "bg")
	v.SetDefault("HERMES_PROVIDER_TIMEOUT", "10s")
	v.SetDefault("HERMES_PROVIDER_RATE_LIMIT", "0")
	v.SetDefault("HERMES_CACHE_ENABLED", "true")
	v.SetDefault("HERMES_CACHE_BACKEND", BackendPostgres)
	v.SetDefault("HERMES_DEFAULT_MODES", "pedestrian")
	v.SetDefault("HERMES_BOUNDARY_CODE", "SOF")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", "0")
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
