package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Remote RemoteConfig
	Sync   SyncConfig
}

// RemoteConfig addresses the cloud record store.
type RemoteConfig struct {
	URL    string
	APIKey string
	Table  string
}

// SyncConfig mirrors the sync defaults the original deployment shipped
// with: push every 30 seconds, 3 attempts, 2 seconds between attempts.
type SyncConfig struct {
	AutoSync      bool
	Interval      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "cobranca"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:     getenv("DATABASE_TYPE", "sqlite"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "cobranca"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		Remote: RemoteConfig{
			URL:    strings.TrimSpace(getenv("REMOTE_URL", "")),
			APIKey: strings.TrimSpace(getenv("REMOTE_API_KEY", "")),
			Table:  getenv("REMOTE_TABLE", "debt_records"),
		},
		Sync: SyncConfig{
			AutoSync:      getenvBool("SYNC_AUTO", true),
			Interval:      getenvDuration("SYNC_INTERVAL", 30*time.Second),
			RetryAttempts: int(getenvInt64("SYNC_RETRY_ATTEMPTS", 3)),
			RetryDelay:    getenvDuration("SYNC_RETRY_DELAY", 2*time.Second),
		},
	}
}

// RemoteConfigured reports whether a remote endpoint is set; without
// one the app runs local-only and the sync surface stays disabled.
func (c Config) RemoteConfigured() bool {
	return c.Remote.URL != ""
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
