package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/box-office/internal/catalog"
)

// Source kinds accepted in CATALOG_SOURCE
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceRedis    = "redis"
	SourcePostgres = "postgres"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for box-office
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// CatalogConfig holds dataset and view configuration
type CatalogConfig struct {
	Source           string
	Path             string
	URL              string
	LoadTimeout      time.Duration
	Watch            bool
	WatchDebounce    time.Duration
	HealthInterval   time.Duration
	DefaultCategory  catalog.Category
	AcclaimedTag     string
	NotoriousLossTag string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
	SeedPath      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Source:           strings.ToLower(getEnv("CATALOG_SOURCE", SourceFile)),
			Path:             getEnv("CATALOG_PATH", "./data/informacoes.json"),
			URL:              getEnv("CATALOG_URL", ""),
			LoadTimeout:      getEnvAsDuration("CATALOG_LOAD_TIMEOUT", 30*time.Second),
			Watch:            getEnvAsBool("CATALOG_WATCH", false),
			WatchDebounce:    getEnvAsDuration("CATALOG_WATCH_DEBOUNCE", 500*time.Millisecond),
			HealthInterval:   getEnvAsDuration("CATALOG_HEALTH_INTERVAL", 30*time.Second),
			DefaultCategory:  catalog.Category(strings.ToLower(getEnv("CATALOG_DEFAULT_CATEGORY", string(catalog.DefaultCategory)))),
			AcclaimedTag:     getEnv("TAG_ACCLAIMED", catalog.DefaultAcclaimedTag),
			NotoriousLossTag: getEnv("TAG_NOTORIOUS_LOSS", catalog.DefaultNotoriousLossTag),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", "./migrations"),
			SeedPath:      getEnv("DATABASE_SEED_PATH", ""),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_KEY", "catalog:movies"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if !c.Catalog.DefaultCategory.Valid() {
		return fmt.Errorf("%w: default category %q", ErrInvalidConfig, c.Catalog.DefaultCategory)
	}

	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("%w: CATALOG_PATH is required for the file source", ErrInvalidConfig)
		}
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return fmt.Errorf("%w: CATALOG_URL is required for the http source", ErrInvalidConfig)
		}
	case SourceRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("%w: REDIS_ADDRESS is required for the redis source", ErrInvalidConfig)
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: DATABASE_DSN is required for the postgres source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown catalog source %q", ErrInvalidConfig, c.Catalog.Source)
	}

	if c.Catalog.Watch && c.Catalog.Source != SourceFile {
		return fmt.Errorf("%w: CATALOG_WATCH only applies to the file source", ErrInvalidConfig)
	}

	if c.Database.SeedPath != "" && c.Database.DSN == "" {
		return fmt.Errorf("%w: DATABASE_SEED_PATH needs DATABASE_DSN", ErrInvalidConfig)
	}

	return nil
}

// ParseLevel maps LOG_LEVEL to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
