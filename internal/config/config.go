package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TMDB      TMDBConfig
	OMDB      OMDBConfig
	Watchmode WatchmodeConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Catalog   CatalogConfig
	Cache     LocalCacheConfig
	Gateway   GatewayConfig
	Logging   LoggingConfig
}

type TMDBConfig struct {
	APIKey   string
	BaseURL  string
	ImageURL string
	Language string
}

type OMDBConfig struct {
	APIKey  string
	BaseURL string
}

type WatchmodeConfig struct {
	APIKey  string
	BaseURL string
	Region  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type CatalogConfig struct {
	EnrichHeadSize int
	RequestTimeout time.Duration
}

type LocalCacheConfig struct {
	Path              string
	MaxRecentSearches int
}

type GatewayConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TMDB: TMDBConfig{
			APIKey:   getEnv("TMDB_API_KEY", ""),
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageURL: getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p/w500"),
			Language: getEnv("TMDB_LANGUAGE", "en-US"),
		},
		OMDB: OMDBConfig{
			APIKey:  getEnv("OMDB_API_KEY", ""),
			BaseURL: getEnv("OMDB_BASE_URL", "https://www.omdbapi.com"),
		},
		Watchmode: WatchmodeConfig{
			APIKey:  getEnv("WATCHMODE_API_KEY", ""),
			BaseURL: getEnv("WATCHMODE_BASE_URL", "https://api.watchmode.com/v1"),
			Region:  strings.Join(parseCommaSeparated(getEnv("WATCHMODE_REGIONS", "US")), ","),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "showdeck"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "showdeck"),
		},
		Catalog: CatalogConfig{
			EnrichHeadSize: getEnvInt("ENRICH_HEAD_SIZE", 6),
			RequestTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Cache: LocalCacheConfig{
			Path:              getEnv("LOCAL_CACHE_PATH", "data/localcache.json"),
			MaxRecentSearches: getEnvInt("MAX_RECENT_SEARCHES", 10),
		},
		Gateway: GatewayConfig{
			Addr: getEnv("GATEWAY_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("TMDB_BASE_URL is required")
	}
	if c.Catalog.EnrichHeadSize < 0 {
		return fmt.Errorf("ENRICH_HEAD_SIZE must not be negative")
	}
	if c.Cache.MaxRecentSearches <= 0 {
		return fmt.Errorf("MAX_RECENT_SEARCHES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// parseCommaSeparated normalizes a comma list: trims whitespace and drops
// empty segments.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
