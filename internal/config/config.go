package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port   string
	Env    string
	APIKey string

	DB      DatabaseConfig
	Redis   RedisConfig
	Channel ChannelConfig
	Engine  EngineConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ChannelConfig contains credentials for the distribution channel push API.
type ChannelConfig struct {
	BaseURL   string
	HotelCode string
	APIKey    string
	Debug     bool
}

// EngineConfig contains tuning parameters for the reconciliation engine.
type EngineConfig struct {
	DebounceQuiet   time.Duration
	ResyncInterval  time.Duration
	HorizonDays     int
	DispatcherQueue int
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.APIKey = getEnv("API_KEY", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Channel push API
	cfg.Channel = ChannelConfig{
		BaseURL:   getEnv("CHANNEL_BASE_URL", ""),
		HotelCode: getEnv("CHANNEL_HOTEL_CODE", ""),
		APIKey:    getEnv("CHANNEL_API_KEY", ""),
		Debug:     getEnv("CHANNEL_DEBUG", "false") == "true",
	}

	// Engine tuning
	var err error
	if cfg.Engine.DebounceQuiet, err = parseDurationEnv("DEBOUNCE_QUIET_PERIOD", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DEBOUNCE_QUIET_PERIOD: %w", err)
	}
	if cfg.Engine.ResyncInterval, err = parseDurationEnv("RESYNC_INTERVAL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid RESYNC_INTERVAL: %w", err)
	}
	cfg.Engine.HorizonDays = getEnvInt("RESYNC_HORIZON_DAYS", 365)
	cfg.Engine.DispatcherQueue = getEnvInt("DISPATCHER_QUEUE_SIZE", 256)

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("API_KEY must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
