// Package config reads server configuration from the environment.
// A .env file, if present, is loaded by main before Load is called.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Config holds application configuration.
type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string // "json" | "console"
	StoreBackend string // "sqlite" | "redis" | "memory"
	DBPath       string
	RedisAddr    string

	SessionSecret string
	SecureCookies bool
	ClientOrigin  string

	Location     *time.Location
	FeudRounds   int
	RewardTag    string
	WordsFile    string
	PurgeSpec    string
	GuessRate    rate.Limit
	GuessBurst   int
	HandlerLimit time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	loc, err := time.LoadLocation(getEnv("CAFE_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("config: CAFE_TIMEZONE: %w", err)
	}
	cfg := &Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		StoreBackend:  getEnv("STORE_BACKEND", "sqlite"),
		DBPath:        getEnv("DB_PATH", "./data/cafe-games.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		SessionSecret: getEnv("SESSION_SECRET", "dev_secret_change_me"),
		SecureCookies: os.Getenv("NODE_ENV") == "production",
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Location:      loc,
		FeudRounds:    getInt("FEUD_ROUNDS", 3),
		RewardTag:     getEnv("REWARD_TAG", "WT"),
		WordsFile:     os.Getenv("WORDS_ANSWERS_FILE"),
		PurgeSpec:     getEnv("PURGE_SCHEDULE", "@daily"),
		GuessRate:     rate.Limit(getFloat("GUESS_RATE", 2)),
		GuessBurst:    getInt("GUESS_BURST", 5),
		HandlerLimit:  10 * time.Second,
	}
	switch cfg.StoreBackend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.FeudRounds < 1 {
		return nil, fmt.Errorf("config: FEUD_ROUNDS must be at least 1")
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}
