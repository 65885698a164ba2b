// Package config loads runtime configuration from the environment, with a
// best-effort .env file for local runs.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AlpacaKey    string
	AlpacaSecret string

	YahooBaseURL string

	QuoteCacheTTL time.Duration
	NewsCacheTTL  time.Duration

	MaxRetries     int
	RequestTimeout time.Duration
}

// Load reads the environment. Missing keys fall back to defaults; credential
// checks are left to the clients that need them, since not every Lambda uses
// every provider.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	return Config{
		AlpacaKey:      os.Getenv("ALPACA_API_KEY"),
		AlpacaSecret:   os.Getenv("ALPACA_SECRET_KEY"),
		YahooBaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		QuoteCacheTTL:  getEnvDuration("QUOTE_CACHE_TTL_MINUTES", 30*time.Minute),
		NewsCacheTTL:   getEnvDuration("NEWS_CACHE_TTL_MINUTES", 15*time.Minute),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RequestTimeout: getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

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

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Minute
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
