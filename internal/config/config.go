package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// RPC settings
	RPCUrl       string
	PollInterval time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// AI agent settings
	OpenRouterAPIKey string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		PollInterval: getDurationEnv("POLL_INTERVAL", 30*time.Second),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "deaura"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// API server
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
	}
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR must not be empty")
	}
	if c.ClickHouseAddr == "" {
		return fmt.Errorf("CLICKHOUSE_ADDR must not be empty")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR must not be empty")
	}
	if !c.DevMode && c.APIKey == "" {
		return fmt.Errorf("API_KEY is required unless DEV_MODE=true")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
