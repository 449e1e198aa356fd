package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/ai"
	"github.com/deaura-labs/solana-vault-adapter/internal/cache"
	"github.com/deaura-labs/solana-vault-adapter/internal/config"
	"github.com/deaura-labs/solana-vault-adapter/internal/deaura"
	"github.com/deaura-labs/solana-vault-adapter/internal/flags"
	"github.com/deaura-labs/solana-vault-adapter/internal/models"
	"github.com/deaura-labs/solana-vault-adapter/internal/rpc"
	"github.com/deaura-labs/solana-vault-adapter/internal/server"
	"github.com/deaura-labs/solana-vault-adapter/internal/stream"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Build the vault registry, one source per conversion direction
	registry, err := deaura.NewRegistry()
	if err != nil {
		logger.WithError(err).Fatal("failed to build vault registry")
	}

	// Initialize Redis client for caching and route flags
	rclient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	// Initialize vault cache for reserves and recent quotes
	vaultCache := cache.NewRedisCacheFromClient(rclient, logger)

	// Initialize route flags store for runtime configuration
	flagStore, err := flags.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create route flags store")
	}

	// ClickHouse history is optional: without it quotes are still served
	// and cached, only analytics are lost
	var quoteStore *cache.ClickHouseStore
	ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, quote history disabled")
	} else {
		quoteStore = ch
		defer quoteStore.Close()
	}

	// Initialize AI agent for natural language queries (optional)
	var agent *ai.Agent
	aiBase := ai.AgentConfig{
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		Model:              "openai/gpt-4.1-mini", // Default model for NL→SQL translation
		Logger:             logger,
	}

	// Only initialize AI if OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := ai.NewAgent(ctx, aiBase)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai agent")
		} else {
			agent = a
			defer func() {
				_ = agent.Close() // Clean up AI resources on shutdown
			}()
		}
	}

	// Keep vault reserves fresh so quotes reflect on-chain state
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	defer rpcClient.Close()

	poller := stream.NewAccountPoller(stream.AccountPollerConfig{
		RPCClient:    rpcClient,
		Registry:     registry,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})
	go func() {
		err := poller.Start(ctx, func(update *models.ReserveUpdate) {
			if err := vaultCache.SetReserve(ctx, update); err != nil {
				logger.WithError(err).Warn("failed to cache reserve update")
			}
		})
		if err != nil && err != context.Canceled {
			logger.WithError(err).Error("account poller stopped")
		}
	}()

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Registry:     registry,   // Vault sources, one per direction
		Cache:        vaultCache, // Redis-backed reserve and quote cache
		Flags:        flagStore,  // Redis-backed route flags
		AI:           agent,      // Optional AI agent (can be nil)
		AIBaseConfig: aiBase,     // Base AI configuration for model overrides
		DevMode:      cfg.DevMode,
		Logger:       logger,
	}
	if quoteStore != nil {
		h.Store = quoteStore
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8080")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
