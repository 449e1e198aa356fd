package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/cache"
	"github.com/deaura-labs/solana-vault-adapter/internal/config"
)

// Example consumer of live reserve updates published by the watcher.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	vaultCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer vaultCache.Close()

	updates, err := vaultCache.SubscribeReserveUpdates(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to reserve updates")
	}

	logger.Info("reserve subscriber running")

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down subscriber")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("subscription closed")
				return
			}
			logger.WithFields(logrus.Fields{
				"vault":     update.Vault,
				"direction": update.Direction,
				"reserve":   update.Reserve,
				"previous":  update.Previous,
				"slot":      update.Slot,
			}).Info("reserve changed")
		}
	}
}

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}
