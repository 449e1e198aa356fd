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
	"github.com/deaura-labs/solana-vault-adapter/internal/deaura"
	"github.com/deaura-labs/solana-vault-adapter/internal/models"
	"github.com/deaura-labs/solana-vault-adapter/internal/rpc"
	"github.com/deaura-labs/solana-vault-adapter/internal/stream"
)

// Watcher ties the account poller to the cache and history store.
type Watcher struct {
	cache  *cache.RedisCache
	store  *cache.ClickHouseStore
	logger *logrus.Logger
}

// ProcessUpdate records an observed reserve change everywhere it is consumed:
// the Redis cache for quoting, pub/sub for live subscribers, and ClickHouse
// for history.
func (w *Watcher) ProcessUpdate(ctx context.Context, update *models.ReserveUpdate) {
	log := w.logger.WithFields(logrus.Fields{
		"vault":   update.Vault,
		"reserve": update.Reserve,
		"slot":    update.Slot,
	})

	if err := w.cache.SetReserve(ctx, update); err != nil {
		log.WithError(err).Warn("failed to cache reserve")
	}

	if err := w.cache.PublishReserveUpdate(ctx, update); err != nil {
		log.WithError(err).Warn("failed to publish reserve update")
	}

	if w.store != nil {
		if err := w.store.InsertReserveUpdate(ctx, update); err != nil {
			log.WithError(err).Error("failed to persist reserve update")
			return
		}
	}

	log.Info("reserve update processed")
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

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if cfg.RPCUrl == "" || cfg.PollInterval <= 0 {
		logger.Fatal("invalid watcher configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	registry, err := deaura.NewRegistry()
	if err != nil {
		logger.WithError(err).Fatal("failed to build vault registry")
	}

	vaultCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer vaultCache.Close()

	// ClickHouse is optional for the watcher: without it reserves are still
	// cached and published, only history is lost.
	var store *cache.ClickHouseStore
	s, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, reserve history disabled")
	} else {
		store = s
		defer store.Close()
	}

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	defer rpcClient.Close()

	watcher := &Watcher{cache: vaultCache, store: store, logger: logger}

	poller := stream.NewAccountPoller(stream.AccountPollerConfig{
		RPCClient:    rpcClient,
		Registry:     registry,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	go func() {
		<-sigCh
		logger.Info("shutting down watcher")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"rpc":      cfg.RPCUrl,
		"interval": cfg.PollInterval,
	}).Info("vault watcher starting")

	err = poller.Start(ctx, func(update *models.ReserveUpdate) {
		watcher.ProcessUpdate(ctx, update)
	})
	if err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("vault watcher failed")
	}
}
