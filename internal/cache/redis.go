package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/constants"
	"github.com/deaura-labs/solana-vault-adapter/internal/models"
)

// RedisCache keeps the latest observed vault reserves and a capped list of
// recent quotes, and fans reserve changes out over Pub/Sub.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// RedisConfig holds configuration for the Redis cache
type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

// NewRedisCache connects and pings the server
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *logrus.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheFromClient(client, logger), nil
}

// NewRedisCacheFromClient wraps an existing client (shared with e.g. the
// flags store)
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// AddRecentQuote pushes a quote onto the capped recent-quotes list and fans
// it out to live subscribers
func (r *RedisCache) AddRecentQuote(ctx context.Context, quote *models.QuoteEvent) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentQuotes, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentQuotes, 0, constants.MaxRecentQuotes-1)
	pipe.Publish(ctx, constants.PubSubChannelQuotes, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent quote: %w", err)
	}
	return nil
}

// GetRecentQuotes returns up to limit most recent quotes, newest first
func (r *RedisCache) GetRecentQuotes(ctx context.Context, limit int64) ([]*models.QuoteEvent, error) {
	if limit <= 0 || limit > constants.MaxRecentQuotes {
		limit = constants.MaxRecentQuotes
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentQuotes, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent quotes: %w", err)
	}

	out := make([]*models.QuoteEvent, 0, len(vals))
	for _, v := range vals {
		var q models.QuoteEvent
		if err := json.Unmarshal([]byte(v), &q); err != nil {
			r.logger.WithError(err).Warn("skipping malformed cached quote")
			continue
		}
		out = append(out, &q)
	}
	return out, nil
}

// SetReserve stores the latest observed reserve for a vault
func (r *RedisCache) SetReserve(ctx context.Context, update *models.ReserveUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal reserve update: %w", err)
	}
	if err := r.client.Set(ctx, constants.RedisKeyReservePrefix+update.Vault, data, 0).Err(); err != nil {
		return fmt.Errorf("set reserve: %w", err)
	}
	return nil
}

// GetReserve retrieves the latest observed reserve for a vault
func (r *RedisCache) GetReserve(ctx context.Context, vault string) (*models.ReserveUpdate, error) {
	val, err := r.client.Get(ctx, constants.RedisKeyReservePrefix+vault).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("no reserve recorded for vault %s", vault)
	}
	if err != nil {
		return nil, fmt.Errorf("get reserve: %w", err)
	}

	var update models.ReserveUpdate
	if err := json.Unmarshal([]byte(val), &update); err != nil {
		return nil, fmt.Errorf("unmarshal reserve update: %w", err)
	}
	return &update, nil
}

// PublishReserveUpdate fans a reserve change out to the global channel and
// a per-vault channel
func (r *RedisCache) PublishReserveUpdate(ctx context.Context, update *models.ReserveUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal reserve update: %w", err)
	}

	channels := []string{
		constants.PubSubChannelReserves,
		fmt.Sprintf("%s:%s", constants.PubSubChannelReserves, update.Vault),
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish reserve update: %w", err)
	}
	return nil
}

// SubscribeReserveUpdates subscribes to live reserve changes. The returned
// channel closes when ctx is done.
func (r *RedisCache) SubscribeReserveUpdates(ctx context.Context) (<-chan *models.ReserveUpdate, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelReserves)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe reserves: %w", err)
	}

	out := make(chan *models.ReserveUpdate)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var update models.ReserveUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					r.logger.WithError(err).Warn("skipping malformed reserve update")
					continue
				}
				select {
				case out <- &update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks connectivity
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
