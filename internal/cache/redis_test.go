package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deaura-labs/solana-vault-adapter/internal/models"
)

func setupTestCache(t *testing.T) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return NewRedisCacheFromClient(client, nil)
}

func testQuoteEvent(amount uint64, valid bool) *models.QuoteEvent {
	return &models.QuoteEvent{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Vault:     "EUpqbEGhSPBegZJbk3HbdBNnMW7DTy7tb8fwnAejcfG1",
		Label:     "Deaura Vault (GOLDC->VNX)",
		Direction: "redeem",
		AmountIn:  amount,
		AmountOut: amount,
		Valid:     valid,
		Reserve:   1_000,
	}
}

func TestRecentQuotes(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	quotes, err := c.GetRecentQuotes(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	require.NoError(t, c.AddRecentQuote(ctx, testQuoteEvent(100, true)))
	require.NoError(t, c.AddRecentQuote(ctx, testQuoteEvent(200, true)))
	require.NoError(t, c.AddRecentQuote(ctx, testQuoteEvent(1500, false)))

	quotes, err = c.GetRecentQuotes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	// Newest first.
	assert.Equal(t, uint64(1500), quotes[0].AmountIn)
	assert.False(t, quotes[0].Valid)
	assert.Equal(t, uint64(100), quotes[2].AmountIn)

	quotes, err = c.GetRecentQuotes(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestReserve(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	_, err := c.GetReserve(ctx, "missing")
	assert.Error(t, err)

	update := &models.ReserveUpdate{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Vault:     "EUpqbEGhSPBegZJbk3HbdBNnMW7DTy7tb8fwnAejcfG1",
		Direction: "redeem",
		Reserve:   2_000,
		Previous:  1_000,
		Slot:      42,
	}
	require.NoError(t, c.SetReserve(ctx, update))

	got, err := c.GetReserve(ctx, update.Vault)
	require.NoError(t, err)
	assert.Equal(t, update.Reserve, got.Reserve)
	assert.Equal(t, update.Previous, got.Previous)
	assert.Equal(t, update.Slot, got.Slot)
}

func TestReservePubSub(t *testing.T) {
	c := setupTestCache(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := c.SubscribeReserveUpdates(ctx)
	require.NoError(t, err)

	update := &models.ReserveUpdate{Vault: "vault", Reserve: 7, Previous: 3, Slot: 1}
	require.NoError(t, c.PublishReserveUpdate(ctx, update))

	select {
	case got := <-ch:
		require.NotNil(t, got)
		assert.Equal(t, uint64(7), got.Reserve)
	case <-ctx.Done():
		t.Fatal("timed out waiting for reserve update")
	}
}
