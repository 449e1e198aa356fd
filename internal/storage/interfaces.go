package storage

import (
	"context"
	"io"

	"github.com/deaura-labs/solana-vault-adapter/internal/models"
)

// VaultCache defines the fast-path cache for vault state and recent quotes
type VaultCache interface {
	// AddRecentQuote adds a quote to the recent quotes list
	AddRecentQuote(ctx context.Context, quote *models.QuoteEvent) error

	// GetRecentQuotes retrieves the most recent quotes
	GetRecentQuotes(ctx context.Context, limit int64) ([]*models.QuoteEvent, error)

	// SetReserve stores the latest observed reserve for a vault
	SetReserve(ctx context.Context, update *models.ReserveUpdate) error

	// GetReserve retrieves the latest observed reserve for a vault
	GetReserve(ctx context.Context, vault string) (*models.ReserveUpdate, error)

	// PublishReserveUpdate fans a reserve change out to subscribers
	PublishReserveUpdate(ctx context.Context, update *models.ReserveUpdate) error

	// SubscribeReserveUpdates subscribes to live reserve changes
	SubscribeReserveUpdates(ctx context.Context) (<-chan *models.ReserveUpdate, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// ReserveHandler is a function that processes observed reserve changes
type ReserveHandler func(*models.ReserveUpdate)

// ReserveProvider defines the interface for watching vault reserves
type ReserveProvider interface {
	// Start begins watching vault accounts for reserve changes
	Start(ctx context.Context, handler ReserveHandler) error

	// Stop stops the provider
	Stop() error
}

// QuoteStore defines the interface for persistent quote history
type QuoteStore interface {
	// InsertQuote inserts a served quote into the store
	InsertQuote(ctx context.Context, quote *models.QuoteEvent) error

	// InsertReserveUpdate inserts an observed reserve change
	InsertReserveUpdate(ctx context.Context, update *models.ReserveUpdate) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}
