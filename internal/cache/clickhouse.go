package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/models"
)

// ClickHouseStore persists served quotes and observed reserve changes for
// analytics and audit.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// ClickHouseConfig holds connection settings
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// NewClickHouseStore connects and pings the server
func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig, logger *logrus.Logger) (*ClickHouseStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

// InsertQuote records one served quote
func (c *ClickHouseStore) InsertQuote(ctx context.Context, quote *models.QuoteEvent) error {
	query := `
		INSERT INTO quotes (
			timestamp, vault, label, direction, input_mint,
			amount_in, amount_out, valid, reserve, slot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		quote.Timestamp,
		quote.Vault,
		quote.Label,
		quote.Direction,
		quote.InputMint,
		quote.AmountIn,
		quote.AmountOut,
		quote.Valid,
		quote.Reserve,
		quote.Slot,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// InsertReserveUpdate records one observed reserve change
func (c *ClickHouseStore) InsertReserveUpdate(ctx context.Context, update *models.ReserveUpdate) error {
	query := `
		INSERT INTO reserve_updates (
			timestamp, vault, label, direction, reserve, previous, slot
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		update.Timestamp,
		update.Vault,
		update.Label,
		update.Direction,
		update.Reserve,
		update.Previous,
		update.Slot,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reserve update: %w", err)
	}
	return nil
}

// Ping checks connectivity
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the connection
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
