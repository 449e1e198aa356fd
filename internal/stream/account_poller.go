package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/deaura"
	"github.com/deaura-labs/solana-vault-adapter/internal/models"
	"github.com/deaura-labs/solana-vault-adapter/internal/router"
	"github.com/deaura-labs/solana-vault-adapter/internal/rpc"
	"github.com/deaura-labs/solana-vault-adapter/internal/storage"
)

// AccountPoller implements ReserveProvider by polling the vault token
// accounts over Solana RPC and refreshing the registry's sources.
type AccountPoller struct {
	client       *rpc.Client
	registry     *deaura.Registry
	pollInterval time.Duration
	logger       *logrus.Logger

	mu      sync.RWMutex
	running bool
}

// AccountPollerConfig holds configuration for the account poller
type AccountPollerConfig struct {
	RPCClient    *rpc.Client
	Registry     *deaura.Registry
	PollInterval time.Duration
	Logger       *logrus.Logger
}

// NewAccountPoller creates a new account poller
func NewAccountPoller(cfg AccountPollerConfig) *AccountPoller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &AccountPoller{
		client:       cfg.RPCClient,
		registry:     cfg.Registry,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}
}

// Start begins polling for reserve changes
func (p *AccountPoller) Start(ctx context.Context, handler storage.ReserveHandler) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"accounts": len(p.registry.AccountsToUpdate()),
	}).Info("starting vault account polling")

	// Prime state before the first tick so quotes are served immediately.
	if err := p.poll(ctx, handler); err != nil {
		p.logger.WithError(err).Error("initial poll error")
	}

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			if err := p.poll(ctx, handler); err != nil {
				p.logger.WithError(err).Error("poll error")
			}
		}
	}
}

// Stop stops the poller
func (p *AccountPoller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

// poll fetches the watched accounts and applies them to every source
func (p *AccountPoller) poll(ctx context.Context, handler storage.ReserveHandler) error {
	watch := p.registry.AccountsToUpdate()

	infos, slot, err := p.client.GetMultipleAccounts(ctx, watch)
	if err != nil {
		return fmt.Errorf("failed to get vault accounts: %w", err)
	}

	accounts := make(router.AccountMap, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		accounts[info.Address] = info.Data
	}

	for _, source := range p.registry.VaultSources() {
		prev, _ := source.Reserve()

		if err := source.UpdateAtSlot(accounts, slot); err != nil {
			p.logger.WithError(err).WithField("vault", source.Key().String()).Warn("failed to refresh vault")
			continue
		}

		reserve, observedSlot := source.Reserve()
		if reserve == prev {
			continue
		}

		p.logger.WithFields(logrus.Fields{
			"vault":    source.Key().String(),
			"reserve":  reserve,
			"previous": prev,
			"slot":     observedSlot,
		}).Info("vault reserve changed")

		if handler != nil {
			handler(&models.ReserveUpdate{
				Timestamp: time.Now().UTC(),
				Vault:     source.Key().String(),
				Label:     source.Label(),
				Direction: source.Direction().String(),
				Reserve:   reserve,
				Previous:  prev,
				Slot:      observedSlot,
			})
		}
	}

	return nil
}
