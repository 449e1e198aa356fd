package deaura

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

// Registry holds the two adapter instances, one per direction, constructed
// once at startup and keyed by vault address.
type Registry struct {
	sources []*VaultSource
}

// NewRegistry builds both vault sources.
func NewRegistry() (*Registry, error) {
	sources := make([]*VaultSource, 0, 2)
	for _, vault := range []solana.PublicKey{DepositVault, RedeemVault} {
		s, err := NewVaultSource(vault)
		if err != nil {
			return nil, fmt.Errorf("register vault %s: %w", vault, err)
		}
		sources = append(sources, s)
	}
	return &Registry{sources: sources}, nil
}

// Sources returns every registered source as the host-facing interface.
func (r *Registry) Sources() []router.Source {
	out := make([]router.Source, len(r.sources))
	for i, s := range r.sources {
		out[i] = s
	}
	return out
}

// VaultSources returns the concrete sources for callers that need
// reserve/direction accessors.
func (r *Registry) VaultSources() []*VaultSource {
	out := make([]*VaultSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// FindByVault returns the source keyed by the given vault account.
func (r *Registry) FindByVault(vault solana.PublicKey) (*VaultSource, error) {
	for _, s := range r.sources {
		if s.Key().Equals(vault) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVault, vault)
}

// FindByMints returns the source whose direction takes inputMint and
// releases outputMint.
func (r *Registry) FindByMints(inputMint, outputMint solana.PublicKey) (*VaultSource, error) {
	for _, s := range r.sources {
		if s.InputMint().Equals(inputMint) && s.OutputMint().Equals(outputMint) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedMint, inputMint, outputMint)
}

// AccountsToUpdate is the union of every source's watch list, for the
// host's account monitor.
func (r *Registry) AccountsToUpdate() []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{})
	var out []solana.PublicKey
	for _, s := range r.sources {
		for _, key := range s.AccountsToUpdate() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}
