package deaura

import (
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

// Direction identifies which way a VaultSource converts. It is fixed at
// construction; bidirectionality is two sources, never one mutable source.
type Direction int

const (
	// Deposit converts VNX into GOLDC via the deposit vault.
	Deposit Direction = iota
	// Redeem converts GOLDC back into VNX via the redeem vault. It is the
	// only direction gated on the vault's VNX reserve.
	Redeem
)

func (d Direction) String() string {
	if d == Deposit {
		return "deposit"
	}
	return "redeem"
}

// VaultSource adapts one Deaura vault account as a router.Source. It is an
// in-memory snapshot of the vault's on-chain balance plus pure quote and
// instruction-building logic; all I/O belongs to the host.
type VaultSource struct {
	key       solana.PublicKey
	label     string
	direction Direction

	mintIn  solana.PublicKey
	mintOut solana.PublicKey

	mu      sync.RWMutex
	reserve uint64
	slot    uint64
}

// NewVaultSource constructs the source bound to the given vault account.
// The direction is implied by which vault address is passed: the host lists
// both vault accounts as markets and calls this once per account.
func NewVaultSource(vault solana.PublicKey) (*VaultSource, error) {
	switch vault {
	case DepositVault:
		return &VaultSource{
			key:       vault,
			label:     DepositLabel,
			direction: Deposit,
			mintIn:    VNXMint,
			mintOut:   GOLDCMint,
		}, nil
	case RedeemVault:
		return &VaultSource{
			key:       vault,
			label:     RedeemLabel,
			direction: Redeem,
			mintIn:    GOLDCMint,
			mintOut:   VNXMint,
		}, nil
	default:
		return nil, ErrUnknownVault
	}
}

func (s *VaultSource) Key() solana.PublicKey       { return s.key }
func (s *VaultSource) Label() string               { return s.label }
func (s *VaultSource) ProgramID() solana.PublicKey { return ProgramID }

// Direction reports which way this source converts.
func (s *VaultSource) Direction() Direction { return s.direction }

// InputMint is the asset this source takes from the user.
func (s *VaultSource) InputMint() solana.PublicKey { return s.mintIn }

// OutputMint is the asset this source releases to the user.
func (s *VaultSource) OutputMint() solana.PublicKey { return s.mintOut }

// ReserveMints lists both assets so the host can route either pair order
// to this source.
func (s *VaultSource) ReserveMints() []solana.PublicKey {
	return []solana.PublicKey{VNXMint, GOLDCMint}
}

// AccountsToUpdate names the accounts the host must fetch before Update.
// Only the vault token account gates liquidity; the deposit direction mints
// GOLDC without consuming vault balance but its view is kept fresh the same
// way.
func (s *VaultSource) AccountsToUpdate() []solana.PublicKey {
	return []solana.PublicKey{s.key}
}

// Update refreshes the reserve snapshot from the raw vault account bytes in
// the account map. It is idempotent for identical input and retains the
// previous snapshot on any decode failure.
func (s *VaultSource) Update(accounts router.AccountMap) error {
	data, err := router.AccountData(accounts, s.key)
	if err != nil {
		return err
	}
	amount, err := decodeTokenAccountAmount(s.key, data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reserve = amount
	s.mu.Unlock()
	return nil
}

// UpdateAtSlot is Update plus the slot the account data was observed at,
// for freshness reporting.
func (s *VaultSource) UpdateAtSlot(accounts router.AccountMap, slot uint64) error {
	data, err := router.AccountData(accounts, s.key)
	if err != nil {
		return err
	}
	amount, err := decodeTokenAccountAmount(s.key, data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reserve = amount
	s.slot = slot
	s.mu.Unlock()
	return nil
}

// Reserve returns the last observed vault balance and the slot it was
// observed at (zero if the host never reported one).
func (s *VaultSource) Reserve() (amount uint64, slot uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserve, s.slot
}

// Quote computes a fixed-rate quote for the given params. The rate is 1:1
// through the documented decimal scale and carries no fee. A zero amount is
// a valid pass-through quote.
//
// For the redeem direction a request larger than the observed reserve
// yields Valid=false with the computed OutAmount still populated; the
// caller must treat such a quote as non-executable.
func (s *VaultSource) Quote(params router.QuoteParams) (*router.Quote, error) {
	if !params.InputMint.Equals(s.mintIn) || !params.OutputMint.Equals(s.mintOut) {
		return nil, ErrUnsupportedMint
	}

	out := convertAmount(params.Amount, s.direction)

	valid := true
	if s.direction == Redeem {
		reserve, _ := s.Reserve()
		valid = params.Amount <= reserve
	}

	return &router.Quote{
		InAmount:  params.Amount,
		OutAmount: out,
		FeeAmount: 0,
		FeeMint:   params.InputMint,
		FeeBps:    0,
		Valid:     valid,
	}, nil
}

// tokenAccountLayout is the fixed 165-byte SPL token account wire layout.
// COption fields are kept as explicit tag+value pairs so the decode is a
// straight fixed-offset read.
type tokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

// decodeTokenAccountAmount parses an SPL token account and returns its
// balance. Length and mint are checked so truncated or foreign account data
// surfaces as a DecodeError rather than a silently wrong reserve.
func decodeTokenAccountAmount(vault solana.PublicKey, data []byte) (uint64, error) {
	if len(data) != tokenAccountLen {
		return 0, &DecodeError{Vault: vault.String(), Len: len(data)}
	}
	var acc tokenAccountLayout
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return 0, &DecodeError{Vault: vault.String(), Len: len(data), Err: err}
	}
	if !acc.Mint.Equals(VNXMint) {
		return 0, &DecodeError{Vault: vault.String(), Len: len(data), Err: fmt.Errorf("unexpected mint %s", acc.Mint)}
	}
	return acc.Amount, nil
}

// convertAmount applies the fixed decimal-scale conversion between the two
// assets. VNX and GOLDC share the same decimals so the factor is 1 in both
// directions; the exponent arithmetic keeps the conversion symmetric if the
// mints ever diverge.
func convertAmount(amount uint64, d Direction) uint64 {
	inDec, outDec := VNXDecimals, GOLDCDecimals
	if d == Redeem {
		inDec, outDec = GOLDCDecimals, VNXDecimals
	}
	switch {
	case outDec > inDec:
		return amount * pow10(outDec-inDec)
	case inDec > outDec:
		return amount / pow10(inDec-outDec)
	default:
		return amount
	}
}

func pow10(n int) uint64 {
	out := uint64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
