package router

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountMap carries raw on-chain account data keyed by address. The host's
// account-monitoring layer fills it and pushes it into Source.Update.
type AccountMap map[solana.PublicKey][]byte

// AccountData returns the raw bytes for key or an error naming the missing
// account.
func AccountData(m AccountMap, key solana.PublicKey) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("account %s not found in account map", key)
	}
	return data, nil
}

// QuoteParams is a quote request for a single liquidity source.
type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	Amount     uint64
}

// Quote is the source's answer to a QuoteParams request.
//
// Valid=false means the source cannot execute the trade at the requested
// size (for reserve-gated sources, the in amount exceeds the observed
// reserve). OutAmount still carries the computed output so the host can
// display or downsize the request; the quote must not be executed.
type Quote struct {
	InAmount  uint64
	OutAmount uint64
	FeeAmount uint64
	FeeMint   solana.PublicKey
	FeeBps    uint16
	Valid     bool
}

// SwapParams identifies the user-side accounts for building the swap
// instructions. TokenTransferAuthority is the wallet that signs the final
// transaction.
type SwapParams struct {
	SourceMint              solana.PublicKey
	SourceTokenAccount      solana.PublicKey
	DestinationTokenAccount solana.PublicKey
	TokenTransferAuthority  solana.PublicKey
	InAmount                uint64
}

// InstructionPlan is the ordered instruction list the host embeds verbatim
// into its transaction. AccountsLen lets the host budget transaction size
// before building.
type InstructionPlan struct {
	Instructions []solana.Instruction
	AccountsLen  int
}

// Source is a routable liquidity source. The host treats every source
// uniformly: it fetches AccountsToUpdate, pushes the bytes through Update,
// asks for a Quote, and, if the source wins the route, asks for the
// instruction plan.
//
// Update takes exclusive access to the source's state; Quote and
// SwapInstructions take shared read access and never mutate it.
type Source interface {
	Key() solana.PublicKey
	Label() string
	ProgramID() solana.PublicKey
	ReserveMints() []solana.PublicKey
	AccountsToUpdate() []solana.PublicKey
	Update(accounts AccountMap) error
	Quote(params QuoteParams) (*Quote, error)
	SwapInstructions(params SwapParams) (*InstructionPlan, error)
}
