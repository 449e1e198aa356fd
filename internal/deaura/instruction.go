package deaura

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

// swapAccountsLen is the account count of a deposit or redeem instruction,
// in the program's IDL order.
const swapAccountsLen = 12

// SwapInstructions builds the single deposit or redeem instruction for this
// source. It is a pure projection from the current snapshot plus the
// request: it never mutates the view and returns either a complete plan or
// an error, never a partial one.
//
// Reserve sufficiency is re-checked here for the redeem direction so a
// stale quote replayed after the view changed fails instead of producing an
// unexecutable transaction.
func (s *VaultSource) SwapInstructions(params router.SwapParams) (*router.InstructionPlan, error) {
	if !params.SourceMint.Equals(s.mintIn) {
		return nil, fmt.Errorf("%w: source mint %s", ErrUnsupportedMint, params.SourceMint)
	}
	if err := requireAccount(params.TokenTransferAuthority, "token transfer authority"); err != nil {
		return nil, err
	}
	if err := requireAccount(params.SourceTokenAccount, "source token account"); err != nil {
		return nil, err
	}
	if err := requireAccount(params.DestinationTokenAccount, "destination token account"); err != nil {
		return nil, err
	}

	if s.direction == Redeem {
		reserve, _ := s.Reserve()
		if params.InAmount > reserve {
			return nil, fmt.Errorf("%w: requested %d, reserve %d", ErrInsufficientReserve, params.InAmount, reserve)
		}
	}

	// The program wants the payer's VNX and GOLDC token accounts by asset,
	// not by trade side.
	payer := params.TokenTransferAuthority
	var payerVNX, payerGOLDC solana.PublicKey
	var disc [8]byte
	if s.direction == Deposit {
		payerVNX = params.SourceTokenAccount
		payerGOLDC = params.DestinationTokenAccount
		disc = depositDiscriminator
	} else {
		payerGOLDC = params.SourceTokenAccount
		payerVNX = params.DestinationTokenAccount
		disc = redeemDiscriminator
	}

	ix := solana.NewInstruction(
		ProgramID,
		swapAccountMetas(payer, payerGOLDC, payerVNX, s.key),
		instructionData(disc, params.InAmount),
	)

	return &router.InstructionPlan{
		Instructions: []solana.Instruction{ix},
		AccountsLen:  swapAccountsLen,
	}, nil
}

// swapAccountMetas lists accounts in the exact order the Anchor program
// declares for both deposit and redeem:
// payer, global_state, vault_authority, goldc_mint, payer_goldc_ata,
// vnx_mint, payer_vnx_ata, vnx_vault, user_data,
// token_program, associated_token_program, system_program.
func swapAccountMetas(payer, payerGOLDC, payerVNX, vault solana.PublicKey) []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: DeriveGlobalState(), IsWritable: true},
		{PublicKey: DeriveVaultAuthority(), IsWritable: true},
		{PublicKey: GOLDCMint, IsWritable: true},
		{PublicKey: payerGOLDC, IsWritable: true},
		{PublicKey: VNXMint, IsWritable: true},
		{PublicKey: payerVNX, IsWritable: true},
		{PublicKey: vault, IsWritable: true},
		{PublicKey: DeriveUserData(payer), IsWritable: true},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
		{PublicKey: solana.SystemProgramID},
	}
}

// instructionData is the Anchor wire form: discriminator(8) + amount u64 LE.
func instructionData(disc [8]byte, amount uint64) []byte {
	data := make([]byte, 16)
	copy(data[:8], disc[:])
	binary.LittleEndian.PutUint64(data[8:], amount)
	return data
}

func requireAccount(pk solana.PublicKey, name string) error {
	if pk.IsZero() {
		return fmt.Errorf("%w: %s", ErrMissingAccount, name)
	}
	return nil
}
