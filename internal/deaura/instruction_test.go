package deaura

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

func depositSwapParams(amount uint64) router.SwapParams {
	return router.SwapParams{
		SourceMint:              VNXMint,
		SourceTokenAccount:      solana.NewWallet().PublicKey(),
		DestinationTokenAccount: solana.NewWallet().PublicKey(),
		TokenTransferAuthority:  solana.NewWallet().PublicKey(),
		InAmount:                amount,
	}
}

func redeemSwapParams(amount uint64) router.SwapParams {
	p := depositSwapParams(amount)
	p.SourceMint = GOLDCMint
	return p
}

func TestSwapInstructionsDeposit(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	params := depositSwapParams(2_500)
	plan, err := s.SwapInstructions(params)
	require.NoError(t, err)

	require.Len(t, plan.Instructions, 1)
	assert.Equal(t, swapAccountsLen, plan.AccountsLen)

	ix := plan.Instructions[0]
	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, depositDiscriminator[:], data[:8])
	assert.Equal(t, uint64(2_500), binary.LittleEndian.Uint64(data[8:]))

	metas := ix.Accounts()
	require.Len(t, metas, swapAccountsLen)

	// Payer leads, signer and writable.
	assert.Equal(t, params.TokenTransferAuthority, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.True(t, metas[0].IsWritable)

	assert.Equal(t, DeriveGlobalState(), metas[1].PublicKey)
	assert.Equal(t, DeriveVaultAuthority(), metas[2].PublicKey)
	assert.Equal(t, GOLDCMint, metas[3].PublicKey)
	assert.Equal(t, params.DestinationTokenAccount, metas[4].PublicKey)
	assert.Equal(t, VNXMint, metas[5].PublicKey)
	assert.Equal(t, params.SourceTokenAccount, metas[6].PublicKey)
	assert.Equal(t, DepositVault, metas[7].PublicKey)
	assert.Equal(t, DeriveUserData(params.TokenTransferAuthority), metas[8].PublicKey)

	// Program accounts trail read-only.
	assert.Equal(t, solana.TokenProgramID, metas[9].PublicKey)
	assert.False(t, metas[9].IsWritable)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, metas[10].PublicKey)
	assert.Equal(t, solana.SystemProgramID, metas[11].PublicKey)

	// The payer is the only signer.
	for _, meta := range metas[1:] {
		assert.False(t, meta.IsSigner)
	}
}

func TestSwapInstructionsRedeem(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}))

	params := redeemSwapParams(1_000)
	plan, err := s.SwapInstructions(params)
	require.NoError(t, err)
	require.Len(t, plan.Instructions, 1)

	ix := plan.Instructions[0]
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, redeemDiscriminator[:], data[:8])
	assert.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[8:]))

	metas := ix.Accounts()
	require.Len(t, metas, swapAccountsLen)

	// For redeem, the user's GOLDC account is the trade source and the VNX
	// account the destination; the program still wants them by asset.
	assert.Equal(t, params.SourceTokenAccount, metas[4].PublicKey)      // payer GOLDC
	assert.Equal(t, params.DestinationTokenAccount, metas[6].PublicKey) // payer VNX
	assert.Equal(t, RedeemVault, metas[7].PublicKey)
}

func TestSwapInstructionsInsufficientReserve(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}))

	// A stale quote for 1500 must be refused at build time too.
	q, err := s.Quote(router.QuoteParams{InputMint: GOLDCMint, OutputMint: VNXMint, Amount: 1_500})
	require.NoError(t, err)
	assert.False(t, q.Valid)

	_, err = s.SwapInstructions(redeemSwapParams(1_500))
	assert.ErrorIs(t, err, ErrInsufficientReserve)
}

func TestSwapInstructionsStaleQuoteReplay(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(2_000)}))

	q, err := s.Quote(router.QuoteParams{InputMint: GOLDCMint, OutputMint: VNXMint, Amount: 1_500})
	require.NoError(t, err)
	require.True(t, q.Valid)

	// Reserve drops between quote and build.
	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}))

	_, err = s.SwapInstructions(redeemSwapParams(1_500))
	assert.ErrorIs(t, err, ErrInsufficientReserve)
}

func TestSwapInstructionsMissingAccounts(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*router.SwapParams)
	}{
		{"no authority", func(p *router.SwapParams) { p.TokenTransferAuthority = solana.PublicKey{} }},
		{"no source account", func(p *router.SwapParams) { p.SourceTokenAccount = solana.PublicKey{} }},
		{"no destination account", func(p *router.SwapParams) { p.DestinationTokenAccount = solana.PublicKey{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := depositSwapParams(100)
			tt.mutate(&params)
			_, err := s.SwapInstructions(params)
			assert.ErrorIs(t, err, ErrMissingAccount)
		})
	}
}

func TestSwapInstructionsWrongSourceMint(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	params := depositSwapParams(100)
	params.SourceMint = GOLDCMint
	_, err = s.SwapInstructions(params)
	assert.ErrorIs(t, err, ErrUnsupportedMint)
}

func TestSwapInstructionsZeroAmount(t *testing.T) {
	// Zero-amount trades pass through; the policy mirrors the quote side.
	deposit, err := NewVaultSource(DepositVault)
	require.NoError(t, err)
	plan, err := deposit.SwapInstructions(depositSwapParams(0))
	require.NoError(t, err)
	assert.Len(t, plan.Instructions, 1)

	redeem, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	plan, err = redeem.SwapInstructions(redeemSwapParams(0))
	require.NoError(t, err)
	assert.Len(t, plan.Instructions, 1)
}

func TestSwapInstructionsDoesNotMutateView(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, s.UpdateAtSlot(router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}, 99))

	_, err = s.SwapInstructions(redeemSwapParams(400))
	require.NoError(t, err)

	reserve, slot := s.Reserve()
	assert.Equal(t, uint64(1_000), reserve)
	assert.Equal(t, uint64(99), slot)
}
