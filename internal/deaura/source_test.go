package deaura

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

// vaultAccountBytes fabricates a serialized SPL token account holding the
// given VNX amount.
func vaultAccountBytes(amount uint64) []byte {
	data := make([]byte, tokenAccountLen)
	copy(data[0:32], VNXMint.Bytes())
	copy(data[32:64], DeriveVaultAuthority().Bytes())
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // state: initialized
	return data
}

func vaultAccountBytesWithMint(mint solana.PublicKey, amount uint64) []byte {
	data := vaultAccountBytes(amount)
	copy(data[0:32], mint.Bytes())
	return data
}

func TestNewVaultSource(t *testing.T) {
	deposit, err := NewVaultSource(DepositVault)
	require.NoError(t, err)
	assert.Equal(t, Deposit, deposit.Direction())
	assert.Equal(t, DepositVault, deposit.Key())
	assert.Equal(t, VNXMint, deposit.InputMint())
	assert.Equal(t, GOLDCMint, deposit.OutputMint())
	assert.Equal(t, DepositLabel, deposit.Label())

	redeem, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	assert.Equal(t, Redeem, redeem.Direction())
	assert.Equal(t, GOLDCMint, redeem.InputMint())
	assert.Equal(t, VNXMint, redeem.OutputMint())

	_, err = NewVaultSource(solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrUnknownVault)
}

func TestUpdate(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)

	accounts := router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}
	require.NoError(t, s.Update(accounts))

	reserve, _ := s.Reserve()
	assert.Equal(t, uint64(1_000), reserve)

	// Idempotent for identical bytes.
	require.NoError(t, s.Update(accounts))
	reserve, _ = s.Reserve()
	assert.Equal(t, uint64(1_000), reserve)
}

func TestUpdateAtSlot(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)

	accounts := router.AccountMap{RedeemVault: vaultAccountBytes(42)}
	require.NoError(t, s.UpdateAtSlot(accounts, 123_456))

	reserve, slot := s.Reserve()
	assert.Equal(t, uint64(42), reserve)
	assert.Equal(t, uint64(123_456), slot)
}

func TestUpdateMalformedData(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)

	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(500)}))

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", vaultAccountBytes(5)[:64]},
		{"too long", append(vaultAccountBytes(5), 0)},
		{"empty", nil},
		{"wrong mint", vaultAccountBytesWithMint(GOLDCMint, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(router.AccountMap{RedeemVault: tt.data})
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)

			// Previous snapshot is retained.
			reserve, _ := s.Reserve()
			assert.Equal(t, uint64(500), reserve)
		})
	}
}

func TestUpdateMissingAccount(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	err = s.Update(router.AccountMap{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), DepositVault.String())
}

func TestQuoteDeposit(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	// Deposit quotes do not depend on the vault reserve at all.
	for _, amount := range []uint64{0, 1, 1_000, 1_000_000_000_000} {
		q, err := s.Quote(router.QuoteParams{
			InputMint:  VNXMint,
			OutputMint: GOLDCMint,
			Amount:     amount,
		})
		require.NoError(t, err)
		assert.True(t, q.Valid)
		assert.Equal(t, amount, q.InAmount)
		assert.Equal(t, amount, q.OutAmount)
		assert.Equal(t, uint64(0), q.FeeAmount)
		assert.Equal(t, uint16(0), q.FeeBps)
	}
}

func TestQuoteRedeemReserveGate(t *testing.T) {
	s, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, s.Update(router.AccountMap{RedeemVault: vaultAccountBytes(1_000)}))

	tests := []struct {
		name   string
		amount uint64
		valid  bool
	}{
		{"zero", 0, true},
		{"below reserve", 999, true},
		{"at reserve", 1_000, true},
		{"above reserve", 1_001, false},
		{"well above reserve", 1_500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := s.Quote(router.QuoteParams{
				InputMint:  GOLDCMint,
				OutputMint: VNXMint,
				Amount:     tt.amount,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, q.Valid)
			// The computed output is reported even for oversize requests.
			assert.Equal(t, tt.amount, q.OutAmount)
		})
	}
}

func TestQuoteUnsupportedMints(t *testing.T) {
	s, err := NewVaultSource(DepositVault)
	require.NoError(t, err)

	// Reversed pair belongs to the redeem instance.
	_, err = s.Quote(router.QuoteParams{InputMint: GOLDCMint, OutputMint: VNXMint, Amount: 1})
	assert.ErrorIs(t, err, ErrUnsupportedMint)

	_, err = s.Quote(router.QuoteParams{
		InputMint:  solana.NewWallet().PublicKey(),
		OutputMint: GOLDCMint,
		Amount:     1,
	})
	assert.ErrorIs(t, err, ErrUnsupportedMint)
}

func TestRoundTrip(t *testing.T) {
	deposit, err := NewVaultSource(DepositVault)
	require.NoError(t, err)
	redeem, err := NewVaultSource(RedeemVault)
	require.NoError(t, err)
	require.NoError(t, redeem.Update(router.AccountMap{RedeemVault: vaultAccountBytes(10_000)}))

	const x = uint64(7_500)

	in, err := deposit.Quote(router.QuoteParams{InputMint: VNXMint, OutputMint: GOLDCMint, Amount: x})
	require.NoError(t, err)
	require.True(t, in.Valid)

	back, err := redeem.Quote(router.QuoteParams{InputMint: GOLDCMint, OutputMint: VNXMint, Amount: in.OutAmount})
	require.NoError(t, err)
	require.True(t, back.Valid)

	// No value created or destroyed across the round trip.
	assert.Equal(t, x, back.OutAmount)
}

func TestConvertAmount(t *testing.T) {
	// With equal decimals the scale factor is 1 in both directions.
	assert.Equal(t, uint64(123), convertAmount(123, Deposit))
	assert.Equal(t, uint64(123), convertAmount(123, Redeem))
	assert.Equal(t, uint64(0), convertAmount(0, Deposit))
}
