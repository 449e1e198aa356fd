package deaura

import (
	"github.com/gagliardetto/solana-go"
)

// On-chain identifiers for the Deaura conversion vault. These are static
// configuration: the host uses them to discover and register the two
// adapter instances, and any future redeployment is a single edit here.
var (
	// ProgramID is the Deaura vault program.
	ProgramID = solana.MustPublicKeyFromBase58("5ZcDxdRBiRe73S68BCHE7NwPt82evS5FyPPU9rfXwYBj")

	// VNXMint and GOLDCMint are the two fixed assets the vault converts
	// between at a 1:1 rate.
	VNXMint   = solana.MustPublicKeyFromBase58("9TPL8droGJ7jThsq4momaoz6uhTcvX2SeMqipoPmNa8R")
	GOLDCMint = solana.MustPublicKeyFromBase58("EhGYsb13zhso2xhQSd1H1xdu6bvcv88oLoVMWgfAV6tx")

	// DepositVault backs the VNX -> GOLDC direction, RedeemVault the
	// GOLDC -> VNX direction. Each is an SPL token account holding VNX.
	DepositVault = solana.MustPublicKeyFromBase58("CKixsXaerxYaaXuijWQFxKAyXHkAhfi2r9BBk6Wke4BH")
	RedeemVault  = solana.MustPublicKeyFromBase58("EUpqbEGhSPBegZJbk3HbdBNnMW7DTy7tb8fwnAejcfG1")
)

// Anchor instruction discriminators: deposit(amount: u64) and
// redeem(amount: u64). Instruction data is discriminator(8) + amount u64 LE.
var (
	depositDiscriminator = [8]byte{242, 35, 198, 137, 82, 225, 242, 182}
	redeemDiscriminator  = [8]byte{184, 12, 86, 149, 70, 196, 97, 225}
)

// Both mints are minted with the same on-chain decimals, so the raw-integer
// conversion factor between them is 1. The factor is still modeled
// explicitly (see convertAmount) rather than assumed at call sites.
const (
	VNXDecimals   = 9
	GOLDCDecimals = 9
)

// tokenAccountLen is the serialized size of an SPL token account.
const tokenAccountLen = 165

// Instance labels, used for logging and route display only.
const (
	DepositLabel = "Deaura Vault (VNX->GOLDC)"
	RedeemLabel  = "Deaura Vault (GOLDC->VNX)"
)

// DeriveGlobalState returns the program's global state PDA.
func DeriveGlobalState() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte("global_state")}, ProgramID)
	return pda
}

// DeriveVaultAuthority returns the PDA that signs for vault token moves.
func DeriveVaultAuthority() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte("vault_authority")}, ProgramID)
	return pda
}

// DeriveUserData returns the per-payer user state PDA.
func DeriveUserData(payer solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte("user_state"), payer.Bytes()}, ProgramID)
	return pda
}
