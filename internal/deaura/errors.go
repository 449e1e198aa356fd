package deaura

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientReserve is returned when a redeem-direction build is
	// requested for more VNX than the vault currently holds. The caller can
	// retry with a smaller amount or route elsewhere.
	ErrInsufficientReserve = errors.New("insufficient VNX reserve in redeem vault")

	// ErrMissingAccount is returned when a required user account was not
	// supplied in the swap params.
	ErrMissingAccount = errors.New("required account missing from swap params")

	// ErrUnknownVault is returned when a source is constructed from an
	// address that is neither the deposit nor the redeem vault.
	ErrUnknownVault = errors.New("unknown Deaura vault account")

	// ErrUnsupportedMint is returned for quote or swap requests whose mints
	// do not match this source's direction.
	ErrUnsupportedMint = errors.New("unsupported mint for this vault direction")
)

// DecodeError reports vault account bytes that do not match the SPL token
// account layout. The previous snapshot is retained when it is returned.
type DecodeError struct {
	Vault string
	Len   int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode vault account %s: %v", e.Vault, e.Err)
	}
	return fmt.Sprintf("decode vault account %s: unexpected length %d (want %d)", e.Vault, e.Len, tokenAccountLen)
}

func (e *DecodeError) Unwrap() error { return e.Err }
