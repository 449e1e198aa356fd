package models

import "time"

// QuoteEvent records one quote served by the adapter.
type QuoteEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Vault     string    `json:"vault"`
	Label     string    `json:"label"`
	Direction string    `json:"direction"` // "deposit" or "redeem"
	InputMint string    `json:"input_mint"`
	AmountIn  uint64    `json:"amount_in"`
	AmountOut uint64    `json:"amount_out"`
	Valid     bool      `json:"valid"`
	Reserve   uint64    `json:"reserve"` // observed at quote time (redeem only)
	Slot      uint64    `json:"slot"`
}

// ReserveUpdate records an observed change of a vault's balance.
type ReserveUpdate struct {
	Timestamp time.Time `json:"timestamp"`
	Vault     string    `json:"vault"`
	Label     string    `json:"label"`
	Direction string    `json:"direction"`
	Reserve   uint64    `json:"reserve"`
	Previous  uint64    `json:"previous"`
	Slot      uint64    `json:"slot"`
}
