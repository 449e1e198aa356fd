package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// SourceResponse describes one routable vault direction
type SourceResponse struct {
	Vault      string `json:"vault"`       // Vault token account backing the route
	Label      string `json:"label"`       // Human-readable route label
	Direction  string `json:"direction"`   // "deposit" or "redeem"
	ProgramID  string `json:"program_id"`  // On-chain program the route settles through
	InputMint  string `json:"input_mint"`  // Mint consumed by the route
	OutputMint string `json:"output_mint"` // Mint released by the route
	Reserve    uint64 `json:"reserve"`     // Last observed vault reserve (base units)
	Slot       uint64 `json:"slot"`        // Slot of the reserve observation
}

// QuoteResponse represents a priced conversion for a given input amount
type QuoteResponse struct {
	Vault      string `json:"vault"`       // Vault backing the quoted route
	Label      string `json:"label"`       // Human-readable route label
	Direction  string `json:"direction"`   // "deposit" or "redeem"
	InputMint  string `json:"input_mint"`  // Mint consumed by the route
	OutputMint string `json:"output_mint"` // Mint released by the route
	InAmount   uint64 `json:"in_amount"`   // Requested input amount (base units)
	OutAmount  uint64 `json:"out_amount"`  // Output amount at the fixed 1:1 rate
	FeeAmount  uint64 `json:"fee_amount"`  // Fee charged by the route (always 0)
	FeeMint    string `json:"fee_mint"`    // Mint the fee is denominated in
	FeeBps     uint16 `json:"fee_bps"`     // Fee in basis points (always 0)
	Valid      bool   `json:"valid"`       // False when the vault reserve cannot fill the amount
	Reserve    uint64 `json:"reserve"`     // Vault reserve backing the quote
	Slot       uint64 `json:"slot"`        // Slot of the reserve observation
}

// SwapInstructionsRequest represents a request to build vault conversion instructions
type SwapInstructionsRequest struct {
	InputMint               string `json:"input_mint"`                // Mint being sold into the vault
	Amount                  uint64 `json:"amount"`                    // Input amount in base units
	UserPublicKey           string `json:"user_public_key"`           // Transaction fee payer and token authority
	SourceTokenAccount      string `json:"source_token_account"`      // User ATA debited by the conversion
	DestinationTokenAccount string `json:"destination_token_account"` // User ATA credited by the conversion
}

// InstructionAccount is one account meta of a built instruction
type InstructionAccount struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// InstructionResponse is a built instruction in wire-friendly form
type InstructionResponse struct {
	ProgramID string               `json:"program_id"`
	Accounts  []InstructionAccount `json:"accounts"`
	Data      string               `json:"data"` // Base64-encoded instruction data
}

// SwapInstructionsResponse carries the built instructions and the account
// budget they consume in a transaction
type SwapInstructionsResponse struct {
	Instructions []InstructionResponse `json:"instructions"`
	AccountsLen  int                   `json:"accounts_len"`
}

// RouteUpsertRequest represents a request to create or update a route flag
type RouteUpsertRequest struct {
	Key     string `json:"key"`     // Route flag key (must match regex pattern)
	Enabled bool   `json:"enabled"` // Whether the route is enabled
}

// RouteUpdateRequest represents a request to update an existing route flag
type RouteUpdateRequest struct {
	Enabled bool `json:"enabled"` // New enabled state
}

// AIAskRequest represents a natural language query request
type AIAskRequest struct {
	Question string `json:"question"` // Natural language question about quote data
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	SQL    string `json:"sql"`     // Generated SQL query
	Answer string `json:"answer"`  // Natural language answer
	TookMs int64  `json:"took_ms"` // Execution time in milliseconds
}
