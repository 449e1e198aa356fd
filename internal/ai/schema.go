package ai

// quotesSchemaDescription describes the ClickHouse schema used for NL→SQL prompting.
//
// Keeping it in sync with the actual ClickHouse table definitions in init.sql.
const quotesSchemaDescription = `
Database: deaura
Table: quotes

Columns:
  - timestamp  DateTime      -- Time the quote was served (UTC)
  - vault      String        -- Vault token account address backing the route
  - label      String        -- Human-readable route label, e.g. "Deaura Vault (VNX->GOLDC)"
  - direction  String        -- "deposit" (VNX -> GOLDC) or "redeem" (GOLDC -> VNX)
  - input_mint String        -- Mint address of the input token
  - amount_in  UInt64        -- Requested input amount in base units (9 decimals)
  - amount_out UInt64        -- Quoted output amount in base units (9 decimals)
  - valid      UInt8         -- 1 if the route could fill the amount, 0 if reserve was short
  - reserve    UInt64        -- Vault reserve observed when the quote was served
  - slot       UInt64        -- Solana slot of the reserve snapshot

Table: reserve_updates

Columns:
  - timestamp  DateTime      -- Time the reserve change was observed (UTC)
  - vault      String        -- Vault token account address
  - label      String        -- Human-readable route label
  - direction  String        -- "deposit" or "redeem"
  - reserve    UInt64        -- New reserve amount in base units
  - previous   UInt64        -- Prior reserve amount in base units
  - slot       UInt64        -- Solana slot of the observation

Notes:
  - Amounts are integer base units with 9 decimals; divide by 1e9 for token units.
  - valid = 0 rows show demand the vault could not serve (amount_in > reserve on redeem).
  - Time filters should use timestamp, e.g. timestamp >= now() - INTERVAL 24 HOUR.
`
