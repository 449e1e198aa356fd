package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// ResponseContext carries the slot an RPC response was evaluated at
type ResponseContext struct {
	Slot uint64 `json:"slot"`
}

// AccountValue is the "value" object of account queries. Data arrives as a
// [content, encoding] pair; older nodes may answer base58 regardless of the
// requested encoding, so both are accepted.
type AccountValue struct {
	Data     json.RawMessage  `json:"data"`
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
}

// Bytes decodes the account data payload
func (v *AccountValue) Bytes() ([]byte, error) {
	var pair []string
	if err := json.Unmarshal(v.Data, &pair); err != nil {
		// Legacy form: bare base58 string.
		var s string
		if err2 := json.Unmarshal(v.Data, &s); err2 != nil {
			return nil, fmt.Errorf("unexpected account data shape: %w", err)
		}
		return base58.Decode(s)
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("unexpected account data pair length %d", len(pair))
	}

	switch pair[1] {
	case "base64":
		return base64.StdEncoding.DecodeString(pair[0])
	case "base58":
		return base58.Decode(pair[0])
	default:
		return nil, fmt.Errorf("unsupported account data encoding %q", pair[1])
	}
}

// AccountInfo is a fetched account: raw data plus where/when it was read
type AccountInfo struct {
	Address solana.PublicKey
	Data    []byte
	Owner   solana.PublicKey
	Slot    uint64
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   *AccountValue   `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// MultipleAccountsResponse is the response from getMultipleAccounts
type MultipleAccountsResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   []*AccountValue `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
