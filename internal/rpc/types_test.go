package rpc

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountValueBytes(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		data string
	}{
		{"base64 pair", `["` + base64.StdEncoding.EncodeToString(raw) + `", "base64"]`},
		{"base58 pair", `["` + base58.Encode(raw) + `", "base58"]`},
		{"legacy base58 string", `"` + base58.Encode(raw) + `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &AccountValue{Data: json.RawMessage(tt.data)}
			got, err := v.Bytes()
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestAccountValueBytesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown encoding", `["aGVsbG8=", "base99"]`},
		{"short pair", `["aGVsbG8="]`},
		{"not a string", `{"foo": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &AccountValue{Data: json.RawMessage(tt.data)}
			_, err := v.Bytes()
			assert.Error(t, err)
		})
	}
}
