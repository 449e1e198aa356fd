package server

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deaura-labs/solana-vault-adapter/internal/deaura"
	"github.com/deaura-labs/solana-vault-adapter/internal/router"
)

func vaultAccountBytes(amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], deaura.VNXMint.Bytes())
	copy(data[32:64], deaura.DeriveVaultAuthority().Bytes())
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

func setupHandlers(t *testing.T, reserve uint64) *Handlers {
	registry, err := deaura.NewRegistry()
	require.NoError(t, err)

	accounts := router.AccountMap{
		deaura.DepositVault: vaultAccountBytes(reserve),
		deaura.RedeemVault:  vaultAccountBytes(reserve),
	}
	for _, s := range registry.VaultSources() {
		require.NoError(t, s.UpdateAtSlot(accounts, 42))
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return &Handlers{
		Registry: registry,
		DevMode:  true,
		Logger:   logger,
	}
}

func doRequest(t *testing.T, h *Handlers, method, target string, body string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec
}

func TestHealth(t *testing.T) {
	h := setupHandlers(t, 1_000)

	rec := doRequest(t, h, http.MethodGet, "/v1/health", "", h.Health)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

func TestSources(t *testing.T) {
	h := setupHandlers(t, 1_000)

	rec := doRequest(t, h, http.MethodGet, "/v1/sources", "", h.Sources)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []SourceResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)

	byDirection := make(map[string]SourceResponse)
	for _, item := range resp.Items {
		byDirection[item.Direction] = item
	}

	deposit := byDirection["deposit"]
	assert.Equal(t, deaura.DepositVault.String(), deposit.Vault)
	assert.Equal(t, deaura.VNXMint.String(), deposit.InputMint)
	assert.Equal(t, deaura.GOLDCMint.String(), deposit.OutputMint)
	assert.Equal(t, uint64(1_000), deposit.Reserve)
	assert.Equal(t, uint64(42), deposit.Slot)

	redeem := byDirection["redeem"]
	assert.Equal(t, deaura.RedeemVault.String(), redeem.Vault)
	assert.Equal(t, deaura.GOLDCMint.String(), redeem.InputMint)
	assert.Equal(t, deaura.VNXMint.String(), redeem.OutputMint)
}

func TestQuoteDeposit(t *testing.T) {
	h := setupHandlers(t, 1_000)

	target := fmt.Sprintf("/v1/quote?input_mint=%s&output_mint=%s&amount=2500",
		deaura.VNXMint, deaura.GOLDCMint)
	rec := doRequest(t, h, http.MethodGet, target, "", h.Quote)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deposit", resp.Direction)
	assert.Equal(t, uint64(2_500), resp.InAmount)
	assert.Equal(t, uint64(2_500), resp.OutAmount)
	assert.Equal(t, uint64(0), resp.FeeAmount)
	assert.True(t, resp.Valid)
}

func TestQuoteRedeemInsufficientReserve(t *testing.T) {
	h := setupHandlers(t, 1_000)

	target := fmt.Sprintf("/v1/quote?input_mint=%s&output_mint=%s&amount=1500",
		deaura.GOLDCMint, deaura.VNXMint)
	rec := doRequest(t, h, http.MethodGet, target, "", h.Quote)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "redeem", resp.Direction)
	assert.Equal(t, uint64(1_500), resp.OutAmount)
	assert.False(t, resp.Valid)
	assert.Equal(t, uint64(1_000), resp.Reserve)
}

func TestQuoteBadParams(t *testing.T) {
	h := setupHandlers(t, 1_000)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{
			name:   "bad input mint",
			target: fmt.Sprintf("/v1/quote?input_mint=nope&output_mint=%s&amount=10", deaura.GOLDCMint),
			code:   http.StatusBadRequest,
		},
		{
			name:   "bad amount",
			target: fmt.Sprintf("/v1/quote?input_mint=%s&output_mint=%s&amount=-5", deaura.VNXMint, deaura.GOLDCMint),
			code:   http.StatusBadRequest,
		},
		{
			name:   "unknown pair",
			target: fmt.Sprintf("/v1/quote?input_mint=%s&output_mint=%s&amount=10", deaura.VNXMint, deaura.VNXMint),
			code:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tt.target, "", h.Quote)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func swapInstructionsBody(inputMint solana.PublicKey, amount uint64) string {
	req := SwapInstructionsRequest{
		InputMint:               inputMint.String(),
		Amount:                  amount,
		UserPublicKey:           solana.NewWallet().PublicKey().String(),
		SourceTokenAccount:      solana.NewWallet().PublicKey().String(),
		DestinationTokenAccount: solana.NewWallet().PublicKey().String(),
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func TestSwapInstructionsEndpoint(t *testing.T) {
	h := setupHandlers(t, 1_000)

	rec := doRequest(t, h, http.MethodPost, "/v1/swap-instructions",
		swapInstructionsBody(deaura.VNXMint, 500), h.SwapInstructions)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SwapInstructionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Instructions, 1)
	assert.Equal(t, 12, resp.AccountsLen)

	ix := resp.Instructions[0]
	assert.Equal(t, deaura.ProgramID.String(), ix.ProgramID)
	assert.Len(t, ix.Accounts, 12)

	data, err := base64.StdEncoding.DecodeString(ix.Data)
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[8:16]))
}

func TestSwapInstructionsEndpointInsufficientReserve(t *testing.T) {
	h := setupHandlers(t, 1_000)

	rec := doRequest(t, h, http.MethodPost, "/v1/swap-instructions",
		swapInstructionsBody(deaura.GOLDCMint, 1_500), h.SwapInstructions)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestSwapInstructionsEndpointUnknownMint(t *testing.T) {
	h := setupHandlers(t, 1_000)

	rec := doRequest(t, h, http.MethodPost, "/v1/swap-instructions",
		swapInstructionsBody(solana.NewWallet().PublicKey(), 100), h.SwapInstructions)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
