package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/deaura-labs/solana-vault-adapter/internal/ai"
	"github.com/deaura-labs/solana-vault-adapter/internal/deaura"
	"github.com/deaura-labs/solana-vault-adapter/internal/flags"
	"github.com/deaura-labs/solana-vault-adapter/internal/models"
	"github.com/deaura-labs/solana-vault-adapter/internal/router"
	"github.com/deaura-labs/solana-vault-adapter/internal/storage"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Registry     *deaura.Registry   // Vault sources, one per direction
	Cache        storage.VaultCache // Redis-backed reserve and quote cache
	Store        storage.QuoteStore // ClickHouse-backed quote history (optional)
	Flags        *flags.Store       // Redis-backed route flags store
	AI           *ai.Agent          // AI agent for natural language queries
	AIBaseConfig ai.AgentConfig     // Base configuration for AI agents
	DevMode      bool               // Enable detailed error responses in development
	Logger       *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Sources lists every routable vault direction with its current reserve
func (h *Handlers) Sources(c echo.Context) error {
	sources := h.Registry.VaultSources()
	items := make([]SourceResponse, 0, len(sources))
	for _, s := range sources {
		reserve, slot := s.Reserve()
		items = append(items, SourceResponse{
			Vault:      s.Key().String(),
			Label:      s.Label(),
			Direction:  s.Direction().String(),
			ProgramID:  s.ProgramID().String(),
			InputMint:  s.InputMint().String(),
			OutputMint: s.OutputMint().String(),
			Reserve:    reserve,
			Slot:       slot,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Reserves returns the last cached reserve observation per vault
func (h *Handlers) Reserves(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items := make([]*models.ReserveUpdate, 0, 2)
	for _, s := range h.Registry.VaultSources() {
		update, err := h.Cache.GetReserve(ctx, s.Key().String())
		if err != nil {
			// Fall back to in-memory state when the cache has no entry yet.
			reserve, slot := s.Reserve()
			update = &models.ReserveUpdate{
				Vault:     s.Key().String(),
				Label:     s.Label(),
				Direction: s.Direction().String(),
				Reserve:   reserve,
				Slot:      slot,
			}
		}
		items = append(items, update)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Quote prices a conversion for the given mints and amount
// Accepts input_mint, output_mint, and amount query parameters
func (h *Handlers) Quote(c echo.Context) error {
	inputMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(c.QueryParam("input_mint")))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid input_mint", map[string]any{"input_mint": "must be a base58 public key"})
	}
	outputMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(c.QueryParam("output_mint")))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid output_mint", map[string]any{"output_mint": "must be a base58 public key"})
	}
	amount, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam("amount")), 10, 64)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be an unsigned integer"})
	}

	source, err := h.Registry.FindByMints(inputMint, outputMint)
	if err != nil {
		return h.err(c, http.StatusNotFound, "no route for mint pair", nil)
	}

	if err := h.requireRouteEnabled(c.Request().Context(), source); err != nil {
		return h.err(c, http.StatusServiceUnavailable, "route is disabled", nil)
	}

	quote, err := source.Quote(router.QuoteParams{
		InputMint:  inputMint,
		OutputMint: outputMint,
		Amount:     amount,
	})
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to quote", map[string]any{"err": err.Error()})
	}

	reserve, slot := source.Reserve()
	h.recordQuote(source, quote, inputMint, reserve, slot)

	return c.JSON(http.StatusOK, QuoteResponse{
		Vault:      source.Key().String(),
		Label:      source.Label(),
		Direction:  source.Direction().String(),
		InputMint:  inputMint.String(),
		OutputMint: outputMint.String(),
		InAmount:   quote.InAmount,
		OutAmount:  quote.OutAmount,
		FeeAmount:  quote.FeeAmount,
		FeeMint:    quote.FeeMint.String(),
		FeeBps:     quote.FeeBps,
		Valid:      quote.Valid,
		Reserve:    reserve,
		Slot:       slot,
	})
}

// SwapInstructions builds the on-chain instructions for a conversion
func (h *Handlers) SwapInstructions(c echo.Context) error {
	var req SwapInstructionsRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	inputMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.InputMint))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid input_mint", map[string]any{"input_mint": "must be a base58 public key"})
	}
	user, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.UserPublicKey))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user_public_key", map[string]any{"user_public_key": "must be a base58 public key"})
	}
	sourceAccount, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.SourceTokenAccount))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid source_token_account", map[string]any{"source_token_account": "must be a base58 public key"})
	}
	destAccount, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.DestinationTokenAccount))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid destination_token_account", map[string]any{"destination_token_account": "must be a base58 public key"})
	}

	source, err := h.findByInputMint(inputMint)
	if err != nil {
		return h.err(c, http.StatusNotFound, "no route for input mint", nil)
	}

	if err := h.requireRouteEnabled(c.Request().Context(), source); err != nil {
		return h.err(c, http.StatusServiceUnavailable, "route is disabled", nil)
	}

	plan, err := source.SwapInstructions(router.SwapParams{
		SourceMint:              inputMint,
		SourceTokenAccount:      sourceAccount,
		DestinationTokenAccount: destAccount,
		TokenTransferAuthority:  user,
		InAmount:                req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, deaura.ErrInsufficientReserve):
			return h.err(c, http.StatusConflict, "insufficient vault reserve", map[string]any{"err": err.Error()})
		case errors.Is(err, deaura.ErrMissingAccount), errors.Is(err, deaura.ErrUnsupportedMint):
			return h.err(c, http.StatusBadRequest, "invalid swap parameters", map[string]any{"err": err.Error()})
		default:
			return h.err(c, http.StatusInternalServerError, "failed to build instructions", nil)
		}
	}

	out := SwapInstructionsResponse{
		Instructions: make([]InstructionResponse, 0, len(plan.Instructions)),
		AccountsLen:  plan.AccountsLen,
	}
	for _, ix := range plan.Instructions {
		data, err := ix.Data()
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to encode instruction", nil)
		}
		accounts := make([]InstructionAccount, 0, len(ix.Accounts()))
		for _, meta := range ix.Accounts() {
			accounts = append(accounts, InstructionAccount{
				Pubkey:     meta.PublicKey.String(),
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable,
			})
		}
		out.Instructions = append(out.Instructions, InstructionResponse{
			ProgramID: ix.ProgramID().String(),
			Accounts:  accounts,
			Data:      base64.StdEncoding.EncodeToString(data),
		})
	}

	return c.JSON(http.StatusOK, out)
}

// RecentQuotes returns the most recent served quotes with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentQuotes(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentQuotes(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get quotes", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// RoutesUpsert creates or updates a route flag with the given key and state
// Validates key format and returns the created/updated flag
func (h *Handlers) RoutesUpsert(c echo.Context) error {
	var req RouteUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Enabled)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert route", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// RoutesUpdate updates an existing route flag with the given key
// Validates key format and returns the updated flag
func (h *Handlers) RoutesUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req RouteUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Enabled)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update route", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// RoutesGet retrieves a route flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) RoutesGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "route not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get route", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// RoutesList returns all route flags in the system
func (h *Handlers) RoutesList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list routes", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// RoutesDelete removes a route flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) RoutesDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete route", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// AIAsk processes natural language questions about quote data using AI
// Supports optional model override for one-off requests
// Returns SQL query and answer with execution time
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "ai is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	// Use default AI agent or create temporary one with custom model
	agent := h.AI
	var tmp *ai.Agent
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		a, err := ai.NewAgent(ctx, cfg)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create ai agent", nil)
		}
		tmp = a
		agent = a
		defer func() {
			_ = tmp.Close() // Clean up temporary agent
		}()
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{SQL: res.SQL, Answer: res.Answer, TookMs: time.Since(start).Milliseconds()})
}

// findByInputMint resolves the source whose direction consumes the given mint
func (h *Handlers) findByInputMint(mint solana.PublicKey) (*deaura.VaultSource, error) {
	for _, s := range h.Registry.VaultSources() {
		if s.InputMint().Equals(mint) {
			return s, nil
		}
	}
	return nil, deaura.ErrUnsupportedMint
}

// requireRouteEnabled checks the direction's route flag, failing closed only
// when the flag is explicitly disabled
func (h *Handlers) requireRouteEnabled(ctx context.Context, source *deaura.VaultSource) error {
	if h.Flags == nil {
		return nil
	}

	ctx, cancel := h.withTimeout(ctx, 3*time.Second)
	defer cancel()

	key := "route." + source.Direction().String()
	enabled, err := h.Flags.RouteEnabled(ctx, key)
	if err != nil {
		// Flag store trouble should not take quoting down.
		h.Logger.WithError(err).WithField("key", key).Warn("route flag check failed")
		return nil
	}
	if !enabled {
		return errors.New("route disabled")
	}
	return nil
}

// recordQuote fans a served quote out to the cache and history store.
// Recording is best-effort and never blocks the response.
func (h *Handlers) recordQuote(source *deaura.VaultSource, quote *router.Quote, inputMint solana.PublicKey, reserve, slot uint64) {
	event := &models.QuoteEvent{
		Timestamp: time.Now().UTC(),
		Vault:     source.Key().String(),
		Label:     source.Label(),
		Direction: source.Direction().String(),
		InputMint: inputMint.String(),
		AmountIn:  quote.InAmount,
		AmountOut: quote.OutAmount,
		Valid:     quote.Valid,
		Reserve:   reserve,
		Slot:      slot,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if h.Cache != nil {
			if err := h.Cache.AddRecentQuote(ctx, event); err != nil {
				h.Logger.WithError(err).Warn("failed to cache quote")
			}
		}
		if h.Store != nil {
			if err := h.Store.InsertQuote(ctx, event); err != nil {
				h.Logger.WithError(err).Warn("failed to persist quote")
			}
		}
	}()
}
