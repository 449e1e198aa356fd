package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Client is an HTTP client with retry and timeout support for Solana RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// Call makes a JSON-RPC call with retry logic
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(resp, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// GetAccountInfo fetches one account's raw data plus the slot it was read at
func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*AccountInfo, error) {
	params := []interface{}{
		account.String(),
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": "confirmed",
		},
	}

	var result AccountInfoResponse
	if err := c.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}
	if result.Result == nil || result.Result.Value == nil {
		return nil, fmt.Errorf("account %s not found", account)
	}

	data, err := result.Result.Value.Bytes()
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account, err)
	}

	return &AccountInfo{
		Address: account,
		Data:    data,
		Owner:   result.Result.Value.Owner,
		Slot:    result.Result.Context.Slot,
	}, nil
}

// GetMultipleAccounts fetches several accounts in one round trip. Accounts
// the node does not know are omitted from the returned slice.
func (c *Client) GetMultipleAccounts(ctx context.Context, accounts []solana.PublicKey) ([]*AccountInfo, uint64, error) {
	keys := make([]string, len(accounts))
	for i, a := range accounts {
		keys[i] = a.String()
	}

	params := []interface{}{
		keys,
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": "confirmed",
		},
	}

	var result MultipleAccountsResponse
	if err := c.Call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, 0, err
	}

	if result.Error != nil {
		return nil, 0, result.Error
	}
	if result.Result == nil {
		return nil, 0, fmt.Errorf("empty getMultipleAccounts result")
	}

	slot := result.Result.Context.Slot
	out := make([]*AccountInfo, 0, len(accounts))
	for i, value := range result.Result.Value {
		if value == nil {
			c.logger.WithField("account", keys[i]).Warn("account not found")
			continue
		}
		data, err := value.Bytes()
		if err != nil {
			return nil, 0, fmt.Errorf("account %s: %w", keys[i], err)
		}
		out = append(out, &AccountInfo{
			Address: accounts[i],
			Data:    data,
			Owner:   value.Owner,
			Slot:    slot,
		})
	}

	return out, slot, nil
}

// Close cleans up idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
