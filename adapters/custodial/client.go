package custodial

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.BalanceReader = (*Client)(nil)

// DefaultTimeout bounds every call to the custodial service
const DefaultTimeout = 10 * time.Second

// Config describes how to reach the custodial wallet service
type Config struct {
	BaseURL string
	APIKey  string
	Network string
	Timeout time.Duration
}

// Client talks to the custodial wallet REST API
type Client struct {
	baseURL string
	apiKey  string
	network string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a custodial client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		network: cfg.Network,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

type balanceResult struct {
	Balance decimal.Decimal `json:"balance"`
}

type createResult struct {
	WalletAddress string `json:"wallet_address"`
	PrivateKey    string `json:"private_key"`
}

// GetBalance reads the balance of address
func (c *Client) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("network", c.network)
	query.Set("wallet", address)

	var out envelope[balanceResult]
	if err := c.do(ctx, http.MethodGet, "/wallet/balance?"+query.Encode(), nil, &out); err != nil {
		return decimal.Zero, err
	}

	return out.Result.Balance, nil
}

// CreateWallet asks the service for a new wallet
func (c *Client) CreateWallet(ctx context.Context) (core.Keypair, error) {
	body := strings.NewReader(fmt.Sprintf(`{"network":%q}`, c.network))

	var out envelope[createResult]
	if err := c.do(ctx, http.MethodPost, "/wallet/create", body, &out); err != nil {
		return core.Keypair{}, err
	}

	if out.Result.WalletAddress == "" || out.Result.PrivateKey == "" {
		return core.Keypair{}, fmt.Errorf("%w: empty wallet in response", core.ErrCustodialFailed)
	}

	return core.Keypair{
		Address: out.Result.WalletAddress,
		Secret:  out.Result.PrivateKey,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{ ok() (bool, string) }) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrCustodialFailed, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrCustodialFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", core.ErrCustodialFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", core.ErrCustodialFailed, err)
	}

	if ok, msg := out.ok(); !ok {
		return fmt.Errorf("%w: %s", core.ErrCustodialFailed, msg)
	}

	return nil
}

func (e *envelope[T]) ok() (bool, string) {
	return e.Success, e.Message
}
