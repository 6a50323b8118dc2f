// Package token submits ERC-20 reward payouts over Ethereum JSON-RPC.
// Transfers are sent from a treasury account held by the signer node;
// this service never touches raw keys.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// Client is a thin JSON-RPC client for one ERC-20 token contract.
type Client struct {
	rpcURL     string
	contract   string
	treasury   string
	httpClient *http.Client

	mu       sync.Mutex
	reqID    int64
	decimals int // cached after first fetch, 0 = unknown
}

// NewClient creates a payout client. Any empty argument leaves the
// client unconfigured; callers must check Configured before Transfer.
func NewClient(rpcURL, contract, treasury string) *Client {
	return &Client{
		rpcURL:   rpcURL,
		contract: contract,
		treasury: treasury,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether all transfer credentials are present.
func (c *Client) Configured() bool {
	return c.rpcURL != "" && c.contract != "" && c.treasury != ""
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	c.mu.Lock()
	c.reqID++
	id := c.reqID
	c.mu.Unlock()

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rpc error: %s - %s", resp.Status, string(b))
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}

	return out.Result, nil
}

// Decimals returns the token's decimals() value, cached after the first
// successful call.
func (c *Client) Decimals(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.decimals != 0 {
		d := c.decimals
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	res, err := c.call(ctx, "eth_call", map[string]string{
		"to":   c.contract,
		"data": selectorDecimals,
	}, "latest")
	if err != nil {
		return 0, err
	}

	var hexVal string
	if err := json.Unmarshal(res, &hexVal); err != nil {
		return 0, err
	}

	d, err := parseHexUint(hexVal)
	if err != nil {
		return 0, fmt.Errorf("bad decimals result %q: %w", hexVal, err)
	}

	c.mu.Lock()
	c.decimals = int(d.Int64())
	c.mu.Unlock()
	return int(d.Int64()), nil
}

// Transfer submits transfer(to, amount) from the treasury account and
// returns the transaction hash. amount is in whole vibe units; it is
// scaled by the token's decimals before submission. The call returns as
// soon as the node accepts the transaction — confirmation is observed
// separately by the reconciler.
func (c *Client) Transfer(ctx context.Context, to string, amount int64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if !ValidateAddress(to) {
		return "", fmt.Errorf("invalid destination address %q", to)
	}

	decimals, err := c.Decimals(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch decimals: %w", err)
	}

	scaled := new(big.Int).Mul(
		big.NewInt(amount),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil),
	)

	res, err := c.call(ctx, "eth_sendTransaction", map[string]string{
		"from": c.treasury,
		"to":   c.contract,
		"data": transferCalldata(to, scaled),
	})
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(res, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}

// Receipt is the subset of an Ethereum transaction receipt we care about.
type Receipt struct {
	TxHash      string
	BlockNumber string
	Success     bool
}

// GetReceipt returns the receipt for a submitted transfer, or nil if the
// transaction is not mined yet.
func (c *Client) GetReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	res, err := c.call(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if string(res) == "null" {
		return nil, nil
	}

	var raw struct {
		TransactionHash string `json:"transactionHash"`
		BlockNumber     string `json:"blockNumber"`
		Status          string `json:"status"`
	}
	if err := json.Unmarshal(res, &raw); err != nil {
		return nil, err
	}

	return &Receipt{
		TxHash:      raw.TransactionHash,
		BlockNumber: raw.BlockNumber,
		Success:     raw.Status == "0x1",
	}, nil
}
