package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"minelens/internal/models"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

const defaultCommitment = "confirmed"

// RpcClient talks JSON-RPC to one or more ledger nodes, failing over to the
// next endpoint when one does not answer.
type RpcClient struct {
	endpoints    []*url.URL
	currentIndex int
	mu           sync.RWMutex
	http         *http.Client
	programID    models.PublicKey
	commitment   string
	logger       providers.Logger
	observers    []CallObserver
	nextID       atomic.Uint64
}

func NewRpcClient(conf *structures.Config, logger providers.Logger, observers ...CallObserver) (*RpcClient, error) {
	endpoints := make([]*url.URL, 0, len(conf.Ledger.Endpoints))
	for _, addr := range conf.Ledger.Endpoints {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		parsed, err := url.Parse(addr)
		if err != nil {
			return nil, fmt.Errorf("parse ledger endpoint %q: %w", addr, err)
		}
		endpoints = append(endpoints, parsed)
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no valid ledger endpoints provided")
	}

	programID, err := models.PublicKeyFromBase58(conf.Ledger.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}

	timeout := conf.Ledger.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	commitment := conf.Ledger.Commitment
	if commitment == "" {
		commitment = defaultCommitment
	}

	return &RpcClient{
		endpoints:  endpoints,
		http:       &http.Client{Timeout: timeout},
		programID:  programID,
		commitment: commitment,
		logger:     logger,
		observers:  observers,
	}, nil
}

func (c *RpcClient) ProgramID() models.PublicKey {
	return c.programID
}

func (c *RpcClient) currentEndpoint() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoints[c.currentIndex]
}

func (c *RpcClient) failover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentIndex = (c.currentIndex + 1) % len(c.endpoints)
}

func (c *RpcClient) observe(method string, ok bool, started time.Time) {
	latency := time.Since(started)
	for _, o := range c.observers {
		o.ObserveCall(method, ok, latency)
	}
}

type rpcRequest struct {
	ID      uint64        `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call issues one JSON-RPC request, trying each endpoint once. Every failure
// surfaces as ErrUpstreamUnavailable.
func (c *RpcClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody, err := json.Marshal(&rpcRequest{
		ID:      c.nextID.Inc(),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	var lastErr error
	for attempt := 0; attempt < len(c.endpoints); attempt++ {
		endpoint := c.currentEndpoint()
		started := time.Now()

		rpcResp, err := c.post(ctx, endpoint, reqBody)
		if err != nil {
			c.observe(method, false, started)
			lastErr = fmt.Errorf("%s: %w", endpoint.Host, err)
			if ctx.Err() != nil {
				break
			}
			c.logger.Warnf(providers.TypeLedger, "Endpoint %s failed on %s: %v, trying next...", endpoint.Host, method, err)
			c.failover()
			continue
		}

		if rpcResp.Error != nil && (rpcResp.Error.Code != 0 || rpcResp.Error.Message != "") {
			c.observe(method, false, started)
			return fmt.Errorf("%w: %s: rpc error code=%d message=%s", ErrUpstreamUnavailable, method, rpcResp.Error.Code, rpcResp.Error.Message)
		}
		c.observe(method, true, started)

		if result != nil && len(rpcResp.Result) > 0 {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("%w: %s: unmarshal result: %v", ErrUpstreamUnavailable, method, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %s: all endpoints failed, last error: %v", ErrUpstreamUnavailable, method, lastErr)
}

func (c *RpcClient) post(ctx context.Context, endpoint *url.URL, body []byte) (*rpcResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &rpcResp, nil
}

type accountInfo struct {
	Data []string `json:"data"`
}

func (a *accountInfo) decode() ([]byte, error) {
	if len(a.Data) == 0 {
		return nil, fmt.Errorf("account has no data")
	}
	if len(a.Data) > 1 && a.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account encoding %q", a.Data[1])
	}
	return base64.StdEncoding.DecodeString(a.Data[0])
}

type programAccount struct {
	Pubkey  models.PublicKey `json:"pubkey"`
	Account accountInfo      `json:"account"`
}

type dataSizeFilter struct {
	DataSize int `json:"dataSize"`
}

type memcmp struct {
	Offset int    `json:"offset"`
	Bytes  string `json:"bytes"`
}

type memcmpFilter struct {
	Memcmp memcmp `json:"memcmp"`
}

func (c *RpcClient) ScanAccountsBySize(ctx context.Context, size int, owner *models.PublicKey) ([]Account, error) {
	filters := []interface{}{dataSizeFilter{DataSize: size}}
	if owner != nil {
		filters = append(filters, memcmpFilter{Memcmp: memcmp{Offset: models.OwnerOffset, Bytes: owner.String()}})
	}
	params := []interface{}{
		c.programID.String(),
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": c.commitment,
			"filters":    filters,
		},
	}

	var raw []programAccount
	if err := c.call(ctx, "getProgramAccounts", params, &raw); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(raw))
	for _, r := range raw {
		data, err := r.Account.decode()
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %v", ErrUpstreamUnavailable, r.Pubkey, err)
		}
		accounts = append(accounts, Account{Address: r.Pubkey, Data: data})
	}
	return accounts, nil
}

func (c *RpcClient) ReadAccount(ctx context.Context, address models.PublicKey) ([]byte, bool, error) {
	params := []interface{}{
		address.String(),
		map[string]interface{}{"encoding": "base64", "commitment": c.commitment},
	}

	var result struct {
		Value *accountInfo `json:"value"`
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, false, err
	}
	if result.Value == nil {
		return nil, false, nil
	}
	data, err := result.Value.decode()
	if err != nil {
		return nil, false, fmt.Errorf("%w: account %s: %v", ErrUpstreamUnavailable, address, err)
	}
	return data, true, nil
}

func (c *RpcClient) ReadClockSeconds(ctx context.Context) (int64, error) {
	data, found, err := c.ReadAccount(ctx, ClockSysvar)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: clock sysvar not found", ErrUpstreamUnavailable)
	}
	clock, err := models.DecodeClock(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return clock.UnixTimestamp, nil
}
