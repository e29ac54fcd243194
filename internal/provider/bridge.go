package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/metrics"
	"github.com/nebulaai/nebula/internal/network"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// Wallet provider error codes (EIP-1193 / EIP-1474 conventions).
const (
	codeUserRejected       = 4001
	codeChainNotRegistered = 4902
)

// transferGasLimit is the fixed gas limit for a native transfer (21000).
const transferGasLimit = "0x5208"

// readOnlyMethods are safe to reissue when the bridge transport hiccups.
// Prompting and state-changing methods never retry: a reissued
// eth_sendTransaction would be a duplicate payment and a reissued
// eth_requestAccounts a duplicate wallet prompt.
//
//nolint:gochecknoglobals // Static method table
var readOnlyMethods = map[string]bool{
	"eth_accounts":              true,
	"eth_chainId":               true,
	"eth_getBalance":            true,
	"eth_getTransactionReceipt": true,
}

// transientRetryConfig bounds transport retries. The bridge is local, so a
// hiccup either clears within a few hundred milliseconds or the bridge is
// down.
func transientRetryConfig() network.RetryConfig {
	return network.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	}
}

// Bridge speaks JSON-RPC 2.0 to a local wallet bridge endpoint, the
// stand-in for a browser-injected provider. Provider events are emulated by
// polling the bridge for account and chain changes; polling runs on a single
// goroutine so subscribers observe events in arrival order.
type Bridge struct {
	url        string
	httpClient *http.Client
	limiter    *network.RateLimiter
	logger     *config.Logger
	idCounter  atomic.Uint64

	subsMu sync.Mutex
	subs   map[SubscriptionID]subscription
	nextID SubscriptionID

	pollInterval time.Duration
	stopPoll     chan struct{}
	pollDone     chan struct{}
	startOnce    sync.Once
	closeOnce    sync.Once
}

type subscription struct {
	kind    EventKind
	handler Handler
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	PollInterval time.Duration
	Limiter      *network.RateLimiter
	Logger       *config.Logger
}

// NewBridge creates a provider backed by the wallet bridge at url.
func NewBridge(url string, opts BridgeOptions) *Bridge {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Limiter == nil {
		opts.Limiter = network.DefaultRateLimiter()
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}

	return &Bridge{
		url:          url,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      opts.Limiter,
		logger:       opts.Logger,
		subs:         make(map[SubscriptionID]subscription),
		pollInterval: opts.PollInterval,
		stopPoll:     make(chan struct{}),
		pollDone:     make(chan struct{}),
	}
}

// request represents a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// response represents a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call and normalizes failures.
func (b *Bridge) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	start := time.Now()
	result, err := b.callRaw(ctx, method, params...)
	metrics.Global.RecordProviderCall(method, time.Since(start), err)

	if err != nil {
		b.logger.Debug("provider call %s failed: %v", method, err)
	}
	return result, err
}

func (b *Bridge) callRaw(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	if err := b.limiter.Wait(ctx, method); err != nil {
		return nil, err
	}

	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      b.idCounter.Add(1),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var respBody []byte
	if readOnlyMethods[method] {
		respBody, err = network.RetryWithConfig(ctx, transientRetryConfig(), func() ([]byte, error) {
			return b.roundTrip(ctx, body)
		})
	} else {
		respBody, err = b.roundTrip(ctx, body)
	}
	if err != nil {
		// The bridge not answering is the Go equivalent of window.ethereum
		// being undefined.
		return nil, nebulaerr.Wrap(nebulaerr.ErrProviderUnavailable, "calling %s", method)
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, nebulaerr.Wrap(nebulaerr.ErrProvider, "unmarshaling %s response", method)
	}

	if resp.Error != nil {
		return nil, normalizeRPCError(resp.Error)
	}

	return resp.Result, nil
}

// roundTrip posts one JSON-RPC request and returns the raw response body.
// Transport failures and bridge-side server errors are marked retryable
// for the read-only retry path.
func (b *Bridge) roundTrip(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, network.WrapRetryable(err)
	}
	// Body.Close error is intentionally ignored as it only fails if the
	// connection is already broken, and there's no recovery action.
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, network.WrapRetryable(err)
	}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, network.WrapRetryable(fmt.Errorf("bridge returned HTTP %d", httpResp.StatusCode))
	}
	return respBody, nil
}

// normalizeRPCError translates wallet error codes into the error taxonomy.
func normalizeRPCError(e *rpcError) error {
	switch e.Code {
	case codeUserRejected:
		return nebulaerr.WithDetails(nebulaerr.ErrUserRejected, map[string]string{
			"provider_message": e.Message,
		})
	case codeChainNotRegistered:
		return nebulaerr.WithDetails(nebulaerr.ErrChainNotRegistered, map[string]string{
			"provider_message": e.Message,
		})
	default:
		return nebulaerr.WithDetails(nebulaerr.ErrProvider, map[string]string{
			"provider_code":    fmt.Sprintf("%d", e.Code),
			"provider_message": e.Message,
		})
	}
}

// AuthorizedAccounts returns accounts already authorized for this client.
func (b *Bridge) AuthorizedAccounts(ctx context.Context) ([]string, error) {
	return b.accounts(ctx, "eth_accounts")
}

// RequestAccounts returns authorized accounts, prompting the user if needed.
func (b *Bridge) RequestAccounts(ctx context.Context) ([]string, error) {
	return b.accounts(ctx, "eth_requestAccounts")
}

func (b *Bridge) accounts(ctx context.Context, method string) ([]string, error) {
	result, err := b.call(ctx, method)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, nebulaerr.Wrap(nebulaerr.ErrProvider, "parsing %s result", method)
	}
	return accounts, nil
}

// ChainID returns the active hex chain id.
func (b *Bridge) ChainID(ctx context.Context) (string, error) {
	result, err := b.call(ctx, "eth_chainId")
	if err != nil {
		return "", err
	}

	var chainID string
	if err := json.Unmarshal(result, &chainID); err != nil {
		return "", nebulaerr.Wrap(nebulaerr.ErrProvider, "parsing chain id")
	}
	return network.Normalize(chainID), nil
}

// Balance returns the native balance of an address in wei.
func (b *Bridge) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, nebulaerr.WithDetails(nebulaerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	result, err := b.call(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, nebulaerr.Wrap(nebulaerr.ErrProvider, "parsing balance")
	}

	balance, err := hexutil.DecodeBig(hexVal)
	if err != nil {
		return nil, nebulaerr.Wrap(nebulaerr.ErrProvider, "decoding balance %q", hexVal)
	}
	return balance, nil
}

// switchChainParam is the wallet_switchEthereumChain parameter shape.
type switchChainParam struct {
	ChainID string `json:"chainId"`
}

// SwitchChain asks the wallet to switch the active chain.
func (b *Bridge) SwitchChain(ctx context.Context, chainID string) error {
	_, err := b.call(ctx, "wallet_switchEthereumChain", switchChainParam{ChainID: chainID})
	return err
}

// addChainParam is the wallet_addEthereumChain parameter shape.
type addChainParam struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
	NativeCurrency    nativeCurrency `json:"nativeCurrency"`
}

type nativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChain registers a chain with the wallet using registry metadata.
func (b *Bridge) AddChain(ctx context.Context, info network.ChainInfo) error {
	_, err := b.call(ctx, "wallet_addEthereumChain", addChainParam{
		ChainID:           info.ChainID,
		ChainName:         info.Name,
		RPCURLs:           []string{info.RPCURL},
		BlockExplorerURLs: []string{info.BlockExplorerURL},
		NativeCurrency: nativeCurrency{
			Name:     info.CurrencySymbol,
			Symbol:   info.CurrencySymbol,
			Decimals: network.Decimals,
		},
	})
	return err
}

// sendTransactionParam is the eth_sendTransaction parameter shape.
type sendTransactionParam struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

// SendTransfer submits a native-currency transfer and returns its hash.
func (b *Bridge) SendTransfer(ctx context.Context, from, to string, amountWei *big.Int) (string, error) {
	if !common.IsHexAddress(from) || !common.IsHexAddress(to) {
		return "", nebulaerr.WithDetails(nebulaerr.ErrInvalidAddress, map[string]string{
			"from": from,
			"to":   to,
		})
	}
	if amountWei == nil || amountWei.Sign() <= 0 {
		return "", nebulaerr.ErrInvalidAmount
	}

	result, err := b.call(ctx, "eth_sendTransaction", sendTransactionParam{
		From:  from,
		To:    to,
		Value: hexutil.EncodeBig(amountWei),
		Gas:   transferGasLimit,
	})
	if err != nil {
		if nebulaerr.Is(err, nebulaerr.ErrUserRejected) || nebulaerr.Is(err, nebulaerr.ErrProviderUnavailable) {
			return "", err
		}
		return "", nebulaerr.Wrap(nebulaerr.ErrTxFailed, "submitting transfer")
	}

	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", nebulaerr.Wrap(nebulaerr.ErrProvider, "parsing transaction hash")
	}
	return hash, nil
}

// receiptJSON is the wire shape of eth_getTransactionReceipt.
type receiptJSON struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
	GasUsed         string `json:"gasUsed"`
}

// TransactionReceipt returns the receipt for a hash, or nil while pending.
func (b *Bridge) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	result, err := b.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}

	// null result means the transaction is still pending
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}

	var rj receiptJSON
	if err := json.Unmarshal(result, &rj); err != nil {
		return nil, nebulaerr.Wrap(nebulaerr.ErrProvider, "parsing receipt")
	}

	receipt := &Receipt{TransactionHash: rj.TransactionHash}
	if rj.BlockNumber != "" {
		if bn, decodeErr := hexutil.DecodeBig(rj.BlockNumber); decodeErr == nil {
			receipt.BlockNumber = bn
		}
	}
	if rj.Status != "" {
		if status, decodeErr := hexutil.DecodeUint64(rj.Status); decodeErr == nil {
			receipt.Status = status
		}
	}
	if rj.GasUsed != "" {
		if gas, decodeErr := hexutil.DecodeUint64(rj.GasUsed); decodeErr == nil {
			receipt.GasUsed = gas
		}
	}
	return receipt, nil
}

// Subscribe registers a handler for an event kind and starts event polling
// on first use.
func (b *Bridge) Subscribe(kind EventKind, h Handler) SubscriptionID {
	b.subsMu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = subscription{kind: kind, handler: h}
	b.subsMu.Unlock()

	b.startOnce.Do(func() {
		go b.pollEvents()
	})
	return id
}

// Unsubscribe removes a previously registered handler.
func (b *Bridge) Unsubscribe(id SubscriptionID) {
	b.subsMu.Lock()
	delete(b.subs, id)
	b.subsMu.Unlock()
}

// Close stops event polling.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.stopPoll)
	})
}

// dispatch delivers an event to all matching subscribers, in order.
func (b *Bridge) dispatch(ev Event) {
	b.subsMu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.kind == ev.Kind {
			handlers = append(handlers, sub.handler)
		}
	}
	b.subsMu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// pollEvents emulates provider push events by polling accounts and chain id.
// A single goroutine does all dispatching, which preserves arrival order for
// subscribers.
func (b *Bridge) pollEvents() {
	defer close(b.pollDone)

	var (
		lastAccounts []string
		lastChainID  string
		reachable    = true
		primed       bool
	)

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopPoll:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.pollInterval)
		accounts, accErr := b.AuthorizedAccounts(ctx)
		chainID, chainErr := b.ChainID(ctx)
		cancel()

		if accErr != nil || chainErr != nil {
			if reachable && primed {
				err := accErr
				if err == nil {
					err = chainErr
				}
				b.dispatch(Event{Kind: EventDisconnect, Err: err})
			}
			reachable = false
			continue
		}

		if !reachable {
			b.dispatch(Event{Kind: EventConnect})
		}
		reachable = true

		if primed {
			if !equalAccounts(accounts, lastAccounts) {
				b.dispatch(Event{Kind: EventAccountsChanged, Accounts: accounts})
			}
			if chainID != lastChainID {
				b.dispatch(Event{Kind: EventChainChanged, ChainID: chainID})
			}
		}

		lastAccounts = accounts
		lastChainID = chainID
		primed = true
	}
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compile-time interface check
var _ Provider = (*Bridge)(nil)

// Unavailable returns a provider representing the absent-provider case:
// every operation fails with ErrProviderUnavailable and no events are ever
// delivered. Callers get a well-formed failure instead of a crash.
func Unavailable() Provider {
	return unavailableProvider{}
}

type unavailableProvider struct{}

func (unavailableProvider) AuthorizedAccounts(context.Context) ([]string, error) {
	return nil, nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) RequestAccounts(context.Context) ([]string, error) {
	return nil, nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) ChainID(context.Context) (string, error) {
	return "", nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) Balance(context.Context, string) (*big.Int, error) {
	return nil, nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) SwitchChain(context.Context, string) error {
	return nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) AddChain(context.Context, network.ChainInfo) error {
	return nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) SendTransfer(context.Context, string, string, *big.Int) (string, error) {
	return "", nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) TransactionReceipt(context.Context, string) (*Receipt, error) {
	return nil, nebulaerr.ErrProviderUnavailable
}

func (unavailableProvider) Subscribe(EventKind, Handler) SubscriptionID { return 0 }

func (unavailableProvider) Unsubscribe(SubscriptionID) {}

func (unavailableProvider) Close() {}
