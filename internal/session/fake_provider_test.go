package session_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/provider"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// Well-formed addresses used across the session tests.
const (
	acctPrimary   = "0x1111111111111111111111111111111111111111"
	acctSecondary = "0x2222222222222222222222222222222222222222"
	acctRecipient = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
)

// oneEther is 1.0 in smallest units.
func oneEther() *big.Int {
	wei, _ := new(big.Int).SetString("1000000000000000000", 10)
	return wei
}

// mustWei converts a human decimal amount to smallest units.
func mustWei(t *testing.T, amount string) *big.Int {
	t.Helper()
	wei, err := network.ParseDecimalAmount(amount)
	require.NoError(t, err)
	return wei
}

type subEntry struct {
	kind provider.EventKind
	h    provider.Handler
}

// fakeProvider is a scriptable in-memory wallet provider. Fields configure
// behavior; counters record interactions for assertions. Events fire
// synchronously on the calling goroutine via emit, matching the serialized
// delivery of the real bridge.
type fakeProvider struct {
	mu sync.Mutex

	authorized   []string
	accounts     []string // result of RequestAccounts
	requestErr   error
	requestBlock chan struct{}
	requestCalls int

	chainID      string
	chainErr     error
	balances     map[string]*big.Int // keyed chainID:account
	balanceErr   error
	balanceBlock chan struct{}
	balanceCalls int

	walletChains map[string]bool // chains the wallet has registered
	switchErr    error
	switchCalls  []string
	addCalls     []network.ChainInfo
	addErr       error

	sendHash  string
	sendErr   error
	sendFrom  string
	sendTo    string
	sendWei   *big.Int
	sendBlock chan struct{}
	sendCalls int

	receipts   []*provider.Receipt // consumed per poll; nil entries mean pending
	receiptIdx int

	handlers    map[provider.SubscriptionID]subEntry
	subOrder    []provider.SubscriptionID
	nextSub     provider.SubscriptionID
	subscribes  int
	unsubs      int
	closeCalled bool
}

var _ provider.Provider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: []string{acctPrimary},
		chainID:  "0x1",
		balances: map[string]*big.Int{
			"0x1:" + acctPrimary: oneEther(),
		},
		walletChains: map[string]bool{"0x1": true},
		sendHash:     "0xTX1",
		handlers:     make(map[provider.SubscriptionID]subEntry),
	}
}

func (f *fakeProvider) AuthorizedAccounts(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authorized...), nil
}

func (f *fakeProvider) RequestAccounts(_ context.Context) ([]string, error) {
	f.mu.Lock()
	f.requestCalls++
	block := f.requestBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.authorized = append([]string(nil), f.accounts...)
	return append([]string(nil), f.accounts...), nil
}

func (f *fakeProvider) ChainID(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chainErr != nil {
		return "", f.chainErr
	}
	return f.chainID, nil
}

func (f *fakeProvider) Balance(_ context.Context, address string) (*big.Int, error) {
	f.mu.Lock()
	f.balanceCalls++
	block := f.balanceBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	if wei, ok := f.balances[f.chainID+":"+address]; ok {
		return new(big.Int).Set(wei), nil
	}
	return big.NewInt(0), nil
}

func (f *fakeProvider) SwitchChain(_ context.Context, chainID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.switchCalls = append(f.switchCalls, chainID)
	if f.switchErr != nil {
		return f.switchErr
	}
	if !f.walletChains[chainID] {
		return nebulaerr.ErrChainNotRegistered
	}
	f.chainID = chainID
	return nil
}

func (f *fakeProvider) AddChain(_ context.Context, info network.ChainInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addCalls = append(f.addCalls, info)
	if f.addErr != nil {
		return f.addErr
	}
	f.walletChains[info.ChainID] = true
	return nil
}

func (f *fakeProvider) SendTransfer(_ context.Context, from, to string, amountWei *big.Int) (string, error) {
	f.mu.Lock()
	f.sendCalls++
	block := f.sendBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sendFrom = from
	f.sendTo = to
	f.sendWei = new(big.Int).Set(amountWei)
	return f.sendHash, nil
}

func (f *fakeProvider) TransactionReceipt(_ context.Context, _ string) (*provider.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.receipts) == 0 {
		return nil, nil
	}
	idx := f.receiptIdx
	if idx >= len(f.receipts) {
		idx = len(f.receipts) - 1
	}
	f.receiptIdx++
	return f.receipts[idx], nil
}

func (f *fakeProvider) Subscribe(kind provider.EventKind, h provider.Handler) provider.SubscriptionID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextSub++
	f.subscribes++
	id := f.nextSub
	f.handlers[id] = subEntry{kind: kind, h: h}
	f.subOrder = append(f.subOrder, id)
	return id
}

func (f *fakeProvider) Unsubscribe(id provider.SubscriptionID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.handlers[id]; ok {
		f.unsubs++
		delete(f.handlers, id)
	}
}

func (f *fakeProvider) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalled = true
}

// emit delivers an event to subscribed handlers synchronously, in
// subscription order.
func (f *fakeProvider) emit(ev provider.Event) {
	f.mu.Lock()
	var hs []provider.Handler
	for _, id := range f.subOrder {
		entry, ok := f.handlers[id]
		if ok && entry.kind == ev.Kind {
			hs = append(hs, entry.h)
		}
	}
	f.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

func (f *fakeProvider) setChain(chainID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chainID = chainID
}

func (f *fakeProvider) setBalance(chainID, account string, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[chainID+":"+account] = wei
}

func (f *fakeProvider) counters() (requests, balances, subs, unsubs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestCalls, f.balanceCalls, f.subscribes, f.unsubs
}
