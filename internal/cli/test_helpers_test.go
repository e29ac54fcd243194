package cli

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/nebulaai/nebula/internal/cache"
	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/gpu"
	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/provider"
	"github.com/nebulaai/nebula/internal/session"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

const testAccount = "0x1111111111111111111111111111111111111111"

// stubProvider is a minimal in-memory wallet provider for command tests.
type stubProvider struct {
	mu         sync.Mutex
	authorized []string
	accounts   []string
	requestErr error
	chainID    string
	balanceWei *big.Int
	sendHash   string
	sendErr    error
	sendTo     string
	sendWei    *big.Int
	receipt    *provider.Receipt
}

var _ provider.Provider = (*stubProvider)(nil)

func newStubProvider() *stubProvider {
	return &stubProvider{
		accounts:   []string{testAccount},
		chainID:    "0x1",
		balanceWei: big.NewInt(1e18),
		sendHash:   "0xSTUB1",
		receipt:    &provider.Receipt{TransactionHash: "0xSTUB1", BlockNumber: big.NewInt(7), Status: 1},
	}
}

func (s *stubProvider) AuthorizedAccounts(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authorized...), nil
}

func (s *stubProvider) RequestAccounts(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	s.authorized = append([]string(nil), s.accounts...)
	return append([]string(nil), s.accounts...), nil
}

func (s *stubProvider) ChainID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID, nil
}

func (s *stubProvider) Balance(context.Context, string) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.balanceWei), nil
}

func (s *stubProvider) SwitchChain(_ context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chainID = chainID
	return nil
}

func (s *stubProvider) AddChain(context.Context, network.ChainInfo) error { return nil }

func (s *stubProvider) SendTransfer(_ context.Context, _, to string, amountWei *big.Int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sendTo = to
	s.sendWei = new(big.Int).Set(amountWei)
	return s.sendHash, nil
}

func (s *stubProvider) TransactionReceipt(context.Context, string) (*provider.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt, nil
}

func (s *stubProvider) Subscribe(provider.EventKind, provider.Handler) provider.SubscriptionID {
	return 1
}

func (s *stubProvider) Unsubscribe(provider.SubscriptionID) {}

func (s *stubProvider) Close() {}

// newTestContext builds a command context around a stub provider.
func newTestContext(p provider.Provider) *CommandContext {
	balances := cache.New()
	ctrl := session.NewController(p, session.Options{
		Balances: balances,
		Logger:   config.NullLogger(),
	})
	return &CommandContext{
		Config:     config.Defaults(),
		Logger:     config.NullLogger(),
		Formatter:  output.NewFormatter(output.FormatText, bytes.NewBuffer(nil)),
		Provider:   p,
		Controller: ctrl,
		Balances:   balances,
		Checkout:   gpu.NewCheckout(ctrl, gpu.CheckoutOptions{Logger: config.NullLogger()}),
		Lending:    gpu.NewLendingService(gpu.LendingOptions{Delay: 10 * time.Millisecond, Logger: config.NullLogger()}),
	}
}

// executeCommand runs the root command with an injected context and
// captured output. The post-run cleanup closes the injected context.
func executeCommand(t *testing.T, cc *CommandContext, args ...string) (string, error) {
	t.Helper()

	SetCommandContext(cc)
	t.Cleanup(func() { SetCommandContext(nil) })

	// Reset flag values changed by earlier executions; the package-level
	// command tree would otherwise leak flag state between tests.
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			}
		})
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// withMockConfirm replaces the confirmation prompt and restores on cleanup.
func withMockConfirm(t *testing.T, confirm bool) {
	t.Helper()
	orig := promptConfirmFn
	t.Cleanup(func() { promptConfirmFn = orig })
	promptConfirmFn = func() bool { return confirm }
}

// rejectingProvider fails account requests like a declined wallet prompt.
func rejectingProvider() *stubProvider {
	p := newStubProvider()
	p.requestErr = nebulaerr.ErrUserRejected
	return p
}
