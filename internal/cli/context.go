package cli

import (
	"github.com/nebulaai/nebula/internal/cache"
	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/gpu"
	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/provider"
	"github.com/nebulaai/nebula/internal/session"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config     *config.Config
	Logger     *config.Logger
	Formatter  *output.Formatter
	Provider   provider.Provider
	Controller *session.Controller
	Balances   *cache.BalanceCache
	Checkout   *gpu.Checkout
	Lending    *gpu.LendingService

	ownsProvider bool
}

// NewCommandContext wires the full dependency graph from configuration:
// the bridge provider, session controller, balance cache and marketplace
// services.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	balances := cache.New()

	var p provider.Provider
	if cfg.Provider.BridgeURL == "" {
		p = provider.Unavailable()
	} else {
		p = provider.NewBridge(cfg.Provider.BridgeURL, provider.BridgeOptions{
			PollInterval: cfg.EventPollInterval(),
			Limiter:      network.NewRateLimiter(cfg.Provider.RatePerSecond, cfg.Provider.RateBurst),
			Logger:       logger,
		})
	}

	ctrl := session.NewController(p, session.Options{
		Balances:         balances,
		Logger:           logger,
		PreferredChainID: cfg.Network.PreferredChainID,
	})

	return &CommandContext{
		Config:     cfg,
		Logger:     logger,
		Formatter:  formatter,
		Provider:   p,
		Controller: ctrl,
		Balances:   balances,
		Checkout: gpu.NewCheckout(ctrl, gpu.CheckoutOptions{
			PaymentAddress: cfg.Checkout.PaymentAddress,
			Logger:         logger,
		}),
		Lending:      gpu.NewLendingService(gpu.LendingOptions{Logger: logger}),
		ownsProvider: true,
	}
}

// SetCommandContext replaces the global command context. Intended for tests.
func SetCommandContext(ctx *CommandContext) {
	cmdCtx = ctx
}

// Close releases the context's resources.
func (c *CommandContext) Close() {
	if c.Controller != nil {
		c.Controller.Close()
	}
	if c.ownsProvider && c.Provider != nil {
		c.Provider.Close()
	}
}
