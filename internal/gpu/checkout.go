package gpu

import (
	"context"

	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/provider"
	"github.com/nebulaai/nebula/internal/session"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// Checkout pays for GPU rentals through the wallet session. The rental
// cost converts to ETH at the fixed credit rate and goes to the
// marketplace payment address as a plain native transfer.
type Checkout struct {
	ctrl           *session.Controller
	paymentAddress string
	logger         *config.Logger
}

// CheckoutOptions configures a Checkout. Zero values select defaults.
type CheckoutOptions struct {
	PaymentAddress string
	Logger         *config.Logger
}

// NewCheckout creates a checkout bound to a session controller.
func NewCheckout(ctrl *session.Controller, opts CheckoutOptions) *Checkout {
	if opts.PaymentAddress == "" {
		opts.PaymentAddress = config.DefaultPaymentAddress
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}
	return &Checkout{
		ctrl:           ctrl,
		paymentAddress: opts.PaymentAddress,
		logger:         opts.Logger,
	}
}

// Rental is a paid rental: the quote plus its payment transaction.
type Rental struct {
	Quote           *Quote            `json:"quote"`
	TransactionHash string            `json:"transaction_hash"`
	Receipt         *provider.Receipt `json:"-"`
}

// Rent prices a rental and submits its payment, waiting for confirmation.
// The session must be connected; payment failures carry the quote's hash
// forward so the caller can resolve an indeterminate outcome later.
func (c *Checkout) Rent(ctx context.Context, modelID string, hours int, opts session.SubmitOptions) (*Rental, error) {
	quote, err := NewQuote(modelID, hours)
	if err != nil {
		return nil, err
	}

	snap := c.ctrl.Snapshot()
	if !snap.Connected() {
		return nil, nebulaerr.WithSuggestion(
			nebulaerr.ErrNotConnected,
			"Run \"nebula connect\" before renting",
		)
	}

	c.logger.Debug("checkout: renting %s for %dh, paying %s ETH", quote.Model.ID, hours, quote.CostETH)

	result, err := c.ctrl.Submit(ctx, c.paymentAddress, quote.CostETH, opts)
	if err != nil {
		if result != nil && result.TransactionHash != "" {
			return &Rental{Quote: quote, TransactionHash: result.TransactionHash}, err
		}
		return nil, err
	}

	return &Rental{
		Quote:           quote,
		TransactionHash: result.TransactionHash,
		Receipt:         result.Receipt,
	}, nil
}
