// Package provider isolates all contact with the external wallet provider
// behind a narrow interface. Raw provider error shapes never cross this
// boundary; they are normalized to the structured errors in pkg/errors.
package provider

import (
	"context"
	"math/big"

	"github.com/nebulaai/nebula/internal/network"
)

// EventKind identifies a provider-originated event.
type EventKind string

// Provider event kinds, mirroring the conventional wallet provider events.
const (
	EventAccountsChanged EventKind = "accountsChanged"
	EventChainChanged    EventKind = "chainChanged"
	EventConnect         EventKind = "connect"
	EventDisconnect      EventKind = "disconnect"
)

// Event is a provider-originated notification.
type Event struct {
	Kind EventKind

	// Accounts is populated for AccountsChanged. An empty slice means the
	// wallet revoked authorization for this client.
	Accounts []string

	// ChainID is populated for ChainChanged.
	ChainID string

	// Err is populated for Disconnect with the provider's reason.
	Err error
}

// Handler receives provider events. Handlers for one subscriber are invoked
// sequentially in arrival order.
type Handler func(Event)

// SubscriptionID identifies a registered handler for removal.
type SubscriptionID uint64

// Receipt is the provider-reported confirmation record for a transaction.
// Its absence (nil) means the transaction is still pending.
type Receipt struct {
	TransactionHash string   `json:"transactionHash"`
	BlockNumber     *big.Int `json:"-"`
	Status          uint64   `json:"-"`
	GasUsed         uint64   `json:"-"`
}

// Succeeded returns true if the receipt reports success.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == 1
}

// Provider is the narrow wallet provider contract consumed by the session
// layer. All methods are safe for concurrent use.
type Provider interface {
	// AuthorizedAccounts returns accounts already authorized for this
	// client, empty if none. Never prompts.
	AuthorizedAccounts(ctx context.Context) ([]string, error)

	// RequestAccounts returns authorized accounts, prompting the user if
	// necessary. Fails with ErrProviderUnavailable when no provider is
	// reachable, or ErrUserRejected when the human declines.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID returns the active hex chain id.
	ChainID(ctx context.Context) (string, error)

	// Balance returns the native balance of an address in smallest units.
	Balance(ctx context.Context, address string) (*big.Int, error)

	// SwitchChain asks the wallet to switch the active chain. Returns
	// ErrChainNotRegistered when the target chain is unknown to the wallet
	// (the add-chain flow applies).
	SwitchChain(ctx context.Context, chainID string) error

	// AddChain registers a chain with the wallet using registry metadata.
	AddChain(ctx context.Context, info network.ChainInfo) error

	// SendTransfer submits a native-currency transfer and returns its
	// transaction hash. Fails with ErrUserRejected or ErrTxFailed.
	SendTransfer(ctx context.Context, from, to string, amountWei *big.Int) (string, error)

	// TransactionReceipt returns the receipt for a hash, or nil while the
	// transaction is pending.
	TransactionReceipt(ctx context.Context, hash string) (*Receipt, error)

	// Subscribe registers a handler for an event kind.
	Subscribe(kind EventKind, h Handler) SubscriptionID

	// Unsubscribe removes a previously registered handler.
	Unsubscribe(id SubscriptionID)

	// Close releases provider resources and stops event delivery.
	Close()
}
