// Package session implements the wallet session state machine. A single
// Controller owns the mutable session record; every mutation happens under
// its lock and observers only ever see immutable snapshots.
package session

import (
	"math/big"
	"time"

	"github.com/nebulaai/nebula/internal/network"
)

// Status is the connection lifecycle phase of a session.
type Status string

// Session lifecycle statuses.
const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Session is an immutable point-in-time snapshot of the wallet session.
// Snapshots are safe to retain and read from any goroutine.
type Session struct {
	Status Status `json:"status"`

	// Account is the active wallet address, empty unless connected.
	Account string `json:"account,omitempty"`

	// BalanceWei is the native balance in smallest units, nil when unknown.
	BalanceWei *big.Int `json:"-"`

	// Balance is the human-readable native balance, empty when unknown.
	Balance string `json:"balance,omitempty"`

	// BalanceAge is how old Balance is when it was served from the
	// last-known cache instead of a live read. Zero for live values.
	BalanceAge time.Duration `json:"balance_age,omitempty"`

	// ChainID is the active hex chain id, empty when unknown.
	ChainID string `json:"chain_id,omitempty"`

	// Network is display metadata for ChainID. Unsupported chains carry
	// the Unknown Network placeholder.
	Network network.ChainInfo `json:"network"`

	// SupportedChain reports whether ChainID is in the registry.
	SupportedChain bool `json:"supported_chain"`

	// PendingTxHash is the hash of the single in-flight transaction,
	// empty when none.
	PendingTxHash string `json:"pending_tx_hash,omitempty"`

	// LastError is the most recent user-facing failure or warning. It is
	// informational and does not imply the Error status.
	LastError string `json:"last_error,omitempty"`
}

// Connected reports whether the session holds an authorized account.
func (s Session) Connected() bool {
	return s.Status == StatusConnected
}

// HasPendingTx reports whether a transaction is awaiting confirmation.
func (s Session) HasPendingTx() bool {
	return s.PendingTxHash != ""
}

// clone returns a deep copy so callers can never alias controller state.
func (s Session) clone() Session {
	out := s
	if s.BalanceWei != nil {
		out.BalanceWei = new(big.Int).Set(s.BalanceWei)
	}
	return out
}

// Listener observes committed session transitions. Listeners are invoked
// synchronously, one transition at a time, in registration order.
type Listener func(Session)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64
