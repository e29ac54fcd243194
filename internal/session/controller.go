package session

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/nebulaai/nebula/internal/cache"
	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/metrics"
	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/provider"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// eventOpTimeout bounds provider reads triggered by provider events, which
// run on the event dispatch goroutine and have no caller context.
const eventOpTimeout = 10 * time.Second

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Balances receives last-known balances on every successful read.
	Balances *cache.BalanceCache

	// Logger receives debug and error lines. Defaults to a null logger.
	Logger *config.Logger

	// PreferredChainID is the chain steered to when the wallet lands on an
	// unsupported network. Defaults to config.DefaultPreferredChainID.
	PreferredChainID string
}

// Controller owns the wallet session record and serializes every mutation.
// All exported methods are safe for concurrent use. Listeners run while the
// controller's notification lock is held and must not call mutating
// controller methods synchronously.
type Controller struct {
	provider       provider.Provider
	balances       *cache.BalanceCache
	logger         *config.Logger
	preferredChain string

	// notifyMu serializes transition commit plus listener delivery so
	// observers see snapshots in commit order.
	notifyMu sync.Mutex

	mu           sync.Mutex
	sess         Session
	epoch        uint64 // bumped on disconnect, invalidates in-flight reads
	submitting   bool   // reserved submit slot, held until the outcome is recorded
	pending      *connectOp
	listeners    map[ListenerID]Listener
	order        []ListenerID
	nextListener ListenerID
	subs         []provider.SubscriptionID
}

// connectOp carries the shared result of a connect attempt so concurrent
// Connect calls join the same wallet prompt instead of stacking prompts.
type connectOp struct {
	done chan struct{}
	snap Session
	err  error
}

// readTag captures the session identity when a provider read is issued.
// Results are committed only if the identity still matches; anything else
// is a stale read and is discarded.
type readTag struct {
	epoch   uint64
	account string
	chainID string
}

// NewController creates a session controller over a wallet provider.
// The controller does not own the provider; the caller closes it.
func NewController(p provider.Provider, opts Options) *Controller {
	if opts.Balances == nil {
		opts.Balances = cache.New()
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}
	if opts.PreferredChainID == "" {
		opts.PreferredChainID = config.DefaultPreferredChainID
	}

	return &Controller{
		provider:       p,
		balances:       opts.Balances,
		logger:         opts.Logger,
		preferredChain: network.Normalize(opts.PreferredChainID),
		sess:           Session{Status: StatusDisconnected},
		listeners:      make(map[ListenerID]Listener),
	}
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.clone()
}

// OnChange registers a listener for committed session transitions and
// returns a token for Off.
func (c *Controller) OnChange(l Listener) ListenerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextListener++
	id := c.nextListener
	c.listeners[id] = l
	c.order = append(c.order, id)
	return id
}

// Off removes a listener registered with OnChange.
func (c *Controller) Off(id ListenerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.listeners, id)
	for i, lid := range c.order {
		if lid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Resume adopts an existing wallet authorization without prompting. It is
// intended for process start: if the wallet already lists authorized
// accounts the session becomes connected, otherwise it stays disconnected.
func (c *Controller) Resume(ctx context.Context) (Session, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	accounts, err := c.provider.AuthorizedAccounts(ctx)
	if err != nil {
		metrics.Global.RecordSessionOp(err)
		return c.Snapshot(), err
	}
	if len(accounts) == 0 {
		metrics.Global.RecordSessionOp(nil)
		return c.Snapshot(), nil
	}

	c.logger.Debug("session: resuming existing authorization for %s", accounts[0])

	tag, ok := c.adoptAccount(accounts[0], epoch)
	if !ok {
		// A disconnect landed while the wallet was answering.
		metrics.Global.RecordSessionOp(nil)
		return c.Snapshot(), nil
	}
	snap, err := c.refreshFrom(ctx, tag)
	metrics.Global.RecordSessionOp(err)
	return snap, err
}

// Connect establishes a wallet session, prompting the user if necessary.
// Calling Connect on a connected session returns the current snapshot
// without prompting again; calling it while another Connect is in flight
// joins that attempt and shares its result.
func (c *Controller) Connect(ctx context.Context) (Session, error) {
	c.mu.Lock()
	if c.sess.Status == StatusConnected {
		snap := c.sess.clone()
		c.mu.Unlock()
		metrics.Global.RecordSessionOp(nil)
		return snap, nil
	}
	if c.pending != nil {
		op := c.pending
		c.mu.Unlock()
		<-op.done
		return op.snap, op.err
	}

	op := &connectOp{done: make(chan struct{})}
	c.pending = op
	epoch := c.epoch
	c.mu.Unlock()

	snap, err := c.connect(ctx, epoch)
	metrics.Global.RecordSessionOp(err)

	c.mu.Lock()
	if c.pending == op {
		c.pending = nil
	}
	c.mu.Unlock()

	op.snap = snap
	op.err = err
	close(op.done)
	return snap, err
}

// connect runs a single connect attempt owned by one Connect caller.
func (c *Controller) connect(ctx context.Context, epoch uint64) (Session, error) {
	c.applyAt(epoch, func(s *Session) {
		s.Status = StatusConnecting
		s.LastError = ""
	})

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.logger.Error("session: connect failed: %v", err)
		snap, _ := c.applyAt(epoch, func(s *Session) {
			s.Status = StatusError
			s.LastError = err.Error()
		})
		return snap, err
	}
	if len(accounts) == 0 {
		err = nebulaerr.Wrap(nebulaerr.ErrUserRejected, "wallet returned no accounts")
		snap, _ := c.applyAt(epoch, func(s *Session) {
			s.Status = StatusError
			s.LastError = err.Error()
		})
		return snap, err
	}

	tag, ok := c.adoptAccount(accounts[0], epoch)
	if !ok {
		// A disconnect raced the wallet prompt; its teardown wins.
		return c.Snapshot(), nebulaerr.Wrap(nebulaerr.ErrNotConnected, "connect canceled by disconnect")
	}
	return c.refreshFrom(ctx, tag)
}

// adoptAccount commits the connected transition for an account and ensures
// provider event subscriptions are in place. The epoch must be the one
// captured before the wallet was consulted: a disconnect in between bumps
// it and the adoption is dropped instead of resurrecting the torn-down
// session. On success it returns the tag for follow-up reads.
func (c *Controller) adoptAccount(account string, epoch uint64) (readTag, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		metrics.Global.RecordStaleReadDiscarded()
		c.logger.Debug("session: dropped adoption of %s after disconnect", account)
		return readTag{}, false
	}
	c.sess.Status = StatusConnected
	c.sess.Account = account
	c.sess.BalanceWei = nil
	c.sess.Balance = ""
	c.sess.BalanceAge = 0
	c.ensureSubscribedLocked()
	tag := readTag{epoch: epoch, account: account}
	snap, listeners := c.snapshotForNotifyLocked()
	c.mu.Unlock()

	c.deliver(snap, listeners)
	return tag, true
}

// Disconnect tears the session down: provider subscriptions are removed,
// in-flight reads are invalidated and the record resets to its initial
// shape. It never fails and is safe to call repeatedly.
func (c *Controller) Disconnect() Session {
	return c.disconnect("")
}

func (c *Controller) disconnect(reason string) Session {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	alreadyDown := c.sess.Status == StatusDisconnected && len(c.subs) == 0 && reason == ""
	if alreadyDown {
		snap := c.sess.clone()
		c.mu.Unlock()
		return snap
	}

	subs := c.subs
	c.subs = nil
	c.epoch++
	c.sess = Session{Status: StatusDisconnected, LastError: reason}
	snap, listeners := c.snapshotForNotifyLocked()
	c.mu.Unlock()

	for _, id := range subs {
		c.provider.Unsubscribe(id)
	}
	c.logger.Debug("session: disconnected")

	c.deliver(snap, listeners)
	metrics.Global.RecordSessionOp(nil)
	return snap
}

// Close removes provider subscriptions without resetting session state.
// The provider itself belongs to the caller.
func (c *Controller) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, id := range subs {
		c.provider.Unsubscribe(id)
	}
}

// Refresh re-reads the active chain and balance from the provider. The
// session must be connected.
func (c *Controller) Refresh(ctx context.Context) (Session, error) {
	c.mu.Lock()
	if c.sess.Status != StatusConnected {
		c.mu.Unlock()
		metrics.Global.RecordSessionOp(nebulaerr.ErrNotConnected)
		return Session{}, nebulaerr.ErrNotConnected
	}
	tag := readTag{epoch: c.epoch, account: c.sess.Account}
	c.mu.Unlock()

	snap, err := c.refreshFrom(ctx, tag)
	metrics.Global.RecordSessionOp(err)
	return snap, err
}

// refreshFrom reads chain id then balance, committing each only while the
// tag still matches the live session.
func (c *Controller) refreshFrom(ctx context.Context, tag readTag) (Session, error) {
	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		c.logger.Error("session: chain id read failed: %v", err)
		snap, _ := c.commitRead(tag, false, func(s *Session) {
			s.LastError = err.Error()
		})
		return snap, err
	}

	chainID = network.Normalize(chainID)
	snap, ok := c.commitRead(tag, false, func(s *Session) {
		c.setChainLocked(s, chainID)
	})
	if !ok {
		return c.Snapshot(), nil
	}

	tag.chainID = chainID
	snap, err = c.refreshBalance(ctx, tag)
	if err != nil {
		return snap, err
	}

	return c.steerPreferredChain(ctx, tag)
}

// refreshBalance reads the native balance for the tagged account and chain.
// When the read fails the last-known cached value is served instead, with
// its age recorded on the snapshot, so a flaky bridge degrades to stale
// data rather than a blank display.
func (c *Controller) refreshBalance(ctx context.Context, tag readTag) (Session, error) {
	bal, err := c.provider.Balance(ctx, tag.account)
	if err != nil {
		c.logger.Error("session: balance read failed: %v", err)
		entry, cached, age := c.balances.Get(tag.chainID, tag.account)
		snap, _ := c.commitRead(tag, true, func(s *Session) {
			s.LastError = err.Error()
			if !cached {
				return
			}
			if wei, ok := new(big.Int).SetString(entry.Balance, 10); ok {
				s.BalanceWei = wei
				s.Balance = network.FormatDecimalAmount(wei)
				s.BalanceAge = age
			}
		})
		return snap, err
	}

	snap, ok := c.commitRead(tag, true, func(s *Session) {
		s.BalanceWei = bal
		s.Balance = network.FormatDecimalAmount(bal)
		s.BalanceAge = 0
	})
	if !ok {
		return c.Snapshot(), nil
	}

	c.balances.Set(cache.Entry{
		ChainID: tag.chainID,
		Address: tag.account,
		Balance: bal.String(),
		Symbol:  snap.Network.CurrencySymbol,
	})
	return snap, nil
}

// steerPreferredChain nudges the wallet toward the preferred chain when the
// session landed on an unsupported network. Failure to steer is a warning,
// never a connection failure.
func (c *Controller) steerPreferredChain(ctx context.Context, tag readTag) (Session, error) {
	c.mu.Lock()
	unsupported := c.sess.Status == StatusConnected &&
		c.epoch == tag.epoch && !c.sess.SupportedChain
	c.mu.Unlock()

	if !unsupported {
		return c.Snapshot(), nil
	}

	c.logger.Debug("session: unsupported chain, steering to %s", c.preferredChain)
	if err := c.switchProviderChain(ctx, c.preferredChain); err != nil {
		warn := "connected to an unsupported network: " + err.Error()
		snap, _ := c.commitRead(tag, false, func(s *Session) {
			s.LastError = warn
		})
		return snap, nil
	}

	tag.chainID = c.preferredChain
	if _, ok := c.commitRead(readTag{epoch: tag.epoch, account: tag.account}, false, func(s *Session) {
		c.setChainLocked(s, c.preferredChain)
	}); !ok {
		return c.Snapshot(), nil
	}
	return c.refreshBalance(ctx, tag)
}

// SwitchChain asks the wallet to activate a registry chain. When the wallet
// does not know the chain it is registered from registry metadata and the
// switch is retried once. The session chain only changes on success.
func (c *Controller) SwitchChain(ctx context.Context, chainID string) (Session, error) {
	c.mu.Lock()
	if c.sess.Status != StatusConnected {
		c.mu.Unlock()
		metrics.Global.RecordSessionOp(nebulaerr.ErrNotConnected)
		return Session{}, nebulaerr.ErrNotConnected
	}
	tag := readTag{epoch: c.epoch, account: c.sess.Account}
	c.mu.Unlock()

	chainID = network.Normalize(chainID)
	if !network.IsSupported(chainID) {
		err := nebulaerr.WithDetails(
			nebulaerr.Wrap(nebulaerr.ErrUnsupportedChain, "chain %s is not in the registry", chainID),
			map[string]string{"chain_id": chainID},
		)
		metrics.Global.RecordSessionOp(err)
		return c.Snapshot(), err
	}

	if err := c.switchProviderChain(ctx, chainID); err != nil {
		metrics.Global.RecordSessionOp(err)
		return c.Snapshot(), err
	}

	if _, ok := c.commitRead(tag, false, func(s *Session) {
		c.setChainLocked(s, chainID)
	}); !ok {
		return c.Snapshot(), nil
	}

	tag.chainID = chainID
	snap, err := c.refreshBalance(ctx, tag)
	metrics.Global.RecordSessionOp(err)
	return snap, err
}

// switchProviderChain performs the provider switch with the one-shot
// add-chain fallback for wallets that have not registered the chain.
func (c *Controller) switchProviderChain(ctx context.Context, chainID string) error {
	err := c.provider.SwitchChain(ctx, chainID)
	if err == nil {
		return nil
	}
	if !nebulaerr.Is(err, nebulaerr.ErrChainNotRegistered) {
		return err
	}

	info, ok := network.Lookup(chainID)
	if !ok {
		return nebulaerr.Wrap(nebulaerr.ErrUnsupportedChain, "no registry metadata for %s", chainID)
	}

	c.logger.Debug("session: registering chain %s with wallet", chainID)
	if err = c.provider.AddChain(ctx, info); err != nil {
		return err
	}
	return c.provider.SwitchChain(ctx, chainID)
}

// handleEvent is the single entry point for provider events. The provider
// dispatches from one goroutine, so handlers run serially in arrival order.
func (c *Controller) handleEvent(ev provider.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventOpTimeout)
	defer cancel()

	switch ev.Kind {
	case provider.EventAccountsChanged:
		c.handleAccountsChanged(ctx, ev.Accounts)
	case provider.EventChainChanged:
		c.handleChainChanged(ctx, ev.ChainID)
	case provider.EventConnect:
		c.apply(func(s *Session) {
			s.LastError = ""
		})
	case provider.EventDisconnect:
		reason := "provider disconnected"
		if ev.Err != nil {
			reason = ev.Err.Error()
		}
		c.disconnect(reason)
	}
}

func (c *Controller) handleAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) == 0 {
		c.logger.Debug("session: wallet revoked authorization")
		c.disconnect("")
		return
	}

	c.mu.Lock()
	same := c.sess.Status == StatusConnected && c.sess.Account == accounts[0]
	epoch := c.epoch
	c.mu.Unlock()
	if same {
		return
	}

	c.logger.Debug("session: active account changed to %s", accounts[0])
	tag, ok := c.adoptAccount(accounts[0], epoch)
	if !ok {
		return
	}
	_, _ = c.refreshFrom(ctx, tag)
}

func (c *Controller) handleChainChanged(ctx context.Context, chainID string) {
	chainID = network.Normalize(chainID)

	c.mu.Lock()
	if c.sess.Status != StatusConnected || c.sess.ChainID == chainID {
		c.mu.Unlock()
		return
	}
	tag := readTag{epoch: c.epoch, account: c.sess.Account, chainID: chainID}
	c.mu.Unlock()

	c.logger.Debug("session: chain changed to %s", chainID)
	if _, ok := c.commitRead(readTag{epoch: tag.epoch, account: tag.account}, false, func(s *Session) {
		c.setChainLocked(s, chainID)
	}); !ok {
		return
	}
	_, _ = c.refreshBalance(ctx, tag)
}

// setChainLocked updates the chain id plus its derived display fields and
// drops the balance, which belongs to the previous chain.
func (c *Controller) setChainLocked(s *Session, chainID string) {
	if s.ChainID != chainID {
		s.BalanceWei = nil
		s.Balance = ""
		s.BalanceAge = 0
	}
	s.ChainID = chainID
	s.Network = network.Display(chainID)
	s.SupportedChain = network.IsSupported(chainID)
}

// ensureSubscribedLocked registers the controller for provider events
// exactly once per connected period. Caller holds c.mu.
func (c *Controller) ensureSubscribedLocked() {
	if len(c.subs) > 0 {
		return
	}
	kinds := []provider.EventKind{
		provider.EventAccountsChanged,
		provider.EventChainChanged,
		provider.EventConnect,
		provider.EventDisconnect,
	}
	for _, kind := range kinds {
		c.subs = append(c.subs, c.provider.Subscribe(kind, c.handleEvent))
	}
}

// apply commits an unconditional transition and notifies listeners.
func (c *Controller) apply(mutate func(*Session)) Session {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	mutate(&c.sess)
	snap, listeners := c.snapshotForNotifyLocked()
	c.mu.Unlock()

	c.deliver(snap, listeners)
	return snap
}

// applyAt commits a transition unless a disconnect moved the epoch since
// the transition was planned.
func (c *Controller) applyAt(epoch uint64, mutate func(*Session)) (Session, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		snap := c.sess.clone()
		c.mu.Unlock()
		return snap, false
	}
	mutate(&c.sess)
	snap, listeners := c.snapshotForNotifyLocked()
	c.mu.Unlock()

	c.deliver(snap, listeners)
	return snap, true
}

// commitRead commits the result of a provider read if the session identity
// still matches the tag captured at issue time. Mismatches are discarded
// and counted; the caller keeps going with the live snapshot.
func (c *Controller) commitRead(tag readTag, requireChain bool, mutate func(*Session)) (Session, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	stale := c.epoch != tag.epoch ||
		c.sess.Status != StatusConnected ||
		c.sess.Account != tag.account ||
		(requireChain && c.sess.ChainID != tag.chainID)
	if stale {
		snap := c.sess.clone()
		c.mu.Unlock()
		metrics.Global.RecordStaleReadDiscarded()
		c.logger.Debug("session: discarded stale read for %s on %s", tag.account, tag.chainID)
		return snap, false
	}

	mutate(&c.sess)
	snap, listeners := c.snapshotForNotifyLocked()
	c.mu.Unlock()

	c.deliver(snap, listeners)
	return snap, true
}

// snapshotForNotifyLocked clones the session and the listener list in
// registration order. Caller holds c.mu.
func (c *Controller) snapshotForNotifyLocked() (Session, []Listener) {
	snap := c.sess.clone()
	listeners := make([]Listener, 0, len(c.order))
	for _, id := range c.order {
		if l, ok := c.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return snap, listeners
}

// deliver invokes listeners outside c.mu but under notifyMu, preserving
// commit order.
func (c *Controller) deliver(snap Session, listeners []Listener) {
	for _, l := range listeners {
		l(snap)
	}
}
