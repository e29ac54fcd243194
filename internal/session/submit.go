package session

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nebulaai/nebula/internal/metrics"
	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/provider"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// Submit defaults, matching the confirmation cadence of the checkout flow.
const (
	DefaultReceiptPollInterval = time.Second
	DefaultReceiptMaxAttempts  = 30
)

// SubmitOptions tunes receipt polling. Zero values select defaults.
type SubmitOptions struct {
	PollInterval time.Duration
	MaxAttempts  int
}

// SubmitResult is the outcome of a confirmed native-currency transfer.
type SubmitResult struct {
	TransactionHash string
	Receipt         *provider.Receipt
}

// Submit sends a native-currency transfer from the connected account and
// waits for its receipt. Amount is a human-readable decimal string.
//
// The pending transaction hash is recorded on the session only after the
// wallet accepts the transaction, so a rejected prompt leaves no trace.
// One transaction may be in flight at a time: the submit slot is reserved
// under the lock before the wallet is asked, so a second concurrent Submit
// fails fast instead of issuing a duplicate transfer. When polling
// exhausts its attempts the outcome is indeterminate: the hash stays
// pending on the session and ErrTxTimeout is returned.
func (c *Controller) Submit(ctx context.Context, to, amount string, opts SubmitOptions) (*SubmitResult, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultReceiptPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultReceiptMaxAttempts
	}

	c.mu.Lock()
	if c.sess.Status != StatusConnected {
		c.mu.Unlock()
		metrics.Global.RecordSessionOp(nebulaerr.ErrNotConnected)
		return nil, nebulaerr.ErrNotConnected
	}
	if c.submitting || c.sess.PendingTxHash != "" {
		pending := c.sess.PendingTxHash
		c.mu.Unlock()
		err := nebulaerr.Wrap(nebulaerr.ErrTxPending, "another transfer is already in flight")
		if pending != "" {
			err = nebulaerr.WithDetails(
				nebulaerr.Wrap(nebulaerr.ErrTxPending, "transaction %s is awaiting confirmation", pending),
				map[string]string{"pending_tx_hash": pending},
			)
		}
		metrics.Global.RecordSessionOp(err)
		return nil, err
	}
	c.submitting = true
	tag := readTag{epoch: c.epoch, account: c.sess.Account, chainID: c.sess.ChainID}
	c.mu.Unlock()

	// The slot is released once the outcome is on the session record: a
	// recorded pending hash gates further Submits, a rejection leaves the
	// session clean for the next attempt.
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if !common.IsHexAddress(to) {
		err := nebulaerr.Wrap(nebulaerr.ErrInvalidAddress, "invalid recipient address %q", to)
		metrics.Global.RecordSessionOp(err)
		return nil, err
	}

	wei, err := network.ParseDecimalAmount(amount)
	if err != nil {
		metrics.Global.RecordSessionOp(err)
		return nil, err
	}

	hash, err := c.provider.SendTransfer(ctx, tag.account, to, wei)
	if err != nil {
		// Rejection or submission failure: nothing was accepted, so the
		// session carries no pending hash.
		c.logger.Error("session: transfer submission failed: %v", err)
		metrics.Global.RecordSessionOp(err)
		return nil, err
	}

	c.logger.Debug("session: transaction %s accepted, awaiting receipt", hash)
	c.commitRead(tag, true, func(s *Session) {
		s.PendingTxHash = hash
	})

	receipt, err := c.awaitReceipt(ctx, hash, opts)
	if err != nil {
		metrics.Global.RecordSessionOp(err)
		return &SubmitResult{TransactionHash: hash}, err
	}

	c.commitRead(tag, true, func(s *Session) {
		s.PendingTxHash = ""
	})

	if !receipt.Succeeded() {
		err = nebulaerr.WithDetails(
			nebulaerr.Wrap(nebulaerr.ErrTxFailed, "transaction %s reverted", hash),
			map[string]string{"tx_hash": hash},
		)
		metrics.Global.RecordSessionOp(err)
		return &SubmitResult{TransactionHash: hash, Receipt: receipt}, err
	}

	// The transfer changed the balance; refresh best-effort.
	_, _ = c.refreshBalance(ctx, tag)

	metrics.Global.RecordSessionOp(nil)
	return &SubmitResult{TransactionHash: hash, Receipt: receipt}, nil
}

// awaitReceipt polls for a receipt at a fixed cadence. Exhausting the
// attempts means the transaction outcome is unknown, not failed.
func (c *Controller) awaitReceipt(ctx context.Context, hash string, opts SubmitOptions) (*provider.Receipt, error) {
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, nebulaerr.Wrap(nebulaerr.ErrTxTimeout, "receipt wait interrupted: %v", ctx.Err())
		case <-ticker.C:
		}

		receipt, err := c.provider.TransactionReceipt(ctx, hash)
		if err != nil {
			c.logger.Error("session: receipt poll failed: %v", err)
			continue
		}
		if receipt != nil {
			return receipt, nil
		}
	}

	return nil, nebulaerr.WithDetails(
		nebulaerr.Wrap(nebulaerr.ErrTxTimeout, "no receipt for %s after %d attempts", hash, opts.MaxAttempts),
		map[string]string{"tx_hash": hash},
	)
}

// ResolvePendingTx checks once whether the session's pending transaction
// has confirmed and clears it if so. It is the follow-up for a Submit that
// timed out.
func (c *Controller) ResolvePendingTx(ctx context.Context) (*provider.Receipt, error) {
	c.mu.Lock()
	if c.sess.Status != StatusConnected {
		c.mu.Unlock()
		return nil, nebulaerr.ErrNotConnected
	}
	hash := c.sess.PendingTxHash
	tag := readTag{epoch: c.epoch, account: c.sess.Account, chainID: c.sess.ChainID}
	c.mu.Unlock()

	if hash == "" {
		return nil, nil
	}

	receipt, err := c.provider.TransactionReceipt(ctx, hash)
	if err != nil || receipt == nil {
		return nil, err
	}

	c.commitRead(tag, true, func(s *Session) {
		s.PendingTxHash = ""
	})
	_, _ = c.refreshBalance(ctx, tag)
	return receipt, nil
}
