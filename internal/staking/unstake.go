package staking

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultCooldown is how long the unstake cooldown runs.
const DefaultCooldown = 5 * time.Second

// cooldownSteps is the progress resolution of the cooldown.
const cooldownSteps = 100

// Unstake is an in-flight unstake cooldown. Progress advances from 0 to
// 100 over the cooldown duration; Wait blocks until release.
type Unstake struct {
	progress atomic.Int32
	done     chan struct{}
}

// BeginUnstake starts an unstake cooldown. A non-positive duration selects
// DefaultCooldown.
func BeginUnstake(duration time.Duration) *Unstake {
	if duration <= 0 {
		duration = DefaultCooldown
	}

	u := &Unstake{done: make(chan struct{})}
	go u.run(duration)
	return u
}

func (u *Unstake) run(duration time.Duration) {
	defer close(u.done)

	step := duration / cooldownSteps
	if step <= 0 {
		// Durations under 100ns would make the ticker panic.
		step = time.Nanosecond
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for step := 1; step <= cooldownSteps; step++ {
		<-ticker.C
		u.progress.Store(int32(step))
	}
}

// Progress reports cooldown completion as a 0-100 percentage.
func (u *Unstake) Progress() int {
	return int(u.progress.Load())
}

// Done reports whether the cooldown has released.
func (u *Unstake) Done() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the cooldown releases or ctx expires.
func (u *Unstake) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-u.done:
		return nil
	}
}
