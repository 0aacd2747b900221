package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Budget tracks the remaining GitHub API quota and blocks callers until a
// request is safe to issue. It is fed by Observe, typically from a
// round-tripper that sees every API response (see NewClient).
type Budget struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	cooldown  time.Time
	probed    bool
	now       func() time.Time
	notifyCh  chan struct{}
}

func NewBudget() *Budget {
	return &Budget{
		// Conservative defaults until the first response is observed.
		remaining: 30,
		reset:     time.Now().Add(time.Minute),
		now:       time.Now,
		notifyCh:  make(chan struct{}),
	}
}

func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Wait blocks until one request may be issued, or until ctx is done.
// The only error it returns is ctx.Err().
func (b *Budget) Wait(ctx context.Context) error {
	if b == nil {
		return fmt.Errorf("Wait: nil Budget")
	}
	if b.now == nil || b.notifyCh == nil {
		return fmt.Errorf("Wait: uninitialized Budget (use NewBudget)")
	}

	for {
		b.mu.Lock()
		now := b.now()

		if now.Before(b.cooldown) {
			until := b.cooldown
			ch := b.notifyCh
			b.mu.Unlock()
			if err := b.sleep(ctx, until.Sub(now), ch); err != nil {
				return err
			}
			continue
		}

		if b.remaining > 0 {
			b.remaining--
			b.mu.Unlock()
			return nil
		}

		// Quota exhausted. Once the reset time has passed, allow exactly
		// one probe request so the refreshed quota can be observed; any
		// further callers block until Observe reports new headroom.
		if !now.Before(b.reset) {
			if !b.probed {
				b.probed = true
				b.mu.Unlock()
				return nil
			}
			ch := b.notifyCh
			b.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
				continue
			}
		}

		reset := b.reset
		ch := b.notifyCh
		b.mu.Unlock()
		if err := b.sleep(ctx, reset.Sub(now), ch); err != nil {
			return err
		}
	}
}

// sleep waits for d, an early notify, or cancellation.
func (b *Budget) sleep(ctx context.Context, d time.Duration, notify <-chan struct{}) error {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-notify:
		return nil
	case <-timer.C:
		return nil
	}
}

// Observe updates the budget from rate-limit headers on an API response.
func (b *Budget) Observe(resp *http.Response) {
	if b == nil || resp == nil || b.now == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false

	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			until := b.now().Add(time.Duration(seconds) * time.Second)
			if until.After(b.cooldown) {
				b.cooldown = until
				changed = true
			}
		}
	}

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil && val >= 0 && b.remaining != val {
			b.remaining = val
			changed = true
		}
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil && val > 0 {
			newReset := time.Unix(val, 0)
			if !b.reset.Equal(newReset) {
				b.reset = newReset
				changed = true
			}
		}
	}

	if changed {
		b.probed = false
		close(b.notifyCh)
		b.notifyCh = make(chan struct{})
	}
}
