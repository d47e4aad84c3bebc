package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RequestBudget paces API calls against GitHub's advertised rate limit.
// Concurrent checks share one budget per client.
type RequestBudget struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	cooldown  time.Time
	probed    bool
	now       func() time.Time
	changed   chan struct{}
}

// unauthenticatedLimit is GitHub's hourly allowance without a token.
const unauthenticatedLimit = 60

func NewRequestBudget() *RequestBudget {
	return &RequestBudget{
		remaining: unauthenticatedLimit,
		reset:     time.Now().Add(time.Hour),
		now:       time.Now,
		changed:   make(chan struct{}),
	}
}

func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Acquire blocks until one request may be made or ctx is done.
func (b *RequestBudget) Acquire(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("acquire: nil context")
	}
	for {
		b.mu.Lock()
		now := b.now()
		var until time.Time
		switch {
		case now.Before(b.cooldown):
			until = b.cooldown
		case b.remaining > 0:
			b.remaining--
			b.mu.Unlock()
			return nil
		case !now.Before(b.reset):
			// The window has rolled over but no response has told us the new
			// allowance yet: let a single request through to find out.
			if !b.probed {
				b.probed = true
				b.mu.Unlock()
				return nil
			}
		default:
			until = b.reset
		}
		ch := b.changed
		b.mu.Unlock()

		if err := b.wait(ctx, ch, until.Sub(now)); err != nil {
			return err
		}
	}
}

// wait returns when ch closes, d elapses (if positive) or ctx ends.
func (b *RequestBudget) wait(ctx context.Context, ch <-chan struct{}, d time.Duration) error {
	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
	case <-timeout:
	}
	return nil
}

// UpdateFromResponse reads the rate limit headers of resp.
func (b *RequestBudget) UpdateFromResponse(resp *http.Response) {
	if b == nil || resp == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
		if until := b.now().Add(time.Duration(v) * time.Second); until.After(b.cooldown) {
			b.cooldown = until
			changed = true
		}
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil && v >= 0 && v != b.remaining {
		b.remaining = v
		changed = true
	}
	if v, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil && v > 0 {
		if reset := time.Unix(v, 0); !reset.Equal(b.reset) {
			b.reset = reset
			changed = true
		}
	}
	if changed {
		b.probed = false
		close(b.changed)
		b.changed = make(chan struct{})
	}
}
