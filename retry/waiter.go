// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"
)

// A Waiter specifies how long to wait before retrying a failed attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines. The listeners installed by Install do not call the Waiter
// if the Decider returned false.
type Waiter interface {
	Wait(a Attempt) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as waiters.
type WaiterFunc func(a Attempt) time.Duration

// Wait returns f(a).
func (f WaiterFunc) Wait(a Attempt) time.Duration {
	return f(a)
}

// MaxRetryAfter is the longest server-requested delay that
// DefaultPolicy is willing to wait.
const MaxRetryAfter = 10 * time.Second

// DefaultWaiter is the default retry wait policy. It waits as long as
// the server asks through Retry-After, up to MaxRetryAfter. Otherwise
// it backs off exponentially, with full jitter, from 50 milliseconds
// up to 1 second.
var DefaultWaiter = ServerDelay(
	NewExpWaiter(50*time.Millisecond, 1*time.Second, rand.NewSource(time.Now().UnixNano())),
	MaxRetryAfter,
)

// NewFixedWaiter constructs a Waiter that always returns d.
func NewFixedWaiter(d time.Duration) Waiter {
	return WaiterFunc(func(Attempt) time.Duration { return d })
}

// NewExpWaiter constructs a Waiter whose ceiling starts at base and
// doubles with every retry until it reaches max. Base must be positive
// and max must be at least base.
//
// If src is nil the Waiter returns the ceiling itself. Otherwise it
// returns a duration drawn uniformly from [0, ceiling) using src, which
// spreads out clients retrying against the same overloaded server. The
// Waiter serializes its use of src.
func NewExpWaiter(base, max time.Duration, src rand.Source) Waiter {
	if base < 1 {
		panic("httpkit/retry: base must be positive")
	}
	if max < base {
		panic("httpkit/retry: max must be at least base")
	}
	w := &expWaiter{base: base, max: max}
	if src != nil {
		w.rand = rand.New(src)
	}
	return w
}

type expWaiter struct {
	base, max time.Duration
	mu        sync.Mutex
	rand      *rand.Rand
}

func (w *expWaiter) Wait(a Attempt) time.Duration {
	ceiling := w.ceiling(a.Count)
	if w.rand == nil {
		return ceiling
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Duration(w.rand.Int63n(int64(ceiling)))
}

func (w *expWaiter) ceiling(count int) time.Duration {
	d := w.base
	for i := 0; i < count; i++ {
		if d > w.max/2 {
			return w.max
		}
		d *= 2
	}
	return d
}

// ServerDelay wraps w so that an attempt whose response carried a
// Retry-After header waits for the delay the server asked for, capped
// at limit. Attempts without Retry-After are passed to w.
//
// Combine ServerDelay with RetryAfterWithin to give up instead of
// waiting less than the server asked.
func ServerDelay(w Waiter, limit time.Duration) Waiter {
	if w == nil {
		panic("httpkit/retry: nil waiter")
	}
	return WaiterFunc(func(a Attempt) time.Duration {
		switch {
		case a.RetryAfter <= 0:
			return w.Wait(a)
		case a.RetryAfter > limit:
			return limit
		default:
			return a.RetryAfter
		}
	})
}
