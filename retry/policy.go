// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/message"
)

// A Policy controls if and how retries are done. After every failed
// attempt a Policy decides whether a retry should be done and, if so,
// how long the wait period should be before retrying.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
//
// A Policy is composed of the Decider and Waiter interfaces. While you
// can implement Policy yourself, it is usually simpler to use one of
// the built-in retry policies, DefaultPolicy or Never, or to construct
// your policy using NewPolicy with existing Decider and Waiter
// implementations.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries.
var Never Policy = policy{Times(0), DefaultWaiter}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("httpkit/retry: nil decider")
	}
	if w == nil {
		panic("httpkit/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(a Attempt) bool {
	return p.decider.Decide(a)
}

func (p policy) Wait(a Attempt) time.Duration {
	return p.waiter.Wait(a)
}

type startKey struct{}

// Install adds listeners to reg which apply p to every failed attempt.
// If p is nil, DefaultPolicy is used.
//
// When p decides to retry, the error or exception listener sleeps for
// the duration given by p and then requests the retry. If the request
// context ends during the sleep, no retry is requested. The listeners
// never reset a retry requested by an earlier listener.
//
// The Retry-After header of an error response, given either in seconds
// or as an HTTP date, is passed to p as Attempt.RetryAfter.
//
// Install also adds a beforeRequest listener which records in the
// request context when the request was first sent, so that deciders
// such as Before can see the elapsed time.
func Install(reg *hook.Registry, p Policy) {
	if p == nil {
		p = DefaultPolicy
	}

	reg.On(hook.BeforeRequest, hook.BeforeRequestFunc(func(a *hook.BeforeRequestArgs) {
		ctx := a.Request.Context()
		if _, ok := ctx.Value(startKey{}).(time.Time); !ok {
			a.Request = a.Request.WithContext(context.WithValue(ctx, startKey{}, time.Now()))
		}
	}))
	reg.On(hook.Error, hook.ErrorFunc(func(a *hook.ErrorArgs) {
		decide(p, a.Request, Attempt{
			Count:      a.Attempt,
			StatusCode: a.Response.StatusCode(),
			RetryAfter: retryAfter(a.Response, time.Now()),
		}, a.Retry)
	}))
	reg.On(hook.Exception, hook.ExceptionFunc(func(a *hook.ExceptionArgs) {
		decide(p, a.Request, Attempt{Count: a.Attempt, Err: a.Err}, a.Retry)
	}))
}

func decide(p Policy, r *message.Request, a Attempt, d *hook.Decision) {
	ctx := r.Context()
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		a.Elapsed = time.Since(start)
	}
	if !p.Decide(a) {
		return
	}

	timer := time.NewTimer(p.Wait(a))
	defer timer.Stop()
	select {
	case <-timer.C:
		d.Set(true)
	case <-ctx.Done():
	}
}

// maxRetryAfterSeconds keeps absurd Retry-After values from overflowing
// a time.Duration.
const maxRetryAfterSeconds = 1 << 32

func retryAfter(resp *message.Response, now time.Time) time.Duration {
	v := strings.TrimSpace(resp.Header("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		if secs > maxRetryAfterSeconds {
			secs = maxRetryAfterSeconds
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
