// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpkit/transient"
)

// An Attempt describes a failed attempt, as seen by the error and
// exception hooks, for the purpose of deciding whether to retry it.
type Attempt struct {
	// Count is the zero-based attempt counter of the request.
	Count int
	// StatusCode is the HTTP status code of the response, or zero if
	// the attempt failed at the transport level.
	StatusCode int
	// Err is the transport error, or nil if a response was received.
	Err error
	// Elapsed is the time since the request was first sent, if known.
	Elapsed time.Duration
	// RetryAfter is the delay the server asked for in the Retry-After
	// header of the response, or zero if there was none.
	RetryAfter time.Duration
}

// A Decider reports whether a failed attempt should be retried. It may
// be called from several goroutines at once.
//
// The built-in deciders are DeciderFuncs, so they combine with And and
// Or.
type Decider interface {
	Decide(a Attempt) bool
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(a Attempt) bool

// DefaultTimes is the number of times DefaultPolicy will retry.
const DefaultTimes = 5

// DefaultDecider allows up to DefaultTimes retries of attempts that
// failed with a transient error or with status 429, 502, 503 or 504.
// It gives up if the server asks to be left alone for longer than
// MaxRetryAfter.
var DefaultDecider = Times(DefaultTimes).
	And(StatusCode(429, 502, 503, 504).Or(TransientErr)).
	And(RetryAfterWithin(MaxRetryAfter))

// TransientErr allows retries of transport errors which
// transient.Categorize considers transient. It never retries an attempt
// that got a response.
var TransientErr DeciderFunc = transientErr

// Decide returns f(a).
func (f DeciderFunc) Decide(a Attempt) bool {
	return f(a)
}

// And returns a decider that retries only when both f and g do. g is
// not called when f refuses.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(a Attempt) bool {
		return f(a) && g(a)
	}
}

// Or returns a decider that retries when f or g does. g is not called
// when f agrees.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(a Attempt) bool {
		return f(a) || g(a)
	}
}

// Times allows at most n retries of a request.
func Times(n int) DeciderFunc {
	return func(a Attempt) bool {
		return a.Count < n
	}
}

// Before allows retries while less than d has passed since the request
// was first sent. Elapsed time is only known to policies added with
// Install.
func Before(d time.Duration) DeciderFunc {
	return func(a Attempt) bool {
		return a.Elapsed < d
	}
}

// StatusCode allows retries of responses with any of the given status
// codes.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(a Attempt) bool {
		for _, s := range ss2 {
			if a.StatusCode == s {
				return true
			}
		}
		return false
	}
}

// RetryAfterWithin constructs a retry decider which refuses to retry
// an attempt whose response asked, through Retry-After, for a delay
// longer than d. Attempts without Retry-After are allowed.
func RetryAfterWithin(d time.Duration) DeciderFunc {
	return func(a Attempt) bool {
		return a.RetryAfter <= d
	}
}

func transientErr(a Attempt) bool {
	return transient.Categorize(a.Err) != transient.Not
}
