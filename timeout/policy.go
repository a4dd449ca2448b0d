// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import "time"

// Attempt describes the state of a request's execution just before
// its next attempt is sent.
type Attempt struct {
	// Count is the zero-based index of the attempt about to be sent.
	// Redirects do not count as attempts.
	Count int
	// Timeouts is the number of earlier attempts which timed out.
	Timeouts int
	// TimedOut is true if the immediately preceding attempt timed out.
	TimedOut bool
}

// A Policy defines a timeout policy which may be plugged into an
// httpkit.Client to direct how to set the timeout for the initial
// attempt of a request, as well as for any retries and redirects.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next attempt.
	Timeout(a Attempt) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 30 seconds on each attempt.
var DefaultPolicy Policy = Fixed(30 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Parameter usual is the timeout for an initial attempt and for any
// retry where the immediately preceding attempt did not time out.
//
// Parameter after contains timeout values the policy will return if
// the previous attempt timed out. If this was the first timeout of the
// execution, after[0] is returned; if the second, after[1], and so on.
// If more attempts have timed out than after has elements, then the
// last element of after is returned.
//
// Consider the following timeout policy:
//
// 	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p uses 200 milliseconds as the usual timeout, 1 second
// right after the first timeout, and 10 seconds right after any later
// timeout.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(a Attempt) time.Duration {
	if !a.TimedOut {
		return p[0]
	}

	i := a.Timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
