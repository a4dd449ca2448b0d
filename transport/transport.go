// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"

	"github.com/gogama/httpkit/message"
)

// A Transport performs the network I/O for one HTTP request attempt.
//
// Do sends the request and returns the raw result. It never follows
// redirects and never retries: the client does both. Do must not
// return until the response body, if any, has been fully read.
//
// NewMultiplexer returns a new, independent Multiplexer for running
// many attempts concurrently.
type Transport interface {
	Do(ctx context.Context, r *message.Request) Result
	NewMultiplexer() Multiplexer
}

// A Handle is the opaque identity of one attempt added to a
// Multiplexer.
type Handle string

// A Completion pairs a finished attempt's handle with its result.
type Completion struct {
	Handle Handle
	Result Result
}

// A Multiplexer runs many request attempts at once.
//
// A Multiplexer is owned by a single client and is not required to be
// safe for concurrent use by multiple goroutines, although
// implementations may use goroutines internally.
type Multiplexer interface {
	// Add starts an attempt and returns its handle.
	Add(ctx context.Context, r *message.Request) Handle
	// Perform makes progress on the outstanding attempts and returns
	// those that have completed since the last call, in the order they
	// completed. Perform does not block.
	Perform() []Completion
	// Wait blocks until Perform has at least one completion to return,
	// or until no attempt is outstanding.
	Wait()
	// Len returns the number of attempts added but not yet returned by
	// Perform.
	Len() int
}

// A Result is the raw outcome of one attempt. Exactly one of Failure
// and StatusCode is set.
type Result struct {
	// Failure is non-nil if the attempt failed at the transport level.
	Failure *Failure
	// StatusCode is the HTTP status code received.
	StatusCode int
	// Header is the raw response header block: a status line followed
	// by "Name: value" lines, each terminated by CRLF. It may contain
	// several blocks separated by blank lines if interim responses
	// were received; only the last one describes the final response.
	Header string
	// Body is the raw response body.
	Body []byte
}

// A Failure describes a transport-level failure.
type Failure struct {
	Code    Code
	Message string
	// Err is the underlying error, if any.
	Err error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}
