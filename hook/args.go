// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hook

import "github.com/gogama/httpkit/message"

// Args is the argument bundle passed to every listener of one hook
// emission. It is one of *BeforeRequestArgs, *AfterRequestArgs,
// *ErrorArgs or *ExceptionArgs, depending on the hook.
//
// A new Args value is created for every emission. Listeners of the same
// emission share it, so a listener observes changes made by listeners
// that ran before it.
type Args interface {
	kind() kind
}

// BeforeRequestArgs is passed to BeforeRequest listeners.
type BeforeRequestArgs struct {
	// Request is the request about to be sent. Listeners may replace it.
	Request *message.Request
}

// AfterRequestArgs is passed to AfterRequest listeners.
type AfterRequestArgs struct {
	// Request is the request that produced Response. After a redirect
	// it is the redirected request, not the one originally sent.
	Request *message.Request
	// Response is the final response. Listeners may replace it.
	Response *message.Response
	// Attempt is the number of retries done before Response was
	// received.
	Attempt int
}

// ErrorArgs is passed to Error and ErrorStatus listeners.
type ErrorArgs struct {
	// Request is the request that produced Response. Listeners may
	// replace it, in which case a retry sends the replacement.
	Request *message.Request
	// Response is the HTTP error response.
	Response *message.Response
	// Retry is the retry decision for this emission. It starts out
	// false.
	Retry *Decision
	// Attempt is the zero-based number of retries already done for this
	// logical request. Redirects do not count as retries.
	Attempt int
}

// ExceptionArgs is passed to Exception listeners.
type ExceptionArgs struct {
	// Request is the request whose attempt failed. Listeners may replace
	// it, in which case a retry sends the replacement.
	Request *message.Request
	// Err is the transport error.
	Err error
	// Retry is the retry decision for this emission. It starts out
	// false.
	Retry *Decision
	// Attempt is the zero-based number of retries already done for this
	// logical request.
	Attempt int
}

func (*BeforeRequestArgs) kind() kind { return kindBeforeRequest }
func (*AfterRequestArgs) kind() kind  { return kindAfterRequest }
func (*ErrorArgs) kind() kind         { return kindError }
func (*ExceptionArgs) kind() kind     { return kindException }

// A Decision is a mutable retry decision shared by the listeners of one
// hook emission. The client reads it once, after the last listener has
// returned, and discards it.
//
// The zero value is a decision not to retry.
type Decision struct {
	retry bool
}

// Set records whether the failed attempt should be retried, overwriting
// the choice of any earlier listener.
func (d *Decision) Set(retry bool) {
	d.retry = retry
}

// Retry returns the current decision.
func (d *Decision) Retry() bool {
	return d.retry
}
