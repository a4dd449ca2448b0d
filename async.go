// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpkit

import (
	"context"

	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/message"
	"github.com/gogama/httpkit/transport"
)

type pendingOp struct {
	req       *message.Request
	onSuccess func(*message.Response)
	onError   func(*message.Request, error)
	progress  progress
	cancel    context.CancelFunc
}

// SendAsync starts executing a request asynchronously, then calls Poll
// once.
//
// SendAsync emits beforeRequest and hands the request to the client's
// multiplexer, which the client creates from its Transport on first
// use. Call Poll or Wait to make progress and have the callbacks run.
// Redirects are followed and retries done as in Send.
//
// When the request is done, exactly one of the callbacks is called.
// The onSuccess callback receives a final response whose status code
// is below 400, after afterRequest has been emitted. The onError
// callback receives the request and either a *TransportError or an
// *HTTPError; afterRequest is not emitted in that case. Either
// callback may be nil. Callbacks may call SendAsync.
func (c *Client) SendAsync(r *message.Request, onSuccess func(*message.Response), onError func(*message.Request, error)) {
	before := &hook.BeforeRequestArgs{Request: r}
	c.Hooks.Emit(hook.BeforeRequest, before)

	c.enqueue(&pendingOp{
		req:       before.Request,
		onSuccess: onSuccess,
		onError:   onError,
	})
	c.Poll()
}

// Poll processes the asynchronous requests which have completed since
// the last call, without waiting for the others, and reports whether
// any request is still pending.
//
// If no request is pending, Poll returns false without doing anything.
func (c *Client) Poll() bool {
	if len(c.pending) == 0 {
		return false
	}

	for _, done := range c.multi.Perform() {
		op, ok := c.pending[done.Handle]
		if !ok {
			continue
		}
		delete(c.pending, done.Handle)
		op.cancel()
		c.complete(op, done.Result)
	}

	return len(c.pending) > 0
}

// Wait processes asynchronous requests until none is pending.
func (c *Client) Wait() {
	for c.Poll() {
		c.multi.Wait()
	}
}

// Pending returns the number of asynchronous requests not yet done.
func (c *Client) Pending() int {
	return len(c.pending)
}

func (c *Client) enqueue(op *pendingOp) {
	if c.multi == nil {
		c.multi = c.transport().NewMultiplexer()
	}
	if c.pending == nil {
		c.pending = make(map[transport.Handle]*pendingOp)
	}

	ctx, cancel := c.attemptContext(op.req, &op.progress)
	op.cancel = cancel
	c.logger().Debug().
		Str("method", op.req.Method()).
		Str("url", op.req.URL()).
		Int("attempt", op.progress.attempt).
		Msg("queueing attempt")
	h := c.multi.Add(ctx, op.req)
	c.pending[h] = op
}

func (c *Client) complete(op *pendingOp, res transport.Result) {
	s := c.classify(op.req, res, &op.progress)
	op.req = s.req

	switch s.next {
	case stepRedirect, stepRetry:
		c.enqueue(op)
	case stepFail:
		if op.onError != nil {
			op.onError(s.req, s.err)
		}
	default:
		if s.resp.StatusCode() >= 400 {
			if op.onError != nil {
				op.onError(s.req, &HTTPError{Request: s.req, Response: s.resp})
			}
			return
		}
		after := &hook.AfterRequestArgs{Request: s.req, Response: s.resp, Attempt: op.progress.attempt}
		c.Hooks.Emit(hook.AfterRequest, after)
		if op.onSuccess != nil {
			op.onSuccess(after.Response)
		}
	}
}
