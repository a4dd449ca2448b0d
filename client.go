// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpkit

import (
	"context"
	"net/url"

	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/message"
	"github.com/gogama/httpkit/outcome"
	"github.com/gogama/httpkit/redirect"
	"github.com/gogama/httpkit/timeout"
	"github.com/gogama/httpkit/transport"
	"github.com/rs/zerolog"
)

var defaultTransport transport.Transport = &transport.HTTP{}

var nopLogger = zerolog.Nop()

// A Client is an HTTP client with redirect support, pluggable
// lifecycle hooks, and both synchronous and asynchronous execution.
// Its zero value is a valid configuration.
//
// The zero value client uses a transport.HTTP with default settings as
// the Transport, timeout.DefaultPolicy as the timeout policy, follows
// up to redirect.DefaultMax redirects, and has no hook listeners.
//
// The Client never retries on its own. After every failed attempt it
// emits the exception hook (no response) or the error and
// error:<status> hooks (status 400 or above), and retries only if a
// listener sets the retry decision carried by the hook arguments.
// Package retry provides listeners implementing common retry
// policies. There is no limit on the number of retries other than the
// one listeners impose.
//
// Send is safe for concurrent use by multiple goroutines provided the
// hook listeners are, and no listeners are added concurrently. The
// asynchronous methods SendAsync, Poll and Wait share state and must
// not be called concurrently with each other.
type Client struct {
	// Transport performs the network I/O for each attempt.
	//
	// If Transport is nil, a transport.HTTP with default settings is
	// used.
	Transport transport.Transport
	// TimeoutPolicy specifies how to set timeouts on individual
	// attempts, including attempts which follow redirects.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// MaxRedirects is the maximum number of redirects followed for one
	// request. Zero means redirect.DefaultMax and a negative value
	// disables redirects.
	MaxRedirects int
	// ThrowOnHTTPError makes Send return an *HTTPError, along with the
	// response, when the final response has a status code of 400 or
	// above.
	ThrowOnHTTPError bool
	// Hooks holds the listeners invoked during request execution.
	//
	// If Hooks is nil, no listeners are invoked. On creates a registry
	// if needed.
	Hooks *hook.Registry
	// Logger receives debug events about attempts, redirects and
	// retries.
	//
	// If Logger is nil, nothing is logged.
	Logger *zerolog.Logger

	multi   transport.Multiplexer
	pending map[transport.Handle]*pendingOp
}

// On adds a listener for the named hook. See hook.Registry.On.
func (c *Client) On(name string, l hook.Listener) {
	if c.Hooks == nil {
		c.Hooks = &hook.Registry{}
	}
	c.Hooks.On(name, l)
}

// Send executes a request synchronously and returns the final
// response.
//
// Send emits beforeRequest, then sends attempts until one ends without
// a retry being requested. Redirects are followed without emitting any
// hook and without counting as attempts. Finally Send emits
// afterRequest and returns the response.
//
// If the last attempt failed at the transport level, Send returns a
// nil response and a *TransportError, and afterRequest is not emitted.
// If ThrowOnHTTPError is set and the final status code is 400 or
// above, Send returns the response along with an *HTTPError.
func (c *Client) Send(r *message.Request) (*message.Response, error) {
	before := &hook.BeforeRequestArgs{Request: r}
	c.Hooks.Emit(hook.BeforeRequest, before)
	r = before.Request

	var p progress
	for {
		res := c.do(r, &p)
		s := c.classify(r, res, &p)
		r = s.req
		if s.next == stepRedirect || s.next == stepRetry {
			continue
		}
		if s.next == stepFail {
			return nil, s.err
		}
		return c.finish(r, s.resp, p.attempt)
	}
}

func (c *Client) finish(r *message.Request, resp *message.Response, attempt int) (*message.Response, error) {
	after := &hook.AfterRequestArgs{Request: r, Response: resp, Attempt: attempt}
	c.Hooks.Emit(hook.AfterRequest, after)
	resp = after.Response
	if c.ThrowOnHTTPError && resp.StatusCode() >= 400 {
		return resp, &HTTPError{Request: after.Request, Response: resp}
	}
	return resp, nil
}

// Get issues a GET to the specified URL using Send.
func (c *Client) Get(url string) (*message.Response, error) {
	return Get(c, url)
}

// Head issues a HEAD to the specified URL using Send.
func (c *Client) Head(url string) (*message.Response, error) {
	return Head(c, url)
}

// Post issues a POST to the specified URL using Send.
//
// The body parameter may be nil for an empty body, a string, a []byte,
// or an io.Reader.
func (c *Client) Post(url, contentType string, body interface{}) (*message.Response, error) {
	return Post(c, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
func (c *Client) PostForm(url string, data url.Values) (*message.Response, error) {
	return PostForm(c, url, data)
}

// CloseIdleConnections invokes the same method on the client's
// Transport, if it has one.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.transport().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

type progress struct {
	attempt   int
	redirects int
	timeouts  int
	timedOut  bool
}

type stepKind int

const (
	stepDone stepKind = iota
	stepRedirect
	stepRetry
	stepFail
)

type step struct {
	next stepKind
	req  *message.Request
	resp *message.Response
	err  *TransportError
}

func (c *Client) do(r *message.Request, p *progress) transport.Result {
	ctx, cancel := c.attemptContext(r, p)
	defer cancel()
	c.logger().Debug().
		Str("method", r.Method()).
		Str("url", r.URL()).
		Int("attempt", p.attempt).
		Msg("sending attempt")
	return c.transport().Do(ctx, r)
}

func (c *Client) attemptContext(r *message.Request, p *progress) (context.Context, context.CancelFunc) {
	d := c.timeoutPolicy().Timeout(timeout.Attempt{
		Count:    p.attempt,
		Timeouts: p.timeouts,
		TimedOut: p.timedOut,
	})
	return context.WithTimeout(r.Context(), d)
}

// classify classifies the result of one attempt of r, emits the hooks
// the result calls for, and decides what happens next.
func (c *Client) classify(r *message.Request, res transport.Result, p *progress) step {
	log := c.logger()
	o := outcome.Classify(res)

	if o.Kind == outcome.TransportFailure {
		p.timedOut = o.Failure.Code == transport.CodeTimeout
		if p.timedOut {
			p.timeouts++
		}
		err := newTransportError(r, o.Failure)
		args := &hook.ExceptionArgs{Request: r, Err: err, Retry: &hook.Decision{}, Attempt: p.attempt}
		c.Hooks.Emit(hook.Exception, args)
		if c.retry(args.Request, args.Retry, p) {
			return step{next: stepRetry, req: args.Request}
		}
		log.Debug().
			Str("url", args.Request.URL()).
			Stringer("code", o.Failure.Code).
			Int("attempt", p.attempt).
			Msg("giving up after transport error")
		return step{next: stepFail, req: args.Request, err: err}
	}

	p.timedOut = false
	resp := o.Response
	if next, ok := c.resolver().Resolve(r, resp, p.redirects); ok {
		p.redirects++
		log.Debug().
			Int("status", resp.StatusCode()).
			Str("url", r.URL()).
			Str("location", next.URL()).
			Int("redirects", p.redirects).
			Msg("following redirect")
		return step{next: stepRedirect, req: next}
	}

	if o.Kind == outcome.HTTPError {
		args := &hook.ErrorArgs{Request: r, Response: resp, Retry: &hook.Decision{}, Attempt: p.attempt}
		c.Hooks.Emit(hook.Error, args)
		c.Hooks.Emit(hook.ErrorStatus(resp.StatusCode()), args)
		if c.retry(args.Request, args.Retry, p) {
			return step{next: stepRetry, req: args.Request}
		}
		return step{next: stepDone, req: args.Request, resp: args.Response}
	}

	return step{next: stepDone, req: r, resp: resp}
}

func (c *Client) retry(r *message.Request, d *hook.Decision, p *progress) bool {
	if !d.Retry() {
		return false
	}
	if err := r.Context().Err(); err != nil {
		c.logger().Debug().Err(err).Str("url", r.URL()).Msg("not retrying, request context ended")
		return false
	}
	p.attempt++
	c.logger().Debug().Str("url", r.URL()).Int("attempt", p.attempt).Msg("retrying")
	return true
}

func (c *Client) transport() transport.Transport {
	if c.Transport == nil {
		return defaultTransport
	}

	return c.Transport
}

func (c *Client) timeoutPolicy() timeout.Policy {
	if c.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}

	return c.TimeoutPolicy
}

func (c *Client) resolver() redirect.Resolver {
	return redirect.Resolver{Max: c.MaxRedirects}
}

func (c *Client) logger() *zerolog.Logger {
	if c.Logger == nil {
		return &nopLogger
	}

	return c.Logger
}
