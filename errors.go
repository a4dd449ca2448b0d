// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpkit

import (
	"fmt"
	"strings"

	"github.com/gogama/httpkit/message"
	"github.com/gogama/httpkit/transport"
)

// A TransportError reports a failure to obtain an HTTP response, as
// reported by the client's transport.
//
// The shape of TransportError follows the url.Error type from the
// standard net/url package.
type TransportError struct {
	// Op is the method of the failed request in the style of url.Error,
	// for example "Get" or "Post".
	Op string
	// URL is the URL of the failed attempt.
	URL string
	// Code identifies the kind of failure.
	Code transport.Code
	// Message is the transport's description of the failure.
	Message string
	// Err is the *transport.Failure reported by the transport.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the attempt timed out.
func (e *TransportError) Timeout() bool {
	return e.Code == transport.CodeTimeout
}

// An HTTPError reports a final response with a status code of 400 or
// above. It is returned by Client.Send only when ThrowOnHTTPError is
// set, and is always passed to the error callback of Client.SendAsync.
type HTTPError struct {
	Request  *message.Request
	Response *message.Response
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %q: %d %s", urlErrorOp(e.Request.Method()), e.Request.URL(),
		e.Response.StatusCode(), e.Response.StatusText())
}

// StatusCode returns the status code of the response.
func (e *HTTPError) StatusCode() int {
	return e.Response.StatusCode()
}

func newTransportError(r *message.Request, f *transport.Failure) *TransportError {
	return &TransportError{
		Op:      urlErrorOp(r.Method()),
		URL:     r.URL(),
		Code:    f.Code,
		Message: f.Message,
		Err:     f,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
