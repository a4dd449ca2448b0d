// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hook

import (
	"strconv"
	"strings"
)

const (
	// BeforeRequest names the hook emitted once per logical request,
	// before the first attempt is dispatched.
	//
	// Listeners receive *BeforeRequestArgs. They may change the request
	// (for example to add authentication headers) or replace it
	// entirely by assigning a new request to the args.
	BeforeRequest = "beforeRequest"
	// AfterRequest names the hook emitted once per logical request
	// which produced an HTTP response, after all redirects and retries
	// are done.
	//
	// Listeners receive *AfterRequestArgs. AfterRequest is not emitted
	// if the request ended with a transport error.
	AfterRequest = "afterRequest"
	// Error names the hook emitted after an attempt produced an HTTP
	// response with status code 400 or above.
	//
	// Listeners receive *ErrorArgs and may request a retry by setting
	// the args' retry decision. Error is always immediately followed by
	// an emission of ErrorStatus(code) with the same args.
	Error = "error"
	// Exception names the hook emitted after an attempt failed at the
	// transport level (for example DNS, connect or timeout failure).
	//
	// Listeners receive *ExceptionArgs and may request a retry by setting
	// the args' retry decision. If no listener does, the transport error
	// is returned to the caller.
	Exception = "exception"
)

const errorPrefix = Error + ":"

// Names returns the fixed hook names in the order in which they can
// occur during a request execution. The open family of per-status
// error hooks (see ErrorStatus) is not included.
func Names() []string {
	return []string{
		BeforeRequest,
		Exception,
		Error,
		AfterRequest,
	}
}

// ErrorStatus returns the name of the hook emitted, after Error, for an
// HTTP response with the given status code. For example ErrorStatus(401)
// is "error:401".
func ErrorStatus(code int) string {
	return errorPrefix + strconv.Itoa(code)
}

// Valid reports whether name is a hook name known to the client: one of
// the fixed names, or "error:" followed by a three digit status code.
func Valid(name string) bool {
	return kindOf(name) != kindInvalid
}

type kind int

const (
	kindInvalid kind = iota
	kindBeforeRequest
	kindAfterRequest
	kindError
	kindException
)

func kindOf(name string) kind {
	switch name {
	case BeforeRequest:
		return kindBeforeRequest
	case AfterRequest:
		return kindAfterRequest
	case Error:
		return kindError
	case Exception:
		return kindException
	}
	if !strings.HasPrefix(name, errorPrefix) {
		return kindInvalid
	}
	code := name[len(errorPrefix):]
	if len(code) != 3 {
		return kindInvalid
	}
	if n, err := strconv.Atoi(code); err != nil || n < 100 {
		return kindInvalid
	}
	return kindError
}
