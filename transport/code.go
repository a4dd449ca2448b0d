// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"net"

	"github.com/gogama/httpkit/transient"
)

// A Code identifies the kind of a transport failure.
type Code int

const (
	// CodeUnknown is any failure not covered by a more specific code.
	CodeUnknown Code = iota + 1
	// CodeUnsupportedProtocol means the URL scheme is not one of the
	// allowed protocols.
	CodeUnsupportedProtocol
	// CodeMalformedURL means the URL could not be parsed.
	CodeMalformedURL
	// CodeBadRequest means the request could not be encoded, for
	// example because of an invalid method or header.
	CodeBadRequest
	// CodeResolveHost means the host name could not be resolved.
	CodeResolveHost
	// CodeConnect means a connection could not be established.
	CodeConnect
	// CodeConnReset means the connection was reset by the peer.
	CodeConnReset
	// CodeTimeout means the attempt timed out.
	CodeTimeout
	// CodeCanceled means the attempt's context was cancelled.
	CodeCanceled
	// CodeRecv means the response could not be read completely.
	CodeRecv
	// CodeBadResponse means the response was unusable, for example
	// because its status code was out of range.
	CodeBadResponse
	// CodeTooManyRedirects means the transport gave up following
	// redirects on its own. It only occurs when FollowLocation is set.
	CodeTooManyRedirects
)

var codeNames = map[Code]string{
	CodeUnknown:             "unknown",
	CodeUnsupportedProtocol: "unsupported_protocol",
	CodeMalformedURL:        "malformed_url",
	CodeBadRequest:          "bad_request",
	CodeResolveHost:         "resolve_host",
	CodeConnect:             "connect",
	CodeConnReset:           "conn_reset",
	CodeTimeout:             "timeout",
	CodeCanceled:            "canceled",
	CodeRecv:                "recv",
	CodeBadResponse:         "bad_response",
	CodeTooManyRedirects:    "too_many_redirects",
}

// String returns a short lower-case name for the code, suitable as a
// metrics label.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Classify maps an error returned while sending a request or reading
// its response to a failure code.
func Classify(err error) Code {
	switch transient.Categorize(err) {
	case transient.Timeout:
		return CodeTimeout
	case transient.ConnRefused:
		return CodeConnect
	case transient.ConnReset:
		return CodeConnReset
	case transient.DNS:
		return CodeResolveHost
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CodeResolveHost
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return CodeConnect
	}
	return CodeUnknown
}
