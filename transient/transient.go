// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"net"
	"syscall"
)

// A Category is the transience category of a transport error, as
// reported by Categorize.
//
// The category Not means a retry after encountering the error is very
// unlikely to succeed. Every other category means a retry has some
// prospect of success.
type Category int

const (
	// Not indicates any non-transient error, and the nil error.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error or one of its
	// wrapped causes has a Timeout method that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). It is transient because it happens while
	// a service on the remote host is restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (syscall.ECONNRESET).
	ConnReset
	// DNS indicates a host name lookup failed for a reason the resolver
	// itself reports as temporary, such as an unreachable DNS server.
	// A host that does not exist is Not transient.
	DNS
)

var categoryNames = []string{
	"not",
	"timeout",
	"conn_refused",
	"conn_reset",
	"dns",
}

// String returns a short lower-case name for the category, suitable as
// a metrics label.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err, looking at the
// causes wrapped inside err as well as err itself. Categorize never
// consults a Temporary method, as its semantics are unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary && !dnsErr.IsNotFound {
		return DNS
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
