// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package redirect

import (
	"net/url"
	"strings"

	"github.com/gogama/httpkit/message"
)

// DefaultMax is the number of redirects a Resolver with a zero Max
// follows for one request.
const DefaultMax = 5

// Eligible reports whether a response with the given status code can
// be followed. Only 301, 302, 307 and 308 are eligible; 303 is not.
func Eligible(statusCode int) bool {
	switch statusCode {
	case 301, 302, 307, 308:
		return true
	default:
		return false
	}
}

// A Resolver decides whether a response is followed and computes the
// request to follow it with.
type Resolver struct {
	// Max is the maximum number of redirects followed for one request.
	// Zero means DefaultMax. A negative value disables redirects.
	Max int
}

func (res Resolver) max() int {
	if res.Max == 0 {
		return DefaultMax
	}
	return res.Max
}

// Resolve returns the request to send next if resp, received in reply
// to req after followed redirects, is to be followed.
//
// A response is followed only if its status code is Eligible, followed
// is below the maximum, and it has a Location header which resolves,
// as a URI reference relative to the URL of req, to an absolute URL.
// If the header was sent more than once only the first value is used.
// The returned request is a clone of req with only the URL changed, so
// the method, headers and body are kept.
func (res Resolver) Resolve(req *message.Request, resp *message.Response, followed int) (*message.Request, bool) {
	if !Eligible(resp.StatusCode()) || followed >= res.max() {
		return nil, false
	}

	var loc string
	if values := resp.HeaderValues("Location"); len(values) > 0 {
		loc = strings.TrimSpace(values[0])
	}
	if loc == "" {
		return nil, false
	}

	next, ok := Location(req.URL(), loc)
	if !ok {
		return nil, false
	}

	return req.WithURL(next), true
}

// Location resolves the Location header value loc against base.
func Location(base, loc string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	l, err := url.Parse(loc)
	if err != nil {
		return "", false
	}
	u := b.ResolveReference(l)
	if !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
