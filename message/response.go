// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"strconv"
	"strings"
)

// A Response is an HTTP response message.
//
// The zero value has no status; use NewResponse, SetStatus or
// SetStatusCode to assign one.
type Response struct {
	Message

	status     int
	statusText string
}

// NewResponse returns a new Response with the given status code and
// the standard status text for that code. A *ValidationError is
// returned if code is not in the range [100, 999].
func NewResponse(code int) (*Response, error) {
	r := &Response{}
	if err := r.SetStatusCode(code); err != nil {
		return nil, err
	}
	return r, nil
}

// StatusCode returns the numeric status code.
func (r *Response) StatusCode() int {
	return r.status
}

// StatusText returns the human-readable status text.
func (r *Response) StatusText() string {
	return r.statusText
}

// SetStatusCode sets the status code and resets the status text to
// the standard text for the code. A *ValidationError is returned, and
// the response is unchanged, if code is not in the range [100, 999].
func (r *Response) SetStatusCode(code int) error {
	if code < 100 || code > 999 {
		return &ValidationError{Status: strconv.Itoa(code)}
	}
	r.status = code
	r.statusText = StatusText(code)
	return nil
}

// SetStatusText overrides the status text.
func (r *Response) SetStatusText(text string) {
	r.statusText = text
}

// SetStatus sets the status from a string which is either a bare code,
// such as "204", or a code followed by custom status text, such as
// "402 Custom Text". A bare code gets the standard status text.
//
// A *ValidationError is returned, and the response is unchanged, if
// the code is not a number in the range [100, 999].
func (r *Response) SetStatus(status string) error {
	codeStr, text := status, ""
	custom := false
	if i := strings.IndexByte(status, ' '); i >= 0 {
		codeStr, text = status[:i], status[i+1:]
		custom = true
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return &ValidationError{Status: status}
	}
	if err = r.SetStatusCode(code); err != nil {
		return &ValidationError{Status: status}
	}
	if custom {
		r.statusText = text
	}
	return nil
}

// Clone returns a copy of r with deeply copied headers and a shared
// body.
func (r *Response) Clone() *Response {
	r2 := new(Response)
	*r2 = *r
	r2.Message = r.Message.clone()
	return r2
}

// String renders the response in HTTP/1.x wire format.
//
// If the body is a stream, String reads it (see BodyAsString).
func (r *Response) String() string {
	var sb strings.Builder
	sb.WriteString("HTTP/")
	sb.WriteString(r.HTTPVersion())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(r.status))
	sb.WriteByte(' ')
	sb.WriteString(r.statusText)
	sb.WriteString("\r\n")
	_ = r.writeHeadersAndBody(&sb, nil)
	return sb.String()
}
