// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
)

// DefaultHTTPVersion is the protocol version of a new message.
const DefaultHTTPVersion = "1.1"

type headerEntry struct {
	name   string
	values []string
}

// A Message contains the state shared by Request and Response: an
// ordered set of headers, a body, and the HTTP protocol version.
//
// The zero value is an empty HTTP/1.1 message with no headers and no
// body. A Message is not safe for concurrent use by multiple
// goroutines.
type Message struct {
	headers map[string]*headerEntry
	order   []string
	body    interface{}
	version string
}

// Header returns the values of the named header joined by a comma, or
// the empty string if the header is not present. Lookup is
// case-insensitive.
func (m *Message) Header(name string) string {
	if h, ok := m.headers[strings.ToLower(name)]; ok {
		return strings.Join(h.values, ",")
	}
	return ""
}

// HasHeader reports whether the named header is present.
func (m *Message) HasHeader(name string) bool {
	_, ok := m.headers[strings.ToLower(name)]
	return ok
}

// HeaderValues returns every value of the named header, in the order
// the values were added. It returns an empty slice if the header is
// not present.
func (m *Message) HeaderValues(name string) []string {
	if h, ok := m.headers[strings.ToLower(name)]; ok {
		values := make([]string, len(h.values))
		copy(values, h.values)
		return values
	}
	return []string{}
}

// Headers returns all headers keyed by the header name as it was most
// recently set.
func (m *Message) Headers() map[string][]string {
	result := make(map[string][]string, len(m.order))
	for _, key := range m.order {
		h := m.headers[key]
		values := make([]string, len(h.values))
		copy(values, h.values)
		result[h.name] = values
	}
	return result
}

// HeaderNames returns the header names in the order the headers were
// first set.
func (m *Message) HeaderNames() []string {
	names := make([]string, len(m.order))
	for i, key := range m.order {
		names[i] = m.headers[key].name
	}
	return names
}

// UpdateHeader replaces any existing values of the named header with
// values.
func (m *Message) UpdateHeader(name string, values ...string) {
	key := strings.ToLower(name)
	if m.headers == nil {
		m.headers = make(map[string]*headerEntry)
	}
	if _, ok := m.headers[key]; !ok {
		m.order = append(m.order, key)
	}
	v := make([]string, len(values))
	copy(v, values)
	m.headers[key] = &headerEntry{name: name, values: v}
}

// UpdateHeaders calls UpdateHeader for every entry in headers.
func (m *Message) UpdateHeaders(headers map[string][]string) {
	for name, values := range headers {
		m.UpdateHeader(name, values...)
	}
}

// AddHeader appends values to the named header, creating it if
// necessary. Existing values are never overwritten.
func (m *Message) AddHeader(name string, values ...string) {
	key := strings.ToLower(name)
	if h, ok := m.headers[key]; ok {
		h.values = append(h.values, values...)
		return
	}
	m.UpdateHeader(name, values...)
}

// AddHeaders calls AddHeader for every entry in headers.
func (m *Message) AddHeaders(headers map[string][]string) {
	for name, values := range headers {
		m.AddHeader(name, values...)
	}
}

// RemoveHeader removes the named header. It returns false if the
// header was not present.
func (m *Message) RemoveHeader(name string) bool {
	key := strings.ToLower(name)
	if _, ok := m.headers[key]; !ok {
		return false
	}
	delete(m.headers, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Body returns the message body: nil if absent, a []byte, or an
// io.Reader.
func (m *Message) Body() interface{} {
	return m.body
}

// SetBody sets the message body. The body may be nil, a string, a
// []byte, or an io.Reader. Strings are stored as []byte.
func (m *Message) SetBody(body interface{}) error {
	switch x := body.(type) {
	case nil:
		m.body = nil
	case string:
		m.body = []byte(x)
	case []byte:
		m.body = x
	case io.Reader:
		m.body = x
	default:
		return errBadBodyType
	}
	return nil
}

// BodyAsStream returns the body as a stream. A byte body is wrapped in
// a new reader on every call. A stream body is returned as is, so it
// can only be reliably read once.
func (m *Message) BodyAsStream() io.Reader {
	switch x := m.body.(type) {
	case io.Reader:
		return x
	case []byte:
		return bytes.NewReader(x)
	default:
		return bytes.NewReader(nil)
	}
}

// BodyAsString returns the body as a string.
//
// If the body is a stream and the message has a valid Content-Length
// header, at most Content-Length bytes are read from it. After a stream
// is read its content replaces the stream as the message body, so that
// subsequent calls return the same string.
func (m *Message) BodyAsString() (string, error) {
	switch x := m.body.(type) {
	case nil:
		return "", nil
	case []byte:
		return string(x), nil
	case io.Reader:
		var r io.Reader = x
		if n, ok := m.contentLength(); ok {
			r = io.LimitReader(x, n)
		}
		b, err := ioutil.ReadAll(r)
		if err != nil {
			return "", err
		}
		m.body = b
		return string(b), nil
	default:
		return "", errBadBodyType
	}
}

func (m *Message) contentLength() (int64, bool) {
	s := strings.TrimSpace(m.Header("Content-Length"))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// HTTPVersion returns the HTTP protocol version, for example "1.1".
func (m *Message) HTTPVersion() string {
	if m.version == "" {
		return DefaultHTTPVersion
	}
	return m.version
}

// SetHTTPVersion sets the HTTP protocol version, for example "1.0".
func (m *Message) SetHTTPVersion(version string) {
	m.version = version
}

func (m *Message) clone() Message {
	c := Message{
		body:    m.body,
		version: m.version,
	}
	if m.headers != nil {
		c.headers = make(map[string]*headerEntry, len(m.headers))
		for key, h := range m.headers {
			values := make([]string, len(h.values))
			copy(values, h.values)
			c.headers[key] = &headerEntry{name: h.name, values: values}
		}
		c.order = make([]string, len(m.order))
		copy(c.order, m.order)
	}
	return c
}

func (m *Message) writeHeadersAndBody(sb *strings.Builder, redact func(name, value string) string) error {
	for _, key := range m.order {
		h := m.headers[key]
		for _, v := range h.values {
			if redact != nil {
				v = redact(h.name, v)
			}
			sb.WriteString(h.name)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\r\n")
		}
	}
	sb.WriteString("\r\n")
	body, err := m.BodyAsString()
	if err != nil {
		return err
	}
	sb.WriteString(body)
	return nil
}
