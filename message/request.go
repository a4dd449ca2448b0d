// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"context"
	"net/url"
	"strings"
)

const nilCtxMsg = "httpkit/message: nil context"

// A Request is an HTTP request message.
//
// Besides the fields needed to send the request (method, URL, headers
// and body), a Request carries side-channel data which is mainly of
// interest to server-side code: the absolute URL the request was
// received on, the base URL the application is mounted at, posted form
// fields, and raw transport-origin metadata.
//
// Like the http.Request structure from net/http, a Request has a
// context which controls cancellation of the request's execution.
type Request struct {
	Message

	method      string
	url         string
	absoluteURL string
	baseURL     string
	postData    url.Values
	rawServer   map[string]string
	ctx         context.Context
}

// NewRequest returns a new Request given a method, URL, optional
// headers and optional body. An empty method means GET.
//
// Parameter body may be nil (no body), a string, a []byte, or an
// io.Reader.
func NewRequest(method, url string, headers map[string][]string, body interface{}) (*Request, error) {
	if method == "" {
		method = "GET"
	}
	r := &Request{
		method: method,
		url:    url,
	}
	r.UpdateHeaders(headers)
	if err := r.SetBody(body); err != nil {
		return nil, err
	}
	return r, nil
}

// Method returns the HTTP method, for example "GET".
func (r *Request) Method() string {
	if r.method == "" {
		return "GET"
	}
	return r.method
}

// SetMethod sets the HTTP method.
func (r *Request) SetMethod(method string) {
	r.method = method
}

// URL returns the request URL as given, which may be absolute or just
// a path.
func (r *Request) URL() string {
	return r.url
}

// SetURL sets the request URL.
func (r *Request) SetURL(url string) {
	r.url = url
}

// AbsoluteURL returns the absolute URL, if one was set. Server-side
// adapters set it to the full URL the request was received on.
func (r *Request) AbsoluteURL() string {
	return r.absoluteURL
}

// SetAbsoluteURL sets the absolute URL.
func (r *Request) SetAbsoluteURL(url string) {
	r.absoluteURL = url
}

// BaseURL returns the base URL used by Path. It defaults to "/".
func (r *Request) BaseURL() string {
	if r.baseURL == "" {
		return "/"
	}
	return r.baseURL
}

// SetBaseURL sets the base URL used by Path.
func (r *Request) SetBaseURL(url string) {
	r.baseURL = url
}

// QueryParameters returns the query parameters contained in the URL.
// The result is empty, but not nil, if the URL has no query string.
func (r *Request) QueryParameters() url.Values {
	i := strings.IndexByte(r.url, '?')
	if i < 0 {
		return url.Values{}
	}
	q := r.url[i+1:]
	if j := strings.IndexByte(q, '#'); j >= 0 {
		q = q[:j]
	}
	values, _ := url.ParseQuery(q)
	return values
}

// Path returns the request path relative to the base URL, percent
// decoded and without leading or trailing slashes, and without the
// query string.
//
// If the URL is not located under the base URL, a *PathOutOfBaseError
// is returned.
func (r *Request) Path() (string, error) {
	uri := strings.Replace(r.url, "//", "/", -1)
	base := r.BaseURL()
	if strings.HasPrefix(uri, base) {
		rel := uri[len(base):]
		if i := strings.IndexByte(rel, '?'); i >= 0 {
			rel = rel[:i]
		}
		decoded, err := url.PathUnescape(rel)
		if err != nil {
			decoded = rel
		}
		return strings.Trim(decoded, "/"), nil
	} else if uri+"/" == base {
		return "", nil
	}
	return "", &PathOutOfBaseError{URL: r.url, BaseURL: base}
}

// PostData returns the posted form fields. Server-side adapters set
// this for form-encoded request bodies.
func (r *Request) PostData() url.Values {
	if r.postData == nil {
		return url.Values{}
	}
	return r.postData
}

// SetPostData sets the posted form fields.
func (r *Request) SetPostData(data url.Values) {
	r.postData = data
}

// RawServerValue returns one item of raw transport-origin metadata,
// for example "REMOTE_ADDR", or the empty string.
func (r *Request) RawServerValue(name string) string {
	return r.rawServer[name]
}

// SetRawServerData replaces the raw transport-origin metadata with a
// copy of data.
func (r *Request) SetRawServerData(data map[string]string) {
	r.rawServer = make(map[string]string, len(data))
	for k, v := range data {
		r.rawServer[k] = v
	}
}

// Context returns the request's context. The returned context is
// always non-nil; it defaults to the background context.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a copy of r with its context changed to ctx, which
// must be non-nil. As with Clone, headers are copied and the body is
// shared.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r2 := r.Clone()
	r2.ctx = ctx
	return r2
}

// Clone returns a copy of r. Headers are copied deeply; the body is
// shared, so a stream body must not be read through both requests.
func (r *Request) Clone() *Request {
	r2 := new(Request)
	*r2 = *r
	r2.Message = r.Message.clone()
	if r.postData != nil {
		r2.postData = make(url.Values, len(r.postData))
		for k, v := range r.postData {
			r2.postData[k] = append([]string(nil), v...)
		}
	}
	return r2
}

// WithURL returns a clone of r whose URL is url.
func (r *Request) WithURL(url string) *Request {
	r2 := r.Clone()
	r2.url = url
	return r2
}

// String renders the request in HTTP/1.x wire format. Credentials in
// Authorization headers are redacted.
//
// If the body is a stream, String reads it (see BodyAsString).
func (r *Request) String() string {
	var sb strings.Builder
	sb.WriteString(r.Method())
	sb.WriteByte(' ')
	sb.WriteString(r.url)
	sb.WriteString(" HTTP/")
	sb.WriteString(r.HTTPVersion())
	sb.WriteString("\r\n")
	_ = r.writeHeadersAndBody(&sb, redactAuthorization)
	return sb.String()
}

func redactAuthorization(name, value string) string {
	if !strings.EqualFold(name, "Authorization") {
		return value
	}
	scheme := value
	if i := strings.IndexByte(value, ' '); i >= 0 {
		scheme = value[:i]
	}
	return scheme + " REDACTED"
}
