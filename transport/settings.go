// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gogama/httpkit/message"
	"golang.org/x/net/http/httpguts"
)

// DefaultProtocols is the default set of URL schemes allowed both for
// requests and for redirect targets.
var DefaultProtocols = []string{"http", "https"}

// Settings holds the per-attempt options the HTTP transport derives
// from a request. Options may override any of them.
type Settings struct {
	// Method is the request method.
	Method string
	// URL is the absolute request URL.
	URL string
	// Headers contains one string per header name: the header's values
	// joined by a newline.
	Headers map[string]string
	// NoBody suppresses the request body and tells the transport not
	// to expect a response body. It is set for HEAD requests.
	NoBody bool
	// PostFields is the fixed request body used for requests whose body
	// is absent or finite. It is always empty for GET and HEAD.
	PostFields []byte
	// Upload is the streamed request body used for requests whose body
	// is a stream. When Upload is non-nil PostFields is ignored.
	Upload io.Reader
	// UploadSize is the length of Upload taken from the Content-Length
	// header, or -1 if unknown.
	UploadSize int64
	// Protocols lists the URL schemes allowed for the request.
	Protocols []string
	// FollowLocation makes the transport itself follow redirects. It is
	// false by default because the client follows redirects, and
	// emits hooks, on its own.
	FollowLocation bool
	// MaxRedirs bounds the redirects followed when FollowLocation is
	// set.
	MaxRedirs int
	// RedirectProtocols lists the URL schemes allowed as redirect
	// targets when FollowLocation is set.
	RedirectProtocols []string
}

// An Option changes the settings of one attempt. Options run after the
// defaults for the request have been filled in.
type Option func(s *Settings)

// NewSettings derives the transport settings for r and applies opts.
func NewSettings(r *message.Request, opts ...Option) *Settings {
	s := &Settings{
		Method:            strings.ToUpper(r.Method()),
		URL:               r.URL(),
		Headers:           make(map[string]string),
		UploadSize:        -1,
		MaxRedirs:         5,
		Protocols:         append([]string(nil), DefaultProtocols...),
		RedirectProtocols: append([]string(nil), DefaultProtocols...),
	}

	switch s.Method {
	case "HEAD":
		s.NoBody = true
	case "GET":
	default:
		switch b := r.Body().(type) {
		case io.Reader:
			s.Upload = b
			if n, err := strconv.ParseInt(strings.TrimSpace(r.Header("Content-Length")), 10, 64); err == nil && n >= 0 {
				s.UploadSize = n
			}
		case []byte:
			s.PostFields = b
		}
	}

	for name, values := range r.Headers() {
		s.Headers[name] = strings.Join(values, "\n")
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ToRequest builds the net/http request described by s. It returns a
// failure if the URL, method or headers cannot be sent.
func (s *Settings) ToRequest(ctx context.Context) (*http.Request, *Failure) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, &Failure{Code: CodeMalformedURL, Message: err.Error(), Err: err}
	}
	if !allowed(s.Protocols, u.Scheme) {
		return nil, &Failure{
			Code:    CodeUnsupportedProtocol,
			Message: fmt.Sprintf("protocol %q not supported or disabled", u.Scheme),
		}
	}
	if u.Host == "" {
		return nil, &Failure{Code: CodeMalformedURL, Message: fmt.Sprintf("no host in URL %q", s.URL)}
	}
	if !validMethod(s.Method) {
		return nil, &Failure{Code: CodeBadRequest, Message: fmt.Sprintf("invalid method %q", s.Method)}
	}

	req, err := http.NewRequestWithContext(ctx, s.Method, u.String(), nil)
	if err != nil {
		return nil, &Failure{Code: CodeBadRequest, Message: err.Error(), Err: err}
	}

	for name, joined := range s.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, &Failure{Code: CodeBadRequest, Message: fmt.Sprintf("invalid header name %q", name)}
		}
		for _, v := range strings.Split(joined, "\n") {
			v = strings.TrimRight(v, "\r")
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, &Failure{Code: CodeBadRequest, Message: fmt.Sprintf("invalid value for header %q", name)}
			}
			if strings.EqualFold(name, "Host") {
				req.Host = v
				continue
			}
			req.Header.Add(name, v)
		}
	}

	switch {
	case s.NoBody:
	case s.Upload != nil:
		req.Body = ioutil.NopCloser(s.Upload)
		req.ContentLength = s.UploadSize
		if req.ContentLength == 0 {
			req.Body = http.NoBody
		}
	case len(s.PostFields) > 0:
		body := s.PostFields
		req.Body = ioutil.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(body)), nil
		}
		req.ContentLength = int64(len(body))
	}

	return req, nil
}

func allowed(protocols []string, scheme string) bool {
	scheme = strings.ToLower(scheme)
	for _, p := range protocols {
		if strings.ToLower(p) == scheme {
			return true
		}
	}
	return false
}

func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
