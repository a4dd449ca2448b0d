// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"github.com/gogama/httpkit/message"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// DefaultDoer is the HTTPDoer used by an HTTP transport whose Doer
// field is nil. It does not follow redirects unless the attempt's
// Settings have FollowLocation set.
var DefaultDoer HTTPDoer = &http.Client{CheckRedirect: CheckRedirect}

var (
	errRedirectProtocol = errors.New("redirect protocol not allowed")
	errTooManyRedirects = errors.New("too many redirects")
)

// HTTP is a Transport built on an HTTPDoer, typically an http.Client.
// The zero value is ready to use and sends requests with DefaultDoer.
//
// A custom http.Client used as the Doer should set its CheckRedirect
// field to CheckRedirect so that redirects are left to the caller.
type HTTP struct {
	// Doer sends the net/http requests. If nil, DefaultDoer is used.
	Doer HTTPDoer
	// Options are applied, in order, to the Settings of every attempt.
	Options []Option
}

type recorderKey struct{}

type recorder struct {
	settings *Settings
	blocks   []string
}

// Do sends one attempt of r and returns its raw result. The response
// body is read completely before Do returns.
func (t *HTTP) Do(ctx context.Context, r *message.Request) Result {
	s := NewSettings(r, t.Options...)
	req, f := s.ToRequest(ctx)
	if f != nil {
		return Result{Failure: f}
	}

	rec := &recorder{settings: s}
	req = req.WithContext(context.WithValue(req.Context(), recorderKey{}, rec))
	resp, err := t.doer().Do(req)
	if err != nil {
		return Result{Failure: failure(err, CodeUnknown)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body []byte
	if !s.NoBody {
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return Result{Failure: failure(err, CodeRecv)}
		}
	}

	rec.blocks = append(rec.blocks, headerBlock(resp))
	return Result{
		StatusCode: resp.StatusCode,
		Header:     strings.Join(rec.blocks, "\r\n"),
		Body:       body,
	}
}

// NewMultiplexer returns a Multiplexer that runs each attempt added to
// it on its own goroutine using t.
func (t *HTTP) NewMultiplexer() Multiplexer {
	return newMultiplexer(t)
}

// CloseIdleConnections invokes the same method on the transport's
// Doer, if it has one.
func (t *HTTP) CloseIdleConnections() {
	type idleCloser interface {
		CloseIdleConnections()
	}
	if ic, ok := t.doer().(idleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (t *HTTP) doer() HTTPDoer {
	if t.Doer == nil {
		return DefaultDoer
	}

	return t.Doer
}

// CheckRedirect is an http.Client CheckRedirect function which applies
// the FollowLocation, MaxRedirs and RedirectProtocols settings of the
// attempt in progress. Requests not sent by an HTTP transport are
// never redirected.
func CheckRedirect(req *http.Request, via []*http.Request) error {
	rec, _ := req.Context().Value(recorderKey{}).(*recorder)
	if rec == nil || !rec.settings.FollowLocation {
		return http.ErrUseLastResponse
	}
	s := rec.settings
	if len(via) > s.MaxRedirs {
		return errTooManyRedirects
	}
	if !allowed(s.RedirectProtocols, req.URL.Scheme) {
		return fmt.Errorf("%w: %q", errRedirectProtocol, req.URL.Scheme)
	}
	if req.Response != nil {
		rec.blocks = append(rec.blocks, headerBlock(req.Response))
	}
	return nil
}

func failure(err error, fallback Code) *Failure {
	code := Classify(err)
	switch {
	case errors.Is(err, errRedirectProtocol):
		code = CodeUnsupportedProtocol
	case errors.Is(err, errTooManyRedirects):
		code = CodeTooManyRedirects
	case code == CodeUnknown:
		code = fallback
	}
	return &Failure{Code: code, Message: err.Error(), Err: err}
}

func headerBlock(resp *http.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "HTTP/%d.%d %s\r\n", resp.ProtoMajor, resp.ProtoMinor, resp.Status)
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}
