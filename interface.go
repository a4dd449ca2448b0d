// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpkit

import (
	"net/url"

	"github.com/gogama/httpkit/message"
)

// Sender is the interface that wraps the basic Send method.
//
// Send executes a request and returns the final response (and error,
// if any). Client implements the Sender interface, and any other Sender
// implementation must behave substantially the same as Client.Send.
//
// Any Sender can be converted into an Executor via the Inflate
// function.
type Sender interface {
	Send(r *message.Request) (*message.Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Sender can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string) (*message.Response, error)
}

// Header is the interface that wraps the basic Head method.
//
// Any Sender can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string) (*message.Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be nil for an empty body, a string, a []byte,
// or an io.Reader.
//
// Any Sender can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url, contentType string, body interface{}) (*message.Response, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// The request body is set to the URL-encoded keys and values from
// data, and the content type is set to
// application/x-www-form-urlencoded.
//
// Any Sender can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(url string, data url.Values) (*message.Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Send, Get, Head,
// Post, PostForm, and CloseIdleConnections methods.
//
// Any Sender can be converted into an Executor via the Inflate
// function.
type Executor interface {
	Sender
	Getter
	Header
	Poster
	FormPoster
	IdleCloser
}

// Get uses the specified Sender to issue a GET to the specified URL.
//
// To send a request with custom headers, use message.NewRequest and
// s.Send.
func Get(s Sender, url string) (*message.Response, error) {
	return send(s, "GET", url, "", nil)
}

// Head uses the specified Sender to issue a HEAD to the specified URL.
func Head(s Sender, url string) (*message.Response, error) {
	return send(s, "HEAD", url, "", nil)
}

// Post uses the specified Sender to issue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, a string, a []byte,
// or an io.Reader.
func Post(s Sender, url, contentType string, body interface{}) (*message.Response, error) {
	return send(s, "POST", url, contentType, body)
}

// PostForm uses the specified Sender to issue a POST to the specified
// URL, with data's keys and values URL-encoded as the request body.
func PostForm(s Sender, url string, data url.Values) (*message.Response, error) {
	return Post(s, url, "application/x-www-form-urlencoded", data.Encode())
}

func send(s Sender, method, url, contentType string, body interface{}) (*message.Response, error) {
	r, err := message.NewRequest(method, url, nil, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		r.UpdateHeader("Content-Type", contentType)
	}
	return s.Send(r)
}

// Inflate converts any non-nil Sender into an Executor.
func Inflate(s Sender) Executor {
	if s == nil {
		panic("httpkit: nil sender")
	}

	if e, ok := s.(Executor); ok {
		return e
	}

	return inflated{s}
}

type inflated struct {
	sender Sender
}

func (i inflated) Send(r *message.Request) (*message.Response, error) {
	return i.sender.Send(r)
}

func (i inflated) Get(url string) (*message.Response, error) {
	return Get(i.sender, url)
}

func (i inflated) Head(url string) (*message.Response, error) {
	return Head(i.sender, url)
}

func (i inflated) Post(url, contentType string, body interface{}) (*message.Response, error) {
	return Post(i.sender, url, contentType, body)
}

func (i inflated) PostForm(url string, data url.Values) (*message.Response, error) {
	return PostForm(i.sender, url, data)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.sender.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
