// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"errors"
	"fmt"
)

var errBadBodyType = errors.New("httpkit/message: invalid body type (use nil, " +
	"string, []byte or io.Reader)")

// A ValidationError is returned when a Response is given a status that
// is not a number in the range [100, 999].
type ValidationError struct {
	// Status is the rejected status, as given.
	Status string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("httpkit/message: the HTTP status code must be exactly 3 digits, got %q", e.Status)
}

// A PathOutOfBaseError is returned by Request.Path when the request URL
// is not located under the request's base URL.
type PathOutOfBaseError struct {
	URL     string
	BaseURL string
}

func (e *PathOutOfBaseError) Error() string {
	return fmt.Sprintf("httpkit/message: requested uri (%s) is out of base uri (%s)", e.URL, e.BaseURL)
}
