// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package message contains the HTTP message model shared by the client
and by any server-side adapter: Message (headers, body, protocol
version), and the two concrete message types Request and Response.

Header names are case-insensitive. A header may occur more than once,
in which case Header returns the values joined by a comma and
HeaderValues returns them individually:

	r, err := message.NewRequest("GET", "https://example.com/", nil, nil)
	...
	r.AddHeader("X-Foo", "a")
	r.AddHeader("x-foo", "b")
	r.Header("X-FOO")       // "a,b"
	r.HeaderValues("X-Foo") // []string{"a", "b"}

A message body is either absent, a finite byte slice, or a stream
(io.Reader). Use BodyAsString to read the body as a string; if the
message carries a Content-Length header, at most that many bytes are
read from a stream body.

A Response always carries a status code in the range [100, 999]. The
status text defaults to the standard reason phrase for the code:

	resp, err := message.NewResponse(204)
	resp.StatusText() // "No Content"
	err = resp.SetStatus("402 Custom Text")
	resp.StatusCode() // 402
	resp.StatusText() // "Custom Text"
*/
package message
