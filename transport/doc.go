// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the low-level boundary between an httpkit
Client and the network, and provides the default implementation, HTTP,
built on the standard net/http package.

A Transport does exactly one thing: send one attempt of a request and
report what came back. It neither follows redirects nor retries; the
Client does both, so that hook listeners see every redirect-free
response and can decide on retries. The raw Result of an attempt is
either a Failure, carrying a Code such as CodeTimeout or
CodeResolveHost, or a status code with the raw response header block
and the fully-read body.

For concurrent execution a Transport hands out Multiplexers. Attempts
are added to a Multiplexer, each receiving a unique Handle, and
Perform collects the ones that have completed:

	m := t.NewMultiplexer()
	h1 := m.Add(ctx, r1)
	h2 := m.Add(ctx, r2)
	for m.Len() > 0 {
		m.Wait()
		for _, c := range m.Perform() {
			// c.Handle is h1 or h2, c.Result is its result.
		}
	}

The HTTP transport derives per-attempt Settings from each request,
which may be adjusted with Options:

	t := &transport.HTTP{
		Options: []transport.Option{
			func(s *transport.Settings) {
				s.Protocols = []string{"https"}
			},
		},
	}
*/
package transport
