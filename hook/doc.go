// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package hook provides the named extension points of the HTTP client.

A Registry maps hook names to ordered chains of listeners. The client
emits these hooks while executing a request:

	beforeRequest   once, before the first attempt
	exception       after each attempt that failed at the transport level
	error           after each attempt that got a status code >= 400
	error:<code>    right after error, with the same arguments
	afterRequest    once, after the final response was received

Listeners of error, error:<code> and exception can ask the client to
retry by setting the shared retry Decision:

	reg := &hook.Registry{}
	reg.On(hook.ErrorStatus(503), hook.ErrorFunc(func(a *hook.ErrorArgs) {
		a.Retry.Set(a.Attempt < 3)
	}))

Every listener of one emission receives the same Args value, so a
listener sees (and may overwrite) the decision made by the listeners
before it. The client only acts on the final value. The client enforces
no retry ceiling of its own: a listener that always sets the decision
causes the request to be retried forever.
*/
package hook
