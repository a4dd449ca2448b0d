// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hook

import "fmt"

// A Registry holds the listener chains for each hook name. Install a
// Registry in a client to extend it with custom functionality.
//
// The zero value is an empty registry. A Registry is not safe for
// concurrent use by multiple goroutines.
type Registry struct {
	listeners map[string][]Listener
}

// On adds a listener to the back of the listener chain for the named
// hook.
//
// On panics if l is nil, or if name is not a valid hook name (see
// Valid).
func (r *Registry) On(name string, l Listener) {
	if l == nil {
		panic("httpkit/hook: nil listener")
	}
	if !Valid(name) {
		panic(fmt.Sprintf("httpkit/hook: invalid hook name %q", name))
	}
	if r.listeners == nil {
		r.listeners = make(map[string][]Listener)
	}
	r.listeners[name] = append(r.listeners[name], l)
}

// Len returns the number of listeners registered for the named hook.
func (r *Registry) Len(name string) int {
	if r == nil {
		return 0
	}
	return len(r.listeners[name])
}

// Emit synchronously invokes, in registration order, every listener
// registered for the named hook, passing each the same args.
//
// Listeners added while Emit is running are not invoked by that
// emission. Emit panics if args does not belong to the hook's family,
// for example if *ErrorArgs is emitted on BeforeRequest.
func (r *Registry) Emit(name string, args Args) {
	k := kindOf(name)
	if k == kindInvalid {
		panic(fmt.Sprintf("httpkit/hook: invalid hook name %q", name))
	}
	if args == nil || args.kind() != k {
		panic(fmt.Sprintf("httpkit/hook: invalid args %T for hook %q", args, name))
	}
	if r == nil {
		return
	}
	for _, l := range r.listeners[name] {
		l.Handle(name, args)
	}
}

// A Listener handles the emission of a hook.
type Listener interface {
	Handle(name string, args Args)
}

// The ListenerFunc type is an adapter to allow the use of ordinary
// functions as listeners.
type ListenerFunc func(name string, args Args)

// Handle calls f(name, args).
func (f ListenerFunc) Handle(name string, args Args) {
	f(name, args)
}

// BeforeRequestFunc adapts a function to a BeforeRequest listener.
type BeforeRequestFunc func(*BeforeRequestArgs)

// Handle calls f if args is *BeforeRequestArgs.
func (f BeforeRequestFunc) Handle(_ string, args Args) {
	if a, ok := args.(*BeforeRequestArgs); ok {
		f(a)
	}
}

// AfterRequestFunc adapts a function to an AfterRequest listener.
type AfterRequestFunc func(*AfterRequestArgs)

// Handle calls f if args is *AfterRequestArgs.
func (f AfterRequestFunc) Handle(_ string, args Args) {
	if a, ok := args.(*AfterRequestArgs); ok {
		f(a)
	}
}

// ErrorFunc adapts a function to an Error or ErrorStatus listener.
type ErrorFunc func(*ErrorArgs)

// Handle calls f if args is *ErrorArgs.
func (f ErrorFunc) Handle(_ string, args Args) {
	if a, ok := args.(*ErrorArgs); ok {
		f(a)
	}
}

// ExceptionFunc adapts a function to an Exception listener.
type ExceptionFunc func(*ExceptionArgs)

// Handle calls f if args is *ExceptionArgs.
func (f ExceptionFunc) Handle(_ string, args Args) {
	if a, ok := args.(*ExceptionArgs); ok {
		f(a)
	}
}
