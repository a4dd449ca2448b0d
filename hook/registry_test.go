// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hook

import (
	"fmt"
	"testing"

	"github.com/gogama/httpkit/message"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	var calls []string
	var seen []Args
	l1 := &testListener{seq: 1, calls: &calls, seen: &seen}
	l2 := &testListener{seq: 2, calls: &calls, seen: &seen}
	r := &Registry{}
	t.Run("On", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpkit/hook: nil listener", func() { r.On(BeforeRequest, nil) })
		assert.Panics(t, func() { r.On("beforerequest", l1) })
		assert.Panics(t, func() { r.On("error:42", l1) })
		r.On(BeforeRequest, l1)
		r.On(BeforeRequest, l2)
		r.On(ErrorStatus(404), l1)
		assert.Equal(t, 2, r.Len(BeforeRequest))
		assert.Equal(t, 1, r.Len("error:404"))
		assert.Equal(t, 0, r.Len(Error))
	})
	t.Run("Emit", func(t *testing.T) {
		a1 := &BeforeRequestArgs{}
		a2 := &ErrorArgs{Retry: &Decision{}}
		r.Emit(AfterRequest, &AfterRequestArgs{})
		assert.Empty(t, calls)
		r.Emit(BeforeRequest, a1)
		assert.Equal(t, []string{"1.beforeRequest", "2.beforeRequest"}, calls)
		assert.Equal(t, []Args{a1, a1}, seen)
		calls = calls[:0]
		seen = seen[:0]
		r.Emit(Error, a2)
		assert.Empty(t, calls)
		r.Emit(ErrorStatus(404), a2)
		assert.Equal(t, []string{"1.error:404"}, calls)
		assert.Equal(t, []Args{a2}, seen)
	})
	t.Run("Emit bad args", func(t *testing.T) {
		assert.Panics(t, func() { r.Emit(BeforeRequest, &ErrorArgs{}) })
		assert.Panics(t, func() { r.Emit(ErrorStatus(500), &ExceptionArgs{}) })
		assert.Panics(t, func() { r.Emit(Exception, nil) })
		assert.Panics(t, func() { r.Emit("foo", &ExceptionArgs{}) })
	})
	t.Run("nil registry", func(t *testing.T) {
		var nilReg *Registry
		assert.NotPanics(t, func() { nilReg.Emit(BeforeRequest, &BeforeRequestArgs{}) })
		assert.Equal(t, 0, nilReg.Len(BeforeRequest))
	})
}

func TestRegistry_SharedDecision(t *testing.T) {
	r := &Registry{}
	var observed []bool
	r.On(Error, ErrorFunc(func(a *ErrorArgs) {
		observed = append(observed, a.Retry.Retry())
		a.Retry.Set(true)
	}))
	r.On(Error, ErrorFunc(func(a *ErrorArgs) {
		observed = append(observed, a.Retry.Retry())
		a.Retry.Set(false)
	}))
	r.On(Error, ErrorFunc(func(a *ErrorArgs) {
		observed = append(observed, a.Retry.Retry())
		a.Retry.Set(a.Attempt < 2)
	}))
	args := &ErrorArgs{Retry: &Decision{}, Attempt: 1}
	r.Emit(Error, args)
	assert.Equal(t, []bool{false, true, false}, observed)
	assert.True(t, args.Retry.Retry())
}

func TestRegistry_AddDuringEmit(t *testing.T) {
	r := &Registry{}
	n := 0
	var add Listener
	add = BeforeRequestFunc(func(_ *BeforeRequestArgs) {
		n++
		r.On(BeforeRequest, add)
	})
	r.On(BeforeRequest, add)
	r.Emit(BeforeRequest, &BeforeRequestArgs{})
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, r.Len(BeforeRequest))
}

func TestListenerAdapters(t *testing.T) {
	req, _ := message.NewRequest("GET", "http://example.org/", nil, nil)
	resp, _ := message.NewResponse(200)
	var got []string
	before := BeforeRequestFunc(func(a *BeforeRequestArgs) { got = append(got, "before:"+a.Request.URL()) })
	after := AfterRequestFunc(func(a *AfterRequestArgs) { got = append(got, fmt.Sprintf("after:%d", a.Response.StatusCode())) })
	errf := ErrorFunc(func(a *ErrorArgs) { got = append(got, fmt.Sprintf("error:%d", a.Attempt)) })
	exc := ExceptionFunc(func(a *ExceptionArgs) { got = append(got, "exception:"+a.Err.Error()) })
	generic := ListenerFunc(func(name string, _ Args) { got = append(got, "generic:"+name) })

	all := []Args{
		&BeforeRequestArgs{Request: req},
		&AfterRequestArgs{Request: req, Response: resp},
		&ErrorArgs{Request: req, Response: resp, Retry: &Decision{}, Attempt: 3},
		&ExceptionArgs{Request: req, Err: fmt.Errorf("boom"), Retry: &Decision{}},
	}
	for _, args := range all {
		for _, l := range []Listener{before, after, errf, exc} {
			l.Handle("x", args)
		}
	}
	generic.Handle(AfterRequest, all[1])
	assert.Equal(t, []string{
		"before:http://example.org/",
		"after:200",
		"error:3",
		"exception:boom",
		"generic:afterRequest",
	}, got)
}

func TestDecision(t *testing.T) {
	var d Decision
	assert.False(t, d.Retry())
	d.Set(true)
	assert.True(t, d.Retry())
	d.Set(false)
	assert.False(t, d.Retry())
}

type testListener struct {
	seq   int
	calls *[]string
	seen  *[]Args
}

func (l *testListener) Handle(name string, args Args) {
	*l.calls = append(*l.calls, fmt.Sprintf("%d.%s", l.seq, name))
	*l.seen = append(*l.seen, args)
}
