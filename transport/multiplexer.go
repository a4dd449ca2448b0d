// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"

	"github.com/gogama/httpkit/message"
	"github.com/google/uuid"
)

type multiplexer struct {
	t           Transport
	mu          sync.Mutex
	cond        *sync.Cond
	ready       []Completion
	outstanding int
}

func newMultiplexer(t Transport) *multiplexer {
	m := &multiplexer{t: t}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *multiplexer) Add(ctx context.Context, r *message.Request) Handle {
	h := Handle(uuid.NewString())
	m.mu.Lock()
	m.outstanding++
	m.mu.Unlock()

	go func() {
		res := m.t.Do(ctx, r)
		m.mu.Lock()
		m.ready = append(m.ready, Completion{Handle: h, Result: res})
		m.mu.Unlock()
		m.cond.Signal()
	}()

	return h
}

func (m *multiplexer) Perform() []Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	done := m.ready
	m.ready = nil
	m.outstanding -= len(done)
	return done
}

func (m *multiplexer) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.ready) == 0 && m.outstanding > 0 {
		m.cond.Wait()
	}
}

func (m *multiplexer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outstanding
}
