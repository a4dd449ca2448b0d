// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/httpkit/hook"
	"github.com/gogama/httpkit/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Decider", func(t *testing.T) {
		s := []int{429, 502, 503, 504}
		for i := 0; i < DefaultTimes; i++ {
			assert.True(t, DefaultPolicy.Decide(Attempt{Count: i, StatusCode: s[i%len(s)]}))
			assert.True(t, DefaultPolicy.Decide(Attempt{Count: i, Err: syscall.ECONNRESET}))
		}
		assert.False(t, DefaultPolicy.Decide(Attempt{Count: DefaultTimes, Err: syscall.ETIMEDOUT}))
	})
	t.Run("Waiter", func(t *testing.T) {
		m := []int{50, 100, 200, 400, 800, 1000}
		total := time.Duration(0)
		for i, max := range m {
			w := DefaultPolicy.Wait(Attempt{Count: i})
			total += w
			assert.GreaterOrEqual(t, w, time.Duration(0))
			assert.LessOrEqual(t, w, time.Duration(max)*time.Millisecond)
		}
		assert.Greater(t, total, time.Duration(0))
	})
}

func TestNever(t *testing.T) {
	assert.False(t, Never.Decide(Attempt{}))
	assert.False(t, Never.Decide(Attempt{StatusCode: 503}))
}

func TestNewPolicy(t *testing.T) {
	p := &testPolicy{retry: true, wait: time.Second}
	t.Run("Bad Args", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpkit/retry: nil decider", func() { NewPolicy(nil, p) })
		assert.PanicsWithValue(t, "httpkit/retry: nil waiter", func() { NewPolicy(p, nil) })
	})
	t.Run("Normal", func(t *testing.T) {
		P := NewPolicy(p, p)
		assert.True(t, P.Decide(Attempt{}))
		assert.Equal(t, 1, p.d)
		assert.Equal(t, time.Second, P.Wait(Attempt{}))
		assert.Equal(t, 1, p.w)
	})
}

func TestInstall(t *testing.T) {
	req, err := message.NewRequest("GET", "http://example.com/", nil, nil)
	require.NoError(t, err)
	resp, err := message.NewResponse(503)
	require.NoError(t, err)

	t.Run("records start", func(t *testing.T) {
		var reg hook.Registry
		Install(&reg, Never)
		args := &hook.BeforeRequestArgs{Request: req}
		reg.Emit(hook.BeforeRequest, args)
		require.NotSame(t, req, args.Request)
		start, ok := args.Request.Context().Value(startKey{}).(time.Time)
		require.True(t, ok)
		assert.False(t, start.IsZero())

		again := &hook.BeforeRequestArgs{Request: args.Request}
		reg.Emit(hook.BeforeRequest, again)
		assert.Same(t, args.Request, again.Request)
	})
	t.Run("error retried", func(t *testing.T) {
		var reg hook.Registry
		p := &testPolicy{retry: true, wait: time.Millisecond}
		Install(&reg, p)
		args := &hook.ErrorArgs{Request: req, Response: resp, Retry: &hook.Decision{}, Attempt: 2}
		reg.Emit(hook.Error, args)
		assert.True(t, args.Retry.Retry())
		assert.Equal(t, []Attempt{{Count: 2, StatusCode: 503}}, p.seen)
		assert.Equal(t, 1, p.w)
	})
	t.Run("retry after", func(t *testing.T) {
		var reg hook.Registry
		p := &testPolicy{}
		Install(&reg, p)
		throttled, err := message.NewResponse(429)
		require.NoError(t, err)
		throttled.UpdateHeader("Retry-After", "3")
		reg.Emit(hook.Error, &hook.ErrorArgs{Request: req, Response: throttled, Retry: &hook.Decision{}})
		require.Len(t, p.seen, 1)
		assert.Equal(t, 3*time.Second, p.seen[0].RetryAfter)
	})
	t.Run("exception not retried", func(t *testing.T) {
		var reg hook.Registry
		p := &testPolicy{}
		Install(&reg, p)
		args := &hook.ExceptionArgs{Request: req, Err: syscall.ECONNRESET, Retry: &hook.Decision{}}
		reg.Emit(hook.Exception, args)
		assert.False(t, args.Retry.Retry())
		assert.Equal(t, 1, p.d)
		assert.Equal(t, 0, p.w)
		assert.Equal(t, syscall.ECONNRESET, p.seen[0].Err)
	})
	t.Run("earlier decision kept", func(t *testing.T) {
		var reg hook.Registry
		Install(&reg, Never)
		args := &hook.ErrorArgs{Request: req, Response: resp, Retry: &hook.Decision{}}
		args.Retry.Set(true)
		reg.Emit(hook.Error, args)
		assert.True(t, args.Retry.Retry())
	})
	t.Run("context done while waiting", func(t *testing.T) {
		var reg hook.Registry
		Install(&reg, &testPolicy{retry: true, wait: time.Hour})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		args := &hook.ErrorArgs{Request: req.WithContext(ctx), Response: resp, Retry: &hook.Decision{}}
		reg.Emit(hook.Error, args)
		assert.False(t, args.Retry.Retry())
	})
	t.Run("elapsed", func(t *testing.T) {
		var reg hook.Registry
		p := &testPolicy{}
		Install(&reg, p)
		ctx := context.WithValue(context.Background(), startKey{}, time.Now().Add(-time.Minute))
		args := &hook.ErrorArgs{Request: req.WithContext(ctx), Response: resp, Retry: &hook.Decision{}}
		reg.Emit(hook.Error, args)
		require.Len(t, p.seen, 1)
		assert.GreaterOrEqual(t, p.seen[0].Elapsed, time.Minute)
	})
	t.Run("nil policy", func(t *testing.T) {
		var reg hook.Registry
		Install(&reg, nil)
		assert.Equal(t, 1, reg.Len(hook.BeforeRequest))
		assert.Equal(t, 1, reg.Len(hook.Error))
		assert.Equal(t, 1, reg.Len(hook.Exception))
	})
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
	testCases := []struct {
		header   string
		expected time.Duration
	}{
		{"", 0},
		{"0", 0},
		{"-5", 0},
		{" 120 ", 2 * time.Minute},
		{"99999999999999", maxRetryAfterSeconds * time.Second},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Hour).Format(http.TimeFormat), 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.header, func(t *testing.T) {
			resp, err := message.NewResponse(503)
			require.NoError(t, err)
			if testCase.header != "" {
				resp.UpdateHeader("Retry-After", testCase.header)
			}
			assert.Equal(t, testCase.expected, retryAfter(resp, now))
		})
	}
}

type testPolicy struct {
	retry bool
	wait  time.Duration
	d     int
	w     int
	seen  []Attempt
}

func (p *testPolicy) Decide(a Attempt) bool {
	p.d++
	p.seen = append(p.seen, a)
	return p.retry
}

func (p *testPolicy) Wait(_ Attempt) time.Duration {
	p.w++
	return p.wait
}
