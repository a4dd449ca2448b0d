// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDecider(t *testing.T) {
	t.Run("Retryable status codes", func(t *testing.T) {
		codes := []int{429, 502, 503, 504}
		for i, code := range codes {
			a := Attempt{StatusCode: code}
			t.Run(fmt.Sprintf("codes[%d]=%d", i, code), func(t *testing.T) {
				for j := 0; j < DefaultTimes; j++ {
					a.Count = j
					assert.True(t, DefaultDecider(a), fmt.Sprintf("Expect true for attempt %d", j))
				}
				a.Count = DefaultTimes
				assert.False(t, DefaultDecider(a), fmt.Sprintf("Expect false for attempt %d", a.Count))
			})
		}
	})
	t.Run("Non-retryable status codes", func(t *testing.T) {
		codes := []int{200, 201, 202, 203, 204, 205, 400, 401, 402, 403, 404, 500}
		for i, code := range codes {
			a := Attempt{StatusCode: code}
			t.Run(fmt.Sprintf("codes[%d]=%d", i, code), func(t *testing.T) {
				a.Count = 0
				assert.False(t, DefaultDecider(a), "Expect false for attempt 0")
				a.Count = 4
				assert.False(t, DefaultDecider(a), "Expect false for attempt 4")
			})
		}
	})
	t.Run("Transient errors", func(t *testing.T) {
		for i, te := range transientErrs {
			a := Attempt{Err: te}
			t.Run(fmt.Sprintf("transientErrs[%d]=%v", i, te), func(t *testing.T) {
				for j := 0; j < DefaultTimes; j++ {
					a.Count = j
					assert.True(t, DefaultDecider(a), fmt.Sprintf("Expect true for attempt %d", j))
				}
				a.Count = DefaultTimes
				assert.False(t, DefaultDecider(a), fmt.Sprintf("Expect false for attempt %d", a.Count))
			})
		}
	})
	t.Run("Non-transient errors", func(t *testing.T) {
		for i, nte := range nonTransientErrs {
			a := Attempt{Err: nte}
			t.Run(fmt.Sprintf("nonTransientErrs[%d]=%v", i, nte), func(t *testing.T) {
				a.Count = 0
				assert.False(t, DefaultDecider(a), "Expect false for attempt 0")
				a.Count = 4
				assert.False(t, DefaultDecider(a), "Expect false for attempt 4")
			})
		}
	})
}

func TestTransientErr(t *testing.T) {
	for i, te := range transientErrs {
		t.Run(fmt.Sprintf("transientErrs[%d]=%v", i, te), func(t *testing.T) {
			assert.True(t, transientErr(Attempt{Err: te}))
			assert.True(t, transientErr(Attempt{Err: &url.Error{Err: te}}))
		})
	}
	for j, nte := range nonTransientErrs {
		t.Run(fmt.Sprintf("nonTransientErrs[%d]=%v", j, nte), func(t *testing.T) {
			assert.False(t, transientErr(Attempt{Err: nte}))
			assert.False(t, transientErr(Attempt{Err: &url.Error{Err: nte}}))
		})
	}
}

func TestDeciderAnd(t *testing.T) {
	true_ := DeciderFunc(func(_ Attempt) bool { return true })
	false_ := DeciderFunc(func(_ Attempt) bool { return false })
	assert.True(t, true_.And(true_).Decide(Attempt{}))
	assert.False(t, true_.And(false_).Decide(Attempt{}))
	assert.False(t, false_.And(true_).Decide(Attempt{}))
	assert.False(t, false_.And(false_).Decide(Attempt{}))
}

func TestDeciderOr(t *testing.T) {
	true_ := DeciderFunc(func(_ Attempt) bool { return true })
	false_ := DeciderFunc(func(_ Attempt) bool { return false })
	assert.True(t, true_.Or(true_).Decide(Attempt{}))
	assert.True(t, true_.Or(false_).Decide(Attempt{}))
	assert.True(t, false_.Or(true_).Decide(Attempt{}))
	assert.False(t, false_.Or(false_).Decide(Attempt{}))
}

func TestTimes(t *testing.T) {
	zero := Times(0)
	assert.False(t, zero(Attempt{}))
	one := Times(1)
	assert.True(t, one(Attempt{}))
	assert.False(t, one(Attempt{Count: 1}))
	two := Times(2)
	assert.True(t, two(Attempt{Count: 1}))
	assert.False(t, two(Attempt{Count: 2}))
}

func TestBefore(t *testing.T) {
	before := Before(time.Minute)
	assert.True(t, before(Attempt{}))
	assert.True(t, before(Attempt{Count: 20, Elapsed: 59 * time.Second}))
	assert.False(t, before(Attempt{Elapsed: time.Minute}))
	assert.False(t, before(Attempt{Elapsed: 2 * time.Minute}))
}

func TestRetryAfterWithin(t *testing.T) {
	within := RetryAfterWithin(5 * time.Second)
	assert.True(t, within(Attempt{StatusCode: 503}))
	assert.True(t, within(Attempt{StatusCode: 503, RetryAfter: 5 * time.Second}))
	assert.False(t, within(Attempt{StatusCode: 503, RetryAfter: 6 * time.Second}))

	assert.True(t, DefaultDecider(Attempt{StatusCode: 429, RetryAfter: MaxRetryAfter}))
	assert.False(t, DefaultDecider(Attempt{StatusCode: 429, RetryAfter: MaxRetryAfter + time.Second}))
}

func TestStatusCode(t *testing.T) {
	empty := StatusCode()
	assert.False(t, empty(Attempt{}))
	one := StatusCode(602)
	assert.False(t, one(Attempt{}))
	assert.True(t, one(Attempt{StatusCode: 602}))
	two := StatusCode(509, 602)
	assert.True(t, two(Attempt{StatusCode: 602}))
	assert.True(t, two(Attempt{StatusCode: 509}))
	assert.False(t, two(Attempt{StatusCode: 508}))
}

var (
	transientErrs = []error{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ETIMEDOUT,
	}
	nonTransientErrs = []error{
		nil,
		errors.New("ain't transient"),
		syscall.EHOSTUNREACH,
		syscall.ENETDOWN,
	}
)
