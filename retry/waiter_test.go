// Copyright 2021 The httpkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWaiter(t *testing.T) {
	t.Run("backoff", func(t *testing.T) {
		ceilings := []time.Duration{50, 100, 200, 400, 800, 1000, 1000, 1000}
		for count, ceiling := range ceilings {
			wait := DefaultWaiter.Wait(Attempt{Count: count, StatusCode: 503})
			assert.GreaterOrEqual(t, wait, time.Duration(0))
			assert.Less(t, wait, ceiling*time.Millisecond, count)
		}
	})
	t.Run("server delay", func(t *testing.T) {
		assert.Equal(t, 4*time.Second, DefaultWaiter.Wait(Attempt{Count: 3, RetryAfter: 4 * time.Second}))
		assert.Equal(t, MaxRetryAfter, DefaultWaiter.Wait(Attempt{RetryAfter: time.Hour}))
	})
}

func TestNewFixedWaiter(t *testing.T) {
	w := NewFixedWaiter(3 * time.Second)
	for count := 0; count < 5; count++ {
		assert.Equal(t, 3*time.Second, w.Wait(Attempt{Count: count}))
	}
}

func TestNewExpWaiter(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpkit/retry: base must be positive", func() {
			NewExpWaiter(0, time.Second, nil)
		})
		assert.PanicsWithValue(t, "httpkit/retry: max must be at least base", func() {
			NewExpWaiter(2*time.Second, time.Second, nil)
		})
	})
	t.Run("ceiling", func(t *testing.T) {
		w := NewExpWaiter(10*time.Millisecond, 75*time.Millisecond, nil)
		expected := []time.Duration{10, 20, 40, 75, 75}
		for count, ms := range expected {
			assert.Equal(t, ms*time.Millisecond, w.Wait(Attempt{Count: count}), count)
		}
	})
	t.Run("no overflow", func(t *testing.T) {
		max := time.Duration(1<<63 - 1)
		w := NewExpWaiter(time.Hour, max, nil)
		for _, count := range []int{40, 63, 64, 1000} {
			assert.Equal(t, max, w.Wait(Attempt{Count: count}), count)
		}
	})
	t.Run("jitter", func(t *testing.T) {
		w := NewExpWaiter(time.Millisecond, time.Second, rand.NewSource(42))
		same := NewExpWaiter(time.Millisecond, time.Second, rand.NewSource(42))
		distinct := map[time.Duration]bool{}
		for i := 0; i < 100; i++ {
			a := Attempt{Count: 10}
			wait := w.Wait(a)
			require.Equal(t, wait, same.Wait(a), "same seed gives same waits")
			assert.GreaterOrEqual(t, wait, time.Duration(0))
			assert.Less(t, wait, time.Second)
			distinct[wait] = true
		}
		assert.Greater(t, len(distinct), 50)
	})
}

func TestServerDelay(t *testing.T) {
	w := ServerDelay(NewFixedWaiter(time.Millisecond), 5*time.Second)
	testCases := []struct {
		retryAfter time.Duration
		expected   time.Duration
	}{
		{0, time.Millisecond},
		{-time.Second, time.Millisecond},
		{2 * time.Second, 2 * time.Second},
		{5 * time.Second, 5 * time.Second},
		{time.Minute, 5 * time.Second},
	}
	for _, testCase := range testCases {
		t.Run(strconv.Itoa(int(testCase.retryAfter/time.Second)), func(t *testing.T) {
			assert.Equal(t, testCase.expected, w.Wait(Attempt{StatusCode: 429, RetryAfter: testCase.retryAfter}))
		})
	}
	assert.PanicsWithValue(t, "httpkit/retry: nil waiter", func() { ServerDelay(nil, time.Second) })
}

func TestWaiterFunc(t *testing.T) {
	w := WaiterFunc(func(a Attempt) time.Duration { return time.Duration(a.Count) * time.Second })
	assert.Equal(t, 3*time.Second, w.Wait(Attempt{Count: 3}))
}
