package ratelimiter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiterAllow(t *testing.T) {
	t.Run("allows requests within burst", func(t *testing.T) {
		l := New(1, 3, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("u1"))
		assert.True(t, l.Allow("u1"))
		assert.True(t, l.Allow("u1"))
	})

	t.Run("denies once burst is depleted", func(t *testing.T) {
		l := New(0.001, 2, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("u1"))
		assert.True(t, l.Allow("u1"))
		assert.False(t, l.Allow("u1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := New(0.001, 1, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("u1"))
		assert.False(t, l.Allow("u1"))
		assert.True(t, l.Allow("u2"))
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		l := New(100, 1, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("u1"))
		assert.False(t, l.Allow("u1"))

		time.Sleep(50 * time.Millisecond) // 100/s refills well past one token

		assert.True(t, l.Allow("u1"))
	})

	t.Run("refill does not exceed burst", func(t *testing.T) {
		l := New(1000, 2, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("u1"))
		time.Sleep(20 * time.Millisecond)

		// Only burst tokens available no matter how long the idle period was
		assert.True(t, l.Allow("u1"))
		assert.True(t, l.Allow("u1"))
		assert.False(t, l.Allow("u1"))
	})
}

func TestKeyedLimiterEviction(t *testing.T) {
	l := New(1, 1, 30*time.Millisecond)
	defer l.Stop()

	l.Allow("u1")
	assert.Equal(t, 1, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 },
		time.Second, 10*time.Millisecond, "idle bucket should be evicted")
}

func TestKeyedLimiterConcurrentAccess(t *testing.T) {
	l := New(1000, 1000, time.Minute)
	defer l.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("u%d", n%5)
			for j := 0; j < 20; j++ {
				l.Allow(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, l.Len())
}
