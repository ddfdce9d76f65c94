// MIT License
//
// Copyright (c) 2024-2026 Remora Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remoraproject/remora/coordination"
	"github.com/remoraproject/remora/errors"
	"github.com/remoraproject/remora/hook"
)

func TestAcquire(t *testing.T) {
	t.Run("With free lock", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		assert.True(t, acquired)

		// the key exists and carries the expiry value
		_, found, err := client.Get(ctx, mutex.Name("Incr"))
		require.NoError(t, err)
		assert.True(t, found)
	})
	t.Run("With contention before expiry", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client, WithTTL(2*time.Second))
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		acquired, err = mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		assert.False(t, acquired)
	})
	t.Run("With steal after expiry", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		now := time.Now()
		mutex, err := New(client,
			WithTTL(2*time.Second),
			WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		// move past the stored expiry (ttl + 1 second of slack)
		now = now.Add(4 * time.Second)

		acquired, err = mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		assert.True(t, acquired)
	})
	t.Run("With exactly one winner on a free key", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acquired, err := mutex.Acquire(ctx, "Incr")
				require.NoError(t, err)
				if acquired {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, winners.Load())
	})
	t.Run("With distinct methods independent", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		acquired, err = mutex.Acquire(ctx, "Decr")
		require.NoError(t, err)
		assert.True(t, acquired)
	})
	t.Run("With corrupted lock value stolen", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		ok, err := client.SetIfAbsent(ctx, mutex.Name("Incr"), "not a number")
		require.NoError(t, err)
		require.True(t, ok)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		assert.True(t, acquired)
	})
}

func TestRelease(t *testing.T) {
	t.Run("With reacquire after release", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		require.NoError(t, mutex.Release(ctx, "Incr"))

		acquired, err = mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		assert.True(t, acquired)
	})
	t.Run("With unconditional delete", func(t *testing.T) {
		// Release deletes the key even when this caller no longer holds the
		// lock. This documents the inherited delete-after-steal race.
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		now := time.Now()
		first, err := New(client, WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		second, err := New(client, WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		acquired, err := first.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		// the second caller steals the expired lock
		now = now.Add(time.Minute)
		acquired, err = second.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		// the stale first caller's release deletes the second caller's entry
		require.NoError(t, first.Release(ctx, "Incr"))
		_, found, err := client.Get(ctx, first.Name("Incr"))
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestHooks(t *testing.T) {
	t.Run("With veto on contention", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		acquired, err := mutex.Acquire(ctx, "Incr")
		require.NoError(t, err)
		require.True(t, acquired)

		before := mutex.BeforeHook("Incr")
		outcome, err := before(ctx, nil)
		require.NoError(t, err)
		require.True(t, outcome.ShortCircuits())
		assert.True(t, hook.IsVetoed(outcome.Value()))
	})
	t.Run("With acquire and release through the pipeline", func(t *testing.T) {
		ctx := context.TODO()
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client)
		require.NoError(t, err)

		before := mutex.BeforeHook("Incr")
		after := mutex.AfterHook("Incr")

		outcome, err := before(ctx, nil)
		require.NoError(t, err)
		assert.False(t, outcome.ShortCircuits())

		outcome, err = after(ctx, nil, nil)
		require.NoError(t, err)
		assert.False(t, outcome.ShortCircuits())

		_, found, err := client.Get(ctx, mutex.Name("Incr"))
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestOptions(t *testing.T) {
	t.Run("With invalid TTL", func(t *testing.T) {
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		_, err := New(client, WithTTL(0))
		assert.ErrorIs(t, err, errors.ErrInvalidLockTTL)
	})
	t.Run("With context name", func(t *testing.T) {
		client := coordination.NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		mutex, err := New(client, WithContextName("billing"))
		require.NoError(t, err)
		assert.Equal(t, "billing:Incr", mutex.Name("Incr"))

		defaulted, err := New(client)
		require.NoError(t, err)
		assert.Equal(t, DefaultContextName+":Incr", defaulted.Name("Incr"))
	})
}
