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

package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPubSub(t *testing.T) {
	t.Run("With subscriber counts", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		count, err := client.Publish(ctx, "actor:a1", []byte("hello"))
		require.NoError(t, err)
		assert.Zero(t, count)

		sub, err := client.Subscribe(ctx, "actor:a1")
		require.NoError(t, err)

		count, err = client.Publish(ctx, "actor:a1", []byte("hello"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		select {
		case payload := <-sub.Messages():
			assert.Equal(t, []byte("hello"), payload)
		case <-time.After(time.Second):
			t.Fatal("expected a delivery within a second")
		}
	})
	t.Run("With independent channels", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		first, err := client.Subscribe(ctx, "proxy:p1")
		require.NoError(t, err)
		second, err := client.Subscribe(ctx, "proxy:p2")
		require.NoError(t, err)

		count, err := client.Publish(ctx, "proxy:p1", []byte("only p1"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		select {
		case payload := <-first.Messages():
			assert.Equal(t, []byte("only p1"), payload)
		case <-time.After(time.Second):
			t.Fatal("expected a delivery within a second")
		}

		select {
		case payload := <-second.Messages():
			t.Fatalf("unexpected delivery: %s", payload)
		case <-time.After(50 * time.Millisecond):
		}
	})
	t.Run("With unsubscription", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		sub, err := client.Subscribe(ctx, "actor:a1")
		require.NoError(t, err)
		require.NoError(t, sub.Close())

		count, err := client.Publish(ctx, "actor:a1", []byte("nobody home"))
		require.NoError(t, err)
		assert.Zero(t, count)

		_, open := <-sub.Messages()
		assert.False(t, open)
	})
	t.Run("With client close", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()

		sub, err := client.Subscribe(ctx, "actor:a1")
		require.NoError(t, err)

		require.NoError(t, client.Close())
		require.NoError(t, client.Close())

		_, open := <-sub.Messages()
		assert.False(t, open)
	})
}

func TestMemoryKeyOperations(t *testing.T) {
	t.Run("With SetIfAbsent", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		ok, err := client.SetIfAbsent(ctx, "k", "first")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = client.SetIfAbsent(ctx, "k", "second")
		require.NoError(t, err)
		assert.False(t, ok)

		value, found, err := client.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "first", value)
	})
	t.Run("With GetAndSet", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		previous, existed, err := client.GetAndSet(ctx, "k", "v1")
		require.NoError(t, err)
		assert.False(t, existed)
		assert.Empty(t, previous)

		previous, existed, err = client.GetAndSet(ctx, "k", "v2")
		require.NoError(t, err)
		require.True(t, existed)
		assert.Equal(t, "v1", previous)
	})
	t.Run("With Delete", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		ok, err := client.SetIfAbsent(ctx, "k", "v")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, client.Delete(ctx, "k"))
		require.NoError(t, client.Delete(ctx, "k"))

		_, found, err := client.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})
	t.Run("With Expire", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		now := time.Now()
		client.clock = func() time.Time { return now }

		ok, err := client.SetIfAbsent(ctx, "k", "v")
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, client.Expire(ctx, "k", time.Second))

		_, found, err := client.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)

		// advance past the TTL
		client.clock = func() time.Time { return now.Add(2 * time.Second) }

		_, found, err = client.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)

		// an expired key is absent for SetIfAbsent too
		ok, err = client.SetIfAbsent(ctx, "k", "fresh")
		require.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("With GetAndSet clearing the TTL", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })

		now := time.Now()
		client.clock = func() time.Time { return now }

		ok, err := client.SetIfAbsent(ctx, "k", "v")
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, client.Expire(ctx, "k", time.Second))

		_, existed, err := client.GetAndSet(ctx, "k", "replaced")
		require.NoError(t, err)
		require.True(t, existed)

		client.clock = func() time.Time { return now.Add(time.Hour) }

		value, found, err := client.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "replaced", value)
	})
	t.Run("With Expire on an absent key", func(t *testing.T) {
		ctx := context.TODO()
		client := NewMemoryClient()
		t.Cleanup(func() { _ = client.Close() })
		assert.NoError(t, client.Expire(ctx, "nope", time.Second))
	})
}
