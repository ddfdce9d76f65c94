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

package syncmap

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMap(t *testing.T) {
	t.Run("With Set Get Delete", func(t *testing.T) {
		m := New[string, int]()
		m.Set("a", 1)
		m.Set("b", 2)
		require.Equal(t, 2, m.Len())

		val, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, val)

		m.Delete("a")
		_, ok = m.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 1, m.Len())
	})
	t.Run("With Pop", func(t *testing.T) {
		m := New[string, string]()
		m.Set("slot", "value")

		val, ok := m.Pop("slot")
		require.True(t, ok)
		assert.Equal(t, "value", val)

		// the slot is single-use
		_, ok = m.Pop("slot")
		assert.False(t, ok)
		assert.Zero(t, m.Len())
	})
	t.Run("With concurrent Pop", func(t *testing.T) {
		m := New[string, int]()
		m.Set("slot", 42)

		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := m.Pop("slot"); ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, winners.Load())
	})
	t.Run("With Range and Reset", func(t *testing.T) {
		m := New[int, int]()
		for i := 0; i < 10; i++ {
			m.Set(i, i*i)
		}

		seen := 0
		m.Range(func(_ int, _ int) { seen++ })
		assert.Equal(t, 10, seen)

		m.Reset()
		assert.Zero(t, m.Len())
	})
}
