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
	"sync"
	"time"
)

// MemoryClient is an in-process implementation of Client. It honors the same
// contract as RedisClient — subscriber counts on publish, atomic key writes,
// lazily enforced TTLs — and is the backbone of the test suites and of
// single-process deployments that do not need a real coordination server.
type MemoryClient struct {
	mu       sync.RWMutex
	channels map[string]map[*memorySubscription]struct{}
	keys     map[string]memoryEntry
	closed   bool
	clock    func() time.Time
}

type memoryEntry struct {
	value    string
	expireAt time.Time
}

// enforce compilation error
var _ Client = (*MemoryClient)(nil)

// NewMemoryClient creates an in-process coordination client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		channels: make(map[string]map[*memorySubscription]struct{}),
		keys:     make(map[string]memoryEntry),
		clock:    time.Now,
	}
}

// Publish delivers the payload to every subscriber of the channel and returns
// how many subscribers received it. Slow subscribers whose buffers are full
// are skipped but still counted, matching the fire-and-forget delivery of the
// Redis implementation.
func (x *MemoryClient) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	subscribers := x.channels[channel]
	for subscriber := range subscribers {
		select {
		case subscriber.messages <- payload:
		default:
		}
	}
	return int64(len(subscribers)), nil
}

// Subscribe attaches to the channel.
func (x *MemoryClient) Subscribe(_ context.Context, channel string) (Subscription, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	subscriber := &memorySubscription{
		client:   x,
		channel:  channel,
		messages: make(chan []byte, subscriptionBuffer),
	}
	if x.channels[channel] == nil {
		x.channels[channel] = make(map[*memorySubscription]struct{})
	}
	x.channels[channel][subscriber] = struct{}{}
	return subscriber, nil
}

// SetIfAbsent atomically sets key to value only when no live value exists.
func (x *MemoryClient) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.liveEntry(key); ok {
		return false, nil
	}
	x.keys[key] = memoryEntry{value: value}
	return true, nil
}

// Get returns the live value of the key.
func (x *MemoryClient) Get(_ context.Context, key string) (string, bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.liveEntry(key)
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

// GetAndSet atomically writes value to the key and returns the previous live
// value. The write clears any TTL, as GETSET does.
func (x *MemoryClient) GetAndSet(_ context.Context, key, value string) (string, bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	previous, ok := x.liveEntry(key)
	x.keys[key] = memoryEntry{value: value}
	if !ok {
		return "", false, nil
	}
	return previous.value, true, nil
}

// Delete removes the key.
func (x *MemoryClient) Delete(_ context.Context, key string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.keys, key)
	return nil
}

// Expire attaches a time-to-live to the key. Expiring an absent key is a no-op.
func (x *MemoryClient) Expire(_ context.Context, key string, ttl time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.liveEntry(key)
	if !ok {
		return nil
	}
	entry.expireAt = x.clock().Add(ttl)
	x.keys[key] = entry
	return nil
}

// Close closes every subscription handed out by the client.
func (x *MemoryClient) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	for _, subscribers := range x.channels {
		for subscriber := range subscribers {
			subscriber.closeOnce.Do(func() {
				close(subscriber.messages)
			})
		}
	}
	x.channels = make(map[string]map[*memorySubscription]struct{})
	return nil
}

// liveEntry returns the entry for the key when it exists and has not expired.
// Expired entries are reaped on access. Callers must hold the write lock.
func (x *MemoryClient) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := x.keys[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expireAt.IsZero() && x.clock().After(entry.expireAt) {
		delete(x.keys, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// memorySubscription implements Subscription for MemoryClient.
type memorySubscription struct {
	client    *MemoryClient
	channel   string
	messages  chan []byte
	closeOnce sync.Once
}

// enforce compilation error
var _ Subscription = (*memorySubscription)(nil)

// Messages returns the delivery channel.
func (x *memorySubscription) Messages() <-chan []byte {
	return x.messages
}

// Close detaches from the channel and closes the Messages channel.
func (x *memorySubscription) Close() error {
	x.client.mu.Lock()
	if subscribers, ok := x.client.channels[x.channel]; ok {
		delete(subscribers, x)
		if len(subscribers) == 0 {
			delete(x.client.channels, x.channel)
		}
	}
	x.client.mu.Unlock()

	x.closeOnce.Do(func() {
		close(x.messages)
	})
	return nil
}
