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

// Package coordination defines the contract the proxy and lock subsystems
// require from the shared coordination service: named publish/subscribe
// channels plus a handful of atomic key-value primitives with expiry.
//
// Two implementations are provided. RedisClient maps the contract onto a
// Redis server (PUBLISH/SUBSCRIBE, SETNX, GETSET, DEL, EXPIRE) and is the one
// meant for clustered deployments. MemoryClient honors the same contract
// within a single process and backs the test suites.
package coordination

import (
	"context"
	"time"
)

// Subscription is a live attachment to a single channel. Messages delivers
// payloads in arrival order; the channel is closed when the subscription is
// closed or the underlying connection goes away.
type Subscription interface {
	// Messages returns the channel on which published payloads are delivered.
	Messages() <-chan []byte

	// Close detaches from the channel and closes the Messages channel.
	Close() error
}

// Client is the coordination service consumed by proxies and distributed
// locks. Implementations must make each key operation atomic with respect to
// concurrent callers on any process attached to the same service.
type Client interface {
	// Publish sends the payload to every subscriber of the channel and
	// returns the number of subscribers that received it.
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)

	// Subscribe attaches to the channel and returns a live Subscription.
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	// SetIfAbsent atomically sets key to value only when the key does not
	// exist. It reports whether the write happened.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// Get returns the value of the key. The boolean reports whether the key
	// exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetAndSet atomically writes value to the key and returns the previous
	// value. The boolean reports whether a previous value existed.
	GetAndSet(ctx context.Context, key, value string) (string, bool, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Expire attaches a time-to-live to the key. Once the TTL elapses the key
	// behaves as absent.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Close releases the client and every subscription it handed out.
	Close() error
}
