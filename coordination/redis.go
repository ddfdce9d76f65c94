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
	"errors"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"
)

const (
	// subscriptionBuffer is the capacity of a Subscription's delivery channel.
	// Payloads beyond it are dropped for slow consumers, matching the at-most-once
	// delivery contract of Redis pub/sub.
	subscriptionBuffer = 256

	dialRetries      = 5
	dialInitialDelay = 100 * time.Millisecond
	dialMaxDelay     = time.Second
)

// RedisClient implements Client on top of a Redis server. Channel operations
// map onto PUBLISH/SUBSCRIBE and key operations onto SETNX, GET, GETSET, DEL
// and EXPIRE, which gives every operation the atomicity the Client contract
// demands.
type RedisClient struct {
	client redis.UniversalClient
}

// enforce compilation error
var _ Client = (*RedisClient)(nil)

// Dial verifies connectivity with the given Redis client and wraps it into a
// RedisClient. The ping is retried with exponential backoff before giving up.
func Dial(ctx context.Context, client redis.UniversalClient) (*RedisClient, error) {
	retrier := retry.NewRetrier(dialRetries, dialInitialDelay, dialMaxDelay)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		return nil, err
	}
	return NewRedisClient(client), nil
}

// NewRedisClient wraps an already-connected Redis client without pinging it.
func NewRedisClient(client redis.UniversalClient) *RedisClient {
	return &RedisClient{client: client}
}

// Publish sends the payload to every subscriber of the channel and returns
// the subscriber count reported by Redis.
func (x *RedisClient) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	return x.client.Publish(ctx, channel, payload).Result()
}

// Subscribe attaches to the channel. It only returns once the server has
// confirmed the subscription, so a publish issued after Subscribe returns is
// guaranteed to count this subscriber.
func (x *RedisClient) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := x.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub:   pubsub,
		messages: make(chan []byte, subscriptionBuffer),
	}
	go sub.forward(pubsub.Channel())
	return sub, nil
}

// SetIfAbsent atomically sets key to value only when the key does not exist.
func (x *RedisClient) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return x.client.SetNX(ctx, key, value, 0).Result()
}

// Get returns the value of the key.
func (x *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := x.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return value, true, nil
	}
}

// GetAndSet atomically writes value to the key and returns the previous value.
func (x *RedisClient) GetAndSet(ctx context.Context, key, value string) (string, bool, error) {
	previous, err := x.client.GetSet(ctx, key, value).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return previous, true, nil
	}
}

// Delete removes the key.
func (x *RedisClient) Delete(ctx context.Context, key string) error {
	return x.client.Del(ctx, key).Err()
}

// Expire attaches a time-to-live to the key.
func (x *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return x.client.Expire(ctx, key, ttl).Err()
}

// Close closes the underlying Redis client.
func (x *RedisClient) Close() error {
	return x.client.Close()
}

// redisSubscription adapts a go-redis PubSub into a Subscription.
type redisSubscription struct {
	pubsub    *redis.PubSub
	messages  chan []byte
	closeOnce sync.Once
}

// enforce compilation error
var _ Subscription = (*redisSubscription)(nil)

// Messages returns the delivery channel.
func (x *redisSubscription) Messages() <-chan []byte {
	return x.messages
}

// Close detaches from the channel. The Messages channel is closed once the
// forwarder drains.
func (x *redisSubscription) Close() error {
	var err error
	x.closeOnce.Do(func() {
		err = x.pubsub.Close()
	})
	return err
}

// forward copies payloads from the go-redis delivery channel until it closes.
func (x *redisSubscription) forward(in <-chan *redis.Message) {
	for message := range in {
		select {
		case x.messages <- []byte(message.Payload):
		default:
			// slow consumer, drop
		}
	}
	close(x.messages)
}
