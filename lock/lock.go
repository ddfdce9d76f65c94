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

// Package lock implements a best-effort, TTL-bounded mutual-exclusion gate on
// top of the coordination service's atomic key operations. The lock key's
// value is an expiry timestamp in epoch seconds; ownership is decided by
// comparing that value against the wall clock, never by trusting the store's
// TTL, since there is a window between value write and TTL assignment where
// no TTL is set at all. The TTL is a cleanup safety net only.
package lock

import (
	"context"
	"strconv"
	"time"

	"github.com/remoraproject/remora/coordination"
	"github.com/remoraproject/remora/errors"
	"github.com/remoraproject/remora/hook"
	"github.com/remoraproject/remora/log"
)

const (
	// DefaultContextName is the namespace lock keys fall under when no
	// context is supplied.
	DefaultContextName = "global.lock"

	// DefaultTTL is the default lock window.
	DefaultTTL = 2 * time.Second
)

// Lock is a cluster-wide mutex keyed by a context string plus a method name.
// The key-space is global and shared across the whole cluster: the key's
// value is the sole source of truth for ownership, no client-local state
// establishes exclusive possession.
type Lock struct {
	client      coordination.Client
	contextName string
	ttl         time.Duration
	clock       func() time.Time
	logger      log.Logger
}

// New creates a Lock over the given coordination client.
func New(client coordination.Client, opts ...Option) (*Lock, error) {
	lock := &Lock{
		client:      client,
		contextName: DefaultContextName,
		ttl:         DefaultTTL,
		clock:       time.Now,
		logger:      log.DiscardLogger,
	}
	for _, opt := range opts {
		opt.Apply(lock)
	}
	if lock.ttl <= 0 {
		return nil, errors.ErrInvalidLockTTL
	}
	return lock, nil
}

// Name returns the coordination key guarding the given method.
func (x *Lock) Name(method string) string {
	return x.contextName + ":" + method
}

// Acquire attempts to take the lock for the given method. It returns true
// when this caller now holds the lock and false on contention; contention is
// a normal outcome, not an error.
//
// The attempt first tries an atomic set-if-absent of the new expiry. When the
// key already exists, the stored expiry is compared against the wall clock:
// a still-live value means the lock is held elsewhere. An expired value is
// stolen with an atomic get-and-set; if the value read back is still in the
// future another caller won the steal race. On success a TTL is attached as a
// separate, non-atomic cleanup step.
func (x *Lock) Acquire(ctx context.Context, method string) (bool, error) {
	now := epochSeconds(x.clock())
	lockExpiry := now + x.ttl.Seconds() + 1
	name := x.Name(method)

	acquired, err := x.client.SetIfAbsent(ctx, name, formatEpoch(lockExpiry))
	if err != nil {
		return false, err
	}

	if !acquired {
		current, found, err := x.client.Get(ctx, name)
		if err != nil {
			return false, err
		}
		if found && now < parseEpoch(current) {
			// lock is held and not expired
			return false, nil
		}

		previous, existed, err := x.client.GetAndSet(ctx, name, formatEpoch(lockExpiry))
		if err != nil {
			return false, err
		}
		if existed && now < parseEpoch(previous) {
			// somebody else beat us to the steal
			return false, nil
		}
		x.logger.Debugf("stole expired lock=(%s)", name)
	}

	if err := x.client.Expire(ctx, name, x.ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Release deletes the lock key unconditionally.
//
// Release does not verify that the deleting caller is still the current
// holder: when the expiry check already let a second caller steal the lock,
// the first caller's eventual release deletes the second caller's entry. This
// race is inherited behavior and is kept rather than hardened with a
// holder-token compare-and-delete.
func (x *Lock) Release(ctx context.Context, method string) error {
	return x.client.Delete(ctx, x.Name(method))
}

// BeforeHook returns the acquisition gate as a pipeline before-hook: it
// short-circuits with the veto sentinel when the lock is contended.
func (x *Lock) BeforeHook(method string) hook.Before {
	return func(ctx context.Context, _ any, _ ...any) (hook.Outcome, error) {
		acquired, err := x.Acquire(ctx, method)
		if err != nil {
			return hook.Outcome{}, err
		}
		if !acquired {
			return hook.ShortCircuit(hook.Veto{}), nil
		}
		return hook.Continue(), nil
	}
}

// AfterHook returns the release as a pipeline after-hook. It only runs when
// the base method executed, so a vetoed caller never deletes the holder's key
// through its own pipeline.
func (x *Lock) AfterHook(method string) hook.After {
	return func(ctx context.Context, _ any, _ any, _ ...any) (hook.Outcome, error) {
		if err := x.Release(ctx, method); err != nil {
			return hook.Outcome{}, err
		}
		return hook.Continue(), nil
	}
}

// epochSeconds converts a time into fractional epoch seconds.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// formatEpoch renders fractional epoch seconds as a lock value.
func formatEpoch(epoch float64) string {
	return strconv.FormatFloat(epoch, 'f', 6, 64)
}

// parseEpoch reads a lock value back. An unparseable value is treated as
// already expired so a corrupted entry can always be stolen.
func parseEpoch(value string) float64 {
	epoch, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return epoch
}
