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
	"time"

	"github.com/remoraproject/remora/log"
)

// Option is the interface that applies a configuration option to a Lock.
type Option interface {
	// Apply sets the Option value of a Lock.
	Apply(lock *Lock)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(lock *Lock)

// Apply applies the Lock's option.
func (f OptionFunc) Apply(lock *Lock) {
	f(lock)
}

// WithContextName sets the namespace lock keys fall under. The default is
// DefaultContextName.
func WithContextName(contextName string) Option {
	return OptionFunc(func(lock *Lock) {
		lock.contextName = contextName
	})
}

// WithTTL sets the lock window. The default is DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return OptionFunc(func(lock *Lock) {
		lock.ttl = ttl
	})
}

// WithClock sets the wall-clock source used for the expiry comparisons.
func WithClock(clock func() time.Time) Option {
	return OptionFunc(func(lock *Lock) {
		lock.clock = clock
	})
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(lock *Lock) {
		lock.logger = logger
	})
}
