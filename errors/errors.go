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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProxyConfig is returned when a proxy is constructed with neither
	// an actor instance nor an actor identifier, or with both. Exactly one of the
	// two must be supplied.
	ErrInvalidProxyConfig = errors.New("proxy requires exactly one of an actor instance or an actor identifier")

	// ErrNoSuchActor is returned when a request is published to an actor channel
	// that has no live subscriber. It is surfaced synchronously at call time,
	// before any reply slot is registered.
	ErrNoSuchActor = errors.New("no such actor")

	// ErrMethodNotFound is returned when a call names a method that is not part
	// of the proxied actor's discovered public surface.
	ErrMethodNotFound = errors.New("method is not proxied")

	// ErrReservedMethodName is returned when a call names a wire-reserved method.
	// Names starting with an underscore belong to the framework and are never
	// exposed as public proxy methods.
	ErrReservedMethodName = errors.New("method name is reserved")

	// ErrProxyClosed is returned by calls made after the proxy has been closed,
	// and is the failure delivered to reply slots still pending at close time.
	ErrProxyClosed = errors.New("proxy is closed")

	// ErrCallTimeout indicates that a synchronous call gave up waiting for its
	// response. The default call timeout is zero, which reproduces the original
	// wait-forever behavior; this error only occurs when a timeout is configured
	// or the caller's context carries a deadline.
	ErrCallTimeout = errors.New("call timed out")

	// ErrInvalidLockTTL is returned when a distributed lock is configured with a
	// TTL of zero or less.
	ErrInvalidLockTTL = errors.New("invalid lock TTL, must be greater than zero")

	// ErrSubscriptionClosed indicates the coordination subscription backing a
	// proxy's reply channel was closed underneath the listener.
	ErrSubscriptionClosed = errors.New("subscription is closed")
)

// NewErrNoSuchActor formats an ErrNoSuchActor with the given actor identifier.
func NewErrNoSuchActor(actorID string) error {
	return fmt.Errorf("actor=(%s) %w", actorID, ErrNoSuchActor)
}

// NewErrMethodNotFound formats an ErrMethodNotFound with the given method name.
func NewErrMethodNotFound(method string) error {
	return fmt.Errorf("method=(%s) %w", method, ErrMethodNotFound)
}

// NewErrReservedMethodName formats an ErrReservedMethodName with the given name.
func NewErrReservedMethodName(method string) error {
	return fmt.Errorf("method=(%s) %w", method, ErrReservedMethodName)
}

// NewErrCallTimeout wraps a base error with ErrCallTimeout for additional context.
func NewErrCallTimeout(err error) error {
	return errors.Join(ErrCallTimeout, err)
}
