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

// Package hook composes ordered before/after callbacks around a base method so
// cross-cutting behavior (locking, call tagging) can be layered without
// modifying the method body.
//
// A before-hook may veto the invocation by short-circuiting: the base method
// and every remaining hook are skipped and the hook's value becomes the overall
// result. An after-hook may likewise override the result, skipping the
// remaining after-hooks. Hooks signal their decision through an explicit
// Outcome value, so "no veto" stays unambiguous even when a legitimate result
// is itself nil, zero or false.
package hook

import "context"

// Before is a callback invoked ahead of the base method with the call's
// receiver and original arguments. Returning a short-circuiting Outcome stops
// the invocation; an error aborts it.
type Before func(ctx context.Context, receiver any, args ...any) (Outcome, error)

// After is a callback invoked once the base method has returned, with the
// receiver, the base result and the original arguments. Returning a
// short-circuiting Outcome replaces the result; an error aborts the invocation.
type After func(ctx context.Context, receiver any, result any, args ...any) (Outcome, error)

// Base is the underlying method a pipeline wraps.
type Base func(ctx context.Context, receiver any, args ...any) (any, error)

// Outcome is a hook's decision: either let the pipeline continue, or
// short-circuit it with a final value. The zero value continues.
type Outcome struct {
	shortCircuit bool
	value        any
}

// Continue lets the pipeline proceed to the next stage.
func Continue() Outcome {
	return Outcome{}
}

// ShortCircuit stops the pipeline immediately and makes value the overall
// result of the invocation.
func ShortCircuit(value any) Outcome {
	return Outcome{shortCircuit: true, value: value}
}

// ShortCircuits reports whether the outcome stops the pipeline.
func (x Outcome) ShortCircuits() bool {
	return x.shortCircuit
}

// Value returns the final value carried by a short-circuiting outcome.
func (x Outcome) Value() any {
	return x.value
}

// Veto is the sentinel result a guarding before-hook short-circuits with when
// it declines the invocation, e.g. on distributed-lock contention. It is a
// normal outcome, not an error: the call returns Veto instead of executing.
type Veto struct{}

// IsVetoed reports whether a pipeline result is the veto sentinel.
func IsVetoed(result any) bool {
	_, ok := result.(Veto)
	return ok
}
