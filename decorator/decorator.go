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

// Package decorator holds the concrete call-tagging decorations built on the
// hook pipeline: the pass-through "blocking" tag and the "singular" wrapper
// that guards a method with the cluster-wide distributed lock.
package decorator

import (
	"github.com/remoraproject/remora/hook"
	"github.com/remoraproject/remora/lock"
)

const (
	// TagBlocking marks a method whose callers must wait on the result handle
	// before returning from the call site. The tag only marks intent: the
	// actual blocking wait is performed by the actor's dispatch loop, which
	// checks the tag when executing the call.
	TagBlocking = "blocking"

	// TagSingular marks a method guarded by the cluster-wide lock so at most
	// one invocation across the cluster proceeds within the lock window.
	TagSingular = "singular"
)

// Blocking adds the blocking tag to the method. It contributes no hooks.
func Blocking(method *hook.Method) *hook.Method {
	return method.Decorated(TagBlocking, nil, nil)
}

// Singular adds the singular tag to the method and wires the distributed
// lock's acquire/release pair around it as a before/after hook. A contended
// invocation short-circuits with the veto sentinel instead of executing;
// callers detect it with hook.IsVetoed.
func Singular(method *hook.Method, guard *lock.Lock) *hook.Method {
	return method.Decorated(TagSingular,
		[]hook.Before{guard.BeforeHook(method.Name())},
		[]hook.After{guard.AfterHook(method.Name())})
}
