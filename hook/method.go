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

package hook

import (
	"context"

	goset "github.com/deckarep/golang-set/v2"
)

// Method wraps a base method with two ordered hook sequences and a set of
// decoration tags. Methods are immutable: Decorated returns a new Method with
// hooks and tags appended, so decorations compose additively and the order of
// application determines hook ordering. The same base Method can therefore be
// decorated differently at different call sites without shared mutable state.
type Method struct {
	name   string
	base   Base
	tags   goset.Set[string]
	before []Before
	after  []After
}

// NewMethod wraps the given base function into an undecorated Method.
func NewMethod(name string, base Base) *Method {
	return &Method{
		name: name,
		base: base,
		tags: goset.NewSet[string](),
	}
}

// Name returns the method's name.
func (x *Method) Name() string {
	return x.name
}

// Tagged reports whether the method carries the given decoration tag.
func (x *Method) Tagged(tag string) bool {
	return x.tags.Contains(tag)
}

// Tags returns a copy of the method's decoration tag set.
func (x *Method) Tags() goset.Set[string] {
	return x.tags.Clone()
}

// Decorated returns a new Method carrying the given tag with the hooks
// appended to the existing sequences. The receiver is left untouched.
func (x *Method) Decorated(tag string, before []Before, after []After) *Method {
	decorated := &Method{
		name:   x.name,
		base:   x.base,
		tags:   x.tags.Clone(),
		before: append(append([]Before(nil), x.before...), before...),
		after:  append(append([]After(nil), x.after...), after...),
	}
	decorated.tags.Add(tag)
	return decorated
}

// Call runs the pipeline: every before-hook in registration order, then the
// base method, then every after-hook in registration order.
//
// A before-hook that short-circuits ends the invocation with its value; the
// base method and all after-hooks are skipped. An after-hook that
// short-circuits replaces the base result and skips the remaining after-hooks.
// Otherwise the base method's result is returned unchanged.
func (x *Method) Call(ctx context.Context, receiver any, args ...any) (any, error) {
	for _, before := range x.before {
		outcome, err := before(ctx, receiver, args...)
		if err != nil {
			return nil, err
		}
		if outcome.ShortCircuits() {
			return outcome.Value(), nil
		}
	}

	result, err := x.base(ctx, receiver, args...)
	if err != nil {
		return nil, err
	}

	for _, after := range x.after {
		outcome, err := after(ctx, receiver, result, args...)
		if err != nil {
			return nil, err
		}
		if outcome.ShortCircuits() {
			return outcome.Value(), nil
		}
	}
	return result, nil
}
