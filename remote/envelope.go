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

// Package remote defines the envelopes that travel over the coordination
// channels and the serializer that turns them into opaque payloads. Callers
// never inspect the bytes: the encoding stays swappable behind the Serializer
// interface, with CBOR as the default.
package remote

// GetMethodsName is the wire-reserved method name a proxy sends to discover a
// remote actor's public method surface. The actor side answers with the list
// of its public method names. Reserved names start with an underscore and are
// never exposed as public proxy methods.
const GetMethodsName = "_get_methods"

// RequestEnvelope is the unit of dispatch: one is created per proxied method
// invocation and published on the target actor's shared channel. It is
// immutable once published.
type RequestEnvelope struct {
	// SenderProxyID names the private reply channel of the calling proxy.
	SenderProxyID string `cbor:"1,keyasint"`
	// ReplySlotID correlates exactly one response back to this request.
	ReplySlotID string `cbor:"2,keyasint"`
	// MethodName is the public method being invoked.
	MethodName string `cbor:"3,keyasint"`
	// Args carries the positional arguments of the call.
	Args []any `cbor:"4,keyasint,omitempty"`
	// Kwargs carries the keyword arguments of the call.
	Kwargs map[string]any `cbor:"5,keyasint,omitempty"`
}

// ResponseEnvelope carries the result of one request back to the calling
// proxy's private channel. Exactly one should be produced per request.
type ResponseEnvelope struct {
	// ReplySlotID identifies the pending call this response resolves.
	ReplySlotID string `cbor:"1,keyasint"`
	// Result is the value the actor's method returned.
	Result any `cbor:"2,keyasint,omitempty"`
}
