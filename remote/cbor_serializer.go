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

package remote

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBORSerializer errors.
var (
	// ErrNilEnvelope is returned when a nil envelope is handed to the serializer.
	ErrNilEnvelope = errors.New("remote: envelope is nil")

	// ErrSerializeFailed is returned when CBOR marshaling fails. It wraps the
	// underlying CBOR library error.
	ErrSerializeFailed = errors.New("remote: failed to serialize envelope")

	// ErrDeserializeFailed is returned when CBOR unmarshaling fails. It wraps
	// the underlying CBOR library error.
	ErrDeserializeFailed = errors.New("remote: failed to deserialize envelope")
)

var (
	cborEncOpts = cbor.EncOptions{
		Sort:        cbor.SortNone,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnixDynamic,
	}
	cborDecOpts = cbor.DecOptions{
		MaxNestedLevels: 64,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8DecodeInvalid,
	}
)

// CBORSerializer is the default Serializer. Envelopes are fixed, integer-keyed
// structs, so the payload is self-describing CBOR with no type registry and no
// length framing. Argument values survive a round trip as the usual dynamic
// shapes (numbers, strings, byte slices, []any, map[any]any).
//
// CBORSerializer is stateless and safe for concurrent use. A single instance
// can be shared across goroutines without synchronization.
type CBORSerializer struct {
	encMode cbor.EncMode // immutable after construction, thread-safe
	decMode cbor.DecMode // immutable after construction, thread-safe
}

// enforce the Serializer interface at compile time.
var _ Serializer = (*CBORSerializer)(nil)

// NewCBORSerializer returns a ready-to-use CBORSerializer.
func NewCBORSerializer() *CBORSerializer {
	encMode, _ := cborEncOpts.EncMode()
	decMode, _ := cborDecOpts.DecMode()
	return &CBORSerializer{encMode: encMode, decMode: decMode}
}

// MarshalRequest encodes a request envelope.
func (x *CBORSerializer) MarshalRequest(request *RequestEnvelope) ([]byte, error) {
	if request == nil {
		return nil, ErrNilEnvelope
	}
	payload, err := x.encMode.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializeFailed, err)
	}
	return payload, nil
}

// UnmarshalRequest decodes a request envelope.
func (x *CBORSerializer) UnmarshalRequest(payload []byte) (*RequestEnvelope, error) {
	request := new(RequestEnvelope)
	if err := x.decMode.Unmarshal(payload, request); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializeFailed, err)
	}
	return request, nil
}

// MarshalResponse encodes a response envelope.
func (x *CBORSerializer) MarshalResponse(response *ResponseEnvelope) ([]byte, error) {
	if response == nil {
		return nil, ErrNilEnvelope
	}
	payload, err := x.encMode.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializeFailed, err)
	}
	return payload, nil
}

// UnmarshalResponse decodes a response envelope.
func (x *CBORSerializer) UnmarshalResponse(payload []byte) (*ResponseEnvelope, error) {
	response := new(ResponseEnvelope)
	if err := x.decMode.Unmarshal(payload, response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializeFailed, err)
	}
	return response, nil
}
