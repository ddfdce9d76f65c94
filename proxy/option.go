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

package proxy

import (
	"time"

	"github.com/remoraproject/remora/log"
	"github.com/remoraproject/remora/remote"
)

const (
	// DefaultPollInterval is the delay between two polls of the reply
	// subscription by the background listener.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultCallTimeout is zero: synchronous calls wait forever, matching
	// the original contract where a lost response leaves the caller pending.
	DefaultCallTimeout = time.Duration(0)
)

// config carries the construction-time settings of a Proxy.
type config struct {
	actor        Actor
	actorID      string
	serializer   remote.Serializer
	logger       log.Logger
	pollInterval time.Duration
	callTimeout  time.Duration
}

// newConfig returns a config with the defaults applied.
func newConfig() *config {
	return &config{
		serializer:   remote.NewCBORSerializer(),
		logger:       log.DiscardLogger,
		pollInterval: DefaultPollInterval,
		callTimeout:  DefaultCallTimeout,
	}
}

// Option is the interface that applies a configuration option to a Proxy.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *config)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *config)

// Apply applies the config's option.
func (f OptionFunc) Apply(config *config) {
	f(config)
}

// WithActor clones the given local actor instance: its identifier and its
// exported methods become the proxy's surface with no network round trip.
// Mutually exclusive with WithActorID.
func WithActor(actor Actor) Option {
	return OptionFunc(func(config *config) {
		config.actor = actor
	})
}

// WithActorID attaches to a remote actor by identifier. The public method
// surface is discovered with a dedicated round trip to the actor. Mutually
// exclusive with WithActor.
func WithActorID(actorID string) Option {
	return OptionFunc(func(config *config) {
		config.actorID = actorID
	})
}

// WithSerializer sets the wire serializer. The default is CBOR.
func WithSerializer(serializer remote.Serializer) Option {
	return OptionFunc(func(config *config) {
		config.serializer = serializer
	})
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *config) {
		config.logger = logger
	})
}

// WithPollInterval sets the listener's poll interval. The default is
// DefaultPollInterval.
func WithPollInterval(interval time.Duration) Option {
	return OptionFunc(func(config *config) {
		config.pollInterval = interval
	})
}

// WithCallTimeout bounds how long CallSync waits for a response. The default
// of zero waits forever.
func WithCallTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *config) {
		config.callTimeout = timeout
	})
}
