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

// Package proxy implements the client-side handle onto a distributed actor.
// A Proxy publishes method invocations on the actor's shared request channel
// and collects responses on its own private reply channel, correlating them
// back to pending calls through single-use reply slots. Many proxies may
// front the same actor concurrently; each keeps its own reply channel, so
// responses never cross proxies.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/remoraproject/remora/coordination"
	gerrors "github.com/remoraproject/remora/errors"
	"github.com/remoraproject/remora/future"
	"github.com/remoraproject/remora/internal/syncmap"
	"github.com/remoraproject/remora/internal/ticker"
	"github.com/remoraproject/remora/internal/validation"
	"github.com/remoraproject/remora/log"
	"github.com/remoraproject/remora/remote"
)

// Actor is the minimal surface a local actor instance exposes to be fronted
// by a proxy: a stable identifier. The proxy derives the public method
// surface from the instance's remaining exported methods by reflection.
type Actor interface {
	// ID returns the actor's stable identifier.
	ID() string
}

// ActorChannel returns the shared channel on which requests for the given
// actor are published. Every proxy of the actor publishes here and the actor
// is its only intended subscriber.
func ActorChannel(actorID string) string {
	return "actor:" + actorID
}

// ProxyChannel returns the private channel on which the given proxy receives
// responses. Each proxy instance owns exactly one.
func ProxyChannel(proxyID string) string {
	return "proxy:" + proxyID
}

// stub dispatches one invocation of a discovered method.
type stub func(ctx context.Context, args []any, kwargs map[string]any) (future.Future, error)

// Proxy is a handle onto a single actor. It is safe for concurrent use: the
// dispatch path and the listener goroutine share only the reply-slot registry.
type Proxy struct {
	id      string
	actorID string

	client      coordination.Client
	serializer  remote.Serializer
	logger      log.Logger
	callTimeout time.Duration

	subscription coordination.Subscription
	ticker       *ticker.Ticker
	stopCh       chan struct{}

	pending *syncmap.SyncMap[string, future.Completable]
	stubs   map[string]stub
	names   []string

	closed    atomic.Bool
	closeOnce sync.Once
}

// New creates a Proxy attached to the coordination client. Exactly one of
// WithActor and WithActorID must be supplied: cloning a local instance reads
// the method surface by reflection, while attaching by identifier discovers
// it with a round trip to the remote actor. The context bounds the initial
// subscription and, for the by-identifier form, the discovery round trip.
func New(ctx context.Context, client coordination.Client, opts ...Option) (*Proxy, error) {
	config := newConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}

	chain := validation.New(validation.FailFast())
	if (config.actor == nil) == (config.actorID == "") {
		chain.AddValidator(validation.NewErrorValidator(gerrors.ErrInvalidProxyConfig))
	}
	chain.AddAssertion(client != nil, "coordination client is required")
	chain.AddAssertion(config.serializer != nil, "serializer is required")
	chain.AddAssertion(config.pollInterval > 0, "poll interval must be greater than zero")
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	actorID := config.actorID
	if config.actor != nil {
		actorID = config.actor.ID()
	}

	proxy := &Proxy{
		id:          uuid.NewString(),
		actorID:     actorID,
		client:      client,
		serializer:  config.serializer,
		logger:      config.logger,
		callTimeout: config.callTimeout,
		ticker:      ticker.New(config.pollInterval),
		stopCh:      make(chan struct{}),
		pending:     syncmap.New[string, future.Completable](),
	}

	subscription, err := client.Subscribe(ctx, ProxyChannel(proxy.id))
	if err != nil {
		return nil, err
	}
	proxy.subscription = subscription

	proxy.ticker.Start()
	go proxy.listen()

	var names []string
	switch {
	case config.actor != nil:
		names = publicMethodNames(config.actor)
	default:
		names, err = proxy.fetchMethodNames(ctx)
		if err != nil {
			_ = proxy.Close()
			return nil, err
		}
	}

	proxy.stubs = make(map[string]stub, len(names))
	for _, name := range names {
		proxy.stubs[name] = proxy.newStub(name)
	}
	proxy.names = names
	sort.Strings(proxy.names)

	return proxy, nil
}

// ID returns the proxy's own identifier, which also names its reply channel.
func (x *Proxy) ID() string {
	return x.id
}

// ActorID returns the identifier of the actor this proxy fronts.
func (x *Proxy) ActorID() string {
	return x.actorID
}

// Methods returns the sorted public method surface discovered at
// construction time.
func (x *Proxy) Methods() []string {
	names := make([]string, len(x.names))
	copy(names, x.names)
	return names
}

// Call dispatches the named method with positional arguments and returns a
// Future resolving to the actor's response. It fails fast with ErrNoSuchActor
// when the actor channel has no subscriber, in which case no reply slot is
// left behind.
func (x *Proxy) Call(ctx context.Context, method string, args ...any) (future.Future, error) {
	return x.CallWithKwargs(ctx, method, args, nil)
}

// CallWithKwargs dispatches the named method with both positional and keyword
// arguments. See Call.
func (x *Proxy) CallWithKwargs(ctx context.Context, method string, args []any, kwargs map[string]any) (future.Future, error) {
	if x.closed.Load() {
		return nil, gerrors.ErrProxyClosed
	}
	if strings.HasPrefix(method, "_") {
		return nil, gerrors.NewErrReservedMethodName(method)
	}
	dispatch, ok := x.stubs[method]
	if !ok {
		return nil, gerrors.NewErrMethodNotFound(method)
	}
	return dispatch(ctx, args, kwargs)
}

// CallSync dispatches the named method and waits for its response. When a
// call timeout is configured the wait is bounded and expiry surfaces as
// ErrCallTimeout; otherwise the wait only ends with the response or the
// caller's context.
func (x *Proxy) CallSync(ctx context.Context, method string, args ...any) (any, error) {
	handle, err := x.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return x.await(ctx, handle)
}

// Close shuts the proxy down: the listener stops, the reply subscription is
// closed and every still-pending call fails with ErrProxyClosed. Close is
// idempotent.
func (x *Proxy) Close() error {
	var err error
	x.closeOnce.Do(func() {
		x.closed.Store(true)
		x.ticker.Stop()
		close(x.stopCh)
		err = x.subscription.Close()
		x.pending.Range(func(_ string, completable future.Completable) {
			completable.Failure(gerrors.ErrProxyClosed)
		})
		x.pending.Reset()
	})
	return err
}

// newStub builds the dispatch closure for one discovered method.
func (x *Proxy) newStub(name string) stub {
	return func(ctx context.Context, args []any, kwargs map[string]any) (future.Future, error) {
		return x.send(ctx, name, args, kwargs)
	}
}

// send registers a fresh reply slot, publishes the request envelope on the
// actor channel and returns the pending call's Future. The slot is withdrawn
// on any failure so an aborted call never leaks a registry entry.
func (x *Proxy) send(ctx context.Context, method string, args []any, kwargs map[string]any) (future.Future, error) {
	slotID := uuid.NewString()
	completable := future.New()
	x.pending.Set(slotID, completable)

	payload, err := x.serializer.MarshalRequest(&remote.RequestEnvelope{
		SenderProxyID: x.id,
		ReplySlotID:   slotID,
		MethodName:    method,
		Args:          args,
		Kwargs:        kwargs,
	})
	if err != nil {
		x.pending.Delete(slotID)
		return nil, err
	}

	subscribers, err := x.client.Publish(ctx, ActorChannel(x.actorID), payload)
	if err != nil {
		x.pending.Delete(slotID)
		return nil, err
	}
	if subscribers == 0 {
		x.pending.Delete(slotID)
		return nil, gerrors.NewErrNoSuchActor(x.actorID)
	}
	return completable.Future(), nil
}

// await resolves the handle, applying the configured call timeout when one
// is set.
func (x *Proxy) await(ctx context.Context, handle future.Future) (any, error) {
	if x.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.callTimeout)
		defer cancel()
	}
	result, err := handle.Await(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, gerrors.NewErrCallTimeout(err)
		}
		return nil, err
	}
	return result, nil
}

// fetchMethodNames performs the discovery round trip against the remote
// actor. The reserved discovery method bypasses the public-surface checks.
func (x *Proxy) fetchMethodNames(ctx context.Context) ([]string, error) {
	handle, err := x.send(ctx, remote.GetMethodsName, nil, nil)
	if err != nil {
		return nil, err
	}
	result, err := x.await(ctx, handle)
	if err != nil {
		return nil, err
	}
	return methodNamesOf(result)
}

// listen polls the reply subscription at the configured interval and drains
// every buffered response per tick.
func (x *Proxy) listen() {
	for {
		select {
		case <-x.stopCh:
			return
		case <-x.ticker.Ticks:
			x.drain()
		}
	}
}

// drain consumes every response currently buffered on the subscription.
func (x *Proxy) drain() {
	for {
		select {
		case payload, ok := <-x.subscription.Messages():
			if !ok {
				return
			}
			x.handleResponse(payload)
		default:
			return
		}
	}
}

// handleResponse resolves the pending call a response correlates to. A reply
// slot is single-use: the first response pops it and any duplicate or unknown
// correlation is dropped.
func (x *Proxy) handleResponse(payload []byte) {
	response, err := x.serializer.UnmarshalResponse(payload)
	if err != nil {
		x.logger.Warnf("proxy=(%s) failed to decode a response: %v", x.id, err)
		return
	}
	completable, ok := x.pending.Pop(response.ReplySlotID)
	if !ok {
		x.logger.Debugf("proxy=(%s) dropping response for unknown reply slot=(%s)", x.id, response.ReplySlotID)
		return
	}
	completable.Success(response.Result)
}

// publicMethodNames reflects the exported methods of a local actor instance.
// ID is the identity accessor required by the Actor contract and is not part
// of the proxied surface.
func publicMethodNames(actor Actor) []string {
	rtype := reflect.TypeOf(actor)
	names := make([]string, 0, rtype.NumMethod())
	for i := 0; i < rtype.NumMethod(); i++ {
		name := rtype.Method(i).Name
		if name == "ID" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// methodNamesOf converts a discovery response into a list of method names.
// The serializer may hand the list back as []string or as []any with string
// elements. Reserved names are filtered out of the public surface.
func methodNamesOf(result any) ([]string, error) {
	var raw []any
	switch list := result.(type) {
	case []string:
		names := make([]string, 0, len(list))
		for _, name := range list {
			if !strings.HasPrefix(name, "_") {
				names = append(names, name)
			}
		}
		return names, nil
	case []any:
		raw = list
	default:
		return nil, fmt.Errorf("unexpected method list of type %T", result)
	}

	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		name, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected method list entry of type %T", entry)
		}
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	return names, nil
}
