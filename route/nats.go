// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
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

package route

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
)

// NATS bridges a router to a NATS subject pair. Every outbound tuple is
// published as one message on the publish subject and every message
// received on the subscribe subject is decoded into the inbox. Two hubs
// wired with mirrored subjects exchange tuples as if joined by a Queueing
// pair.
type NATS struct {
	criteriaSet
	name         string
	conn         *nats.Conn
	subject      string
	subscription *nats.Subscription
	inbox        *inbox
	logger       log.Logger
	err          *atomic.Error
	failed       *atomic.Bool
	closed       *atomic.Bool
}

var _ Route = (*NATS)(nil)

// NewNATS subscribes to subscribeSubject and returns a route publishing on
// publishSubject. The connection is owned by the caller.
func NewNATS(name string, conn *nats.Conn, publishSubject, subscribeSubject string, opts ...Option) (*NATS, error) {
	cfg := newConfig(opts...)
	logger := cfg.logger.With("route", name)
	route := &NATS{
		name:    name,
		conn:    conn,
		subject: publishSubject,
		inbox:   newInbox(name, cfg.capacity, logger),
		logger:  logger,
		err:     atomic.NewError(nil),
		failed:  atomic.NewBool(false),
		closed:  atomic.NewBool(false),
	}

	subscription, err := conn.Subscribe(subscribeSubject, route.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subscribeSubject, err)
	}
	route.subscription = subscription
	return route, nil
}

func (r *NATS) handle(msg *nats.Msg) {
	var t tuple.Tuple
	if err := t.UnmarshalBinary(msg.Data); err != nil {
		r.logger.Warnf("dropping malformed tuple from %s: %v", msg.Subject, err)
		return
	}
	_ = r.inbox.push(t)
}

// Name implements Route
func (r *NATS) Name() string {
	return r.name
}

// Send implements Route
func (r *NATS) Send(t tuple.Tuple) error {
	if r.closed.Load() {
		return gerrors.ErrRouteClosed
	}
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	if err := r.conn.Publish(r.subject, data); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			r.fail(err)
		}
		return err
	}
	return nil
}

// Receive implements Route
func (r *NATS) Receive() (tuple.Tuple, bool) {
	return r.inbox.pop()
}

// Err implements Route. A closed NATS connection is fatal to the route.
func (r *NATS) Err() error {
	if err := r.err.Load(); err != nil {
		return err
	}
	if r.conn.IsClosed() {
		r.fail(nats.ErrConnectionClosed)
		return r.err.Load()
	}
	return nil
}

func (r *NATS) fail(err error) {
	if !r.failed.CompareAndSwap(false, true) {
		return
	}
	r.logger.Warnf("nats bridge failed: %v", err)
	r.err.Store(err)
	r.inbox.signal()
}

// Notify implements Route
func (r *NATS) Notify() <-chan struct{} {
	return r.inbox.notify
}

// Close unsubscribes. The connection stays open.
func (r *NATS) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := r.subscription.Unsubscribe()
	r.inbox.dispose()
	if errors.Is(err, nats.ErrConnectionClosed) {
		return nil
	}
	return err
}
