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
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/tuple"
)

// Queueing is one half of an in-process route pair. Sending on one half
// enqueues a copy of the tuple onto the partner's inbox and signals the
// partner's Notify channel. Tuples are delivered in submission order.
type Queueing struct {
	criteriaSet
	name    string
	inbox   *inbox
	partner *Queueing
	closed  *atomic.Bool
}

var _ Route = (*Queueing)(nil)

// NewQueueingPair creates two partnered routes. The near half usually
// lives with a connection handler and the far half with the hub.
func NewQueueingPair(nearName, farName string, opts ...Option) (near, far *Queueing) {
	cfg := newConfig(opts...)
	closed := atomic.NewBool(false)
	near = &Queueing{
		name:   nearName,
		inbox:  newInbox(nearName, cfg.capacity, cfg.logger),
		closed: closed,
	}
	far = &Queueing{
		name:   farName,
		inbox:  newInbox(farName, cfg.capacity, cfg.logger),
		closed: closed,
	}
	near.partner = far
	far.partner = near
	return near, far
}

// Name implements Route
func (q *Queueing) Name() string {
	return q.name
}

// Partner returns the other half of the pair
func (q *Queueing) Partner() *Queueing {
	return q.partner
}

// Send implements Route
func (q *Queueing) Send(t tuple.Tuple) error {
	if q.closed.Load() {
		return gerrors.ErrRouteClosed
	}
	return q.partner.inbox.push(t.Clone())
}

// Receive implements Route
func (q *Queueing) Receive() (tuple.Tuple, bool) {
	return q.inbox.pop()
}

// Pending returns the number of tuples waiting in the inbox
func (q *Queueing) Pending() int {
	return q.inbox.len()
}

// Err implements Route. An in-process queue never fails.
func (q *Queueing) Err() error {
	return nil
}

// Notify implements Route
func (q *Queueing) Notify() <-chan struct{} {
	return q.inbox.notify
}

// Close closes both halves of the pair and wakes their waiters
func (q *Queueing) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	q.inbox.dispose()
	q.partner.inbox.dispose()
	return nil
}
