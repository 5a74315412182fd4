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
	"fmt"

	"github.com/Workiva/go-datastructures/queue"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
)

// inbox is the bounded inbound buffer of a route. Producers never block:
// when the ring is full the newest tuple is dropped with a warning.
type inbox struct {
	route  string
	ring   *queue.RingBuffer
	notify chan struct{}
	logger log.Logger
}

func newInbox(route string, capacity uint64, logger log.Logger) *inbox {
	return &inbox{
		route:  route,
		ring:   queue.NewRingBuffer(capacity),
		notify: make(chan struct{}, 1),
		logger: logger,
	}
}

func (b *inbox) push(t tuple.Tuple) error {
	ok, err := b.ring.Offer(t)
	if err != nil {
		return gerrors.ErrRouteClosed
	}
	if !ok {
		b.logger.Warnf("route %s inbox full (%d), dropping %s", b.route, b.ring.Cap(), t.Brief())
		return fmt.Errorf("%w: %s", gerrors.ErrInboxFull, b.route)
	}
	b.signal()
	return nil
}

// pop must only be called by the single goroutine draining the route
func (b *inbox) pop() (tuple.Tuple, bool) {
	if b.ring.IsDisposed() || b.ring.Len() == 0 {
		return nil, false
	}
	item, err := b.ring.Get()
	if err != nil {
		return nil, false
	}
	return item.(tuple.Tuple), true
}

func (b *inbox) len() int {
	return int(b.ring.Len())
}

func (b *inbox) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *inbox) dispose() {
	b.ring.Dispose()
	b.signal()
}
