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

package future

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tochemey/linda/actor"
	"github.com/tochemey/linda/tuple"
)

// DefaultName is the actor name Promises registers under
const DefaultName = "Promises"

// Emitter sends tuples into the fabric, typically a router
type Emitter interface {
	Route(t tuple.Tuple) error
}

// Promises is an actor completing the futures of outstanding requests.
//
// Request stamps a fresh requestID and names the Promises actor as the
// source actor, so the reply built with tuple.Reply comes back addressed
// to it. Replies nobody waits for are not accepted.
type Promises struct {
	name    string
	mu      sync.Mutex
	pending map[string]*future
}

var _ actor.Actor = (*Promises)(nil)

// NewPromises creates the actor. An empty name means DefaultName.
func NewPromises(name string) *Promises {
	if name == "" {
		name = DefaultName
	}
	return &Promises{
		name:    name,
		pending: make(map[string]*future),
	}
}

// Name implements actor.Actor
func (x *Promises) Name() string {
	return x.name
}

// Accept completes the future waiting for t. Only tuples addressed to
// this actor are replies; a request offered locally is declined.
func (x *Promises) Accept(t tuple.Tuple) bool {
	id := t.RequestID()
	if id == "" || t.DestinationActor() != x.name {
		return false
	}

	x.mu.Lock()
	f, ok := x.pending[id]
	delete(x.pending, id)
	x.mu.Unlock()

	if !ok {
		return false
	}
	f.complete(t, nil)
	return true
}

// Request emits t and returns the Future of its reply. t is not modified.
func (x *Promises) Request(emitter Emitter, t tuple.Tuple) Future {
	request := t.Clone()
	id := uuid.NewString()
	request.SetRequestID(id)
	request.SetSourceActor(x.name)

	f := newFuture(id, func() { x.forget(id) })
	x.mu.Lock()
	x.pending[id] = f
	x.mu.Unlock()

	if err := emitter.Route(request); err != nil {
		x.forget(id)
		f.complete(nil, err)
	}
	return f
}

// Pending returns the number of outstanding requests
func (x *Promises) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

func (x *Promises) forget(id string) {
	x.mu.Lock()
	delete(x.pending, id)
	x.mu.Unlock()
}
