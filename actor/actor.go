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

package actor

import (
	"context"

	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// Actor claims and handles tuples offered by a Dispatcher.
type Actor interface {
	// Name identifies the actor. Tuples carrying a destinationActor field
	// are only offered to the actor with that name.
	Name() string
	// Accept attempts to handle the tuple. Returning true means the tuple
	// was fully handled and must not be offered to anyone else.
	Accept(t tuple.Tuple) bool
}

// Performer is implemented by actors that expose synchronous named
// functions outside of the tuple flow, for instance to an embedded
// scripting runtime.
type Performer interface {
	Perform(ctx context.Context, function string, args map[string]value.Value, caller string) (value.Value, error)
}

// AcceptFunc handles a tuple on behalf of a FuncActor
type AcceptFunc = func(t tuple.Tuple) bool

// FuncActor turns a plain function into an Actor
type FuncActor struct {
	name   string
	accept AcceptFunc
}

var _ Actor = (*FuncActor)(nil)

// NewFuncActor creates an actor named name that delegates to accept
func NewFuncActor(name string, accept AcceptFunc) *FuncActor {
	return &FuncActor{name: name, accept: accept}
}

// Name implements Actor
func (x *FuncActor) Name() string {
	return x.name
}

// Accept implements Actor
func (x *FuncActor) Accept(t tuple.Tuple) bool {
	return x.accept(t)
}

// TypeHandler returns an AcceptFunc that handles tuples of the given types
// with fn and declines everything else.
func TypeHandler(fn func(t tuple.Tuple), types ...string) AcceptFunc {
	accepted := make(map[string]struct{}, len(types))
	for _, typeName := range types {
		accepted[typeName] = struct{}{}
	}
	return func(t tuple.Tuple) bool {
		if _, ok := accepted[t.Type()]; !ok {
			return false
		}
		fn(t)
		return true
	}
}
