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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

type recorder struct {
	name     string
	accept   bool
	received []tuple.Tuple
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Accept(t tuple.Tuple) bool {
	r.received = append(r.received, t)
	return r.accept
}

// tagged is a value actor that cannot be compared with ==
type tagged struct {
	name string
	tags []string
}

func (x tagged) Name() string            { return x.name }
func (x tagged) Accept(tuple.Tuple) bool { return len(x.tags) > 0 }

type calculator struct{ recorder }

func (c *calculator) Perform(_ context.Context, function string, args map[string]value.Value, _ string) (value.Value, error) {
	if function != "double" {
		return value.Value{}, gerrors.ErrUnhandledFunction
	}
	n, _ := args["n"].AsNumber()
	return value.Number(2 * n), nil
}

func TestDispatcher(t *testing.T) {
	t.Run("With first acceptor winning", func(t *testing.T) {
		dispatcher := NewDispatcher(log.DiscardLogger)
		a := &recorder{name: "A", accept: true}
		b := &recorder{name: "B", accept: true}
		require.NoError(t, dispatcher.Register(a))
		require.NoError(t, dispatcher.Register(b))

		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, a.received, 1)
		assert.Empty(t, b.received)
	})
	t.Run("With declining actors offered in order", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		a := &recorder{name: "A"}
		b := &recorder{name: "B", accept: true}
		require.NoError(t, dispatcher.Register(a))
		require.NoError(t, dispatcher.Register(b))

		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, a.received, 1)
		assert.Len(t, b.received, 1)
	})
	t.Run("With monitor as fallback only", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		a := &recorder{name: "A"}
		monitor := &recorder{name: "monitor", accept: true}
		require.NoError(t, dispatcher.Register(a))
		dispatcher.RegisterMonitor(monitor)

		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, monitor.received, 1)

		a.accept = true
		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, monitor.received, 1)

		dispatcher.DeregisterMonitor(monitor)
		a.accept = false
		assert.False(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, monitor.received, 1)
	})
	t.Run("With destination actor", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		a := &recorder{name: "A", accept: true}
		b := &recorder{name: "B", accept: true}
		require.NoError(t, dispatcher.Register(a))
		require.NoError(t, dispatcher.Register(b))

		addressed := tuple.New("Pong")
		addressed.SetDestinationActor("B")
		assert.True(t, dispatcher.Dispatch(addressed))
		assert.Empty(t, a.received)
		assert.Len(t, b.received, 1)

		addressed.SetDestinationActor("C")
		assert.False(t, dispatcher.Dispatch(addressed))
	})
	t.Run("With duplicate and unknown registrations", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		a := &recorder{name: "A"}
		require.NoError(t, dispatcher.Register(a))
		require.ErrorIs(t, dispatcher.Register(a), gerrors.ErrActorExists)
		require.ErrorIs(t, dispatcher.Register(&recorder{name: "A"}), gerrors.ErrActorExists)

		assert.True(t, dispatcher.Deregister(a))
		assert.False(t, dispatcher.Deregister(a))
		assert.Empty(t, dispatcher.Actors())
	})
	t.Run("With value actors that are not comparable", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		a := tagged{name: "A", tags: []string{"x"}}
		require.NoError(t, dispatcher.Register(a))
		require.ErrorIs(t, dispatcher.Register(tagged{name: "A"}), gerrors.ErrActorExists)
		require.NoError(t, dispatcher.Register(tagged{name: "B"}))
		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))

		assert.True(t, dispatcher.Deregister(a))
		assert.False(t, dispatcher.Deregister(a))
		require.Len(t, dispatcher.Actors(), 1)

		dispatcher.RegisterMonitor(a)
		dispatcher.DeregisterMonitor(tagged{name: "B"})
		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		dispatcher.DeregisterMonitor(a)
		assert.False(t, dispatcher.Dispatch(tuple.New("Ping")))
	})
	t.Run("With registration during dispatch", func(t *testing.T) {
		dispatcher := NewDispatcher(nil)
		late := &recorder{name: "late", accept: true}
		var early *FuncActor
		early = NewFuncActor("early", func(tuple.Tuple) bool {
			require.NoError(t, dispatcher.Register(late))
			dispatcher.Deregister(early)
			return false
		})
		require.NoError(t, dispatcher.Register(early))

		assert.False(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Empty(t, late.received)
		assert.True(t, dispatcher.Dispatch(tuple.New("Ping")))
		assert.Len(t, late.received, 1)
	})
	t.Run("With perform side channel", func(t *testing.T) {
		ctx := context.Background()
		dispatcher := NewDispatcher(nil)
		require.NoError(t, dispatcher.Register(&calculator{recorder{name: "calc"}}))
		require.NoError(t, dispatcher.Register(&recorder{name: "plain"}))

		result, err := dispatcher.Perform(ctx, "calc", "double", map[string]value.Value{"n": value.Number(21)}, "script")
		require.NoError(t, err)
		n, _ := result.AsNumber()
		assert.EqualValues(t, 42, n)

		_, err = dispatcher.Perform(ctx, "plain", "double", nil, "script")
		require.ErrorIs(t, err, gerrors.ErrNotPerformer)
		_, err = dispatcher.Perform(ctx, "ghost", "double", nil, "script")
		require.ErrorIs(t, err, gerrors.ErrUnknownActor)
	})
}

func TestTypeHandler(t *testing.T) {
	var handled []string
	actor := NewFuncActor("typed", TypeHandler(func(t tuple.Tuple) {
		handled = append(handled, t.Type())
	}, "Ping", "Time"))

	assert.Equal(t, "typed", actor.Name())
	assert.True(t, actor.Accept(tuple.New("Ping")))
	assert.False(t, actor.Accept(tuple.New("Pong")))
	assert.True(t, actor.Accept(tuple.New("Time")))
	assert.Equal(t, []string{"Ping", "Time"}, handled)
}
