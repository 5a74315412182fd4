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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/tuple"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// emitterFunc adapts a function to Emitter
type emitterFunc func(t tuple.Tuple) error

func (f emitterFunc) Route(t tuple.Tuple) error { return f(t) }

func TestPromises(t *testing.T) {
	t.Run("With reply completing the future", func(t *testing.T) {
		promises := NewPromises("")
		assert.Equal(t, DefaultName, promises.Name())

		var sent tuple.Tuple
		emitter := emitterFunc(func(t tuple.Tuple) error {
			sent = t
			// answer asynchronously the way a remote responder would
			go func() {
				reply := t.Reply(tuple.TypePong)
				promises.Accept(reply)
			}()
			return nil
		})

		request := tuple.New(tuple.TypePing)
		request.SetDestinationID("server")
		f := promises.Request(emitter, request)
		assert.Empty(t, request.RequestID(), "caller tuple untouched")

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		reply, err := f.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, tuple.TypePong, reply.Type())
		assert.Equal(t, f.RequestID(), reply.RequestID())
		assert.Equal(t, DefaultName, reply.DestinationActor())
		assert.Equal(t, DefaultName, sent.SourceActor())
		assert.Zero(t, promises.Pending())

		again, err := f.Await(ctx)
		require.NoError(t, err)
		assert.True(t, again.Equal(reply))
	})
	t.Run("With timeout", func(t *testing.T) {
		promises := NewPromises("waiter")
		f := promises.Request(emitterFunc(func(tuple.Tuple) error { return nil }), tuple.New(tuple.TypePing))
		assert.Equal(t, 1, promises.Pending())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := f.Await(ctx)
		require.ErrorIs(t, err, gerrors.ErrRequestTimeout)
		assert.Zero(t, promises.Pending())

		late := tuple.New(tuple.TypePong)
		late.SetRequestID(f.RequestID())
		late.SetDestinationActor("waiter")
		assert.False(t, promises.Accept(late), "late replies are not accepted")
	})
	t.Run("With cancellation", func(t *testing.T) {
		promises := NewPromises("waiter")
		f := promises.Request(emitterFunc(func(tuple.Tuple) error { return nil }), tuple.New(tuple.TypePing))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Await(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
	t.Run("With emit failure", func(t *testing.T) {
		promises := NewPromises("waiter")
		boom := errors.New("boom")
		f := promises.Request(emitterFunc(func(tuple.Tuple) error { return boom }), tuple.New(tuple.TypePing))

		_, err := f.Await(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Zero(t, promises.Pending())
	})
	t.Run("With unrelated tuples ignored", func(t *testing.T) {
		promises := NewPromises("")
		assert.False(t, promises.Accept(tuple.New(tuple.TypePong)))

		unknown := tuple.New(tuple.TypePong)
		unknown.SetRequestID("nope")
		unknown.SetDestinationActor(DefaultName)
		assert.False(t, promises.Accept(unknown))
	})
	t.Run("With the request itself declined", func(t *testing.T) {
		promises := NewPromises("")
		var sent tuple.Tuple
		f := promises.Request(emitterFunc(func(t tuple.Tuple) error {
			sent = t
			return nil
		}), tuple.New(tuple.TypePing))

		assert.False(t, promises.Accept(sent), "a request offered locally is not its own reply")
		assert.Equal(t, 1, promises.Pending())
		assert.True(t, promises.Accept(sent.Reply(tuple.TypePong)))
		_, err := f.Await(context.Background())
		require.NoError(t, err)
	})
}

func TestCompleted(t *testing.T) {
	reply := tuple.New(tuple.TypePong)
	got, err := Completed(reply, nil).Await(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(reply))
}
