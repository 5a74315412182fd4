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

package responder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is an Emitter keeping every routed tuple
type recorder struct {
	mu     sync.Mutex
	tuples []tuple.Tuple
	err    error
}

func (r *recorder) Route(t tuple.Tuple) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tuples = append(r.tuples, t.Clone())
	return nil
}

func (r *recorder) all() []tuple.Tuple {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tuple.Tuple(nil), r.tuples...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.tuples = nil
	r.mu.Unlock()
}

func request(typeName, source string) tuple.Tuple {
	t := tuple.New(typeName)
	t.SetSourceID(source)
	t.SetSourceActor("Promises")
	t.SetRequestID("r-" + source)
	return t
}

func TestPinger(t *testing.T) {
	emitter := new(recorder)
	pinger := NewPinger(emitter, nil)
	assert.Equal(t, PingerName, pinger.Name())

	assert.False(t, pinger.Accept(tuple.New(tuple.TypeTime)))
	require.True(t, pinger.Accept(request(tuple.TypePing, "alice")))

	sent := emitter.all()
	require.Len(t, sent, 1)
	assert.Equal(t, tuple.TypePong, sent[0].Type())
	assert.Equal(t, "alice", sent[0].DestinationID())
	assert.Equal(t, "Promises", sent[0].DestinationActor())
	assert.Equal(t, "r-alice", sent[0].RequestID())

	emitter.err = errors.New("no route")
	assert.True(t, pinger.Accept(request(tuple.TypePing, "bob")), "failures are logged, the ping is still handled")
}

func TestClock(t *testing.T) {
	t.Run("With a single tick", func(t *testing.T) {
		emitter := new(recorder)
		clock, err := NewClock(emitter, 0, nil)
		require.NoError(t, err)
		require.NoError(t, clock.Tick())

		sent := emitter.all()
		require.Len(t, sent, 1)
		assert.Equal(t, tuple.TypeTime, sent[0].Type())
		assert.Equal(t, ClockName, sent[0].SourceActor())
		assert.InDelta(t, float64(time.Now().Unix()), sent[0].Number(FieldNow), 2)
		assert.False(t, sent[0].Has(tuple.FieldCoordinates))
	})
	t.Run("With scheduled ticks", func(t *testing.T) {
		emitter := new(recorder)
		clock, err := NewClock(emitter, 20*time.Millisecond, nil)
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, clock.Start(ctx))
		require.NoError(t, clock.Start(ctx))
		require.Eventually(t, func() bool {
			return len(emitter.all()) >= 2
		}, 2*time.Second, 10*time.Millisecond)

		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		clock.Stop(stopCtx)
		assert.GreaterOrEqual(t, clock.Ticks(), int64(2))
		clock.Stop(stopCtx)
	})
}

func TestPresence(t *testing.T) {
	arrive := func(typeName, source, world, user string) tuple.Tuple {
		t := tuple.New(typeName)
		t.SetSourceID(source)
		t.SetWorldID(world)
		if user != "" {
			t.Set(FieldUser, value.Word(user))
		}
		return t
	}

	t.Run("With arrivals and departures broadcast", func(t *testing.T) {
		emitter := new(recorder)
		presence := NewPresence(emitter, nil)

		require.True(t, presence.Accept(arrive(TypeArrive, "c1", "w1", "alice")))
		require.True(t, presence.Accept(arrive(TypeArrive, "c2", "w1", "")))
		require.True(t, presence.Accept(arrive(TypeArrive, "c1", "w1", "alice")))
		assert.Equal(t, []string{"alice", "c2"}, presence.Users("w1"))

		sent := emitter.all()
		require.Len(t, sent, 2, "a repeated arrival is not broadcast again")
		assert.Equal(t, TypePresenceUpdate, sent[0].Type())
		assert.Equal(t, "w1", sent[0].WorldID())
		assert.Equal(t, "alice", sent[0].Word(FieldUser))
		assert.Equal(t, 1.0, sent[0].Number(FieldPresent))

		emitter.reset()
		require.True(t, presence.Accept(arrive(TypeDepart, "c1", "w1", "alice")))
		assert.Equal(t, []string{"c2"}, presence.Users("w1"))
		sent = emitter.all()
		require.Len(t, sent, 1)
		assert.Equal(t, 0.0, sent[0].Number(FieldPresent))

		assert.Zero(t, presence.ForceDepart("c1"), "alice already departed")
	})
	t.Run("With presence request", func(t *testing.T) {
		emitter := new(recorder)
		presence := NewPresence(emitter, nil)
		require.True(t, presence.Accept(arrive(TypeArrive, "c1", "w1", "bob")))
		emitter.reset()

		query := request(TypePresenceRequest, "c9")
		query.SetWorldID("w1")
		require.True(t, presence.Accept(query))

		sent := emitter.all()
		require.Len(t, sent, 1)
		reply := sent[0]
		assert.Equal(t, TypePresenceResponse, reply.Type())
		assert.Equal(t, "c9", reply.DestinationID())
		assert.Equal(t, "r-c9", reply.RequestID())
		assert.True(t, reply.Get(FieldUsers).Equal(value.Words("bob")))

		empty := request(TypePresenceRequest, "c9")
		empty.SetWorldID("nowhere")
		require.True(t, presence.Accept(empty))
		assert.Zero(t, emitter.all()[1].Get(FieldUsers).Len())
	})
	t.Run("With force depart of a connection", func(t *testing.T) {
		emitter := new(recorder)
		presence := NewPresence(emitter, nil)
		require.True(t, presence.Accept(arrive(TypeArrive, "c1", "w1", "alice")))
		require.True(t, presence.Accept(arrive(TypeArrive, "c1", "w2", "alice")))
		require.True(t, presence.Accept(arrive(TypeArrive, "c2", "w2", "bob")))
		emitter.reset()

		assert.Equal(t, 2, presence.ForceDepart("c1"))
		assert.Empty(t, presence.Users("w1"))
		assert.Equal(t, []string{"bob"}, presence.Users("w2"))
		assert.Len(t, emitter.all(), 2)
	})
	t.Run("With unrelated tuples declined", func(t *testing.T) {
		presence := NewPresence(new(recorder), nil)
		assert.False(t, presence.Accept(tuple.New(tuple.TypePing)))
		assert.True(t, presence.Accept(tuple.New(TypeArrive)), "arrivals without world are swallowed")
		assert.Equal(t, PresenceName, presence.Name())
	})
}

func TestTelegrams(t *testing.T) {
	open := func(t *testing.T, emitter Emitter) *Telegrams {
		t.Helper()
		store, err := OpenTelegrams(filepath.Join(t.TempDir(), "telegrams.db"), emitter, nil)
		require.NoError(t, err)
		return store
	}

	t.Run("With send and request", func(t *testing.T) {
		emitter := new(recorder)
		store := open(t, emitter)
		defer store.Close()

		for _, text := range []string{"first", "second"} {
			send := request(TypeTelegramSend, "alice")
			send.Set(FieldRecipient, value.Word("bob"))
			send.Set(FieldTelegram, value.Map(map[string]value.Value{"text": value.Word(text)}))
			require.True(t, store.Accept(send))
		}

		sent := emitter.all()
		require.Len(t, sent, 2)
		assert.Equal(t, TypeTelegramSendResponse, sent[0].Type())
		assert.Equal(t, 1.0, sent[0].Number(FieldOK))
		emitter.reset()

		require.True(t, store.Accept(func() tuple.Tuple {
			t := request(TypeTelegramRequest, "bob")
			t.Set(FieldRecipient, value.Word("bob"))
			return t
		}()))
		sent = emitter.all()
		require.Len(t, sent, 1)
		telegrams := sent[0].Get(FieldTelegrams)
		require.Equal(t, 2, telegrams.Len())
		text, _ := telegrams.Index(0).Entry("text")
		assert.True(t, text.Equal(value.Word("first")))
	})
	t.Run("With a telegram without recipient", func(t *testing.T) {
		emitter := new(recorder)
		store := open(t, emitter)
		defer store.Close()

		send := request(TypeTelegramSend, "alice")
		send.Set(FieldTelegram, value.Word("lost"))
		require.True(t, store.Accept(send))

		sent := emitter.all()
		require.Len(t, sent, 1)
		assert.Equal(t, 0.0, sent[0].Number(FieldOK))
		assert.NotEmpty(t, sent[0].Word(FieldError))
	})
	t.Run("With an unknown recipient", func(t *testing.T) {
		store := open(t, new(recorder))
		defer store.Close()
		telegrams, err := store.Load("nobody")
		require.NoError(t, err)
		assert.Empty(t, telegrams)
	})
	t.Run("With a closed store", func(t *testing.T) {
		store := open(t, new(recorder))
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
		assert.Error(t, store.Store("bob", value.Word("late")))
		_, err := store.Load("bob")
		assert.Error(t, err)
	})
	t.Run("With persistence across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "telegrams.db")
		store, err := OpenTelegrams(path, new(recorder), nil)
		require.NoError(t, err)
		require.NoError(t, store.Store("bob", value.Number(42)))
		require.NoError(t, store.Close())

		store, err = OpenTelegrams(path, new(recorder), nil)
		require.NoError(t, err)
		defer store.Close()
		telegrams, err := store.Load("bob")
		require.NoError(t, err)
		require.Len(t, telegrams, 1)
		assert.True(t, telegrams[0].Equal(value.Number(42)))
	})
}
