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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

func addressed(typeName, destination string) tuple.Tuple {
	t := tuple.New(typeName)
	t.SetSourceID("source")
	if destination != "" {
		t.SetDestinationID(destination)
	}
	return t
}

func TestCriteriaMatches(t *testing.T) {
	t.Run("With destination set only", func(t *testing.T) {
		criteria := NewCriteria().WithDestinationIDs("X")
		assert.True(t, criteria.Matches(addressed("Ping", "X")))
		assert.True(t, criteria.Matches(addressed("SceneRequest", "X")))
		assert.False(t, criteria.Matches(addressed("Ping", "Y")))
		assert.False(t, criteria.Matches(addressed("Ping", "")))
	})
	t.Run("With type set only", func(t *testing.T) {
		criteria := NewCriteria().WithTypes("Ping", "Time")
		assert.True(t, criteria.Matches(addressed("Ping", "anyone")))
		assert.True(t, criteria.Matches(addressed("Time", "")))
		assert.False(t, criteria.Matches(addressed("Pong", "anyone")))
	})
	t.Run("With both sets combined", func(t *testing.T) {
		criteria := NewCriteria().WithTypes("Ping").WithDestinationIDs("X", "Z")
		assert.True(t, criteria.Matches(addressed("Ping", "Z")))
		assert.False(t, criteria.Matches(addressed("Pong", "X")))
		assert.False(t, criteria.Matches(addressed("Ping", "Y")))
	})
	t.Run("With wildcard", func(t *testing.T) {
		criteria := NewCriteria()
		assert.True(t, criteria.IsWildcard())
		assert.True(t, criteria.Matches(addressed("Anything", "")))
	})
	t.Run("With destination actors and values", func(t *testing.T) {
		criteria := NewCriteria().
			WithDestinationActors("Presence").
			WithValue(tuple.FieldCoordinates, value.Map(map[string]value.Value{tuple.CoordinateWorldID: value.Word("w1")}))
		assert.False(t, criteria.IsWildcard())

		tp := addressed("Arrive", "")
		tp.SetDestinationActor("Presence")
		assert.False(t, criteria.Matches(tp))

		tp.SetWorldID("w1")
		tp.Edit(tuple.FieldCoordinates, func(v *value.Value) { _ = v.SetEntry("x", value.Number(3)) })
		assert.True(t, criteria.Matches(tp))

		tp.SetWorldID("w2")
		assert.False(t, criteria.Matches(tp))
	})
}

func TestCriteriaTuple(t *testing.T) {
	t.Run("With round trip through a request", func(t *testing.T) {
		criteria := NewCriteria().
			WithTypes("Ping", "Pong").
			WithDestinationIDs("client-1").
			WithDestinationActors("pinger").
			WithValue("zone", value.Word("north"))

		request := criteria.Tuple(ActionRemove)
		assert.True(t, request.IsRoutingCriteria())

		data, err := request.MarshalBinary()
		require.NoError(t, err)
		var decoded tuple.Tuple
		require.NoError(t, decoded.UnmarshalBinary(data))

		parsed, action, err := CriteriaFromTuple(decoded)
		require.NoError(t, err)
		assert.Equal(t, ActionRemove, action)
		assert.Equal(t, []string{"Ping", "Pong"}, parsed.Types())
		assert.Equal(t, []string{"client-1"}, parsed.DestinationIDs())
		assert.Equal(t, []string{"pinger"}, parsed.DestinationActors())
		assert.True(t, criteria.Equal(parsed))
		assert.Equal(t, criteria.Fingerprint(), parsed.Fingerprint())
	})
	t.Run("With fingerprint independent of insertion order", func(t *testing.T) {
		a := NewCriteria().WithTypes("A", "B", "C")
		b := NewCriteria().WithTypes("C", "A").WithTypes("B")
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(NewCriteria().WithTypes("A")))
		assert.False(t, a.Equal(nil))
	})
	t.Run("With a single word instead of a list and no action", func(t *testing.T) {
		request := tuple.New(tuple.TypeRoutingCriteria)
		request.Set("destinationIDs", value.Word("client-1"))
		parsed, action, err := CriteriaFromTuple(request)
		require.NoError(t, err)
		assert.Equal(t, ActionAdd, action)
		assert.Equal(t, []string{"client-1"}, parsed.DestinationIDs())
		assert.Empty(t, parsed.Types())
	})
	t.Run("With invalid requests", func(t *testing.T) {
		_, _, err := CriteriaFromTuple(tuple.New("Ping"))
		require.ErrorIs(t, err, gerrors.ErrInvalidCriteria)

		request := tuple.New(tuple.TypeRoutingCriteria)
		request.Set("action", value.Word("replace"))
		_, _, err = CriteriaFromTuple(request)
		require.ErrorIs(t, err, gerrors.ErrInvalidCriteria)

		request = tuple.New(tuple.TypeRoutingCriteria)
		request.Set("types", value.List(value.Number(1)))
		_, _, err = CriteriaFromTuple(request)
		require.ErrorIs(t, err, gerrors.ErrInvalidCriteria)

		request = tuple.New(tuple.TypeRoutingCriteria)
		request.Set("values", value.Words("x"))
		_, _, err = CriteriaFromTuple(request)
		require.ErrorIs(t, err, gerrors.ErrInvalidCriteria)
	})
	t.Run("With string rendering", func(t *testing.T) {
		assert.Equal(t, "criteria(*)", NewCriteria().String())
		assert.Equal(t, "criteria(types=Ping|Pong destinationIDs=X)",
			NewCriteria().WithTypes("Pong", "Ping").WithDestinationIDs("X").String())
	})
}

func TestCriteriaSet(t *testing.T) {
	near, far := NewQueueingPair("near", "far")
	defer near.Close()

	assert.False(t, near.Matches(addressed("Ping", "X")), "no criteria matches nothing")

	near.AddCriteria(NewCriteria().WithDestinationIDs("X"))
	near.AddCriteria(NewCriteria().WithTypes("Time"))
	near.AddCriteria(NewCriteria().WithDestinationIDs("X"))
	assert.Len(t, near.Criteria(), 2)

	assert.True(t, near.Matches(addressed("Ping", "X")))
	assert.True(t, near.Matches(addressed("Time", "Y")))
	assert.False(t, near.Matches(addressed("Ping", "Y")))

	assert.True(t, near.RemoveCriteria(NewCriteria().WithDestinationIDs("X")))
	assert.False(t, near.RemoveCriteria(NewCriteria().WithDestinationIDs("X")))
	assert.False(t, near.Matches(addressed("Ping", "X")))
	assert.Empty(t, far.Criteria())
}
