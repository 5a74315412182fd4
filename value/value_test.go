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

package value

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/linda/errors"
)

func TestValue(t *testing.T) {
	t.Run("With zero value is unknown", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsUnknown())
		assert.Equal(t, KindUnknown, v.Kind())
		assert.True(t, v.Equal(Value{}))
		assert.Equal(t, "<unknown>", v.String())
	})
	t.Run("With kind change requires reset", func(t *testing.T) {
		v := Word("scene")
		err := v.SetNumber(3)
		require.ErrorIs(t, err, gerrors.ErrKindMismatch)

		v.Reset()
		require.NoError(t, v.SetNumber(3))
		number, ok := v.AsNumber()
		require.True(t, ok)
		assert.EqualValues(t, 3, number)

		require.NoError(t, v.SetNumber(4))
		_, ok = v.AsWord()
		assert.False(t, ok)
	})
	t.Run("With append on unknown builds a list", func(t *testing.T) {
		var v Value
		require.NoError(t, v.Append(Word("a")))
		require.NoError(t, v.Append(Number(1)))
		assert.Equal(t, KindList, v.Kind())
		assert.Equal(t, 2, v.Len())
		assert.True(t, v.Index(1).Equal(Number(1)))
		assert.True(t, v.Index(5).IsUnknown())
		require.ErrorIs(t, v.SetEntry("k", Word("v")), gerrors.ErrKindMismatch)
	})
	t.Run("With copies that never alias", func(t *testing.T) {
		original := List(Word("a"))
		copied := original
		require.NoError(t, copied.Append(Word("b")))
		assert.Equal(t, 1, original.Len())
		assert.Equal(t, 2, copied.Len())

		m := Map(map[string]Value{"x": Number(1)})
		other := m
		require.NoError(t, other.SetEntry("y", Number(2)))
		_, ok := m.Entry("y")
		assert.False(t, ok)

		data := []byte{1, 2, 3}
		b := Binary(data)
		data[0] = 9
		got, ok := b.AsBinary()
		require.True(t, ok)
		assert.Equal(t, []byte{1, 2, 3}, got)
		got[1] = 9
		again, _ := b.AsBinary()
		assert.Equal(t, []byte{1, 2, 3}, again)
	})
	t.Run("With delete entry", func(t *testing.T) {
		m := Map(map[string]Value{"x": Number(1), "y": Number(2)})
		snapshot := m
		m.DeleteEntry("x")
		assert.Equal(t, []string{"y"}, m.Keys())
		assert.Equal(t, []string{"x", "y"}, snapshot.Keys())
	})
	t.Run("With string rendering", func(t *testing.T) {
		v := Map(map[string]Value{
			"b": Words("x", "y"),
			"a": Number(1.5),
			"c": Binary([]byte{1, 2}),
		})
		assert.Equal(t, "{a: 1.5, b: [x, y], c: <2 bytes>}", v.String())
	})
}

func TestEqual(t *testing.T) {
	t.Run("With words and binaries", func(t *testing.T) {
		assert.True(t, Word("abc").Equal(Word("abc")))
		assert.False(t, Word("abc").Equal(Word("abd")))
		assert.True(t, Word("abc").Equal(Binary([]byte("abc"))))
		assert.False(t, Word("1").Equal(Number(1)))
	})
	t.Run("With numbers", func(t *testing.T) {
		assert.True(t, Number(2).Equal(Number(2.0)))
		assert.False(t, Number(2).Equal(Number(2.5)))
	})
	t.Run("With lists ignoring order and duplicates", func(t *testing.T) {
		a := List(Word("x"), Word("y"), Word("x"))
		b := List(Word("y"), Word("x"))
		assert.True(t, a.Equal(b))
		assert.True(t, b.Equal(a))
		assert.False(t, a.Equal(List(Word("x"))))
		assert.False(t, List(Word("x")).Equal(a))
		assert.True(t, List().Equal(List()))
	})
	t.Run("With maps checking keys of the receiver", func(t *testing.T) {
		a := Map(map[string]Value{"worldID": Word("w1")})
		b := Map(map[string]Value{"worldID": Word("w1"), "x": Number(3)})
		assert.True(t, a.Equal(b))
		assert.False(t, b.Equal(a))
		assert.False(t, a.Equal(Map(map[string]Value{"worldID": Word("w2")})))
	})
	t.Run("With nested structures", func(t *testing.T) {
		a := Map(map[string]Value{"list": List(Map(map[string]Value{"n": Number(1)}))})
		b := a.Clone()
		assert.True(t, a.Equal(b))
		assert.True(t, b.Equal(a))
	})
	t.Run("With contains", func(t *testing.T) {
		list := Words("Ping", "Pong")
		assert.True(t, list.Contains(Word("Pong")))
		assert.False(t, list.Contains(Word("Time")))
		assert.False(t, Word("Ping").Contains(Word("Ping")))
	})
}

type memoryLoader struct {
	stored Value
	loads  int
}

func (m *memoryLoader) Load(_ context.Context, target *Value) error {
	m.loads++
	loader := target.Loader()
	*target = m.stored.Clone()
	target.Attach(loader)
	return nil
}

func (m *memoryLoader) Save(_ context.Context, source Value) error {
	m.stored = source.Clone()
	return nil
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	loader := &memoryLoader{}

	var v Value
	require.NoError(t, v.Load(ctx))
	assert.Zero(t, loader.loads)

	v.Attach(loader)
	require.NoError(t, v.SetWord("persisted"))
	require.NoError(t, v.Save(ctx))

	v.Reset()
	assert.Same(t, loader, v.Loader())
	require.NoError(t, v.Load(ctx))
	assert.Equal(t, 1, loader.loads)
	text, ok := v.AsWord()
	require.True(t, ok)
	assert.Equal(t, "persisted", text)

	clone := v.Clone()
	assert.Same(t, loader, clone.Loader())
}
