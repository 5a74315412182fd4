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
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/linda/errors"
)

func sampleValues() map[string]Value {
	nested := Word("leaf")
	for range MaxDepth - 1 {
		nested = List(nested)
	}

	return map[string]Value{
		"word":        Word("SceneRequest"),
		"empty word":  Word(""),
		"number":      Number(-42.125),
		"max number":  Number(math.MaxFloat64),
		"binary":      Binary([]byte{0, 1, 2, 255}),
		"empty list":  List(),
		"mixed list":  List(Word("a"), Number(1), Binary([]byte("b"))),
		"empty map":   Map(nil),
		"coordinates": Map(map[string]Value{"worldID": Word("w1"), "x": Number(10), "y": Number(-3)}),
		"deep":        nested,
		"full list":   Words(strings.Split(strings.Repeat("x,", MaxCount-1)+"x", ",")...),
		"long word":   Word(strings.Repeat("z", MaxLength)),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, v := range sampleValues() {
		t.Run(name, func(t *testing.T) {
			data, err := v.MarshalBinary()
			require.NoError(t, err)

			var decoded Value
			require.NoError(t, decoded.UnmarshalBinary(data))
			assert.True(t, v.Equal(decoded))
			assert.True(t, decoded.Equal(v))
			assert.Equal(t, v.Kind(), decoded.Kind())

			streamed, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.True(t, v.Equal(streamed))
		})
	}
}

func TestEncodingLayout(t *testing.T) {
	data, err := Word("hi").MarshalBinary()
	require.NoError(t, err)
	expected := []byte{0}
	expected = binary.NativeEndian.AppendUint32(expected, 2)
	expected = append(expected, 'h', 'i')
	assert.Equal(t, expected, data)

	data, err = Number(1).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.EqualValues(t, 1, data[0])
	assert.Equal(t, math.Float64bits(1), binary.NativeEndian.Uint64(data[1:]))

	data, err = Map(map[string]Value{"k": Binary([]byte{7})}).MarshalBinary()
	require.NoError(t, err)
	expected = []byte{3}
	expected = binary.NativeEndian.AppendUint32(expected, 1)
	expected = binary.NativeEndian.AppendUint32(expected, 1)
	expected = append(expected, 'k', 4)
	expected = binary.NativeEndian.AppendUint32(expected, 1)
	expected = append(expected, 7)
	assert.Equal(t, expected, data)
}

func TestTruncation(t *testing.T) {
	for name, v := range sampleValues() {
		t.Run(name, func(t *testing.T) {
			data, err := v.MarshalBinary()
			require.NoError(t, err)
			for cut := 0; cut < len(data); cut++ {
				var decoded Value
				err := decoded.UnmarshalBinary(data[:cut])
				require.ErrorIs(t, err, gerrors.ErrMalformed, "cut at %d", cut)
				assert.True(t, decoded.IsUnknown())
			}
		})
	}
}

func TestDecodeEOF(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)

	_, err = Decode(bytes.NewReader([]byte{0, 1}))
	require.ErrorIs(t, err, gerrors.ErrMalformed)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBoundRejection(t *testing.T) {
	header := func(kind byte, n int32) []byte {
		data := []byte{kind}
		return binary.NativeEndian.AppendUint32(data, uint32(n))
	}

	t.Run("With oversized list count", func(t *testing.T) {
		data := header(2, MaxCount+1)
		for range MaxCount + 1 {
			data = append(data, 1)
			data = binary.NativeEndian.AppendUint64(data, 0)
		}
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(data), gerrors.ErrMalformed)
	})
	t.Run("With oversized map count", func(t *testing.T) {
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(header(3, MaxCount+1)), gerrors.ErrMalformed)
	})
	t.Run("With oversized word", func(t *testing.T) {
		data := append(header(0, MaxLength+1), bytes.Repeat([]byte("a"), MaxLength+1)...)
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(data), gerrors.ErrMalformed)
	})
	t.Run("With oversized map key", func(t *testing.T) {
		data := header(3, 1)
		data = binary.NativeEndian.AppendUint32(data, MaxLength+1)
		data = append(data, bytes.Repeat([]byte("k"), MaxLength+1)...)
		data = append(data, header(0, 0)...)
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(data), gerrors.ErrMalformed)
	})
	t.Run("With duplicate map key", func(t *testing.T) {
		data := header(3, 2)
		for _, b := range []byte{1, 2} {
			data = binary.NativeEndian.AppendUint32(data, 1)
			data = append(data, 'k')
			data = append(data, header(4, 1)...)
			data = append(data, b)
		}
		var v Value
		err := v.UnmarshalBinary(data)
		require.ErrorIs(t, err, gerrors.ErrMalformed)
		assert.Contains(t, err.Error(), "duplicate map key")
		assert.True(t, v.IsUnknown())
	})
	t.Run("With negative length", func(t *testing.T) {
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(header(4, -1)), gerrors.ErrMalformed)
	})
	t.Run("With unknown type byte", func(t *testing.T) {
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary([]byte{9}), gerrors.ErrMalformed)
	})
	t.Run("With nesting too deep", func(t *testing.T) {
		var data []byte
		for range MaxDepth + 1 {
			data = append(data, header(2, 1)...)
		}
		data = append(data, header(0, 0)...)
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(data), gerrors.ErrMalformed)
	})
	t.Run("With trailing bytes", func(t *testing.T) {
		data, err := Number(1).MarshalBinary()
		require.NoError(t, err)
		var v Value
		require.ErrorIs(t, v.UnmarshalBinary(append(data, 0)), gerrors.ErrMalformed)
	})
}

func TestEncodeRejects(t *testing.T) {
	_, err := Value{}.MarshalBinary()
	require.ErrorIs(t, err, gerrors.ErrUnencodable)

	_, err = Word(strings.Repeat("a", MaxLength+1)).MarshalBinary()
	require.ErrorIs(t, err, gerrors.ErrUnencodable)

	_, err = List(Word("a"), Value{}).MarshalBinary()
	require.ErrorIs(t, err, gerrors.ErrUnencodable)

	buffer := new(bytes.Buffer)
	require.NoError(t, Encode(buffer, Words("a", "b")))
	decoded, err := Decode(buffer)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(Words("a", "b")))
}
