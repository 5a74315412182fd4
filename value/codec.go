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
	"errors"
	"fmt"
	"io"
	"math"

	gerrors "github.com/tochemey/linda/errors"
)

const (
	// MaxCount is the largest list or map size accepted by the decoder
	MaxCount = 256
	// MaxLength is the largest word, binary or key length accepted by the decoder
	MaxLength = 1024
	// MaxDepth is the deepest nesting accepted by the decoder
	MaxDepth = 64
)

// wire type bytes
const (
	wireWord   byte = 0
	wireNumber byte = 1
	wireList   byte = 2
	wireMap    byte = 3
	wireBinary byte = 4
)

var order = binary.NativeEndian

// AppendBinary appends the wire encoding of v to data
func (v Value) AppendBinary(data []byte) ([]byte, error) {
	switch v.kind {
	case KindWord:
		if len(v.bytes) > MaxLength {
			return nil, fmt.Errorf("%w: word of %d bytes", gerrors.ErrUnencodable, len(v.bytes))
		}
		data = append(data, wireWord)
		data = order.AppendUint32(data, uint32(len(v.bytes)))
		return append(data, v.bytes...), nil
	case KindBinary:
		if len(v.bytes) > MaxLength {
			return nil, fmt.Errorf("%w: binary of %d bytes", gerrors.ErrUnencodable, len(v.bytes))
		}
		data = append(data, wireBinary)
		data = order.AppendUint32(data, uint32(len(v.bytes)))
		return append(data, v.bytes...), nil
	case KindNumber:
		data = append(data, wireNumber)
		return order.AppendUint64(data, math.Float64bits(v.number)), nil
	case KindList:
		if len(v.items) > MaxCount {
			return nil, fmt.Errorf("%w: list of %d items", gerrors.ErrUnencodable, len(v.items))
		}
		data = append(data, wireList)
		data = order.AppendUint32(data, uint32(len(v.items)))
		var err error
		for _, item := range v.items {
			if data, err = item.AppendBinary(data); err != nil {
				return nil, err
			}
		}
		return data, nil
	case KindMap:
		if len(v.entries) > MaxCount {
			return nil, fmt.Errorf("%w: map of %d entries", gerrors.ErrUnencodable, len(v.entries))
		}
		data = append(data, wireMap)
		data = order.AppendUint32(data, uint32(len(v.entries)))
		var err error
		for _, key := range v.Keys() {
			if len(key) > MaxLength {
				return nil, fmt.Errorf("%w: map key of %d bytes", gerrors.ErrUnencodable, len(key))
			}
			data = order.AppendUint32(data, uint32(len(key)))
			data = append(data, key...)
			if data, err = v.entries[key].AppendBinary(data); err != nil {
				return nil, err
			}
		}
		return data, nil
	default:
		return nil, gerrors.ErrUnencodable
	}
}

// MarshalBinary returns the wire encoding of v
func (v Value) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(nil)
}

// UnmarshalBinary decodes data into v. Trailing bytes are rejected.
func (v *Value) UnmarshalBinary(data []byte) error {
	reader := bytes.NewReader(data)
	decoded, err := Decode(reader)
	if err != nil {
		return asMalformed(err)
	}
	if reader.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", gerrors.ErrMalformed, reader.Len())
	}
	loader := v.loader
	*v = decoded
	v.loader = loader
	return nil
}

// Encode writes the wire encoding of v to w
func Encode(w io.Writer, v Value) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads one value from r. A stream that ends before the first byte
// returns io.EOF; any later short read, bound violation, unknown type byte
// or repeated map key returns an error wrapping gerrors.ErrMalformed.
func Decode(r io.Reader) (Value, error) {
	d := &decoder{reader: r}
	kind, err := d.byte()
	if err != nil {
		return Value{}, err
	}
	v, err := d.value(kind, 1)
	if err != nil {
		return Value{}, asMalformed(err)
	}
	return v, nil
}

// decodeLength reads a 4 byte count or length and checks it against limit
func decodeLength(d *decoder, limit int) (int, error) {
	raw, err := d.uint32()
	if err != nil {
		return 0, err
	}
	n := int32(raw)
	if n < 0 || int(n) > limit {
		return 0, fmt.Errorf("%w: length %d out of bounds", gerrors.ErrMalformed, n)
	}
	return int(n), nil
}

type decoder struct {
	reader  io.Reader
	scratch [8]byte
}

func (d *decoder) byte() (byte, error) {
	if _, err := io.ReadFull(d.reader, d.scratch[:1]); err != nil {
		return 0, err
	}
	return d.scratch[0], nil
}

func (d *decoder) uint32() (uint32, error) {
	if _, err := io.ReadFull(d.reader, d.scratch[:4]); err != nil {
		return 0, err
	}
	return order.Uint32(d.scratch[:4]), nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(d.reader, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (d *decoder) value(kind byte, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("%w: nesting deeper than %d", gerrors.ErrMalformed, MaxDepth)
	}

	switch kind {
	case wireWord, wireBinary:
		n, err := decodeLength(d, MaxLength)
		if err != nil {
			return Value{}, err
		}
		data, err := d.bytes(n)
		if err != nil {
			return Value{}, err
		}
		if kind == wireWord {
			return Value{kind: KindWord, bytes: data}, nil
		}
		return Value{kind: KindBinary, bytes: data}, nil

	case wireNumber:
		if _, err := io.ReadFull(d.reader, d.scratch[:8]); err != nil {
			return Value{}, err
		}
		return Number(math.Float64frombits(order.Uint64(d.scratch[:8]))), nil

	case wireList:
		count, err := decodeLength(d, MaxCount)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, count)
		for range count {
			child, err := d.byte()
			if err != nil {
				return Value{}, err
			}
			item, err := d.value(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindList, items: items}, nil

	case wireMap:
		count, err := decodeLength(d, MaxCount)
		if err != nil {
			return Value{}, err
		}
		entries := make(map[string]Value, count)
		for range count {
			keyLength, err := decodeLength(d, MaxLength)
			if err != nil {
				return Value{}, err
			}
			key, err := d.bytes(keyLength)
			if err != nil {
				return Value{}, err
			}
			child, err := d.byte()
			if err != nil {
				return Value{}, err
			}
			item, err := d.value(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			if _, ok := entries[string(key)]; ok {
				return Value{}, fmt.Errorf("%w: duplicate map key %q", gerrors.ErrMalformed, key)
			}
			entries[string(key)] = item
		}
		return Value{kind: KindMap, entries: entries}, nil

	default:
		return Value{}, fmt.Errorf("%w: unknown type byte %d", gerrors.ErrMalformed, kind)
	}
}

// asMalformed makes every failure past the first byte a malformed error
// while keeping the underlying cause reachable.
func asMalformed(err error) error {
	if err == nil || errors.Is(err, gerrors.ErrMalformed) {
		return err
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", gerrors.ErrMalformed, err)
}
