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

package tuple

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/value"
)

const (
	// MaxFields is the largest number of encodable fields
	MaxFields = 255
	// MaxKeyLength is the largest encodable field name in bytes
	MaxKeyLength = 255
)

// AppendBinary appends the wire encoding of t to data. Fields are written
// in sorted order and unknown values are skipped.
func (t Tuple) AppendBinary(data []byte) ([]byte, error) {
	keys := make([]string, 0, len(t))
	for _, key := range t.Keys() {
		if !t[key].IsUnknown() {
			keys = append(keys, key)
		}
	}

	if len(keys) > MaxFields {
		return nil, fmt.Errorf("%w: %d fields", gerrors.ErrTooManyFields, len(keys))
	}

	data = append(data, byte(len(keys)))
	var err error
	for _, key := range keys {
		if len(key) > MaxKeyLength {
			return nil, fmt.Errorf("%w: %q", gerrors.ErrKeyTooLong, key[:16])
		}
		data = append(data, byte(len(key)))
		data = append(data, key...)
		if data, err = t[key].AppendBinary(data); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return data, nil
}

// MarshalBinary returns the wire encoding of t
func (t Tuple) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(nil)
}

// UnmarshalBinary replaces the content of t with the decoded data.
// On failure t is left empty and the error wraps errors.ErrMalformed.
func (t *Tuple) UnmarshalBinary(data []byte) error {
	reader := bytes.NewReader(data)
	decoded, err := Decode(reader)
	if err != nil {
		*t = Tuple{}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", gerrors.ErrMalformed, io.ErrUnexpectedEOF)
		}
		return err
	}
	if reader.Len() != 0 {
		*t = Tuple{}
		return fmt.Errorf("%w: %d trailing bytes", gerrors.ErrMalformed, reader.Len())
	}
	*t = decoded
	return nil
}

// Encode writes the wire encoding of t with a single Write call
func Encode(w io.Writer, t Tuple) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads one tuple from r. A stream that is exhausted before the
// field count returns io.EOF. Everything else fails closed with an error
// wrapping errors.ErrMalformed.
func Decode(r io.Reader) (Tuple, error) {
	var scratch [MaxKeyLength]byte
	if _, err := io.ReadFull(r, scratch[:1]); err != nil {
		return nil, err
	}

	count := int(scratch[0])
	t := make(Tuple, count)
	for range count {
		if _, err := io.ReadFull(r, scratch[:1]); err != nil {
			return nil, malformed(err)
		}
		keyLength := int(scratch[0])
		if _, err := io.ReadFull(r, scratch[:keyLength]); err != nil {
			return nil, malformed(err)
		}
		key := string(scratch[:keyLength])
		if _, ok := t[key]; ok {
			return nil, fmt.Errorf("%w: duplicate field %q", gerrors.ErrMalformed, key)
		}

		v, err := value.Decode(r)
		if err != nil {
			return nil, malformed(err)
		}
		t[key] = v
	}
	return t, nil
}

func malformed(err error) error {
	if errors.Is(err, gerrors.ErrMalformed) {
		return err
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", gerrors.ErrMalformed, err)
}
