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

// Package tuple implements the unit of communication of the fabric: a flat
// mapping from field name to value.Value, and its wire codec.
package tuple

import (
	"sort"
	"strings"

	"github.com/tochemey/linda/value"
)

// Tuple maps field names to values. Like url.Values it is a reference type:
// use Clone to hand a private copy to another goroutine.
type Tuple map[string]value.Value

// New creates an empty tuple of the given type
func New(typeName string) Tuple {
	t := make(Tuple, 4)
	if typeName != "" {
		t.SetType(typeName)
	}
	return t
}

// Get returns a copy of the value stored under key, or an unknown value
func (t Tuple) Get(key string) value.Value {
	v, ok := t[key]
	if !ok {
		return value.Value{}
	}
	return v.Clone()
}

// Has reports whether key is present
func (t Tuple) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Set stores a copy of v under key
func (t Tuple) Set(key string, v value.Value) {
	t[key] = v.Clone()
}

// Delete removes key
func (t Tuple) Delete(key string) {
	delete(t, key)
}

// Edit hands fn the value stored under key, creating an unknown value when
// the key is missing, and stores the result back.
func (t Tuple) Edit(key string, fn func(v *value.Value)) {
	v := t[key]
	fn(&v)
	t[key] = v
}

// Word returns the text of a word field, or "" when missing or not a word
func (t Tuple) Word(key string) string {
	text, _ := t[key].AsWord()
	return text
}

// Number returns a number field, or 0 when missing or not a number
func (t Tuple) Number(key string) float64 {
	number, _ := t[key].AsNumber()
	return number
}

// Keys returns the sorted field names
func (t Tuple) Keys() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy
func (t Tuple) Clone() Tuple {
	clone := make(Tuple, len(t))
	for key, v := range t {
		clone[key] = v.Clone()
	}
	return clone
}

// Equal reports whether both tuples hold the same field names with
// structurally equal values.
func (t Tuple) Equal(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for key, v := range t {
		candidate, ok := other[key]
		if !ok || !v.Equal(candidate) || !candidate.Equal(v) {
			return false
		}
	}
	return true
}

// String renders the tuple for logs with its fields sorted by name
func (t Tuple) String() string {
	var builder strings.Builder
	builder.WriteByte('(')
	for i, key := range t.Keys() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(t[key].String())
	}
	builder.WriteByte(')')
	return builder.String()
}

// Brief renders the routing envelope only: type, source and destination.
func (t Tuple) Brief() string {
	var builder strings.Builder
	builder.WriteString(t.Type())
	builder.WriteString(" ")
	builder.WriteString(t.SourceID())
	if source := t.SourceActor(); source != "" {
		builder.WriteByte('/')
		builder.WriteString(source)
	}
	builder.WriteString(" -> ")
	destination := t.DestinationID()
	if destination == "" {
		destination = "*"
	}
	builder.WriteString(destination)
	if actor := t.DestinationActor(); actor != "" {
		builder.WriteByte('/')
		builder.WriteString(actor)
	}
	return builder.String()
}
