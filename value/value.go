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

// Package value implements the recursive, dynamically typed unit of data
// carried by tuples: words, numbers, lists, maps and binary blobs.
//
// A Value owns its children. Every setter stores its own copy of the
// payload and every accessor hands out copies, so assigning a Value to
// another variable never lets the two observe each other's mutations.
package value

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gerrors "github.com/tochemey/linda/errors"
)

// Kind is the variant tag of a Value.
type Kind uint8

const (
	// KindUnknown is the zero state: no value.
	KindUnknown Kind = iota
	// KindWord holds text.
	KindWord
	// KindNumber holds a float64.
	KindNumber
	// KindList holds an ordered sequence of values.
	KindList
	// KindMap holds word keyed values.
	KindMap
	// KindBinary holds opaque bytes that are never treated as text.
	KindBinary
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the kinds above. The zero Value is unknown.
type Value struct {
	kind    Kind
	bytes   []byte
	number  float64
	items   []Value
	entries map[string]Value
	loader  Loader
}

// Word creates a word value
func Word(text string) Value {
	return Value{kind: KindWord, bytes: []byte(text)}
}

// Number creates a number value
func Number(number float64) Value {
	return Value{kind: KindNumber, number: number}
}

// Binary creates a binary value holding a copy of data
func Binary(data []byte) Value {
	return Value{kind: KindBinary, bytes: bytes.Clone(nonNil(data))}
}

// List creates a list value holding copies of items
func List(items ...Value) Value {
	return Value{kind: KindList, items: cloneItems(items)}
}

// Words creates a list of words
func Words(texts ...string) Value {
	items := make([]Value, len(texts))
	for i, text := range texts {
		items[i] = Word(text)
	}
	return Value{kind: KindList, items: items}
}

// Map creates a map value holding copies of entries
func Map(entries map[string]Value) Value {
	return Value{kind: KindMap, entries: cloneEntries(entries)}
}

// Kind returns the variant tag
func (v Value) Kind() Kind {
	return v.kind
}

// IsUnknown reports whether the value holds nothing
func (v Value) IsUnknown() bool {
	return v.kind == KindUnknown
}

// Reset releases the payload and returns the value to unknown.
// The attached loader, if any, survives a reset.
func (v *Value) Reset() {
	loader := v.loader
	*v = Value{loader: loader}
}

func (v *Value) claim(kind Kind) error {
	if v.kind != KindUnknown && v.kind != kind {
		return fmt.Errorf("%w: have %s, want %s", gerrors.ErrKindMismatch, v.kind, kind)
	}
	v.kind = kind
	return nil
}

// SetWord stores text. The value must be unknown or already a word.
func (v *Value) SetWord(text string) error {
	if err := v.claim(KindWord); err != nil {
		return err
	}
	v.bytes = []byte(text)
	return nil
}

// SetNumber stores a number. The value must be unknown or already a number.
func (v *Value) SetNumber(number float64) error {
	if err := v.claim(KindNumber); err != nil {
		return err
	}
	v.number = number
	return nil
}

// SetBinary stores a copy of data. The value must be unknown or already binary.
func (v *Value) SetBinary(data []byte) error {
	if err := v.claim(KindBinary); err != nil {
		return err
	}
	v.bytes = bytes.Clone(nonNil(data))
	return nil
}

// Append adds a copy of item at the end of the list. An unknown value
// becomes an empty list first.
func (v *Value) Append(item Value) error {
	if err := v.claim(KindList); err != nil {
		return err
	}
	// full slice expression forces a fresh backing array so copies of v
	// taken before the append never see the new element
	v.items = append(v.items[:len(v.items):len(v.items)], item.Clone())
	return nil
}

// SetEntry stores a copy of item under key. An unknown value becomes an
// empty map first.
func (v *Value) SetEntry(key string, item Value) error {
	if err := v.claim(KindMap); err != nil {
		return err
	}
	entries := make(map[string]Value, len(v.entries)+1)
	for k, e := range v.entries {
		entries[k] = e
	}
	entries[key] = item.Clone()
	v.entries = entries
	return nil
}

// DeleteEntry removes key from a map value
func (v *Value) DeleteEntry(key string) {
	if v.kind != KindMap {
		return
	}
	if _, ok := v.entries[key]; !ok {
		return
	}
	entries := make(map[string]Value, len(v.entries))
	for k, e := range v.entries {
		if k != key {
			entries[k] = e
		}
	}
	v.entries = entries
}

// AsWord returns the text of a word value
func (v Value) AsWord() (string, bool) {
	if v.kind != KindWord {
		return "", false
	}
	return string(v.bytes), true
}

// AsNumber returns the number of a number value
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// AsBinary returns a copy of the bytes of a binary value
func (v Value) AsBinary() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return bytes.Clone(nonNil(v.bytes)), true
}

// Len returns the number of list items, map entries or word/binary bytes.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.entries)
	case KindWord, KindBinary:
		return len(v.bytes)
	default:
		return 0
	}
}

// Index returns a copy of the i-th list item, or unknown when out of range
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i].Clone()
}

// Items returns copies of the list items
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return cloneItems(v.items)
}

// Entry returns a copy of the value stored under key
func (v Value) Entry(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	item, ok := v.entries[key]
	if !ok {
		return Value{}, false
	}
	return item.Clone(), true
}

// Keys returns the sorted keys of a map value
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns copies of the map entries
func (v Value) Entries() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	return cloneEntries(v.entries)
}

// Contains reports whether a list holds an item equal to item
func (v Value) Contains(item Value) bool {
	if v.kind != KindList {
		return false
	}
	for _, candidate := range v.items {
		if candidate.Equal(item) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The loader reference is shared.
func (v Value) Clone() Value {
	clone := Value{kind: v.kind, number: v.number, loader: v.loader}
	switch v.kind {
	case KindWord, KindBinary:
		clone.bytes = bytes.Clone(nonNil(v.bytes))
	case KindList:
		clone.items = cloneItems(v.items)
	case KindMap:
		clone.entries = cloneEntries(v.entries)
	}
	return clone
}

// Equal compares structurally. Words and binaries compare by bytes and may
// equal each other. Lists are equal when every item of either side has an
// equal item on the other side. Maps are equal when every key of v exists
// in other with an equal value.
func (v Value) Equal(other Value) bool {
	switch v.kind {
	case KindUnknown:
		return other.kind == KindUnknown
	case KindWord, KindBinary:
		if other.kind != KindWord && other.kind != KindBinary {
			return false
		}
		return bytes.Equal(v.bytes, other.bytes)
	case KindNumber:
		return other.kind == KindNumber && v.number == other.number
	case KindList:
		if other.kind != KindList {
			return false
		}
		return covers(v.items, other.items) && covers(other.items, v.items)
	case KindMap:
		if other.kind != KindMap {
			return false
		}
		for key, item := range v.entries {
			candidate, ok := other.entries[key]
			if !ok || !item.Equal(candidate) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for logs. Words print verbatim.
func (v Value) String() string {
	var builder strings.Builder
	v.format(&builder)
	return builder.String()
}

func (v Value) format(builder *strings.Builder) {
	switch v.kind {
	case KindWord:
		builder.Write(v.bytes)
	case KindNumber:
		builder.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindBinary:
		fmt.Fprintf(builder, "<%d bytes>", len(v.bytes))
	case KindList:
		builder.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				builder.WriteString(", ")
			}
			item.format(builder)
		}
		builder.WriteByte(']')
	case KindMap:
		builder.WriteByte('{')
		for i, key := range v.Keys() {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(key)
			builder.WriteString(": ")
			item := v.entries[key]
			item.format(builder)
		}
		builder.WriteByte('}')
	default:
		builder.WriteString("<unknown>")
	}
}

// every item of a has an equal item in b
func covers(a, b []Value) bool {
	for _, item := range a {
		found := false
		for _, candidate := range b {
			if item.Equal(candidate) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneItems(items []Value) []Value {
	clones := make([]Value, len(items))
	for i, item := range items {
		clones[i] = item.Clone()
	}
	return clones
}

func cloneEntries(entries map[string]Value) map[string]Value {
	clones := make(map[string]Value, len(entries))
	for key, item := range entries {
		clones[key] = item.Clone()
	}
	return clones
}

func nonNil(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
