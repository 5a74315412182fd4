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
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/zeebo/xxh3"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// Action tells the remote end of a route what to do with a criteria request
type Action string

const (
	// ActionAdd registers the criteria on the route the request arrived on
	ActionAdd Action = "add"
	// ActionRemove unregisters the criteria from the route the request arrived on
	ActionRemove Action = "remove"
)

// fields of a RoutingCriteria tuple
const (
	fieldAction            = "action"
	fieldTypes             = "types"
	fieldDestinationIDs    = "destinationIDs"
	fieldDestinationActors = "destinationActors"
	fieldValues            = "values"
)

// Criteria describes which tuples a route is interested in.
//
// Empty sets are wildcards. A tuple matches when it satisfies every
// non-empty set (any member of a set will do) and carries every required
// value. A Criteria must not be modified once attached to a route.
type Criteria struct {
	types             mapset.Set[string]
	destinationIDs    mapset.Set[string]
	destinationActors mapset.Set[string]
	values            map[string]value.Value
}

// NewCriteria creates a criteria matching every tuple
func NewCriteria() *Criteria {
	return &Criteria{
		types:             mapset.NewThreadUnsafeSet[string](),
		destinationIDs:    mapset.NewThreadUnsafeSet[string](),
		destinationActors: mapset.NewThreadUnsafeSet[string](),
		values:            make(map[string]value.Value),
	}
}

// WithTypes restricts the criteria to the given tuple types
func (c *Criteria) WithTypes(types ...string) *Criteria {
	c.types.Append(types...)
	return c
}

// WithDestinationIDs restricts the criteria to tuples addressed to the given ids
func (c *Criteria) WithDestinationIDs(ids ...string) *Criteria {
	c.destinationIDs.Append(ids...)
	return c
}

// WithDestinationActors restricts the criteria to tuples addressed to the given actors
func (c *Criteria) WithDestinationActors(names ...string) *Criteria {
	c.destinationActors.Append(names...)
	return c
}

// WithValue requires field key to equal v
func (c *Criteria) WithValue(key string, v value.Value) *Criteria {
	c.values[key] = v.Clone()
	return c
}

// Types returns the sorted type set
func (c *Criteria) Types() []string { return sorted(c.types) }

// DestinationIDs returns the sorted destination id set
func (c *Criteria) DestinationIDs() []string { return sorted(c.destinationIDs) }

// DestinationActors returns the sorted destination actor set
func (c *Criteria) DestinationActors() []string { return sorted(c.destinationActors) }

// IsWildcard reports whether the criteria matches every tuple
func (c *Criteria) IsWildcard() bool {
	return c.types.IsEmpty() && c.destinationIDs.IsEmpty() &&
		c.destinationActors.IsEmpty() && len(c.values) == 0
}

// Matches evaluates the criteria against t
func (c *Criteria) Matches(t tuple.Tuple) bool {
	if !c.types.IsEmpty() && !c.types.Contains(t.Type()) {
		return false
	}
	if !c.destinationIDs.IsEmpty() && !c.destinationIDs.Contains(t.DestinationID()) {
		return false
	}
	if !c.destinationActors.IsEmpty() && !c.destinationActors.Contains(t.DestinationActor()) {
		return false
	}
	for key, required := range c.values {
		actual, ok := t[key]
		if !ok || !required.Equal(actual) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (c *Criteria) Clone() *Criteria {
	clone := &Criteria{
		types:             c.types.Clone(),
		destinationIDs:    c.destinationIDs.Clone(),
		destinationActors: c.destinationActors.Clone(),
		values:            make(map[string]value.Value, len(c.values)),
	}
	for key, v := range c.values {
		clone.values[key] = v.Clone()
	}
	return clone
}

// Fingerprint hashes the canonical encoding of the criteria. Two criteria
// with the same sets and values share a fingerprint.
func (c *Criteria) Fingerprint() uint64 {
	data, err := c.Tuple(ActionAdd).MarshalBinary()
	if err != nil {
		return xxh3.HashString(c.String())
	}
	return xxh3.Hash(data)
}

// Equal reports whether both criteria describe the same interest
func (c *Criteria) Equal(other *Criteria) bool {
	return other != nil && c.Fingerprint() == other.Fingerprint()
}

// Tuple builds the RoutingCriteria request carrying c
func (c *Criteria) Tuple(action Action) tuple.Tuple {
	t := tuple.New(tuple.TypeRoutingCriteria)
	t.Set(fieldAction, value.Word(string(action)))
	t.Set(fieldTypes, value.Words(c.Types()...))
	t.Set(fieldDestinationIDs, value.Words(c.DestinationIDs()...))
	t.Set(fieldDestinationActors, value.Words(c.DestinationActors()...))
	t.Set(fieldValues, value.Map(c.values))
	return t
}

// String renders the criteria for logs
func (c *Criteria) String() string {
	parts := make([]string, 0, 4)
	if !c.types.IsEmpty() {
		parts = append(parts, "types="+strings.Join(c.Types(), "|"))
	}
	if !c.destinationIDs.IsEmpty() {
		parts = append(parts, "destinationIDs="+strings.Join(c.DestinationIDs(), "|"))
	}
	if !c.destinationActors.IsEmpty() {
		parts = append(parts, "destinationActors="+strings.Join(c.DestinationActors(), "|"))
	}
	if len(c.values) > 0 {
		parts = append(parts, "values="+value.Map(c.values).String())
	}
	if len(parts) == 0 {
		return "criteria(*)"
	}
	return "criteria(" + strings.Join(parts, " ") + ")"
}

// CriteriaFromTuple parses a RoutingCriteria request. A missing action
// means add.
func CriteriaFromTuple(t tuple.Tuple) (*Criteria, Action, error) {
	if !t.IsRoutingCriteria() {
		return nil, "", fmt.Errorf("%w: tuple type %q", gerrors.ErrInvalidCriteria, t.Type())
	}

	action := Action(t.Word(fieldAction))
	switch action {
	case "":
		action = ActionAdd
	case ActionAdd, ActionRemove:
	default:
		return nil, "", fmt.Errorf("%w: action %q", gerrors.ErrInvalidCriteria, action)
	}

	criteria := NewCriteria()
	for field, set := range map[string]mapset.Set[string]{
		fieldTypes:             criteria.types,
		fieldDestinationIDs:    criteria.destinationIDs,
		fieldDestinationActors: criteria.destinationActors,
	} {
		words, err := wordsOf(t, field)
		if err != nil {
			return nil, "", err
		}
		set.Append(words...)
	}

	if values, ok := t[fieldValues]; ok {
		if values.Kind() != value.KindMap {
			return nil, "", fmt.Errorf("%w: %s must be a map", gerrors.ErrInvalidCriteria, fieldValues)
		}
		criteria.values = values.Entries()
	}
	return criteria, action, nil
}

func wordsOf(t tuple.Tuple, field string) ([]string, error) {
	v, ok := t[field]
	if !ok {
		return nil, nil
	}

	switch v.Kind() {
	case value.KindWord:
		text, _ := v.AsWord()
		return []string{text}, nil
	case value.KindList:
		words := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			text, ok := item.AsWord()
			if !ok {
				return nil, fmt.Errorf("%w: %s holds a %s", gerrors.ErrInvalidCriteria, field, item.Kind())
			}
			words = append(words, text)
		}
		return words, nil
	default:
		return nil, fmt.Errorf("%w: %s holds a %s", gerrors.ErrInvalidCriteria, field, v.Kind())
	}
}

func sorted(set mapset.Set[string]) []string {
	items := set.ToSlice()
	slices.Sort(items)
	return items
}
