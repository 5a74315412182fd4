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

// Package route implements the communication edges of a router: the
// in-process Queueing pair, the byte and message Stream routes and the
// NATS bridge, together with the RoutingCriteria attached to each of them.
package route

import (
	"slices"
	"sync"

	"github.com/tochemey/linda/tuple"
)

// Route is one communication edge carrying tuples in and out of a router.
type Route interface {
	// Name identifies the route in logs and metrics
	Name() string
	// Send hands t to the transport. Implementations copy or encode t
	// before returning so the caller keeps ownership.
	Send(t tuple.Tuple) error
	// Receive returns the next inbound tuple without blocking
	Receive() (tuple.Tuple, bool)
	// Err returns the sticky transport error, if any. Tuples received
	// before the failure can still be drained with Receive.
	Err() error
	// Notify is signalled whenever inbound tuples or an error are ready
	Notify() <-chan struct{}
	// AddCriteria attaches c to the route
	AddCriteria(c *Criteria)
	// RemoveCriteria detaches the criteria equal to c and reports whether
	// one was found
	RemoveCriteria(c *Criteria) bool
	// Criteria returns the attached criteria
	Criteria() []*Criteria
	// Matches reports whether any attached criteria matches t. A route
	// without criteria matches nothing.
	Matches(t tuple.Tuple) bool
	// Close releases the transport
	Close() error
}

// criteriaSet is the goroutine safe criteria collection shared by every
// route kind. Hydra reads it on its own goroutine while connection
// handlers update it.
type criteriaSet struct {
	mu    sync.RWMutex
	items []*Criteria
}

func (s *criteriaSet) AddCriteria(c *Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Equal(c) {
			return
		}
	}
	s.items = append(slices.Clip(s.items), c.Clone())
}

func (s *criteriaSet) RemoveCriteria(c *Criteria) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	fingerprint := c.Fingerprint()
	for i, existing := range s.items {
		if existing.Fingerprint() == fingerprint {
			s.items = slices.Delete(slices.Clone(s.items), i, i+1)
			return true
		}
	}
	return false
}

func (s *criteriaSet) Criteria() []*Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *criteriaSet) Matches(t tuple.Tuple) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, criteria := range s.items {
		if criteria.Matches(t) {
			return true
		}
	}
	return false
}
