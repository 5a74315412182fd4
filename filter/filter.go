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

// Package filter holds the authorization policies a router consults before
// accepting, forwarding or emitting a tuple.
package filter

import (
	"github.com/tochemey/linda/tuple"
)

// Verdict is the outcome of a primary filter check
type Verdict int

const (
	// Inconclusive defers the decision to the matching Default check
	Inconclusive Verdict = iota
	// Permit lets the tuple through
	Permit
	// Deny drops the tuple
	Deny
)

// String returns the verdict name
func (v Verdict) String() string {
	switch v {
	case Permit:
		return "permit"
	case Deny:
		return "deny"
	default:
		return "inconclusive"
	}
}

// Filter is a per deployment authorization policy.
//
// Each direction has a primary check returning a Verdict and a Default
// check. Tuples read from or emitted on a non default route go through the
// primary check, falling back to the Default check when it is
// Inconclusive. Tuples read from the default route, or emitted on it
// because no other route matched, go through the Default check alone.
type Filter interface {
	// PermitIn decides whether a tuple read from a route is accepted
	PermitIn(t tuple.Tuple) Verdict
	PermitInDefault(t tuple.Tuple) bool
	// PermitForward decides whether an accepted tuple is relayed to other routes
	PermitForward(t tuple.Tuple) Verdict
	PermitForwardDefault(t tuple.Tuple) bool
	// PermitOut decides whether a tuple may be written to a given route
	PermitOut(t tuple.Tuple) Verdict
	PermitOutDefault(t tuple.Tuple) bool
}

// In applies the inbound checks of f. A nil filter permits everything.
func In(f Filter, t tuple.Tuple) bool {
	if f == nil {
		return true
	}
	return resolve(f.PermitIn(t), f.PermitInDefault, t)
}

// Forward applies the forwarding checks of f
func Forward(f Filter, t tuple.Tuple) bool {
	if f == nil {
		return true
	}
	return resolve(f.PermitForward(t), f.PermitForwardDefault, t)
}

// Out applies the outbound checks of f
func Out(f Filter, t tuple.Tuple) bool {
	if f == nil {
		return true
	}
	return resolve(f.PermitOut(t), f.PermitOutDefault, t)
}

// InDefault applies the inbound Default check of f to a tuple read from
// the default route
func InDefault(f Filter, t tuple.Tuple) bool {
	return f == nil || f.PermitInDefault(t)
}

// ForwardDefault applies the forwarding Default check of f to a tuple read
// from the default route
func ForwardDefault(f Filter, t tuple.Tuple) bool {
	return f == nil || f.PermitForwardDefault(t)
}

// OutDefault applies the outbound Default check of f to a tuple emitted on
// the default route because no other route matched
func OutDefault(f Filter, t tuple.Tuple) bool {
	return f == nil || f.PermitOutDefault(t)
}

func resolve(verdict Verdict, fallback func(tuple.Tuple) bool, t tuple.Tuple) bool {
	switch verdict {
	case Permit:
		return true
	case Deny:
		return false
	default:
		return fallback(t)
	}
}
