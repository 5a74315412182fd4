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

package filter

import "github.com/tochemey/linda/tuple"

// AllowAll permits every tuple in every direction
var AllowAll Filter = Rules{}

// VerdictFunc is a primary check
type VerdictFunc func(t tuple.Tuple) Verdict

// DefaultFunc is a fallback check
type DefaultFunc func(t tuple.Tuple) bool

// Rules assembles a Filter from functions. A nil primary check is
// Inconclusive and a nil Default check permits.
type Rules struct {
	In             VerdictFunc
	InDefault      DefaultFunc
	Forward        VerdictFunc
	ForwardDefault DefaultFunc
	Out            VerdictFunc
	OutDefault     DefaultFunc
}

var _ Filter = Rules{}

// PermitIn implements Filter
func (r Rules) PermitIn(t tuple.Tuple) Verdict { return verdictOf(r.In, t) }

// PermitInDefault implements Filter
func (r Rules) PermitInDefault(t tuple.Tuple) bool { return defaultOf(r.InDefault, t) }

// PermitForward implements Filter
func (r Rules) PermitForward(t tuple.Tuple) Verdict { return verdictOf(r.Forward, t) }

// PermitForwardDefault implements Filter
func (r Rules) PermitForwardDefault(t tuple.Tuple) bool { return defaultOf(r.ForwardDefault, t) }

// PermitOut implements Filter
func (r Rules) PermitOut(t tuple.Tuple) Verdict { return verdictOf(r.Out, t) }

// PermitOutDefault implements Filter
func (r Rules) PermitOutDefault(t tuple.Tuple) bool { return defaultOf(r.OutDefault, t) }

// DenyTypes returns a primary check denying the named tuple types
func DenyTypes(types ...string) VerdictFunc {
	return func(t tuple.Tuple) Verdict {
		for _, name := range types {
			if t.Type() == name {
				return Deny
			}
		}
		return Inconclusive
	}
}

// Always returns a primary check that always yields verdict
func Always(verdict Verdict) VerdictFunc {
	return func(tuple.Tuple) Verdict { return verdict }
}

func verdictOf(fn VerdictFunc, t tuple.Tuple) Verdict {
	if fn == nil {
		return Inconclusive
	}
	return fn(t)
}

func defaultOf(fn DefaultFunc, t tuple.Tuple) bool {
	if fn == nil {
		return true
	}
	return fn(t)
}
