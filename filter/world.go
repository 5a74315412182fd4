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

import (
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"

	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
)

// World is the policy of a connection serving a world client. The client
// route is a regular route and the hub is reached through the default
// route.
//
// Until the connection is authenticated only Authenticate tuples and clock
// ticks come in from the client. Afterwards the client may send tuples for
// joined worlds and have them relayed when the world is writable. Trusted
// source actors, such as global loaders, bypass world membership.
// Authenticate tuples are never relayed so credentials do not leak to
// other connections. What the hub sends is only checked against the
// credentials: read only members still receive their world.
type World struct {
	authenticated *atomic.Bool
	joined        mapset.Set[string]
	writable      mapset.Set[string]
	trusted       mapset.Set[string]
	logger        log.Logger
}

var _ Filter = (*World)(nil)

// NewWorld creates a World policy trusting the given source actors
func NewWorld(logger log.Logger, trusted ...string) *World {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &World{
		authenticated: atomic.NewBool(false),
		joined:        mapset.NewSet[string](),
		writable:      mapset.NewSet[string](),
		trusted:       mapset.NewSet(trusted...),
		logger:        logger,
	}
}

// Authenticate marks the connection credentials valid or invalid
func (w *World) Authenticate(valid bool) {
	w.authenticated.Store(valid)
}

// Authenticated reports whether the credentials are valid
func (w *World) Authenticated() bool {
	return w.authenticated.Load()
}

// Join adds worldID to the joined worlds, optionally writable
func (w *World) Join(worldID string, writable bool) {
	w.joined.Add(worldID)
	if writable {
		w.writable.Add(worldID)
	} else {
		w.writable.Remove(worldID)
	}
}

// Leave removes worldID
func (w *World) Leave(worldID string) {
	w.joined.Remove(worldID)
	w.writable.Remove(worldID)
}

// Joined reports whether worldID has been joined
func (w *World) Joined(worldID string) bool {
	return worldID != "" && w.joined.Contains(worldID)
}

// Writable reports whether tuples for worldID may leave the connection
func (w *World) Writable(worldID string) bool {
	return worldID != "" && w.writable.Contains(worldID)
}

// PermitIn implements Filter
func (w *World) PermitIn(t tuple.Tuple) Verdict {
	if !w.Authenticated() {
		if t.Type() == tuple.TypeAuthenticate || isClockTick(t) {
			return Permit
		}
		w.logger.Debugf("rejecting %s: not authenticated", t.Brief())
		return Deny
	}

	switch {
	case t.IsRoutingCriteria():
		return Permit
	case w.trusted.Contains(t.SourceActor()):
		return Permit
	}

	worldID := t.WorldID()
	switch {
	case worldID == "":
		return Inconclusive
	case w.Joined(worldID):
		return Permit
	default:
		w.logger.Debugf("rejecting %s: world %s not joined", t.Brief(), worldID)
		return Deny
	}
}

// PermitInDefault admits hub tuples once the connection is authenticated,
// and client tuples without world coordinates
func (w *World) PermitInDefault(t tuple.Tuple) bool {
	return isClockTick(t) || w.Authenticated()
}

// PermitForward implements Filter
func (w *World) PermitForward(t tuple.Tuple) Verdict {
	if t.Type() == tuple.TypeAuthenticate {
		w.logger.Debug("not forwarding authentication request")
		return Deny
	}

	worldID := t.WorldID()
	switch {
	case worldID == "":
		return Inconclusive
	case w.Writable(worldID):
		return Permit
	default:
		w.logger.Debugf("not forwarding %s: world %s not writable", t.Brief(), worldID)
		return Deny
	}
}

// PermitForwardDefault relays hub tuples to authenticated clients, and
// client tuples without world coordinates
func (w *World) PermitForwardDefault(t tuple.Tuple) bool {
	return isClockTick(t) || w.Authenticated()
}

// PermitOut implements Filter
func (w *World) PermitOut(t tuple.Tuple) Verdict {
	worldID := t.WorldID()
	if worldID == "" {
		return Inconclusive
	}
	if w.Joined(worldID) {
		return Permit
	}
	return Deny
}

// PermitOutDefault implements Filter
func (w *World) PermitOutDefault(t tuple.Tuple) bool {
	return isClockTick(t) || w.Authenticated()
}

func isClockTick(t tuple.Tuple) bool {
	return t.Type() == tuple.TypeTime && !t.Has(tuple.FieldCoordinates)
}
