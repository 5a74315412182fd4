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

package responder

import (
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/linda/actor"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// PresenceName is the actor name of Presence
const PresenceName = "Presence"

type membership struct {
	world string
	user  string
}

// Presence tracks which users are present in which world.
//
// Arrive and Depart tuples carry the world in their coordinates and the
// user in the user field, defaulting to the emitting router id. Every
// change is broadcast as a PresenceUpdate addressed to the world. A
// connection going away is cleaned up with ForceDepart.
type Presence struct {
	mu      sync.Mutex
	emitter Emitter
	worlds  map[string]mapset.Set[string]
	// memberships by the source id that announced them
	sources map[string]mapset.Set[membership]
	logger  log.Logger
}

var _ actor.Actor = (*Presence)(nil)

// NewPresence creates a Presence broadcasting through emitter
func NewPresence(emitter Emitter, logger log.Logger) *Presence {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Presence{
		emitter: emitter,
		worlds:  make(map[string]mapset.Set[string]),
		sources: make(map[string]mapset.Set[membership]),
		logger:  logger,
	}
}

// Name implements actor.Actor
func (x *Presence) Name() string {
	return PresenceName
}

// Accept implements actor.Actor
func (x *Presence) Accept(t tuple.Tuple) bool {
	switch t.Type() {
	case TypeArrive, TypeDepart:
		world := t.WorldID()
		if world == "" {
			x.logger.Debugf("ignoring %s without world", t.Brief())
			return true
		}
		user := t.Word(FieldUser)
		if user == "" {
			user = t.SourceID()
		}
		if t.Type() == TypeArrive {
			x.arrive(t.SourceID(), membership{world: world, user: user})
		} else {
			x.depart(membership{world: world, user: user})
		}
		return true
	case TypePresenceRequest:
		reply := t.Reply(TypePresenceResponse)
		reply.SetWorldID(t.WorldID())
		reply.Set(FieldUsers, value.Words(x.Users(t.WorldID())...))
		if err := x.emitter.Route(reply); err != nil {
			x.logger.Warnf("failed to answer presence request from %s: %v", t.SourceID(), err)
		}
		return true
	default:
		return false
	}
}

// Users returns the users present in world, sorted
func (x *Presence) Users(world string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	users, ok := x.worlds[world]
	if !ok {
		return []string{}
	}
	names := users.ToSlice()
	slices.Sort(names)
	return names
}

// ForceDepart departs every user announced by sourceID and returns how
// many were departed
func (x *Presence) ForceDepart(sourceID string) int {
	x.mu.Lock()
	owned, ok := x.sources[sourceID]
	delete(x.sources, sourceID)
	var departed []membership
	if ok {
		for m := range owned.Iter() {
			if x.remove(m) {
				departed = append(departed, m)
			}
		}
	}
	x.mu.Unlock()

	for _, m := range departed {
		x.broadcast(m, false)
	}
	return len(departed)
}

func (x *Presence) arrive(source string, m membership) {
	x.mu.Lock()
	users, ok := x.worlds[m.world]
	if !ok {
		users = mapset.NewThreadUnsafeSet[string]()
		x.worlds[m.world] = users
	}
	added := users.Add(m.user)
	if source != "" {
		owned, ok := x.sources[source]
		if !ok {
			owned = mapset.NewThreadUnsafeSet[membership]()
			x.sources[source] = owned
		}
		owned.Add(m)
	}
	x.mu.Unlock()

	if added {
		x.broadcast(m, true)
	}
}

func (x *Presence) depart(m membership) {
	x.mu.Lock()
	removed := x.remove(m)
	for source, owned := range x.sources {
		owned.Remove(m)
		if owned.IsEmpty() {
			delete(x.sources, source)
		}
	}
	x.mu.Unlock()

	if removed {
		x.broadcast(m, false)
	}
}

// remove runs with mu held
func (x *Presence) remove(m membership) bool {
	users, ok := x.worlds[m.world]
	if !ok || !users.Contains(m.user) {
		return false
	}
	users.Remove(m.user)
	if users.IsEmpty() {
		delete(x.worlds, m.world)
	}
	return true
}

func (x *Presence) broadcast(m membership, present bool) {
	update := tuple.New(TypePresenceUpdate)
	update.SetSourceActor(PresenceName)
	update.SetWorldID(m.world)
	update.Set(FieldUser, value.Word(m.user))
	flag := 0.0
	if present {
		flag = 1
	}
	update.Set(FieldPresent, value.Number(flag))
	if err := x.emitter.Route(update); err != nil {
		x.logger.Warnf("failed to broadcast presence of %s in %s: %v", m.user, m.world, err)
	}
}
