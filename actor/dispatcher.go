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

package actor

import (
	"context"
	"fmt"
	"slices"
	"sync"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// Dispatcher offers tuples to the actors registered with one router.
//
// Actors are offered a tuple in registration order and the first one to
// accept it wins. The monitor, when installed, is consulted only when no
// registered actor accepted. Registration may happen from any goroutine,
// including from inside Accept: a dispatch works on the snapshot taken
// when it started.
type Dispatcher struct {
	mu      sync.RWMutex
	actors  []Actor
	monitor Actor
	logger  log.Logger
}

// NewDispatcher creates an empty Dispatcher
func NewDispatcher(logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Dispatcher{logger: logger}
}

// Register appends actor to the dispatch order. Actors are told apart by
// name, so two actors sharing one cannot both be registered.
func (d *Dispatcher) Register(actor Actor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.actors {
		if existing.Name() == actor.Name() {
			return fmt.Errorf("%w: %s", gerrors.ErrActorExists, actor.Name())
		}
	}
	d.actors = append(slices.Clip(d.actors), actor)
	d.logger.Debugf("actor %s registered", actor.Name())
	return nil
}

// Deregister removes the actor registered under actor's name. It reports
// whether there was one.
func (d *Dispatcher) Deregister(actor Actor) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	index := slices.IndexFunc(d.actors, func(existing Actor) bool { return existing.Name() == actor.Name() })
	if index < 0 {
		return false
	}
	d.actors = slices.Delete(slices.Clone(d.actors), index, index+1)
	d.logger.Debugf("actor %s deregistered", actor.Name())
	return true
}

// RegisterMonitor installs the catch-all actor, replacing any previous one
func (d *Dispatcher) RegisterMonitor(monitor Actor) {
	d.mu.Lock()
	d.monitor = monitor
	d.mu.Unlock()
}

// DeregisterMonitor removes monitor if it is the installed one
func (d *Dispatcher) DeregisterMonitor(monitor Actor) {
	d.mu.Lock()
	if d.monitor != nil && d.monitor.Name() == monitor.Name() {
		d.monitor = nil
	}
	d.mu.Unlock()
}

// Actors returns the registered actors in dispatch order
func (d *Dispatcher) Actors() []Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.actors)
}

// Dispatch offers t to the registered actors then to the monitor and
// reports whether anyone handled it.
func (d *Dispatcher) Dispatch(t tuple.Tuple) bool {
	d.mu.RLock()
	actors := d.actors
	monitor := d.monitor
	d.mu.RUnlock()

	target := t.DestinationActor()
	for _, actor := range actors {
		if target != "" && actor.Name() != target {
			continue
		}
		if actor.Accept(t) {
			return true
		}
	}

	if monitor != nil && monitor.Accept(t) {
		return true
	}

	if d.logger.Enabled(log.DebugLevel) {
		d.logger.Debugf("unhandled tuple %s", t.Brief())
	}
	return false
}

// Perform calls a named function on the registered actor called actorName
func (d *Dispatcher) Perform(ctx context.Context, actorName, function string, args map[string]value.Value, caller string) (value.Value, error) {
	d.mu.RLock()
	var target Actor
	for _, actor := range d.actors {
		if actor.Name() == actorName {
			target = actor
			break
		}
	}
	d.mu.RUnlock()

	if target == nil {
		return value.Value{}, fmt.Errorf("%w: %s", gerrors.ErrUnknownActor, actorName)
	}

	performer, ok := target.(Performer)
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", gerrors.ErrNotPerformer, actorName)
	}
	return performer.Perform(ctx, function, args, caller)
}
