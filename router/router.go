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

// Package router implements the forwarding decision of a Linda process:
// which tuples are handed to local actors and which are relayed to the
// attached routes.
package router

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/linda/actor"
	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/filter"
	imetric "github.com/tochemey/linda/internal/metric"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/tuple"
)

type attachment struct {
	route     route.Route
	isDefault bool
}

// Router owns the identity of a process, its actors and its routes.
//
// Route may be called from any goroutine. Run must be driven by a single
// goroutine at a time; callers serialize it.
type Router struct {
	id         string
	dispatcher *actor.Dispatcher
	filter     filter.Filter
	logger     log.Logger
	observer   CriteriaObserver
	onFailure  RouteFailureHandler

	metricsEnabled bool
	meterProvider  metric.MeterProvider
	metric         *imetric.RouterMetric

	mu     sync.RWMutex
	routes []attachment

	failed   *atomic.Bool
	routeErr *atomic.Error
}

// New creates a Router
func New(opts ...Option) (*Router, error) {
	x := &Router{
		id:       uuid.NewString(),
		logger:   log.DiscardLogger,
		failed:   atomic.NewBool(false),
		routeErr: atomic.NewError(nil),
	}
	for _, opt := range opts {
		opt.Apply(x)
	}
	x.logger = x.logger.With("router", x.id)
	x.dispatcher = actor.NewDispatcher(x.logger)

	if x.metricsEnabled {
		provider := imetric.NewProvider(x.meterProvider)
		routerMetric, err := imetric.NewRouterMetric(provider.Meter(), x.id, x.routeCount)
		if err != nil {
			return nil, fmt.Errorf("failed to create router metrics: %w", err)
		}
		x.metric = routerMetric
	}
	return x, nil
}

// ID returns the identity of this router
func (x *Router) ID() string {
	return x.id
}

// Dispatcher returns the local actor dispatcher
func (x *Router) Dispatcher() *actor.Dispatcher {
	return x.dispatcher
}

// RegisterActor appends a to the dispatch order
func (x *Router) RegisterActor(a actor.Actor) error {
	return x.dispatcher.Register(a)
}

// DeregisterActor removes a
func (x *Router) DeregisterActor(a actor.Actor) bool {
	return x.dispatcher.Deregister(a)
}

// RegisterMonitor installs the catch-all actor
func (x *Router) RegisterMonitor(monitor actor.Actor) {
	x.dispatcher.RegisterMonitor(monitor)
}

// DeregisterMonitor removes the catch-all actor
func (x *Router) DeregisterMonitor(monitor actor.Actor) {
	x.dispatcher.DeregisterMonitor(monitor)
}

// AddRoute attaches r. Attaching a default route demotes the previous
// default. Attaching an already attached route only updates its flag.
func (x *Router) AddRoute(r route.Route, isDefault bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	routes := slices.Clone(x.routes)
	if isDefault {
		for i := range routes {
			routes[i].isDefault = false
		}
	}

	index := slices.IndexFunc(routes, func(a attachment) bool { return a.route == r })
	if index >= 0 {
		routes[index].isDefault = isDefault
	} else {
		routes = append(routes, attachment{route: r, isDefault: isDefault})
	}
	x.routes = routes
	x.logger.Debugf("route %s attached (default=%t)", r.Name(), isDefault)
}

// RemoveRoute detaches r without closing it
func (x *Router) RemoveRoute(r route.Route) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	index := slices.IndexFunc(x.routes, func(a attachment) bool { return a.route == r })
	if index < 0 {
		return fmt.Errorf("%w: %s", gerrors.ErrRouteNotFound, r.Name())
	}
	x.routes = slices.Delete(slices.Clone(x.routes), index, index+1)
	x.logger.Debugf("route %s detached", r.Name())
	return nil
}

// Routes returns the attached routes in registration order
func (x *Router) Routes() []route.Route {
	routes := x.snapshot()
	out := make([]route.Route, len(routes))
	for i, a := range routes {
		out[i] = a.route
	}
	return out
}

// DefaultRoute returns the default route or nil
func (x *Router) DefaultRoute() route.Route {
	for _, a := range x.snapshot() {
		if a.isDefault {
			return a.route
		}
	}
	return nil
}

// RouteError returns the sticky error of the first failed route
func (x *Router) RouteError() error {
	return x.routeErr.Load()
}

// Failed reports whether a route failed. A failed router no longer runs.
func (x *Router) Failed() bool {
	return x.failed.Load()
}

// Route emits t on behalf of a local actor.
//
// Non default routes whose criteria match receive the tuple. The default
// route receives it when its own criteria match or when no other route
// did. Every candidate is checked against the outbound filter; a denied
// tuple silently reaches fewer routes. A tuple without destination, or
// addressed to this router, is also offered to local actors, and a tuple
// addressed to this router never leaves it.
//
// An error is returned only when no route took the tuple and at least one
// send failed. A failed router returns its route error and does nothing.
func (x *Router) Route(t tuple.Tuple) error {
	if x.Failed() {
		return x.RouteError()
	}
	if t.SourceID() == "" {
		t = t.Clone()
		t.SetSourceID(x.id)
	}

	destination := t.DestinationID()
	var err error
	if destination != x.id {
		sent := 0
		var sendErr error
		for _, candidate := range x.candidates(t, nil) {
			permitted := filter.Out(x.filter, t)
			if candidate.unconditional {
				permitted = filter.OutDefault(x.filter, t)
			}
			if !permitted {
				x.drop(t, candidate.route, imetric.DropDenied)
				continue
			}
			if e := candidate.route.Send(t); e != nil {
				x.logger.Warnf("failed to send %s on %s: %v", t.Brief(), candidate.route.Name(), e)
				x.countDrop(imetric.DropSendError)
				sendErr = multierr.Append(sendErr, fmt.Errorf("route %s: %w", candidate.route.Name(), e))
				continue
			}
			sent++
		}
		switch {
		case sent == 0:
			err = sendErr
		case x.metric != nil:
			x.metric.Routed(context.Background())
		}
	}

	if destination == "" || destination == x.id {
		x.dispatch(t)
	}
	return err
}

// Run drains every route in registration order.
//
// Each inbound tuple is checked against the inbound filter, the Default
// check alone for tuples read from the default route. Routing criteria
// requests are applied to the route they arrived on. Other tuples are
// relayed to every other matching route, subject to the forwarding filter,
// and independently offered to local actors.
//
// A route reporting an error after being drained fails the router, unless
// a RouteFailureHandler is installed: the route is then detached and
// handed to it, and the router carries on.
func (x *Router) Run() {
	if x.Failed() {
		return
	}

	for _, a := range x.snapshot() {
		for {
			t, ok := a.route.Receive()
			if !ok {
				break
			}
			x.handle(a, t)
		}

		if err := a.route.Err(); err != nil {
			if x.onFailure != nil {
				x.evict(a.route, err)
				continue
			}
			x.fail(a.route, err)
			return
		}
	}
}

// SendAddRoutingCriteriaRequest asks the far end of the default route to
// route tuples matching criteria to this router
func (x *Router) SendAddRoutingCriteriaRequest(criteria *route.Criteria) error {
	return x.sendCriteria(x.DefaultRoute(), criteria, route.ActionAdd)
}

// SendRemoveRoutingCriteriaRequest withdraws criteria from the far end of
// the default route
func (x *Router) SendRemoveRoutingCriteriaRequest(criteria *route.Criteria) error {
	return x.sendCriteria(x.DefaultRoute(), criteria, route.ActionRemove)
}

// SendAddRoutingCriteriaRequestOn is SendAddRoutingCriteriaRequest on r
func (x *Router) SendAddRoutingCriteriaRequestOn(r route.Route, criteria *route.Criteria) error {
	return x.sendCriteria(r, criteria, route.ActionAdd)
}

// SendRemoveRoutingCriteriaRequestOn is SendRemoveRoutingCriteriaRequest on r
func (x *Router) SendRemoveRoutingCriteriaRequestOn(r route.Route, criteria *route.Criteria) error {
	return x.sendCriteria(r, criteria, route.ActionRemove)
}

// Close releases the router instruments. Routes are owned by the caller.
func (x *Router) Close() error {
	if x.metric == nil {
		return nil
	}
	return x.metric.Unregister()
}

func (x *Router) sendCriteria(r route.Route, criteria *route.Criteria, action route.Action) error {
	if r == nil {
		return gerrors.ErrNoDefaultRoute
	}
	request := criteria.Tuple(action)
	request.SetSourceID(x.id)
	if err := r.Send(request); err != nil {
		return fmt.Errorf("failed to send %s criteria on %s: %w", action, r.Name(), err)
	}
	return nil
}

func (x *Router) handle(arrival attachment, t tuple.Tuple) {
	from := arrival.route
	permitIn, permitForward := filter.In, filter.Forward
	if arrival.isDefault {
		permitIn, permitForward = filter.InDefault, filter.ForwardDefault
	}

	if !permitIn(x.filter, t) {
		x.drop(t, from, imetric.DropDenied)
		return
	}

	if t.IsRoutingCriteria() {
		x.applyCriteria(from, t)
		return
	}

	if t.DestinationID() != x.id && permitForward(x.filter, t) {
		forwarded := false
		for _, candidate := range x.candidates(t, from) {
			if err := candidate.route.Send(t); err != nil {
				x.logger.Warnf("failed to forward %s to %s: %v", t.Brief(), candidate.route.Name(), err)
				x.countDrop(imetric.DropSendError)
				continue
			}
			forwarded = true
		}
		if forwarded && x.metric != nil {
			x.metric.Forwarded(context.Background())
		}
	}

	x.dispatch(t)
}

func (x *Router) applyCriteria(from route.Route, t tuple.Tuple) {
	criteria, action, err := route.CriteriaFromTuple(t)
	if err != nil {
		x.logger.Warnf("ignoring criteria request from %s: %v", from.Name(), err)
		return
	}

	switch action {
	case route.ActionAdd:
		from.AddCriteria(criteria)
	case route.ActionRemove:
		from.RemoveCriteria(criteria)
	}
	x.logger.Debugf("%s %s on route %s", action, criteria, from.Name())

	if x.observer != nil {
		x.observer(from, criteria, action)
	}
}

// candidate is a route selected for a tuple. unconditional marks the
// default route taken because nothing else matched.
type candidate struct {
	route         route.Route
	unconditional bool
}

// candidates selects the routes t goes out on, excluding the arrival route
func (x *Router) candidates(t tuple.Tuple, exclude route.Route) []candidate {
	routes := x.snapshot()
	matched := make([]bool, len(routes))
	anyMatched := false
	for i, a := range routes {
		if a.route == exclude {
			continue
		}
		matched[i] = a.route.Matches(t)
		if matched[i] && !a.isDefault {
			anyMatched = true
		}
	}

	var out []candidate
	for i, a := range routes {
		if a.route == exclude {
			continue
		}
		if matched[i] || (a.isDefault && !anyMatched) {
			out = append(out, candidate{route: a.route, unconditional: !matched[i]})
		}
	}
	return out
}

func (x *Router) dispatch(t tuple.Tuple) {
	if x.dispatcher.Dispatch(t) && x.metric != nil {
		x.metric.Dispatched(context.Background())
	}
}

func (x *Router) drop(t tuple.Tuple, r route.Route, reason string) {
	if x.logger.Enabled(log.DebugLevel) {
		x.logger.Debugf("dropping %s on %s: %s", t.Brief(), r.Name(), reason)
	}
	x.countDrop(reason)
}

func (x *Router) countDrop(reason string) {
	if x.metric != nil {
		x.metric.Dropped(context.Background(), reason)
	}
}

func (x *Router) fail(r route.Route, err error) {
	if !x.failed.CompareAndSwap(false, true) {
		return
	}
	x.routeErr.Store(fmt.Errorf("route %s: %w", r.Name(), err))
	if errors.Is(err, gerrors.ErrRouteClosed) {
		x.logger.Debugf("route %s closed", r.Name())
		return
	}
	x.logger.Warnf("route %s failed: %v", r.Name(), err)
}

// evict detaches a failed route and hands it to the failure handler
func (x *Router) evict(r route.Route, err error) {
	if removeErr := x.RemoveRoute(r); removeErr != nil {
		x.logger.Debugf("route %s already detached: %v", r.Name(), removeErr)
	}
	x.logger.Warnf("route %s failed and was detached: %v", r.Name(), err)
	x.onFailure(r, err)
}

func (x *Router) snapshot() []attachment {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.routes
}

func (x *Router) routeCount() int {
	return len(x.snapshot())
}
