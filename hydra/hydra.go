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

// Package hydra implements the relay hub joining every connection of a
// server. Each connection handler owns the near half of a Queueing pair
// and the hub owns the far half; the hub router forwards between them.
package hydra

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/router"
)

// DefaultID is the router id of the hub
const DefaultID = "hydra"

type routeRequest struct {
	route  route.Route
	attach bool
	done   chan error
}

// Hydra is the relay hub. Its router is only ever driven by the hub
// goroutine, so attaching and detaching routes is done by sending requests
// to that goroutine. A route that fails is detached and closed by the hub
// goroutine; the others keep being relayed.
type Hydra struct {
	router *router.Router
	logger log.Logger

	wake     chan struct{}
	requests chan routeRequest
	stop     chan struct{}
	done     chan struct{}

	started  *atomic.Bool
	stopOnce sync.Once

	// one watcher per attached route turns its Notify signal into a wake up
	watchers     *errgroup.Group
	watcherStops map[route.Route]chan struct{}
}

// New creates a Hydra
func New(opts ...Option) (*Hydra, error) {
	cfg := newConfig(opts...)
	x := &Hydra{
		logger:       cfg.logger.With("component", "hydra"),
		wake:         make(chan struct{}, 1),
		requests:     make(chan routeRequest),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		started:      atomic.NewBool(false),
		watchers:     new(errgroup.Group),
		watcherStops: make(map[route.Route]chan struct{}),
	}

	hub, err := router.New(append([]router.Option{
		router.WithID(cfg.id),
		router.WithLogger(cfg.logger),
		router.WithRouteFailureHandler(x.evict),
	}, cfg.routerOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create hub router: %w", err)
	}
	x.router = hub
	return x, nil
}

// Router returns the hub router. Actors may be registered on it and may
// emit through Route from any goroutine. Run and route attachment belong
// to the hub goroutine.
func (x *Hydra) Router() *router.Router {
	return x.router
}

// ID returns the hub router id
func (x *Hydra) ID() string {
	return x.router.ID()
}

// Start launches the hub goroutine
func (x *Hydra) Start() error {
	if !x.started.CompareAndSwap(false, true) {
		return nil
	}
	go x.loop()
	x.logger.Info("hydra started")
	return nil
}

// AddRoute attaches far to the hub. It returns once the hub goroutine
// attached it.
func (x *Hydra) AddRoute(ctx context.Context, far route.Route) error {
	return x.request(ctx, routeRequest{route: far, attach: true})
}

// RemoveRoute detaches far. It returns once the hub goroutine no longer
// references it, so the caller may close it.
func (x *Hydra) RemoveRoute(ctx context.Context, far route.Route) error {
	return x.request(ctx, routeRequest{route: far})
}

// SignalIncoming wakes the hub goroutine to drain its routes
func (x *Hydra) SignalIncoming() {
	select {
	case x.wake <- struct{}{}:
	default:
	}
}

// Stop stops the hub goroutine and waits for it
func (x *Hydra) Stop() error {
	if !x.started.Load() {
		return gerrors.ErrHydraNotStarted
	}
	var err error
	x.stopOnce.Do(func() {
		close(x.stop)
		<-x.done
		for r, quit := range x.watcherStops {
			close(quit)
			delete(x.watcherStops, r)
		}
		_ = x.watchers.Wait()
		err = x.router.Close()
		x.logger.Info("hydra stopped")
	})
	return err
}

func (x *Hydra) request(ctx context.Context, request routeRequest) error {
	if !x.started.Load() {
		return gerrors.ErrHydraNotStarted
	}
	request.done = make(chan error, 1)
	select {
	case x.requests <- request:
	case <-x.stop:
		return gerrors.ErrHydraNotStarted
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-request.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (x *Hydra) loop() {
	defer close(x.done)
	for {
		x.router.Run()

		select {
		case <-x.stop:
			return
		case <-x.wake:
		case request := <-x.requests:
			request.done <- x.apply(request)
		}
	}
}

// apply runs on the hub goroutine
func (x *Hydra) apply(request routeRequest) error {
	if !request.attach {
		x.unwatch(request.route)
		return x.router.RemoveRoute(request.route)
	}

	if _, ok := x.watcherStops[request.route]; ok {
		return nil
	}
	x.router.AddRoute(request.route, false)

	quit := make(chan struct{})
	x.watcherStops[request.route] = quit
	notify := request.route.Notify()
	x.watchers.Go(func() error {
		for {
			select {
			case <-notify:
				x.SignalIncoming()
			case <-quit:
				return nil
			}
		}
	})

	// tuples may already be queued
	x.SignalIncoming()
	return nil
}

// unwatch stops the notify watcher of r. It runs on the hub goroutine.
func (x *Hydra) unwatch(r route.Route) {
	if quit, ok := x.watcherStops[r]; ok {
		close(quit)
		delete(x.watcherStops, r)
	}
}

// evict is called by the hub router, on the hub goroutine, once it has
// detached a failed route
func (x *Hydra) evict(r route.Route, err error) {
	x.unwatch(r)
	if errors.Is(err, gerrors.ErrRouteClosed) {
		x.logger.Debugf("route %s closed, detached from hub", r.Name())
	} else {
		x.logger.Errorf("route %s failed, detached from hub: %v", r.Name(), err)
	}
	if closeErr := r.Close(); closeErr != nil {
		x.logger.Warnf("failed to close route %s: %v", r.Name(), closeErr)
	}
}
