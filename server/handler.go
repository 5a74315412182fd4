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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/filter"
	"github.com/tochemey/linda/hydra"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/router"
	"github.com/tochemey/linda/tuple"
)

// Departer forgets the presence announced by a client that went away
type Departer interface {
	ForceDepart(sourceID string) int
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger
func WithHandlerLogger(logger log.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithAuthToken requires clients to authenticate with token
func WithAuthToken(token string) HandlerOption {
	return func(h *Handler) {
		h.token = token
	}
}

// WithTrustedActors lets tuples from the given source actors bypass world
// membership
func WithTrustedActors(names ...string) HandlerOption {
	return func(h *Handler) {
		h.trusted = append(h.trusted, names...)
	}
}

// WithDeparter sets the presence tracker cleaned up on teardown
func WithDeparter(departer Departer) HandlerOption {
	return func(h *Handler) {
		h.departer = departer
	}
}

// WithHandlerMetrics enables the connection router metrics
func WithHandlerMetrics(meterProvider metric.MeterProvider) HandlerOption {
	return func(h *Handler) {
		h.meterProvider = meterProvider
	}
}

// Handler joins one client connection to the hub.
//
// Its router owns the client route and the near half of a queueing pair
// as default route; the far half is attached to the hub. Two goroutines
// run the router, one woken by the client route and one by the near half,
// serialized by a mutex. Criteria the client installs on the client route
// are mirrored onto the far half so the hub routes matching tuples here.
type Handler struct {
	id            string
	hub           *hydra.Hydra
	client        route.Route
	near          *route.Queueing
	far           *route.Queueing
	router        *router.Router
	world         *filter.World
	authenticator *Authenticator

	token         string
	trusted       []string
	departer      Departer
	meterProvider metric.MeterProvider
	logger        log.Logger

	runMu    sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
}

// NewHandler wires client to the hub. The client route is owned by the
// Handler from then on.
func NewHandler(ctx context.Context, hub *hydra.Hydra, client route.Route, opts ...HandlerOption) (*Handler, error) {
	h := &Handler{
		id:     uuid.NewString(),
		hub:    hub,
		client: client,
		logger: log.DiscardLogger,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("connection", h.id)

	h.world = filter.NewWorld(h.logger, h.trusted...)
	if h.token == "" {
		h.world.Authenticate(true)
	}

	routerOpts := []router.Option{
		router.WithID(h.id),
		router.WithLogger(h.logger),
		router.WithFilter(h.world),
		router.WithCriteriaObserver(h.mirror),
	}
	if h.meterProvider != nil {
		routerOpts = append(routerOpts, router.WithMetrics(h.meterProvider))
	}
	x, err := router.New(routerOpts...)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create connection router: %w", err)
	}
	h.router = x

	h.near, h.far = route.NewQueueingPair("handler-"+h.id, "hydra-"+h.id, route.WithLogger(h.logger))
	clock := route.NewCriteria().WithTypes(tuple.TypeTime)
	h.client.AddCriteria(clock)
	h.far.AddCriteria(clock)
	h.router.AddRoute(h.client, false)
	h.router.AddRoute(h.near, true)

	h.authenticator = newAuthenticator(h.token, h.world, h.client, h.logger)
	if err := h.router.RegisterActor(h.authenticator); err != nil {
		return nil, multierr.Append(err, h.release())
	}

	if err := hub.AddRoute(ctx, h.far); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to join the hub: %w", err), h.release())
	}
	return h, nil
}

// ID returns the connection id, also the id of its router
func (h *Handler) ID() string {
	return h.id
}

// Router returns the connection router
func (h *Handler) Router() *router.Router {
	return h.router
}

// ClientID returns the id the client authenticated with
func (h *Handler) ClientID() string {
	return h.authenticator.ClientID()
}

// Serve relays tuples until ctx is done, Stop is called or the client
// route fails, then tears the connection down. A client hanging up is
// not an error.
func (h *Handler) Serve(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return h.pump(ctx, h.client.Notify(), true) })
	group.Go(func() error { return h.pump(ctx, h.near.Notify(), false) })

	err := group.Wait()
	if isHangUp(err) {
		h.logger.Debugf("client hung up: %v", err)
		err = nil
	}
	return multierr.Append(err, h.teardown())
}

// Stop asks Serve to return
func (h *Handler) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Handler) pump(ctx context.Context, notify <-chan struct{}, fromClient bool) error {
	for {
		select {
		case <-h.stop:
			return nil
		case <-ctx.Done():
			return nil
		case <-notify:
		}

		h.runMu.Lock()
		h.router.Run()
		h.runMu.Unlock()

		if fromClient {
			h.hub.SignalIncoming()
		}
		if h.router.Failed() {
			return h.router.RouteError()
		}
	}
}

// mirror runs inside Run when a criteria request is applied
func (h *Handler) mirror(from route.Route, criteria *route.Criteria, action route.Action) {
	if from != h.client {
		return
	}
	switch action {
	case route.ActionAdd:
		h.far.AddCriteria(criteria)
	case route.ActionRemove:
		h.far.RemoveCriteria(criteria)
	}
	h.logger.Debugf("mirrored %s %s onto the hub", action, criteria)
}

func (h *Handler) teardown() error {
	h.Stop()
	ctx := context.Background()
	err := h.hub.RemoveRoute(ctx, h.far)
	if errors.Is(err, gerrors.ErrRouteNotFound) || errors.Is(err, gerrors.ErrHydraNotStarted) {
		// the hub already let go of the far half
		err = nil
	}
	if h.departer != nil {
		if id := h.ClientID(); id != "" {
			if n := h.departer.ForceDepart(id); n > 0 {
				h.logger.Debugf("departed %d presences of %s", n, id)
			}
		}
	}
	return multierr.Append(err, h.release())
}

func (h *Handler) release() error {
	h.router.DeregisterActor(h.authenticator)
	return multierr.Combine(
		h.client.Close(),
		h.near.Close(),
		h.router.Close(),
	)
}

func isHangUp(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
