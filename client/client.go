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

// Package client connects a process to a Linda server. The client owns a
// router whose default route is the connection, so everything it routes
// goes to the server and everything the server routes here is offered to
// the locally registered actors.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/linda/actor"
	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/future"
	"github.com/tochemey/linda/internal/tcp"
	"github.com/tochemey/linda/internal/validation"
	"github.com/tochemey/linda/internal/wsconn"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/router"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// Client is a connection to a Linda server
type Client struct {
	config   *config
	router   *router.Router
	conn     route.Route
	promises *future.Promises
	logger   log.Logger

	stop   chan struct{}
	done   chan struct{}
	closed *atomic.Bool
}

// Dial connects to address, authenticates and subscribes to the tuples
// addressed to the client id. address is ws://host:port/linda,
// wss://host:port/linda or tcp://host:port.
func Dial(ctx context.Context, address string, opts ...Option) (*Client, error) {
	cfg := newConfig(opts...)
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	logger := cfg.logger.With("client", cfg.id)

	var conn route.Route
	retrier := retry.NewRetrier(cfg.maxRetries, cfg.initialDelay, cfg.maxDelay)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var err error
		conn, err = connect(ctx, address, cfg.compression, logger)
		if err != nil {
			logger.Debugf("dial %s failed: %v", address, err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	x, err := router.New(router.WithID(cfg.id), router.WithLogger(logger))
	if err != nil {
		return nil, multierr.Append(err, conn.Close())
	}
	x.AddRoute(conn, true)

	c := &Client{
		config:   cfg,
		router:   x,
		conn:     conn,
		promises: future.NewPromises(""),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		closed:   atomic.NewBool(false),
	}
	go c.loop()
	if err := x.RegisterActor(c.promises); err != nil {
		return nil, multierr.Append(err, c.Close())
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, multierr.Append(err, c.Close())
	}
	if err := c.Subscribe(route.NewCriteria().WithDestinationIDs(cfg.id)); err != nil {
		return nil, multierr.Append(err, c.Close())
	}
	logger.Infof("connected to %s", address)
	return c, nil
}

func connect(ctx context.Context, address, compression string, logger log.Logger) (route.Route, error) {
	switch {
	case strings.HasPrefix(address, "ws://"), strings.HasPrefix(address, "wss://"):
		conn, err := wsconn.Dial(address)
		if err != nil {
			return nil, err
		}
		return route.NewMessageStream(address, conn, route.WithLogger(logger)), nil
	case strings.HasPrefix(address, "tcp://"):
		hostPort := strings.TrimPrefix(address, "tcp://")
		if err := validation.NewTCPAddressValidator(hostPort).Validate(); err != nil {
			return nil, retry.Stop(err)
		}
		wrapper, err := tcp.NewConnWrapper(compression)
		if err != nil {
			return nil, retry.Stop(err)
		}
		var wrappers []tcp.ConnWrapper
		if wrapper != nil {
			wrappers = append(wrappers, wrapper)
		}
		conn, err := tcp.Dial(ctx, hostPort, wrappers...)
		if err != nil {
			return nil, err
		}
		return route.NewStream(address, conn, route.WithLogger(logger)), nil
	default:
		return nil, retry.Stop(fmt.Errorf("%w: %s", gerrors.ErrUnsupportedAddress, address))
	}
}

// ID returns the client router id
func (c *Client) ID() string {
	return c.router.ID()
}

// Router returns the client router
func (c *Client) Router() *router.Router {
	return c.router
}

// Err returns the connection failure, if any
func (c *Client) Err() error {
	return c.router.RouteError()
}

// RegisterActor registers a on the client router
func (c *Client) RegisterActor(a actor.Actor) error {
	if c.closed.Load() {
		return gerrors.ErrClientClosed
	}
	return c.router.RegisterActor(a)
}

// DeregisterActor removes a from the client router
func (c *Client) DeregisterActor(a actor.Actor) bool {
	return c.router.DeregisterActor(a)
}

// Route sends t to the server
func (c *Client) Route(t tuple.Tuple) error {
	if c.closed.Load() {
		return gerrors.ErrClientClosed
	}
	return c.router.Route(t)
}

// Subscribe asks the server to route tuples matching criteria here
func (c *Client) Subscribe(criteria *route.Criteria) error {
	if c.closed.Load() {
		return gerrors.ErrClientClosed
	}
	return c.router.SendAddRoutingCriteriaRequest(criteria)
}

// Unsubscribe withdraws criteria
func (c *Client) Unsubscribe(criteria *route.Criteria) error {
	if c.closed.Load() {
		return gerrors.ErrClientClosed
	}
	return c.router.SendRemoveRoutingCriteriaRequest(criteria)
}

// Request sends t and waits for its reply. Without a deadline on ctx the
// configured request timeout applies.
func (c *Client) Request(ctx context.Context, t tuple.Tuple) (tuple.Tuple, error) {
	if c.closed.Load() {
		return nil, gerrors.ErrClientClosed
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.requestTimeout)
		defer cancel()
	}
	return c.promises.Request(c.router, t).Await(ctx)
}

// Ping round trips a Ping through the server hub and returns the elapsed
// time
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	ping := tuple.New(tuple.TypePing)
	ping.SetDestinationID(c.config.hubID)
	start := time.Now()
	if _, err := c.Request(ctx, ping); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// JoinWorld joins world on the server, so tuples addressed to it are
// accepted from and, when writable, relayed for this client
func (c *Client) JoinWorld(ctx context.Context, world string, writable bool) error {
	request := tuple.New(tuple.TypeJoinWorld)
	request.Set(tuple.FieldWorld, value.Word(world))
	if writable {
		request.Set(tuple.FieldWritable, value.Number(1))
	}
	return c.expectValid(ctx, request, "join world "+world)
}

// LeaveWorld leaves world
func (c *Client) LeaveWorld(ctx context.Context, world string) error {
	request := tuple.New(tuple.TypeLeaveWorld)
	request.Set(tuple.FieldWorld, value.Word(world))
	return c.expectValid(ctx, request, "leave world "+world)
}

// Close disconnects from the server
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stop)
	err := c.conn.Close()
	<-c.done
	c.router.DeregisterActor(c.promises)
	return multierr.Append(err, c.router.Close())
}

func (c *Client) authenticate(ctx context.Context) error {
	request := tuple.New(tuple.TypeAuthenticate)
	if c.config.token != "" {
		request.Set(tuple.FieldToken, value.Word(c.config.token))
	}
	reply, err := c.Request(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if reply.Number(tuple.FieldValid) == 0 {
		return gerrors.ErrAuthenticationFailed
	}
	return nil
}

func (c *Client) expectValid(ctx context.Context, request tuple.Tuple, what string) error {
	reply, err := c.Request(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if reply.Number(tuple.FieldValid) == 0 {
		return fmt.Errorf("server refused to %s", what)
	}
	return nil
}

// loop runs the router whenever the connection has tuples
func (c *Client) loop() {
	defer close(c.done)
	notify := c.conn.Notify()
	for {
		select {
		case <-c.stop:
			return
		case <-notify:
		}

		c.router.Run()

		if c.router.Failed() {
			if !c.closed.Load() {
				c.logger.Warnf("connection lost: %v", c.router.RouteError())
			}
			return
		}
	}
}
