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

// Package server implements the Linda server: a websocket endpoint and an
// optional raw TCP endpoint whose connections are joined through the
// Hydra hub, together with the hub responders and the NATS bridge to
// other hubs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/hydra"
	"github.com/tochemey/linda/internal/tcp"
	"github.com/tochemey/linda/internal/wsconn"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/responder"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/router"
)

// Server accepts client connections and relays tuples between them
type Server struct {
	config        *Config
	logger        log.Logger
	meterProvider metric.MeterProvider

	hub       *hydra.Hydra
	presence  *responder.Presence
	clock     *responder.Clock
	telegrams *responder.Telegrams

	natsConn *nats.Conn
	bridge   *route.NATS

	wsListener net.Listener
	httpServer *http.Server
	tcpServer  *tcp.Server
	listeners  *errgroup.Group

	// mu orders handler registration against shutdown
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	handlers    sync.WaitGroup
	connections *atomic.Int32

	started  *atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

// New creates a Server from a validated configuration
func New(config *Config, opts ...Option) (*Server, error) {
	if config == nil {
		return nil, errors.New("server configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:      config,
		listeners:   new(errgroup.Group),
		connections: atomic.NewInt32(0),
		started:     atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	if s.logger == nil {
		s.logger = config.Logger()
	}
	if config.Metrics && s.meterProvider == nil {
		s.meterProvider = otel.GetMeterProvider()
	}

	hubOpts := []hydra.Option{hydra.WithID(config.HubID), hydra.WithLogger(s.logger)}
	if config.Metrics {
		hubOpts = append(hubOpts, hydra.WithRouterOptions(router.WithMetrics(s.meterProvider)))
	}
	hub, err := hydra.New(hubOpts...)
	if err != nil {
		return nil, err
	}
	s.hub = hub
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Hub returns the relay hub
func (s *Server) Hub() *hydra.Hydra {
	return s.hub
}

// Presence returns the presence tracker, available once started
func (s *Server) Presence() *responder.Presence {
	return s.presence
}

// WebsocketAddr returns the bound websocket address, or nil
func (s *Server) WebsocketAddr() net.Addr {
	if s.wsListener == nil {
		return nil
	}
	return s.wsListener.Addr()
}

// TCPAddr returns the bound TCP address, or nil
func (s *Server) TCPAddr() net.Addr {
	if s.tcpServer == nil {
		return nil
	}
	return s.tcpServer.Addr()
}

// Connections returns the number of connected clients
func (s *Server) Connections() int {
	return int(s.connections.Load())
}

// Start starts the hub, the responders, the bridge and the listeners
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := s.start(ctx); err != nil {
		return multierr.Append(err, s.Stop(ctx))
	}
	s.logger.Infof("linda server %s started", s.config.HubID)
	return nil
}

func (s *Server) start(ctx context.Context) error {
	if err := s.hub.Start(); err != nil {
		return err
	}
	if err := s.startResponders(ctx); err != nil {
		return err
	}
	if err := s.startBridge(ctx); err != nil {
		return err
	}
	if err := s.listenWebsocket(); err != nil {
		return err
	}
	return s.listenTCP()
}

func (s *Server) startResponders(ctx context.Context) error {
	hub := s.hub.Router()
	logger := s.logger.With("component", "responder")

	if err := hub.RegisterActor(responder.NewPinger(hub, logger)); err != nil {
		return err
	}
	s.presence = responder.NewPresence(hub, logger)
	if err := hub.RegisterActor(s.presence); err != nil {
		return err
	}

	if s.config.TelegramsPath != "" {
		telegrams, err := responder.OpenTelegrams(s.config.TelegramsPath, hub, logger)
		if err != nil {
			return err
		}
		s.telegrams = telegrams
		if err := hub.RegisterActor(telegrams); err != nil {
			return err
		}
	}

	clock, err := responder.NewClock(hub, s.config.ClockInterval, logger)
	if err != nil {
		return err
	}
	s.clock = clock
	return clock.Start(ctx)
}

// startBridge joins the hub to other hubs over NATS. Only the configured
// tuple types are published; everything received is relayed.
func (s *Server) startBridge(ctx context.Context) error {
	if s.config.NATSURL == "" {
		return nil
	}
	conn, err := nats.Connect(s.config.NATSURL, nats.Name("linda-"+s.config.HubID))
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	s.natsConn = conn

	bridge, err := route.NewNATS("nats-bridge", conn,
		s.config.NATSPublishSubject,
		s.config.NATSSubscribeSubject,
		route.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.bridge = bridge
	if len(s.config.NATSTypes) > 0 {
		bridge.AddCriteria(route.NewCriteria().WithTypes(s.config.NATSTypes...))
	}
	if err := s.hub.AddRoute(ctx, bridge); err != nil {
		return err
	}
	s.logger.Infof("bridged to %s", s.config.NATSURL)
	return nil
}

func (s *Server) listenWebsocket() error {
	if s.config.WebsocketAddress == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.config.WebsocketAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.WebsocketAddress, err)
	}
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}
	s.wsListener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(wsconn.Path, s.handleWebsocket)
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StdLogger(),
	}
	s.listeners.Go(func() error {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket endpoint failed: %w", err)
		}
		return nil
	})
	s.logEndpoint("websocket", listener.Addr())
	return nil
}

func (s *Server) listenTCP() error {
	if s.config.TCPAddress == "" {
		return nil
	}
	wrapper, err := tcp.NewConnWrapper(s.config.Compression)
	if err != nil {
		return err
	}
	opts := []tcp.ServerOption{
		tcp.WithMaxConnections(s.config.MaxConnections),
		tcp.WithServerLogger(s.logger),
	}
	if wrapper != nil {
		opts = append(opts, tcp.WithConnWrappers(wrapper))
	}
	s.tcpServer = tcp.NewServer(s.config.TCPAddress, s.handleTCP, opts...)
	if err := s.tcpServer.Listen(); err != nil {
		s.tcpServer = nil
		return err
	}
	s.listeners.Go(func() error {
		return s.tcpServer.Serve(s.ctx)
	})
	s.logEndpoint("tcp", s.tcpServer.Addr())
	return nil
}

func (s *Server) logEndpoint(kind string, addr net.Addr) {
	advertised, err := tcp.GetBindIP(addr.String())
	if err != nil {
		s.logger.Infof("%s endpoint listening on %s", kind, addr)
		return
	}
	s.logger.Infof("%s endpoint listening on %s, reachable at %s", kind, addr, advertised)
}

func (s *Server) handleWebsocket(writer http.ResponseWriter, request *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(writer, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := wsconn.Upgrade(writer, request)
	if err != nil {
		s.logger.Warn(err)
		return
	}
	s.serveClient(route.NewMessageStream("ws-"+request.RemoteAddr, conn, route.WithLogger(s.logger)))
}

func (s *Server) handleTCP(_ context.Context, conn net.Conn) {
	s.serveClient(route.NewStream("tcp-"+conn.RemoteAddr().String(), conn, route.WithLogger(s.logger)))
}

// serveClient blocks until the client is gone
func (s *Server) serveClient(client route.Route) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		_ = client.Close()
		return
	}
	s.handlers.Add(1)
	s.mu.Unlock()
	defer s.handlers.Done()

	opts := []HandlerOption{
		WithHandlerLogger(s.logger),
		WithAuthToken(s.config.AuthToken),
		WithTrustedActors(s.config.TrustedActors...),
		WithDeparter(s.presence),
	}
	if s.config.Metrics {
		opts = append(opts, WithHandlerMetrics(s.meterProvider))
	}
	handler, err := NewHandler(s.ctx, s.hub, client, opts...)
	if err != nil {
		s.logger.Warnf("failed to serve %s: %v", client.Name(), err)
		return
	}

	s.connections.Inc()
	defer s.connections.Dec()
	s.logger.Debugf("serving %s as connection %s", client.Name(), handler.ID())
	if err := handler.Serve(s.ctx); err != nil {
		s.logger.Warnf("connection %s ended: %v", handler.ID(), err)
	}
}

// Stop closes the listeners, disconnects every client and stops the hub.
// It waits at most the configured shutdown timeout for the clients.
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
		s.stopErr = s.stop(ctx)
		s.logger.Infof("linda server %s stopped", s.config.HubID)
	})
	return s.stopErr
}

func (s *Server) stop(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		err = multierr.Append(err, s.httpServer.Shutdown(ctx))
	}
	if s.tcpServer != nil {
		err = multierr.Append(err, s.tcpServer.Shutdown(ctx))
	}
	err = multierr.Append(err, s.listeners.Wait())

	// hijacked websocket connections are not tracked by the http server
	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("clients still connected: %w", ctx.Err()))
	}

	if s.clock != nil {
		s.clock.Stop(ctx)
	}
	if s.bridge != nil {
		// the hub detaches a bridge that failed on its own
		if removeErr := s.hub.RemoveRoute(ctx, s.bridge); !errors.Is(removeErr, gerrors.ErrRouteNotFound) {
			err = multierr.Append(err, removeErr)
		}
		err = multierr.Append(err, s.bridge.Close())
	}
	if s.natsConn != nil {
		s.natsConn.Close()
	}
	err = multierr.Append(err, s.hub.Stop())
	if s.telegrams != nil {
		err = multierr.Append(err, s.telegrams.Close())
	}
	return err
}
