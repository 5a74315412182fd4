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

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/net/netutil"

	"github.com/tochemey/linda/log"
)

// HandlerFunc serves one accepted connection. The connection is closed
// once the handler returns.
type HandlerFunc func(ctx context.Context, conn net.Conn)

// ServerOption configures a Server
type ServerOption func(*Server)

// WithConnWrappers layers wrappers over every accepted connection
func WithConnWrappers(wrappers ...ConnWrapper) ServerOption {
	return func(s *Server) {
		s.wrappers = append(s.wrappers, wrappers...)
	}
}

// WithMaxConnections caps the number of simultaneously served connections
func WithMaxConnections(n int) ServerOption {
	return func(s *Server) {
		s.maxConnections = n
	}
}

// WithServerLogger sets the logger
func WithServerLogger(logger log.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server accepts TCP connections and serves each on its own goroutine
type Server struct {
	address        string
	handler        HandlerFunc
	wrappers       []ConnWrapper
	maxConnections int
	logger         log.Logger

	listener net.Listener
	conns    sync.WaitGroup
	active   *atomic.Int32
	shutdown *atomic.Bool
}

// NewServer creates a Server for address
func NewServer(address string, handler HandlerFunc, opts ...ServerOption) *Server {
	s := &Server{
		address:  address,
		handler:  handler,
		logger:   log.DiscardLogger,
		active:   atomic.NewInt32(0),
		shutdown: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the listener
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	if s.maxConnections > 0 {
		listener = netutil.LimitListener(listener, s.maxConnections)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the number of connections being served
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// Serve accepts connections until Shutdown. ctx is handed to every
// connection handler.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("tcp server is not listening")
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.conns.Add(1)
		s.active.Inc()
		go s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, raw net.Conn) {
	defer s.conns.Done()
	defer s.active.Dec()

	conn, err := Wrap(raw, s.wrappers...)
	if err != nil {
		s.logger.Warnf("failed to wrap connection from %s: %v", raw.RemoteAddr(), err)
		_ = raw.Close()
		return
	}
	defer conn.Close()
	s.handler(ctx, conn)
}

// Shutdown stops accepting and waits for the connection handlers until
// ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

// Dial connects to address and applies wrappers
func Dial(ctx context.Context, address string, wrappers ...ConnWrapper) (net.Conn, error) {
	var dialer net.Dialer
	raw, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	conn, err := Wrap(raw, wrappers...)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return conn, nil
}
