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

package route

import (
	"bufio"
	"errors"
	"io"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/internal/bufferpool"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
)

// MessageConn is a message oriented duplex channel, such as a websocket,
// where every message carries exactly one encoded tuple.
type MessageConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Stream carries tuples over a byte stream or a message channel.
//
// A reader goroutine decodes inbound tuples into a bounded inbox. On a
// message channel a malformed message is dropped and reading continues.
// On a byte stream framing is lost after a malformed tuple, so any decode
// or read error becomes the sticky route error. Every Send performs
// exactly one write of the complete encoding.
type Stream struct {
	criteriaSet
	name    string
	inbox   *inbox
	logger  log.Logger
	read    func() (tuple.Tuple, error)
	write   func(data []byte) error
	closer  io.Closer
	writeMu sync.Mutex
	err     *atomic.Error
	failed  *atomic.Bool
	closed  *atomic.Bool
	done    chan struct{}
}

var _ Route = (*Stream)(nil)

// NewStream creates a route over a byte stream and starts reading it.
// Close closes rw, which must unblock a pending Read.
func NewStream(name string, rw io.ReadWriteCloser, opts ...Option) *Stream {
	reader := bufio.NewReader(rw)
	s := newStream(name, opts...)
	s.read = func() (tuple.Tuple, error) {
		return tuple.Decode(reader)
	}
	s.write = func(data []byte) error {
		_, err := rw.Write(data)
		return err
	}
	s.closer = rw
	go s.pump(false)
	return s
}

// NewMessageStream creates a route over a message channel and starts
// reading it.
func NewMessageStream(name string, conn MessageConn, opts ...Option) *Stream {
	s := newStream(name, opts...)
	s.read = func() (tuple.Tuple, error) {
		data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var t tuple.Tuple
		if err := t.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return t, nil
	}
	s.write = conn.WriteMessage
	s.closer = conn
	go s.pump(true)
	return s
}

func newStream(name string, opts ...Option) *Stream {
	cfg := newConfig(opts...)
	logger := cfg.logger.With("route", name)
	return &Stream{
		name:   name,
		inbox:  newInbox(name, cfg.capacity, logger),
		logger: logger,
		err:    atomic.NewError(nil),
		failed: atomic.NewBool(false),
		closed: atomic.NewBool(false),
		done:   make(chan struct{}),
	}
}

func (s *Stream) pump(messages bool) {
	defer close(s.done)
	for {
		t, err := s.read()
		if err != nil {
			if messages && errors.Is(err, gerrors.ErrMalformed) {
				s.logger.Warnf("dropping malformed tuple: %v", err)
				continue
			}
			s.fail(err)
			return
		}

		if err := s.inbox.push(t); errors.Is(err, gerrors.ErrRouteClosed) {
			return
		}
	}
}

func (s *Stream) fail(err error) {
	if !s.failed.CompareAndSwap(false, true) {
		return
	}
	if s.closed.Load() {
		err = gerrors.ErrRouteClosed
	}
	if errors.Is(err, io.EOF) {
		s.logger.Info("stream closed by peer")
	} else if err != gerrors.ErrRouteClosed {
		s.logger.Warnf("stream failed: %v", err)
	}
	s.err.Store(err)
	s.inbox.signal()
}

// Name implements Route
func (s *Stream) Name() string {
	return s.name
}

// Send implements Route
func (s *Stream) Send(t tuple.Tuple) error {
	if s.closed.Load() {
		return gerrors.ErrRouteClosed
	}
	if err := s.err.Load(); err != nil {
		return err
	}

	buffer := bufferpool.Pool.Get()
	defer bufferpool.Pool.Put(buffer)

	data, err := t.AppendBinary(buffer.AvailableBuffer())
	if err != nil {
		s.logger.Warnf("cannot encode %s: %v", t.Brief(), err)
		return err
	}
	buffer.Write(data)

	s.writeMu.Lock()
	err = s.write(buffer.Bytes())
	s.writeMu.Unlock()
	if err != nil {
		s.fail(err)
	}
	return err
}

// Receive implements Route
func (s *Stream) Receive() (tuple.Tuple, bool) {
	return s.inbox.pop()
}

// Err implements Route
func (s *Stream) Err() error {
	return s.err.Load()
}

// Notify implements Route
func (s *Stream) Notify() <-chan struct{} {
	return s.inbox.notify
}

// Close closes the underlying channel and waits for the reader goroutine
func (s *Stream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.closer.Close()
	<-s.done
	s.inbox.dispose()
	return err
}
