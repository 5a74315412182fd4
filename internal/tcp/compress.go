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
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

var (
	// ErrUnknownCompression is returned for an unsupported compression name
	ErrUnknownCompression = errors.New("unknown compression")
	errEncoderInit        = errors.New("failed to create compression encoder")
	errDecoderInit        = errors.New("failed to create compression decoder")
)

// Compression names accepted by NewConnWrapper
const (
	CompressionNone   = "none"
	CompressionZstd   = "zstd"
	CompressionBrotli = "brotli"
)

// ConnWrapper layers a transformation such as compression over a
// connection. Both ends of a connection must use the same wrappers.
type ConnWrapper interface {
	Wrap(conn net.Conn) (net.Conn, error)
}

// NewConnWrapper returns the wrapper for a compression name. "none" and
// the empty name return nil.
func NewConnWrapper(compression string) (ConnWrapper, error) {
	switch strings.ToLower(strings.TrimSpace(compression)) {
	case "", CompressionNone:
		return nil, nil
	case CompressionZstd:
		return NewZstdConnWrapper()
	case CompressionBrotli:
		return NewBrotliConnWrapper(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, compression)
	}
}

// Wrap applies wrappers in order, skipping nil ones
func Wrap(conn net.Conn, wrappers ...ConnWrapper) (net.Conn, error) {
	for _, wrapper := range wrappers {
		if wrapper == nil {
			continue
		}
		wrapped, err := wrapper.Wrap(conn)
		if err != nil {
			return nil, err
		}
		conn = wrapped
	}
	return conn, nil
}

type flushWriter interface {
	io.Writer
	Flush() error
}

// compressedConn flushes after every Write so each tuple reaches the peer
// without waiting for more output
type compressedConn struct {
	net.Conn
	reader  io.Reader
	writer  flushWriter
	release func() error
}

func (c *compressedConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *compressedConn) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.writer.Flush()
}

func (c *compressedConn) Close() error {
	return errors.Join(c.release(), c.Conn.Close())
}
