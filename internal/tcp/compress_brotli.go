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
	"net"
	"sync"

	"github.com/andybalholm/brotli"
)

// BrotliConnWrapper compresses connections with Brotli
type BrotliConnWrapper struct {
	level   int
	writers sync.Pool
	readers sync.Pool
}

var _ ConnWrapper = (*BrotliConnWrapper)(nil)

// NewBrotliConnWrapper creates a BrotliConnWrapper at the default level
func NewBrotliConnWrapper() *BrotliConnWrapper {
	w := &BrotliConnWrapper{level: brotli.DefaultCompression}
	w.writers.New = func() any { return brotli.NewWriterLevel(nil, w.level) }
	w.readers.New = func() any { return brotli.NewReader(nil) }
	return w
}

// Wrap implements ConnWrapper
func (w *BrotliConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	writer := w.writers.Get().(*brotli.Writer)
	reader := w.readers.Get().(*brotli.Reader)

	writer.Reset(conn)
	if err := reader.Reset(conn); err != nil {
		writer.Reset(nil)
		w.writers.Put(writer)
		w.readers.Put(reader)
		return nil, err
	}

	return &compressedConn{
		Conn:   conn,
		reader: reader,
		writer: writer,
		release: func() error {
			err := writer.Close()
			writer.Reset(nil)
			w.writers.Put(writer)
			w.readers.Put(reader)
			return err
		},
	}, nil
}
