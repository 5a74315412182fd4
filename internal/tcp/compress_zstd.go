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
	"net"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdConnWrapper compresses connections with Zstandard. Encoders and
// decoders are pooled across connections.
type ZstdConnWrapper struct {
	encoders sync.Pool
	decoders sync.Pool
}

var _ ConnWrapper = (*ZstdConnWrapper)(nil)

// NewZstdConnWrapper creates a ZstdConnWrapper tuned for small messages
func NewZstdConnWrapper() (*ZstdConnWrapper, error) {
	encoderOptions := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithWindowSize(256 << 10),
		zstd.WithEncoderConcurrency(1),
		zstd.WithLowerEncoderMem(true),
		zstd.WithZeroFrames(true),
	}
	decoderOptions := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(32 << 20),
	}

	encoder, err := zstd.NewWriter(nil, encoderOptions...)
	if err != nil {
		return nil, errors.Join(errEncoderInit, err)
	}
	decoder, err := zstd.NewReader(nil, decoderOptions...)
	if err != nil {
		encoder.Close()
		return nil, errors.Join(errDecoderInit, err)
	}

	w := new(ZstdConnWrapper)
	w.encoders.New = func() any {
		e, err := zstd.NewWriter(nil, encoderOptions...)
		if err != nil {
			return nil
		}
		return e
	}
	w.decoders.New = func() any {
		d, err := zstd.NewReader(nil, decoderOptions...)
		if err != nil {
			return nil
		}
		return d
	}
	w.encoders.Put(encoder)
	w.decoders.Put(decoder)
	return w, nil
}

// Wrap implements ConnWrapper
func (w *ZstdConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	encoder, ok := w.encoders.Get().(*zstd.Encoder)
	if !ok || encoder == nil {
		return nil, errEncoderInit
	}
	decoder, ok := w.decoders.Get().(*zstd.Decoder)
	if !ok || decoder == nil {
		w.encoders.Put(encoder)
		return nil, errDecoderInit
	}

	encoder.Reset(conn)
	if err := decoder.Reset(conn); err != nil {
		encoder.Reset(nil)
		w.encoders.Put(encoder)
		w.decoders.Put(decoder)
		return nil, err
	}

	return &compressedConn{
		Conn:   conn,
		reader: decoder,
		writer: encoder,
		release: func() error {
			err := encoder.Close()
			encoder.Reset(nil)
			w.encoders.Put(encoder)
			_ = decoder.Reset(nil)
			w.decoders.Put(decoder)
			return err
		},
	}, nil
}
