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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/linda/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Server.
	Apply(server *Server)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(server *Server)

// Apply applies the Server's option
func (f OptionFunc) Apply(server *Server) {
	f(server)
}

// WithLogger sets the logger. The configured log level is used otherwise.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(server *Server) {
		server.logger = logger
	})
}

// WithMeterProvider sets the meter provider of the router metrics, which
// are recorded when Config.Metrics is set. The global provider is used
// otherwise.
func WithMeterProvider(meterProvider metric.MeterProvider) Option {
	return OptionFunc(func(server *Server) {
		server.meterProvider = meterProvider
	})
}
