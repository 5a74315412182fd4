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
	"github.com/tochemey/linda/log"
)

// DefaultCapacity is the default number of tuples an inbox holds before
// dropping newcomers
const DefaultCapacity = 1024

// Option configures a route at creation time.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *config)

// Apply implementation
func (f OptionFunc) Apply(c *config) {
	f(c)
}

type config struct {
	logger   log.Logger
	capacity uint64
}

func newConfig(opts ...Option) *config {
	c := &config{
		logger:   log.DiscardLogger,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt.Apply(c)
	}
	return c
}

// WithLogger sets the route logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCapacity bounds the inbound buffer. The ring buffer rounds the
// capacity up to a power of two.
func WithCapacity(capacity uint64) Option {
	return OptionFunc(func(c *config) {
		if capacity > 0 {
			c.capacity = capacity
		}
	})
}
