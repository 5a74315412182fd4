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

package client

import (
	"time"

	"github.com/tochemey/linda/hydra"
	"github.com/tochemey/linda/internal/tcp"
	"github.com/tochemey/linda/log"
)

// Option is the interface that applies a configuration option.
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
	id             string
	hubID          string
	token          string
	compression    string
	logger         log.Logger
	requestTimeout time.Duration
	maxRetries     int
	initialDelay   time.Duration
	maxDelay       time.Duration
}

func newConfig(opts ...Option) *config {
	c := &config{
		hubID:          hydra.DefaultID,
		compression:    tcp.CompressionNone,
		logger:         log.DiscardLogger,
		requestTimeout: 5 * time.Second,
		maxRetries:     5,
		initialDelay:   100 * time.Millisecond,
		maxDelay:       2 * time.Second,
	}
	for _, opt := range opts {
		opt.Apply(c)
	}
	return c
}

// WithID sets the client router id. A random id is used otherwise.
func WithID(id string) Option {
	return OptionFunc(func(c *config) {
		c.id = id
	})
}

// WithHubID sets the id of the server hub, the destination of pings
func WithHubID(id string) Option {
	return OptionFunc(func(c *config) {
		if id != "" {
			c.hubID = id
		}
	})
}

// WithToken sets the authentication token
func WithToken(token string) Option {
	return OptionFunc(func(c *config) {
		c.token = token
	})
}

// WithCompression sets the compression of tcp connections. It must match
// the server's.
func WithCompression(name string) Option {
	return OptionFunc(func(c *config) {
		c.compression = name
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRequestTimeout bounds requests made without a context deadline
func WithRequestTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *config) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	})
}

// WithDialRetries sets how dialing backs off
func WithDialRetries(maxRetries int, initialDelay, maxDelay time.Duration) Option {
	return OptionFunc(func(c *config) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
		c.maxDelay = maxDelay
	})
}
