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

package router

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/linda/filter"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
)

// CriteriaObserver is told about every criteria request the router applied
// to one of its routes
type CriteriaObserver func(from route.Route, criteria *route.Criteria, action route.Action)

// RouteFailureHandler takes over a route that reported an error. The route
// is already detached when it is called.
type RouteFailureHandler func(r route.Route, err error)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Router.
	Apply(router *Router)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(router *Router)

// Apply applies the Router's option
func (f OptionFunc) Apply(router *Router) {
	f(router)
}

// WithID sets the identity of the router. A random id is used otherwise.
func WithID(id string) Option {
	return OptionFunc(func(router *Router) {
		if id != "" {
			router.id = id
		}
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(router *Router) {
		if logger != nil {
			router.logger = logger
		}
	})
}

// WithFilter installs the authorization policy
func WithFilter(f filter.Filter) Option {
	return OptionFunc(func(router *Router) {
		router.filter = f
	})
}

// WithMetrics enables the router instruments on the given meter provider.
// A nil provider uses the global one.
func WithMetrics(meterProvider metric.MeterProvider) Option {
	return OptionFunc(func(router *Router) {
		router.metricsEnabled = true
		router.meterProvider = meterProvider
	})
}

// WithCriteriaObserver sets the hook called after a criteria request
// received on a route was applied
func WithCriteriaObserver(observer CriteriaObserver) Option {
	return OptionFunc(func(router *Router) {
		router.observer = observer
	})
}

// WithRouteFailureHandler keeps the router running when one of its routes
// fails: the failed route is detached and passed to handler instead of
// failing the whole router. Relays use it so one broken link does not
// stall the others.
func WithRouteFailureHandler(handler RouteFailureHandler) Option {
	return OptionFunc(func(router *Router) {
		router.onFailure = handler
	})
}
