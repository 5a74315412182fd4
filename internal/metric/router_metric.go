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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Reasons a tuple was dropped
const (
	DropDenied    = "denied"
	DropSendError = "send_error"
	DropNoRoute   = "no_route"
)

// RouterMetric holds the instruments of one router
type RouterMetric struct {
	attributes metric.MeasurementOption
	// tuples emitted by local actors and handed to at least one route
	routed metric.Int64Counter
	// tuples relayed from one route to another
	forwarded metric.Int64Counter
	// tuples handled by a local actor
	dispatched metric.Int64Counter
	dropped    metric.Int64Counter
	routes     metric.Int64ObservableGauge

	registration metric.Registration
}

// NewRouterMetric creates the router instruments. routeCount is observed
// on every collection.
func NewRouterMetric(meter metric.Meter, routerID string, routeCount func() int) (*RouterMetric, error) {
	routerMetric := &RouterMetric{
		attributes: metric.WithAttributes(attribute.String("router.id", routerID)),
	}
	var err error
	if routerMetric.routed, err = meter.Int64Counter(
		"linda.tuples.routed",
		metric.WithDescription("Total number of tuples emitted by local actors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create routed instrument, %w", err)
	}

	if routerMetric.forwarded, err = meter.Int64Counter(
		"linda.tuples.forwarded",
		metric.WithDescription("Total number of tuples relayed between routes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create forwarded instrument, %w", err)
	}

	if routerMetric.dispatched, err = meter.Int64Counter(
		"linda.tuples.dispatched",
		metric.WithDescription("Total number of tuples handled by local actors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatched instrument, %w", err)
	}

	if routerMetric.dropped, err = meter.Int64Counter(
		"linda.tuples.dropped",
		metric.WithDescription("Total number of tuples dropped"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dropped instrument, %w", err)
	}

	if routerMetric.routes, err = meter.Int64ObservableGauge(
		"linda.routes.count",
		metric.WithDescription("Number of routes attached to the router"),
	); err != nil {
		return nil, fmt.Errorf("failed to create routes instrument, %w", err)
	}

	if routeCount != nil {
		routerMetric.registration, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
			observer.ObserveInt64(routerMetric.routes, int64(routeCount()), routerMetric.attributes)
			return nil
		}, routerMetric.routes)
		if err != nil {
			return nil, fmt.Errorf("failed to register routes callback, %w", err)
		}
	}
	return routerMetric, nil
}

// Routed counts an emitted tuple
func (x *RouterMetric) Routed(ctx context.Context) {
	x.routed.Add(ctx, 1, x.attributes)
}

// Forwarded counts a relayed tuple
func (x *RouterMetric) Forwarded(ctx context.Context) {
	x.forwarded.Add(ctx, 1, x.attributes)
}

// Dispatched counts a locally handled tuple
func (x *RouterMetric) Dispatched(ctx context.Context) {
	x.dispatched.Add(ctx, 1, x.attributes)
}

// Dropped counts a dropped tuple
func (x *RouterMetric) Dropped(ctx context.Context, reason string) {
	x.dropped.Add(ctx, 1, x.attributes, metric.WithAttributes(attribute.String("reason", reason)))
}

// Unregister stops observing the route count
func (x *RouterMetric) Unregister() error {
	if x.registration == nil {
		return nil
	}
	return x.registration.Unregister()
}
