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

// Package future layers request and reply correlation on top of the fire
// and forget tuple fabric.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/tuple"
)

// Future is a reply tuple that may not have arrived yet.
type Future interface {
	// Await blocks until the reply arrived or ctx is done. A context
	// deadline is reported as errors.ErrRequestTimeout.
	Await(ctx context.Context) (tuple.Tuple, error)
	// RequestID is the correlation id carried by the request
	RequestID() string

	complete(reply tuple.Tuple, err error)
}

type future struct {
	id           string
	awaitOnce    sync.Once
	completeOnce sync.Once
	done         chan result
	reply        tuple.Tuple
	err          error
	// abandon is called when the awaiter gives up
	abandon func()
}

type result struct {
	reply tuple.Tuple
	err   error
}

var _ Future = (*future)(nil)

func newFuture(id string, abandon func()) *future {
	return &future{
		id:      id,
		done:    make(chan result, 1),
		abandon: abandon,
	}
}

// Completed returns a Future already holding reply or err
func Completed(reply tuple.Tuple, err error) Future {
	f := newFuture("", nil)
	f.complete(reply, err)
	return f
}

func (x *future) RequestID() string {
	return x.id
}

func (x *future) Await(ctx context.Context) (tuple.Tuple, error) {
	x.awaitOnce.Do(func() {
		select {
		case r := <-x.done:
			x.reply, x.err = r.reply, r.err
		case <-ctx.Done():
			if x.abandon != nil {
				x.abandon()
			}
			x.err = ctx.Err()
			if errors.Is(x.err, context.DeadlineExceeded) {
				x.err = fmt.Errorf("%w: request %s", gerrors.ErrRequestTimeout, x.id)
			}
		}
	})
	return x.reply, x.err
}

func (x *future) complete(reply tuple.Tuple, err error) {
	x.completeOnce.Do(func() {
		x.done <- result{reply: reply, err: err}
	})
}
