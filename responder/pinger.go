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

package responder

import (
	"github.com/tochemey/linda/actor"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
)

// PingerName is the actor name of the Pinger
const PingerName = "Pinger"

// Pinger answers every Ping with a Pong
type Pinger struct {
	emitter Emitter
	logger  log.Logger
}

var _ actor.Actor = (*Pinger)(nil)

// NewPinger creates a Pinger replying through emitter
func NewPinger(emitter Emitter, logger log.Logger) *Pinger {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Pinger{emitter: emitter, logger: logger}
}

// Name implements actor.Actor
func (x *Pinger) Name() string {
	return PingerName
}

// Accept implements actor.Actor
func (x *Pinger) Accept(t tuple.Tuple) bool {
	if t.Type() != tuple.TypePing {
		return false
	}
	if err := x.emitter.Route(t.Reply(tuple.TypePong)); err != nil {
		x.logger.Warnf("failed to answer ping from %s: %v", t.SourceID(), err)
	}
	return true
}
