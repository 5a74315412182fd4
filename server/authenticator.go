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
	"crypto/subtle"

	"go.uber.org/atomic"

	"github.com/tochemey/linda/actor"
	"github.com/tochemey/linda/filter"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/route"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// AuthenticatorName is the actor name of the per connection authenticator
const AuthenticatorName = "Authenticator"

// Authenticator handles the session tuples of one connection:
// Authenticate, JoinWorld and LeaveWorld. It drives the connection World
// filter and answers straight on the client route, since the answer must
// reach the client whatever the filter decides.
type Authenticator struct {
	token    string
	world    *filter.World
	client   route.Route
	clientID *atomic.String
	logger   log.Logger
}

var _ actor.Actor = (*Authenticator)(nil)

func newAuthenticator(token string, world *filter.World, client route.Route, logger log.Logger) *Authenticator {
	return &Authenticator{
		token:    token,
		world:    world,
		client:   client,
		clientID: atomic.NewString(""),
		logger:   logger,
	}
}

// Name implements actor.Actor
func (x *Authenticator) Name() string {
	return AuthenticatorName
}

// ClientID returns the router id the client authenticated with
func (x *Authenticator) ClientID() string {
	return x.clientID.Load()
}

// Accept implements actor.Actor
func (x *Authenticator) Accept(t tuple.Tuple) bool {
	switch t.Type() {
	case tuple.TypeAuthenticate:
		valid := x.token == "" || subtle.ConstantTimeCompare([]byte(t.Word(tuple.FieldToken)), []byte(x.token)) == 1
		x.world.Authenticate(valid)
		if valid {
			x.clientID.Store(t.SourceID())
			x.logger.Debugf("client %s authenticated", t.SourceID())
		} else {
			x.logger.Warnf("client %s failed to authenticate", t.SourceID())
		}
		reply := t.Reply(tuple.TypeAuthenticateResponse)
		reply.Set(tuple.FieldValid, flag(valid))
		x.answer(reply)
		return true

	case tuple.TypeJoinWorld, tuple.TypeLeaveWorld:
		world := t.Word(tuple.FieldWorld)
		ok := world != ""
		if ok {
			if t.Type() == tuple.TypeJoinWorld {
				x.world.Join(world, t.Number(tuple.FieldWritable) != 0)
			} else {
				x.world.Leave(world)
			}
		}
		reply := t.Reply(tuple.TypeWorldResponse)
		reply.Set(tuple.FieldWorld, value.Word(world))
		reply.Set(tuple.FieldValid, flag(ok))
		x.answer(reply)
		return true

	default:
		return false
	}
}

func (x *Authenticator) answer(reply tuple.Tuple) {
	if err := x.client.Send(reply); err != nil {
		x.logger.Warnf("failed to answer %s: %v", reply.Type(), err)
	}
}

func flag(ok bool) value.Value {
	if ok {
		return value.Number(1)
	}
	return value.Number(0)
}
