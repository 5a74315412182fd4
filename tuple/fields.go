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

package tuple

import "github.com/tochemey/linda/value"

// Reserved field names carried by every routed tuple
const (
	FieldSourceID         = "sourceID"
	FieldDestinationID    = "destinationID"
	FieldType             = "type"
	FieldSourceActor      = "sourceActor"
	FieldDestinationActor = "destinationActor"
	FieldCoordinates      = "coordinates"
	FieldRequestID        = "requestID"

	// CoordinateWorldID is the key of the world id inside the coordinates map
	CoordinateWorldID = "worldID"
)

// Well known tuple types
const (
	TypeRoutingCriteria = "RoutingCriteria"
	TypeAuthenticate    = "Authenticate"
	TypeTime            = "Time"
	TypePing            = "Ping"
	TypePong            = "Pong"

	TypeAuthenticateResponse = "AuthenticateResponse"
	TypeJoinWorld            = "JoinWorld"
	TypeLeaveWorld           = "LeaveWorld"
	TypeWorldResponse        = "WorldResponse"
)

// Fields of the connection session tuples
const (
	FieldToken    = "token"
	FieldValid    = "valid"
	FieldWorld    = "world"
	FieldWritable = "writable"
)

// SourceID returns the id of the process that emitted the tuple
func (t Tuple) SourceID() string { return t.Word(FieldSourceID) }

// SetSourceID records the emitting process
func (t Tuple) SetSourceID(id string) { t.setWord(FieldSourceID, id) }

// DestinationID returns the addressed process id, or "" for broadcasts
func (t Tuple) DestinationID() string { return t.Word(FieldDestinationID) }

// SetDestinationID addresses the tuple to a process
func (t Tuple) SetDestinationID(id string) { t.setWord(FieldDestinationID, id) }

// Type returns the type name
func (t Tuple) Type() string { return t.Word(FieldType) }

// SetType sets the type name
func (t Tuple) SetType(name string) { t.setWord(FieldType, name) }

// SourceActor returns the name of the emitting actor
func (t Tuple) SourceActor() string { return t.Word(FieldSourceActor) }

// SetSourceActor records the emitting actor
func (t Tuple) SetSourceActor(name string) { t.setWord(FieldSourceActor, name) }

// DestinationActor returns the name of the addressed actor, if any
func (t Tuple) DestinationActor() string { return t.Word(FieldDestinationActor) }

// SetDestinationActor addresses the tuple to a single actor
func (t Tuple) SetDestinationActor(name string) { t.setWord(FieldDestinationActor, name) }

// RequestID returns the correlation id of a request or reply
func (t Tuple) RequestID() string { return t.Word(FieldRequestID) }

// SetRequestID sets the correlation id
func (t Tuple) SetRequestID(id string) { t.setWord(FieldRequestID, id) }

// WorldID returns coordinates.worldID, or "" when the tuple is not world addressed
func (t Tuple) WorldID() string {
	coordinates, ok := t[FieldCoordinates]
	if !ok {
		return ""
	}
	world, ok := coordinates.Entry(CoordinateWorldID)
	if !ok {
		return ""
	}
	text, _ := world.AsWord()
	return text
}

// SetWorldID sets coordinates.worldID, keeping other coordinates
func (t Tuple) SetWorldID(worldID string) {
	t.Edit(FieldCoordinates, func(v *value.Value) {
		if v.Kind() != value.KindMap {
			v.Reset()
		}
		_ = v.SetEntry(CoordinateWorldID, value.Word(worldID))
	})
}

// IsRoutingCriteria reports whether the tuple is a criteria request
// consumed by routers rather than dispatched.
func (t Tuple) IsRoutingCriteria() bool {
	return t.Type() == TypeRoutingCriteria
}

// Reply creates a tuple of the given type addressed back to the sender of
// t, carrying its request id.
func (t Tuple) Reply(typeName string) Tuple {
	reply := New(typeName)
	if source := t.SourceID(); source != "" {
		reply.SetDestinationID(source)
	}
	if actor := t.SourceActor(); actor != "" {
		reply.SetDestinationActor(actor)
	}
	if id := t.RequestID(); id != "" {
		reply.SetRequestID(id)
	}
	return reply
}

func (t Tuple) setWord(key, text string) {
	if text == "" {
		delete(t, key)
		return
	}
	t[key] = value.Word(text)
}
