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

package errors

import "errors"

var (
	// ErrMalformed is returned when an encoded value or tuple is truncated,
	// exceeds a decode bound or otherwise cannot be parsed.
	ErrMalformed = errors.New("malformed encoding")

	// ErrUnencodable is returned when an unknown Value is handed to the encoder.
	ErrUnencodable = errors.New("value of unknown kind cannot be encoded")

	// ErrKindMismatch is returned when a Value is set to a kind different from
	// the one it already holds without being reset first.
	ErrKindMismatch = errors.New("value kind mismatch, reset first")

	// ErrTooManyFields is returned when a tuple with more than 255 fields is encoded.
	ErrTooManyFields = errors.New("tuple has too many fields")

	// ErrKeyTooLong is returned when a tuple field name exceeds 255 bytes.
	ErrKeyTooLong = errors.New("tuple field name is too long")

	// ErrActorExists is returned when an actor with the same name is already registered.
	ErrActorExists = errors.New("actor already registered")

	// ErrUnknownActor is returned when a named actor cannot be found.
	ErrUnknownActor = errors.New("actor is not registered")

	// ErrNotPerformer is returned when Perform targets an actor without a Perform side channel.
	ErrNotPerformer = errors.New("actor does not perform functions")

	// ErrUnhandledFunction is returned by performers asked for a function they do not expose.
	ErrUnhandledFunction = errors.New("function is not handled")

	// ErrRouteClosed is returned when sending through a closed route.
	ErrRouteClosed = errors.New("route is closed")

	// ErrInboxFull is returned when a route inbox is at capacity and the tuple was dropped.
	ErrInboxFull = errors.New("route inbox is full")

	// ErrNoDefaultRoute is returned when a request needs the default route and none is attached.
	ErrNoDefaultRoute = errors.New("router has no default route")

	// ErrRouteNotFound is returned when a route is not attached to the router.
	ErrRouteNotFound = errors.New("route not found")

	// ErrHydraNotStarted is returned when the hub is used before Start or after Stop.
	ErrHydraNotStarted = errors.New("hydra is not running")

	// ErrHandlerStopped is returned when a connection handler has been torn down.
	ErrHandlerStopped = errors.New("handler is stopped")

	// ErrRequestTimeout indicates that a request did not receive its reply in time.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrClientClosed is returned when the client is used after Close.
	ErrClientClosed = errors.New("client is closed")

	// ErrAuthenticationFailed is returned when the server rejects the client credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnsupportedAddress is returned when a client address scheme is neither ws, wss nor tcp.
	ErrUnsupportedAddress = errors.New("unsupported address scheme")

	// ErrInvalidCriteria is returned when a routing criteria tuple cannot be parsed.
	ErrInvalidCriteria = errors.New("invalid routing criteria")
)
