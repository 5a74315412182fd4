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

// Package responder holds the server side actors registered on the hub
// router: the Pinger, the Clock, Presence tracking and the Telegram store.
package responder

import "github.com/tochemey/linda/tuple"

// Tuple types answered or emitted by the responders
const (
	TypeArrive           = "Arrive"
	TypeDepart           = "Depart"
	TypePresenceRequest  = "PresenceRequest"
	TypePresenceResponse = "PresenceResponse"
	TypePresenceUpdate   = "PresenceUpdate"

	TypeTelegramSend         = "TelegramSend"
	TypeTelegramSendResponse = "TelegramSendResponse"
	TypeTelegramRequest      = "TelegramRequest"
	TypeTelegramResponse     = "TelegramResponse"
)

// Field names used by the responders
const (
	FieldNow       = "now"
	FieldUser      = "user"
	FieldUsers     = "users"
	FieldPresent   = "present"
	FieldRecipient = "recipient"
	FieldTelegram  = "telegram"
	FieldTelegrams = "telegrams"
	FieldOK        = "ok"
	FieldError     = "error"
)

// Emitter sends tuples into the fabric, typically the hub router
type Emitter interface {
	Route(t tuple.Tuple) error
}
