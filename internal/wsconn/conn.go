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

// Package wsconn adapts a gorilla websocket connection to the message
// oriented route.MessageConn contract: one binary message per tuple.
package wsconn

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	gerrors "github.com/tochemey/linda/errors"
)

// Path is the HTTP path the websocket endpoint is mounted on
const Path = "/linda"

// MaxMessageSize bounds a single inbound message
const MaxMessageSize = 4 << 20

const writeWait = 10 * time.Second

// Conn is a websocket connection carrying encoded tuples
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// New wraps ws
func New(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(MaxMessageSize)
	return &Conn{ws: ws}
}

// Upgrader returns the upgrader used by the server endpoint
func Upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

// Upgrade upgrades an HTTP request to a websocket Conn
func Upgrade(writer http.ResponseWriter, request *http.Request) (*Conn, error) {
	ws, err := Upgrader().Upgrade(writer, request, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade the websocket connection: %w", err)
	}
	return New(ws), nil
}

// Dial connects to a websocket endpoint such as ws://host:port/linda
func Dial(url string) (*Conn, error) {
	ws, response, err := websocket.DefaultDialer.Dial(url, nil)
	if response != nil && response.Body != nil {
		_ = response.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return New(ws), nil
}

// ReadMessage returns the next binary message. Text messages are reported
// as malformed; a normal closure is reported as io.EOF.
func (c *Conn) ReadMessage() ([]byte, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, err
	}
	if kind != websocket.BinaryMessage {
		return nil, fmt.Errorf("%w: websocket message of type %d", gerrors.ErrMalformed, kind)
	}
	return data, nil
}

// WriteMessage sends data as one binary message
func (c *Conn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// Close sends a close frame and releases the connection
func (c *Conn) Close() error {
	c.writeMu.Lock()
	// the peer may already be gone, the close frame is best effort
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
