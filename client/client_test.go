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
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/linda/errors"
	"github.com/tochemey/linda/internal/wsconn"
	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/server"
	"github.com/tochemey/linda/tuple"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("sync.runtime_notifyListWait"),
		goleak.IgnoreTopFunction("time.Sleep"),
	)
}

func startServer(t *testing.T) *server.Server {
	t.Helper()
	ports := dynaport.Get(2)
	config := &server.Config{
		WebsocketAddress: fmt.Sprintf("127.0.0.1:%d", ports[0]),
		TCPAddress:       fmt.Sprintf("127.0.0.1:%d", ports[1]),
		Compression:      "brotli",
		MaxConnections:   4,
		LogLevel:         "info",
		HubID:            "hydra",
		ClockInterval:    time.Second,
		ShutdownTimeout:  2 * time.Second,
	}
	s, err := server.New(config, server.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("With websocket", func(t *testing.T) {
		s := startServer(t)
		c, err := Dial(ctx, "ws://"+s.WebsocketAddr().String()+wsconn.Path, WithID("alice"))
		require.NoError(t, err)
		assert.Equal(t, "alice", c.ID())
		assert.NotNil(t, c.Router())

		rtt, err := c.Ping(ctx)
		require.NoError(t, err)
		assert.Positive(t, rtt)

		require.NoError(t, c.JoinWorld(ctx, "w1", false))
		require.NoError(t, c.LeaveWorld(ctx, "w1"))
		assert.NoError(t, c.Err())

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		require.NoError(t, s.Stop(ctx))
	})
	t.Run("With compressed tcp", func(t *testing.T) {
		s := startServer(t)
		c, err := Dial(ctx, "tcp://"+s.TCPAddr().String(), WithCompression("brotli"))
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID())

		_, err = c.Ping(ctx)
		require.NoError(t, err)
		require.NoError(t, c.Close())
		require.NoError(t, s.Stop(ctx))
	})
	t.Run("With operations after close", func(t *testing.T) {
		s := startServer(t)
		c, err := Dial(ctx, "ws://"+s.WebsocketAddr().String()+wsconn.Path)
		require.NoError(t, err)
		require.NoError(t, c.Close())

		assert.ErrorIs(t, c.Route(tuple.New(tuple.TypePing)), gerrors.ErrClientClosed)
		_, err = c.Ping(ctx)
		assert.ErrorIs(t, err, gerrors.ErrClientClosed)
		assert.ErrorIs(t, c.Subscribe(nil), gerrors.ErrClientClosed)
		assert.ErrorIs(t, c.Unsubscribe(nil), gerrors.ErrClientClosed)
		require.NoError(t, s.Stop(ctx))
	})
	t.Run("With a request nobody answers", func(t *testing.T) {
		s := startServer(t)
		c, err := Dial(ctx, "ws://"+s.WebsocketAddr().String()+wsconn.Path, WithRequestTimeout(50*time.Millisecond))
		require.NoError(t, err)

		lost := tuple.New("Nobody")
		lost.SetDestinationID("nobody")
		_, err = c.Request(ctx, lost)
		require.ErrorIs(t, err, gerrors.ErrRequestTimeout)

		require.NoError(t, c.Close())
		require.NoError(t, s.Stop(ctx))
	})
	t.Run("With an unsupported address", func(t *testing.T) {
		start := time.Now()
		_, err := Dial(ctx, "udp://127.0.0.1:1", WithDialRetries(5, time.Second, time.Second))
		require.ErrorIs(t, err, gerrors.ErrUnsupportedAddress)
		assert.Less(t, time.Since(start), time.Second, "unsupported addresses are not retried")
	})
	t.Run("With a tcp address missing its host", func(t *testing.T) {
		start := time.Now()
		_, err := Dial(ctx, "tcp://:9000", WithDialRetries(5, time.Second, time.Second))
		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
	t.Run("With an unsupported compression", func(t *testing.T) {
		_, err := Dial(ctx, "tcp://127.0.0.1:1", WithCompression("lz4"), WithDialRetries(5, time.Second, time.Second))
		require.Error(t, err)
	})
	t.Run("With nothing listening", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		address := listener.Addr().String()
		require.NoError(t, listener.Close())

		_, err = Dial(ctx, "tcp://"+address, WithDialRetries(2, 10*time.Millisecond, 20*time.Millisecond))
		require.Error(t, err)
	})
}
