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

package route

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/linda/errors"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}
	return serv
}

func TestNATS(t *testing.T) {
	t.Run("With two bridges exchanging tuples", func(t *testing.T) {
		srv := startNatsServer(t)
		defer func() {
			srv.Shutdown()
			srv.WaitForShutdown()
		}()

		conn, err := nats.Connect(srv.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		near, err := NewNATS("near", conn, "linda.a", "linda.b")
		require.NoError(t, err)
		far, err := NewNATS("far", conn, "linda.b", "linda.a")
		require.NoError(t, err)
		defer far.Close()
		defer near.Close()
		require.NoError(t, conn.Flush())

		for i := range 3 {
			require.NoError(t, near.Send(numbered(i)))
		}
		for i := range 3 {
			got := receiveWithin(t, far, 2*time.Second)
			assert.EqualValues(t, i, got.Number("n"))
		}

		require.NoError(t, far.Send(numbered(9)))
		got := receiveWithin(t, near, 2*time.Second)
		assert.EqualValues(t, 9, got.Number("n"))
	})
	t.Run("With malformed messages dropped", func(t *testing.T) {
		srv := startNatsServer(t)
		defer func() {
			srv.Shutdown()
			srv.WaitForShutdown()
		}()

		conn, err := nats.Connect(srv.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		near, err := NewNATS("near", conn, "linda.out", "linda.in")
		require.NoError(t, err)
		defer near.Close()
		require.NoError(t, conn.Flush())

		require.NoError(t, conn.Publish("linda.in", []byte{1, 1, 'k', 9}))
		data, err := numbered(5).MarshalBinary()
		require.NoError(t, err)
		require.NoError(t, conn.Publish("linda.in", data))

		got := receiveWithin(t, near, 2*time.Second)
		assert.EqualValues(t, 5, got.Number("n"))
		assert.NoError(t, near.Err())
	})
	t.Run("With closed connection failing the route", func(t *testing.T) {
		srv := startNatsServer(t)
		defer func() {
			srv.Shutdown()
			srv.WaitForShutdown()
		}()

		conn, err := nats.Connect(srv.Addr().String())
		require.NoError(t, err)

		near, err := NewNATS("near", conn, "linda.out", "linda.in")
		require.NoError(t, err)

		conn.Close()
		assert.ErrorIs(t, near.Err(), nats.ErrConnectionClosed)
		assert.Error(t, near.Send(numbered(1)))
		require.NoError(t, near.Close())
		assert.ErrorIs(t, near.Send(numbered(1)), gerrors.ErrRouteClosed)
	})
}
