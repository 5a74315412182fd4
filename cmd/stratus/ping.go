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

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tochemey/linda/client"
)

var (
	pingToken       string
	pingCompression string
	pingHub         string
	pingCount       int
)

var pingCmd = &cobra.Command{
	Use:   "ping ADDRESS",
	Short: "Round trip pings through a server hub",
	Long:  "ADDRESS is ws://host:port/linda, wss://host:port/linda or tcp://host:port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.Dial(cmd.Context(), args[0],
			client.WithToken(pingToken),
			client.WithCompression(pingCompression),
			client.WithHubID(pingHub),
		)
		if err != nil {
			return err
		}
		defer c.Close()

		for i := 0; i < pingCount; i++ {
			rtt, err := c.Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pong from %s: time=%s\n", pingHub, rtt.Round(time.Microsecond))
		}
		return nil
	},
}

func init() {
	flags := pingCmd.Flags()
	flags.StringVar(&pingToken, "token", "", "authentication token")
	flags.StringVar(&pingCompression, "compression", "none", "tcp compression: none, zstd or brotli")
	flags.StringVar(&pingHub, "hub", "hydra", "hub id")
	flags.IntVarP(&pingCount, "count", "c", 1, "number of pings")
}
