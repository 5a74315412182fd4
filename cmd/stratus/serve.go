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
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tochemey/linda/server"
)

var envFiles []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a server configured from LINDA_ environment variables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := server.LoadConfig(envFiles...)
		if err != nil {
			return err
		}
		logger := config.Logger()
		defer func() { _ = logger.Flush() }()

		s, err := server.New(config, server.WithLogger(logger))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := s.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		logger.Info("shutting down")
		return s.Stop(context.Background())
	},
}

func init() {
	serveCmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "additional .env files to load")
}
