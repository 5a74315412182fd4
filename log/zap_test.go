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

package log

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Route   string `json:"route"`
	Count   int    `json:"count"`
}

func decodeEntries(t *testing.T, buffer *bytes.Buffer) []entry {
	t.Helper()
	var entries []entry
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var e entry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestZap(t *testing.T) {
	t.Run("With info level writes info and skips debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)

		logger.Debug("hidden")
		logger.Info("visible")
		logger.Warnf("dropped %d tuples", 3)

		entries := decodeEntries(t, buffer)
		require.Len(t, entries, 2)
		assert.Equal(t, "info", entries[0].Level)
		assert.Equal(t, "visible", entries[0].Message)
		assert.Equal(t, "warn", entries[1].Level)
		assert.Equal(t, "dropped 3 tuples", entries[1].Message)
		assert.False(t, logger.Enabled(DebugLevel))
		assert.True(t, logger.Enabled(ErrorLevel))
	})
	t.Run("With debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)
		logger.Debugf("route %s", "hydra")

		entries := decodeEntries(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "debug", entries[0].Level)
		assert.True(t, logger.Enabled(DebugLevel))
		assert.False(t, logger.Enabled(InvalidLevel))
	})
	t.Run("With fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer).With("route", "near", "count", 2)
		logger.Error("stream broke")

		entries := decodeEntries(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "near", entries[0].Route)
		assert.Equal(t, 2, entries[0].Count)
		assert.Equal(t, "error", entries[0].Level)
	})
	t.Run("With no fields returns the same logger", func(t *testing.T) {
		logger := NewZap(InfoLevel, io.Discard)
		assert.Same(t, logger, logger.With())
	})
	t.Run("With the std logger bridge", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(WarningLevel, buffer)
		logger.StdLogger().Print("http: TLS handshake error")
		require.NoError(t, logger.Flush())

		entries := decodeEntries(t, buffer)
		require.Len(t, entries, 1)
		assert.Equal(t, "error", entries[0].Level)
		assert.Equal(t, "http: TLS handshake error", entries[0].Message)
	})
	t.Run("With a file output", func(t *testing.T) {
		file, err := os.CreateTemp(t.TempDir(), "linda-*.log")
		require.NoError(t, err)
		defer file.Close()

		logger := NewZap(InfoLevel, file, os.Stdout)
		logger.Info("flushed")
		require.NoError(t, logger.Flush())
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarningLevel, ParseLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InvalidLevel, ParseLevel("loud"))
	assert.Equal(t, "error", ErrorLevel.String())
	assert.Equal(t, "invalid", InvalidLevel.String())
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Info("info")
	logger.Warnf("warn %s", "msg")
	logger.Debug("debug")

	assert.False(t, logger.Enabled(ErrorLevel))
	assert.Equal(t, DiscardLogger, logger.With("key", "value"))
	assert.NotNil(t, logger.StdLogger())
	require.NoError(t, logger.Flush())
}
