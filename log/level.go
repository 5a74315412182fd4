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
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger writes
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
	// InvalidLevel is what ParseLevel returns for unknown names
	InvalidLevel
)

var levels = [...]struct {
	name string
	zap  zapcore.Level
}{
	DebugLevel:   {"debug", zapcore.DebugLevel},
	InfoLevel:    {"info", zapcore.InfoLevel},
	WarningLevel: {"warn", zapcore.WarnLevel},
	ErrorLevel:   {"error", zapcore.ErrorLevel},
}

func (l Level) valid() bool {
	return l >= DebugLevel && l < InvalidLevel
}

// String returns the lower case name of the level
func (l Level) String() string {
	if !l.valid() {
		return "invalid"
	}
	return levels[l].name
}

func (l Level) zap() zapcore.Level {
	if !l.valid() {
		return zapcore.InfoLevel
	}
	return levels[l].zap
}

// ParseLevel converts a name such as "debug" or "WARN" into a Level. An
// empty name is InfoLevel.
func ParseLevel(name string) Level {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "":
		return InfoLevel
	case "warning":
		return WarningLevel
	}
	for l := range levels {
		if levels[l].name == name {
			return Level(l)
		}
	}
	return InvalidLevel
}
