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
	"io"
	golog "log"
)

// DiscardLogger drops everything. Routers, routes and clients default to it.
var DiscardLogger Logger = discard{}

var discardStd = golog.New(io.Discard, "", 0)

type discard struct{}

func (discard) Debug(...any)             {}
func (discard) Debugf(string, ...any)    {}
func (discard) Info(...any)              {}
func (discard) Infof(string, ...any)     {}
func (discard) Warn(...any)              {}
func (discard) Warnf(string, ...any)     {}
func (discard) Error(...any)             {}
func (discard) Errorf(string, ...any)    {}
func (discard) Enabled(Level) bool       { return false }
func (d discard) With(...any) Logger     { return d }
func (discard) StdLogger() *golog.Logger { return discardStd }
func (discard) Flush() error             { return nil }
