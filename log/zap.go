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
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap is the Logger backed by zap. Entries are JSON lines.
type Zap struct {
	sugar   *zap.SugaredLogger
	writers []io.Writer
}

var _ Logger = (*Zap)(nil)

// NewZap creates a Logger writing level and above to every writer
func NewZap(level Level, writers ...io.Writer) *Zap {
	syncers := make([]zapcore.WriteSyncer, len(writers))
	for i, writer := range writers {
		syncers[i] = zapcore.AddSync(writer)
	}

	encoding := zap.NewProductionEncoderConfig()
	encoding.TimeKey = "ts"
	encoding.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	encoding.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoding), zap.CombineWriteSyncers(syncers...), level.zap())
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return &Zap{sugar: logger.Sugar(), writers: writers}
}

func (z *Zap) Debug(v ...any)                 { z.sugar.Debug(v...) }
func (z *Zap) Debugf(format string, v ...any) { z.sugar.Debugf(format, v...) }
func (z *Zap) Info(v ...any)                  { z.sugar.Info(v...) }
func (z *Zap) Infof(format string, v ...any)  { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(v ...any)                  { z.sugar.Warn(v...) }
func (z *Zap) Warnf(format string, v ...any)  { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(v ...any)                 { z.sugar.Error(v...) }
func (z *Zap) Errorf(format string, v ...any) { z.sugar.Errorf(format, v...) }

// Enabled implements Logger
func (z *Zap) Enabled(level Level) bool {
	return level.valid() && z.sugar.Desugar().Core().Enabled(level.zap())
}

// With implements Logger. Pairs follow zap's sugared conventions.
func (z *Zap) With(keyValues ...any) Logger {
	if len(keyValues) == 0 {
		return z
	}
	return &Zap{sugar: z.sugar.With(keyValues...), writers: z.writers}
}

// StdLogger implements Logger
func (z *Zap) StdLogger() *golog.Logger {
	std, err := zap.NewStdLogAt(z.sugar.Desugar(), zapcore.ErrorLevel)
	if err != nil {
		return discardStd
	}
	return std
}

// Flush syncs the file writers. Terminals are skipped since syncing them
// fails on most platforms.
func (z *Zap) Flush() error {
	var err error
	for _, writer := range z.writers {
		if file, ok := writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
			err = multierr.Append(err, file.Sync())
		}
	}
	return err
}
