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

package responder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/tochemey/linda/log"
	"github.com/tochemey/linda/tuple"
	"github.com/tochemey/linda/value"
)

// ClockName is the source actor of Time tuples
const ClockName = "Clock"

// DefaultTickInterval is the interval between two Time broadcasts
const DefaultTickInterval = time.Second

const clockJobKey = "linda-clock"

// Clock broadcasts a Time tuple carrying the epoch seconds on every tick
type Clock struct {
	mu        sync.Mutex
	emitter   Emitter
	interval  time.Duration
	scheduler quartz.Scheduler
	started   *atomic.Bool
	ticks     *atomic.Int64
	logger    log.Logger
}

// NewClock creates a Clock emitting through emitter every interval.
// A non positive interval means DefaultTickInterval.
func NewClock(emitter Emitter, interval time.Duration, logger log.Logger) (*Clock, error) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	scheduler, err := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	if err != nil {
		return nil, fmt.Errorf("failed to create the clock scheduler: %w", err)
	}
	return &Clock{
		emitter:   emitter,
		interval:  interval,
		scheduler: scheduler,
		started:   atomic.NewBool(false),
		ticks:     atomic.NewInt64(0),
		logger:    logger,
	}, nil
}

// Start schedules the ticks
func (x *Clock) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.started.Load() {
		return nil
	}

	x.scheduler.Start(ctx)
	tick := job.NewFunctionJob[int64](func(context.Context) (int64, error) {
		return x.ticks.Inc(), x.Tick()
	})
	detail := quartz.NewJobDetail(tick, quartz.NewJobKey(clockJobKey))
	if err := x.scheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(x.interval)); err != nil {
		x.scheduler.Stop()
		return fmt.Errorf("failed to schedule the clock: %w", err)
	}
	x.started.Store(true)
	x.logger.Infof("clock ticking every %s", x.interval)
	return nil
}

// Tick broadcasts one Time tuple
func (x *Clock) Tick() error {
	t := tuple.New(tuple.TypeTime)
	t.SetSourceActor(ClockName)
	t.Set(FieldNow, value.Number(float64(time.Now().Unix())))
	if err := x.emitter.Route(t); err != nil {
		x.logger.Warnf("failed to broadcast time: %v", err)
		return err
	}
	return nil
}

// Ticks returns the number of scheduled ticks run so far
func (x *Clock) Ticks() int64 {
	return x.ticks.Load()
}

// Stop stops the ticks and waits for a running one until ctx is done
func (x *Clock) Stop(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started.Load() {
		return
	}
	_ = x.scheduler.Clear()
	x.scheduler.Stop()
	x.scheduler.Wait(ctx)
	x.started.Store(false)
	x.logger.Info("clock stopped")
}
