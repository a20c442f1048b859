// Copyright 2025 The Deployah Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package activation

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"
)

// AnimationDuration is how long one celebration pulse lasts.
const AnimationDuration = 3260 * time.Millisecond

// subscriberBuffer is the number of undelivered signals kept per subscriber
// before the oldest one is dropped.
const subscriberBuffer = 32

// ErrClosed is returned when a controller is used after Close.
var ErrClosed = errors.New("activation controller is closed")

// Signals is the derived UI state published by the controller.
// Completion and Steps are shared with the controller and must not be modified.
type Signals struct {
	Visible    bool
	Animating  bool
	Sticky     bool
	ForceShow  bool
	Percentage float64
	Loaded     bool
	// Pulse counts started pulses; a change means the animation should restart.
	Pulse      int
	Completion Completion
	Steps      []Step
}

// MetricsRecorder receives controller metrics.
type MetricsRecorder interface {
	Metric(ctx context.Context, name string, value float64, tags map[string]string)
}

type request struct {
	apply func()
	ack   chan struct{}
}

// Controller turns a stream of completion snapshots into Signals.
//
// All state transitions run on a single event loop goroutine started by New.
// Pulses are serialized: a progress increase during a running pulse is
// queued and starts when the running one ends.
type Controller struct {
	clock    clock.Clock
	duration time.Duration
	logger   *log.Logger
	metrics  MetricsRecorder

	// Owned by the event loop.
	steps     []Step
	forceShow bool
	previous  Completion
	sticky    bool
	animating bool
	queued    int
	pulse     int
	timer     clock.Timer

	requests  chan request
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu      sync.RWMutex
	signals Signals
	subs    []chan Signals
	closed  bool
}

// New creates a controller for the given steps and starts its event loop.
// The initial completion (WithInitialCompletion) is the baseline for the
// first comparison and never counts as progress on its own.
func New(steps []Step, opts ...Option) *Controller {
	c := &Controller{
		clock:    clock.RealClock{},
		duration: AnimationDuration,
		logger:   log.New(io.Discard),
		steps:    slices.Clone(steps),
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.publish()

	go c.run(ctx)

	return c
}

// Push delivers a new completion snapshot and returns once the controller
// has processed it.
func (c *Controller) Push(ctx context.Context, completion Completion) error {
	next := completion.Clone()
	return c.dispatch(ctx, func() { c.observe(next) })
}

// SetForceShow updates the always-show override.
func (c *Controller) SetForceShow(show bool) error {
	return c.dispatch(context.Background(), func() {
		c.forceShow = show
		c.publish()
	})
}

// SetSteps replaces the checklist steps. It is not a progress event.
func (c *Controller) SetSteps(steps []Step) error {
	next := slices.Clone(steps)
	return c.dispatch(context.Background(), func() {
		c.steps = next
		c.publish()
	})
}

// Signals returns the most recently published state.
func (c *Controller) Signals() Signals {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signals
}

// Subscribe returns a channel receiving every published state, starting with
// the current one. Slow readers lose the oldest undelivered states. The
// channel is closed by Close.
func (c *Controller) Subscribe() <-chan Signals {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Signals, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch
	}
	ch <- c.signals
	c.subs = append(c.subs, ch)
	return ch
}

// Close stops the event loop and any pending pulse timer, then closes all
// subscriptions. No state changes after Close returns. It is safe to call
// more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done

		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		for _, ch := range c.subs {
			close(ch)
		}
		c.subs = nil
	})
	return nil
}

func (c *Controller) dispatch(ctx context.Context, apply func()) error {
	req := request{apply: apply, ack: make(chan struct{})}
	select {
	case c.requests <- req:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-req.ack
	return nil
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	defer c.stopTimer()

	for {
		var expired <-chan time.Time
		if c.timer != nil {
			expired = c.timer.C()
		}

		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			req.apply()
			close(req.ack)
		case <-expired:
			c.timer = nil
			c.endPulse()
		}
	}
}

// observe compares the new snapshot against the previous one.
func (c *Controller) observe(next Completion) {
	prev := c.previous
	c.previous = next
	c.record("activation.snapshots.count", 1)

	if prev != nil && next != nil {
		before, _ := PercentageDone(c.steps, prev)
		after, _ := PercentageDone(c.steps, next)
		if after > before {
			c.logger.Debug("Progress increased", "from", before, "to", after)
			c.sticky = true
			c.queued++
			if c.timer == nil {
				c.startPulse()
			}
		}
	}

	c.publish()
}

func (c *Controller) startPulse() {
	c.queued--
	c.pulse++
	c.animating = true
	c.timer = c.clock.NewTimer(c.duration)
	c.record("activation.pulses.count", 1)
	c.logger.Debug("Animation pulse started", "pulse", c.pulse, "queued", c.queued)
}

func (c *Controller) endPulse() {
	c.animating = false
	c.logger.Debug("Animation pulse finished", "pulse", c.pulse)
	c.publish()

	if c.queued > 0 {
		c.startPulse()
		c.publish()
	}
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) publish() {
	pct, loaded := PercentageDone(c.steps, c.previous)
	s := Signals{
		Visible:    IsVisible(c.forceShow, c.sticky, c.animating, pct, loaded),
		Animating:  c.animating,
		Sticky:     c.sticky,
		ForceShow:  c.forceShow,
		Percentage: pct,
		Loaded:     loaded,
		Pulse:      c.pulse,
		Completion: c.previous,
		Steps:      c.steps,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = s
	for _, ch := range c.subs {
		offer(ch, s)
	}
}

func (c *Controller) record(name string, value float64) {
	if c.metrics == nil {
		return
	}
	c.metrics.Metric(context.Background(), name, value, map[string]string{"component": "controller"})
}

// offer sends s without blocking, dropping the oldest queued value if the
// channel is full. The controller is the only sender.
func offer(ch chan Signals, s Signals) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
