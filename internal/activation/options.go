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
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for pulse timers.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithDuration overrides the pulse duration.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithInitialCompletion sets the completion known when the widget mounts.
func WithInitialCompletion(completion Completion) Option {
	return func(c *Controller) {
		c.previous = completion.Clone()
	}
}

// WithForceShow keeps the widget visible regardless of progress.
func WithForceShow(show bool) Option {
	return func(c *Controller) {
		c.forceShow = show
	}
}

// WithLogger sets the logger for pulse and progress events.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets a recorder for snapshot and pulse counters.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(c *Controller) {
		c.metrics = metrics
	}
}
