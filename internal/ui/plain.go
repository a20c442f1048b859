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

package ui

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/deployah-dev/activation/internal/activation"
)

// PlainRenderer logs widget state transitions instead of drawing the widget.
// It is used when no terminal is attached.
type PlainRenderer struct {
	title  string
	logger *log.Logger
	last   *activation.Signals
}

// NewPlainRenderer returns a renderer writing to logger.
func NewPlainRenderer(title string, logger *log.Logger) *PlainRenderer {
	return &PlainRenderer{title: title, logger: logger}
}

// Run renders states from source until it is closed or ctx is done.
func (r *PlainRenderer) Run(ctx context.Context, source <-chan activation.Signals) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-source:
			if !ok {
				return nil
			}
			r.Render(s)
		}
	}
}

// Render logs what changed since the previous state.
func (r *PlainRenderer) Render(s activation.Signals) {
	prev := r.last
	r.last = &s

	if prev == nil {
		r.logger.Info(HeaderText(r.title, s.Percentage),
			"visible", s.Visible, "progress", progressValue(s), "steps", len(s.Steps))
		return
	}

	if s.Visible != prev.Visible {
		if s.Visible {
			r.logger.Info("Widget shown", "progress", progressValue(s))
		} else {
			r.logger.Info("Widget hidden", "progress", progressValue(s))
		}
	}

	switch {
	case s.Loaded && !prev.Loaded:
		r.logger.Info("Checklist loaded", "progress", progressValue(s))
	case !s.Loaded && prev.Loaded:
		r.logger.Warn("Completion unavailable")
	case s.Loaded && s.Percentage != prev.Percentage:
		r.logger.Info("Progress", "from", FormatPercentage(prev.Percentage), "to", FormatPercentage(s.Percentage))
	}

	if s.Pulse != prev.Pulse && s.Animating {
		r.logger.Info("Celebrating progress", "pulse", s.Pulse, "progress", progressValue(s))
	}
	if prev.Animating && !s.Animating {
		r.logger.Debug("Animation finished", "pulse", s.Pulse)
	}
	if s.Sticky && !prev.Sticky {
		r.logger.Debug("Keeping widget visible after progress")
	}
	if s.ForceShow != prev.ForceShow {
		r.logger.Debug("Always show changed", "enabled", s.ForceShow)
	}
}

func progressValue(s activation.Signals) string {
	if !s.Loaded {
		return "loading"
	}
	return FormatPercentage(s.Percentage)
}
