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
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramOption configures the widget program.
type ProgramOption func(*programOptions)

type programOptions struct {
	input     io.Reader
	output    io.Writer
	altScreen bool
}

// WithInput sets the program input.
func WithInput(r io.Reader) ProgramOption {
	return func(o *programOptions) {
		o.input = r
	}
}

// WithOutput sets the program output.
func WithOutput(w io.Writer) ProgramOption {
	return func(o *programOptions) {
		o.output = w
	}
}

// WithAltScreen enables or disables the alternate screen buffer.
func WithAltScreen(enabled bool) ProgramOption {
	return func(o *programOptions) {
		o.altScreen = enabled
	}
}

// RunWidget runs the widget until the user quits, its signal source closes
// or ctx is cancelled. Cancellation is not reported as an error.
func RunWidget(ctx context.Context, widget Widget, opts ...ProgramOption) error {
	var cfg programOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	teaOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.input != nil {
		teaOpts = append(teaOpts, tea.WithInput(cfg.input))
	}
	if cfg.output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(cfg.output))
	}
	if cfg.altScreen {
		teaOpts = append(teaOpts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(widget, teaOpts...).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
