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


package runtime

import (
	"context"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"k8s.io/utils/clock"
)

// RuntimeProvider is the contract commands depend on for per-invocation services.
type RuntimeProvider interface {
	// Checklist loads and returns the parsed checklist
	Checklist(ctx context.Context) (*checklist.Checklist, error)

	// Store returns the completion store
	Store() (StateStore, error)

	// Clock returns the clock used for timers and timestamps
	Clock() clock.WithTicker

	// Close performs cleanup of resources held by the runtime
	Close() error
}

// ChecklistLoader reads and writes checklist files.
type ChecklistLoader interface {
	// Load reads, validates and renders a checklist file
	Load(path, envFile string) (*checklist.Checklist, error)

	// Save writes a checklist to a file
	Save(c *checklist.Checklist, path string) error
}

// StateStore persists which steps are done.
type StateStore interface {
	Path() string
	Read() (*checklist.State, error)
	Completion() (activation.Completion, error)
	MarkSteps(c *checklist.Checklist, ids []string, done bool) (*checklist.State, error)
	Reset() error
}

// LoggerProvider defines the interface for logging operations.
type LoggerProvider interface {
	// Debug logs a debug-level message
	Debug(msg string, keyvals ...any)

	// Info logs an info-level message
	Info(msg string, keyvals ...any)

	// Warn logs a warning-level message
	Warn(msg string, keyvals ...any)

	// Error logs an error-level message
	Error(msg string, keyvals ...any)

	// With returns a new logger with the given key-value pairs
	With(keyvals ...any) LoggerProvider
}

var (
	_ StateStore      = (*checklist.Store)(nil)
	_ ChecklistLoader = fileLoader{}
	_ RuntimeProvider = (*Runtime)(nil)
)
