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


// Package runtime carries per-invocation state for the activation commands.
package runtime

import (
	"github.com/charmbracelet/log"

	"github.com/deployah-dev/activation/internal/checklist"
)

// LoggerAdapter adapts the charmbracelet log.Logger to the LoggerProvider interface.
type LoggerAdapter struct {
	logger *log.Logger
}

// NewLoggerAdapter wraps logger as a LoggerProvider.
func NewLoggerAdapter(logger *log.Logger) LoggerProvider {
	return &LoggerAdapter{logger: logger}
}

// Debug implements LoggerProvider.
func (la *LoggerAdapter) Debug(msg string, keyvals ...any) {
	la.logger.Debug(msg, keyvals...)
}

// Info implements LoggerProvider.
func (la *LoggerAdapter) Info(msg string, keyvals ...any) {
	la.logger.Info(msg, keyvals...)
}

// Warn implements LoggerProvider.
func (la *LoggerAdapter) Warn(msg string, keyvals ...any) {
	la.logger.Warn(msg, keyvals...)
}

// Error implements LoggerProvider.
func (la *LoggerAdapter) Error(msg string, keyvals ...any) {
	la.logger.Error(msg, keyvals...)
}

// With implements LoggerProvider.
func (la *LoggerAdapter) With(keyvals ...any) LoggerProvider {
	return &LoggerAdapter{logger: la.logger.With(keyvals...)}
}

// fileLoader is the ChecklistLoader backed by the checklist package.
type fileLoader struct{}

func (fileLoader) Load(path, envFile string) (*checklist.Checklist, error) {
	return checklist.Load(path, envFile)
}

func (fileLoader) Save(c *checklist.Checklist, path string) error {
	return checklist.Save(c, path)
}
