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

package checklist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/clock"

	"github.com/deployah-dev/activation/internal/activation"
)

// State is the on-disk completion record.
type State struct {
	Completed map[string]bool `yaml:"completed"`
	UpdatedAt time.Time       `yaml:"updatedAt,omitempty"`
}

// Store reads and writes the completion file.
type Store struct {
	path  string
	clock clock.PassiveClock
}

// NewStore returns a store for the completion file at path.
func NewStore(path string, clk clock.PassiveClock) *Store {
	if path == "" {
		path = DefaultStatePath
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{path: path, clock: clk}
}

// Path returns the completion file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored state, or nil when the file does not exist yet.
func (s *Store) Read() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read completion file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse completion file %s: %w", s.path, err)
	}
	if state.Completed == nil {
		state.Completed = make(map[string]bool)
	}
	return &state, nil
}

// Completion returns the stored completion. It is nil (not loaded) when the
// file does not exist.
func (s *Store) Completion() (activation.Completion, error) {
	state, err := s.Read()
	if err != nil || state == nil {
		return nil, err
	}
	return activation.Completion(state.Completed), nil
}

// MarkSteps sets the done state of the given steps. Ids that are not part of
// the checklist are rejected and nothing is written.
func (s *Store) MarkSteps(c *Checklist, ids []string, done bool) (*State, error) {
	var unknown []string
	for _, id := range ids {
		if !c.HasStep(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown step ids: %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(c.IDs(), ", "))
	}

	state, err := s.Read()
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &State{Completed: make(map[string]bool)}
	}

	for _, id := range ids {
		if done {
			state.Completed[id] = true
		} else {
			delete(state.Completed, id)
		}
	}

	if err := s.Write(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset clears all completed steps. The file is kept so the completion stays
// loaded at 0%.
func (s *Store) Reset() error {
	return s.Write(&State{Completed: make(map[string]bool)})
}

// Write stores state, stamping UpdatedAt. The file is replaced atomically.
func (s *Store) Write(state *State) error {
	state.UpdatedAt = s.clock.Now().UTC()

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal completion state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary completion file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write completion file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write completion file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace completion file %s: %w", s.path, err)
	}
	return nil
}

// CompletedIDs returns the checklist ids marked done in state, in checklist order.
func CompletedIDs(c *Checklist, state *State) []string {
	if state == nil {
		return nil
	}
	return slices.DeleteFunc(c.IDs(), func(id string) bool { return !state.Completed[id] })
}
