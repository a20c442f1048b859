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

// Package activation tracks onboarding progress and decides when the
// activation widget is shown and when it celebrates.
package activation

import "maps"

// Step is a single onboarding checklist item.
type Step struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Completion maps step IDs to their done state. A nil Completion means the
// state has not been loaded yet, which is different from an empty one.
type Completion map[string]bool

// Loaded reports whether the completion state is known.
func (c Completion) Loaded() bool { return c != nil }

// Done reports whether the given step is complete.
func (c Completion) Done(id string) bool { return c[id] }

// Clone returns an independent copy, preserving nil.
func (c Completion) Clone() Completion {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}

// StepIDs returns the IDs of steps in order.
func StepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}
