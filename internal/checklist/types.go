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
	"slices"

	"github.com/deployah-dev/activation/internal/activation"
)

// Checklist is the parsed checklist file.
type Checklist struct {
	APIVersion string            `json:"apiVersion" yaml:"apiVersion"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
	Variables  map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Steps      []activation.Step `json:"steps" yaml:"steps"`
}

// IDs returns the step ids in checklist order.
func (c *Checklist) IDs() []string {
	return activation.StepIDs(c.Steps)
}

// Step returns the step with the given id.
func (c *Checklist) Step(id string) (activation.Step, bool) {
	i := slices.IndexFunc(c.Steps, func(s activation.Step) bool { return s.ID == id })
	if i < 0 {
		return activation.Step{}, false
	}
	return c.Steps[i], true
}

// HasStep reports whether the checklist contains a step with the given id.
func (c *Checklist) HasStep(id string) bool {
	_, ok := c.Step(id)
	return ok
}
