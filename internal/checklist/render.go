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
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// detailData is the template context of a step detail.
type detailData struct {
	ID        string
	Title     string
	Checklist string
	Vars      map[string]string
}

// RenderDetails executes each step detail as a text/template with the sprig
// function map. Details without template actions are left untouched.
func RenderDetails(c *Checklist) error {
	for i := range c.Steps {
		step := &c.Steps[i]
		if !strings.Contains(step.Detail, "{{") {
			continue
		}

		tmpl, err := template.New(step.ID).
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=zero").
			Parse(step.Detail)
		if err != nil {
			return fmt.Errorf("failed to parse detail of step %q: %w", step.ID, err)
		}

		var sb strings.Builder
		err = tmpl.Execute(&sb, detailData{
			ID:        step.ID,
			Title:     step.Title,
			Checklist: c.Title,
			Vars:      c.Variables,
		})
		if err != nil {
			return fmt.Errorf("failed to render detail of step %q: %w", step.ID, err)
		}
		step.Detail = sb.String()
	}
	return nil
}
