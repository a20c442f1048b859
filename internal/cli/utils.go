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


package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"k8s.io/utils/ptr"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/runtime"
	"github.com/deployah-dev/activation/internal/ui"
)

// StepViewModel is one checklist row as shown by `status`.
type StepViewModel struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// StatusViewModel represents the curated output structure for json
// matching what is displayed in table mode.
type StatusViewModel struct {
	Title      string          `json:"title" yaml:"title"`
	Percentage *float64        `json:"percentage" yaml:"percentage"`
	Done       int             `json:"done" yaml:"done"`
	Total      int             `json:"total" yaml:"total"`
	UpdatedAt  string          `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Age        string          `json:"age,omitempty" yaml:"age,omitempty"`
	Steps      []StepViewModel `json:"steps" yaml:"steps"`
}

// BuildStatus converts a checklist and its stored state to a view model.
// A nil state leaves the percentage undefined and every step unknown.
func BuildStatus(c *checklist.Checklist, state *checklist.State, now time.Time) StatusViewModel {
	vm := StatusViewModel{
		Title: c.Title,
		Total: len(c.Steps),
		Steps: make([]StepViewModel, 0, len(c.Steps)),
	}

	var completion activation.Completion
	if state != nil {
		completion = activation.Completion(state.Completed)
		if !state.UpdatedAt.IsZero() {
			vm.UpdatedAt = state.UpdatedAt.Format(time.RFC3339)
			vm.Age = humanize.RelTime(state.UpdatedAt, now, "ago", "from now")
		}
	}

	if pct, ok := activation.PercentageDone(c.Steps, completion); ok {
		vm.Percentage = ptr.To(pct)
	}

	for _, step := range c.Steps {
		status := ui.StatusUnknown
		if completion.Loaded() {
			status = ui.StatusPending
			if completion.Done(step.ID) {
				status = ui.StatusDone
				vm.Done++
			}
		}
		vm.Steps = append(vm.Steps, StepViewModel{
			ID:     step.ID,
			Title:  step.Title,
			Status: status,
			Detail: step.Detail,
		})
	}

	return vm
}

// Rows converts the step view models to table rows.
func (vm StatusViewModel) Rows() []ui.Row {
	rows := make([]ui.Row, 0, len(vm.Steps))
	for _, s := range vm.Steps {
		rows = append(rows, ui.Row{
			"id":     s.ID,
			"title":  s.Title,
			"status": s.Status,
			"detail": s.Detail,
		})
	}
	return rows
}

// Summary is the one-line progress summary printed above the table.
func (vm StatusViewModel) Summary() string {
	if vm.Percentage == nil {
		return fmt.Sprintf("%s: no progress recorded yet (%d steps)", vm.Title, vm.Total)
	}
	pct := ui.GetPercentageStyle(*vm.Percentage).Render(ui.FormatPercentage(*vm.Percentage))
	summary := fmt.Sprintf("%s: %s complete (%d/%d)", vm.Title, pct, vm.Done, vm.Total)
	if vm.Age != "" {
		summary += ", updated " + vm.Age
	}
	return summary
}

// GetTableColumns returns the status table columns; detail is only shown when detailed.
func GetTableColumns(detailed bool) []ui.Column {
	return []ui.Column{
		{
			Title:    "ID",
			Key:      "id",
			MinWidth: 8,
			MaxWidth: 24,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightWhite))
			},
			Condition: true,
		},
		{
			Title:    "STEP",
			Key:      "title",
			MinWidth: 10,
			MaxWidth: 40,
			Truncate: true,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightCyan))
			},
			Condition: true,
		},
		{
			Title: "STATUS",
			Key:   "status",
			Width: 8,
			StyleFunc: func(value string) lipgloss.Style {
				return ui.GetStepStatusStyle(value)
			},
			Condition: true,
		},
		{
			Title:    "DETAIL",
			Key:      "detail",
			MinWidth: 10,
			MaxWidth: 60,
			Truncate: true,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray))
			},
			Condition: detailed,
		},
	}
}

// ColorizeJSONWithChroma applies syntax highlighting to JSON using chroma
func ColorizeJSONWithChroma(data []byte) (string, error) {
	if !ui.IsTerminal() {
		return string(data), nil
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to tokenize JSON: %w", err)
	}

	var result strings.Builder
	if err := formatter.Format(&result, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return result.String(), nil
}

// GetRuntime returns the runtime stored in ctx.
// This is a common utility function used across multiple commands.
func GetRuntime(ctx context.Context) (*runtime.Runtime, error) {
	rt := runtime.FromRuntime(ctx)
	if rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}
	return rt, nil
}

// LoadChecklistAndStore returns the runtime's checklist and completion store.
func LoadChecklistAndStore(ctx context.Context) (*checklist.Checklist, runtime.StateStore, error) {
	rt, err := GetRuntime(ctx)
	if err != nil {
		return nil, nil, err
	}

	c, err := rt.Checklist(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, err := rt.Store()
	if err != nil {
		return nil, nil, err
	}
	return c, store, nil
}

// ValidateOutputFormat ensures format is one of OutputFormats.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(OutputFormats, ", "))
}
