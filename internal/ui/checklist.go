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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deployah-dev/activation/internal/activation"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightCyan))
	instructionsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray))
	doneMarkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)).Bold(true)
	todoMarkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray))
	doneTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)).Strikethrough(true)
	todoTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightWhite))
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightCyan)).Bold(true)
	detailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)).PaddingLeft(4)
)

const (
	doneMark = "✓"
	todoMark = "○"
)

// HeaderText is the popover greeting for the given percentage.
func HeaderText(title string, pct float64) string {
	if pct > 0 {
		return HeaderInProgress
	}
	return fmt.Sprintf(HeaderWelcome, title)
}

// RenderHeader renders the greeting and the instructions line.
func RenderHeader(title string, pct float64) string {
	return headerStyle.Render(HeaderText(title, pct)) + "\n" + instructionsStyle.Render(HeaderInstructions)
}

// ChecklistView is the input of RenderChecklist.
type ChecklistView struct {
	Steps      []activation.Step
	Completion activation.Completion
	// Cursor is the highlighted step index, or -1.
	Cursor int
	// Expanded is the id of the step whose detail is shown.
	Expanded string
	Width    int
}

// RenderChecklist renders one line per step, plus the detail of the
// expanded step below its title.
func RenderChecklist(v ChecklistView) string {
	lines := make([]string, 0, len(v.Steps)+1)
	for i, step := range v.Steps {
		pointer := "  "
		if i == v.Cursor {
			pointer = cursorStyle.Render("› ")
		}

		mark, title := todoMarkStyle.Render(todoMark), todoTitleStyle.Render(step.Title)
		if v.Completion.Done(step.ID) {
			mark, title = doneMarkStyle.Render(doneMark), doneTitleStyle.Render(step.Title)
		}
		lines = append(lines, pointer+mark+" "+title)

		if step.ID == v.Expanded && step.Detail != "" {
			style := detailStyle
			if v.Width > 0 {
				style = style.Width(v.Width)
			}
			lines = append(lines, style.Render(step.Detail))
		}
	}
	return strings.Join(lines, "\n")
}
