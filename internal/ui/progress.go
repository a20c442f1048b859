package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var percentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightWhite))

// ProgressIndicator draws the completion percentage as a bar followed by the number.
type ProgressIndicator struct {
	bar progress.Model
}

// NewProgressIndicator returns an indicator of the given bar width.
func NewProgressIndicator(width int) ProgressIndicator {
	bar := progress.New(
		progress.WithScaledGradient(ColorProgressStart, ColorProgressEnd),
		progress.WithoutPercentage(),
	)
	bar.Width = width
	return ProgressIndicator{bar: bar}
}

// View renders pct, a value in [0, 100]. An unloaded completion renders as 0%.
func (p ProgressIndicator) View(pct float64) string {
	ratio := math.Max(0, math.Min(1, pct/100))
	label := percentStyle.Render(FormatPercentage(pct))
	return lipgloss.JoinHorizontal(lipgloss.Left, p.bar.ViewAs(ratio), " ", label)
}

// FormatPercentage renders pct rounded to a whole percent.
func FormatPercentage(pct float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(pct)))
}

// ProgressTracker tracks progress through a multi-step form.
type ProgressTracker struct {
	currentStep int
	steps       []string
}

// NewProgressTracker creates a tracker over the named form steps.
func NewProgressTracker(steps ...string) *ProgressTracker {
	return &ProgressTracker{steps: steps}
}

// NextStep advances to the next form step.
func (pt *ProgressTracker) NextStep() { pt.currentStep++ }

// GetCurrentStep describes the current form step.
func (pt *ProgressTracker) GetCurrentStep() string {
	if pt.currentStep >= len(pt.steps) {
		return "Complete"
	}
	return fmt.Sprintf("Step %d/%d: %s", pt.currentStep+1, len(pt.steps), pt.steps[pt.currentStep])
}
