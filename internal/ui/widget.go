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
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deployah-dev/activation/internal/activation"
)

var (
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBrightWhite)).
			Bold(true)
	animatedButtonStyle = buttonStyle.
				Foreground(lipgloss.Color(ColorProgressEnd))
	popoverStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBrightGray)).
			Padding(0, 1)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightCyan))
)

type signalsMsg activation.Signals

type signalsClosedMsg struct{}

type frameMsg time.Time

// Widget is the bubbletea model of the activation widget: a button line
// with a progress indicator, confetti while animating and a checklist popover.
type Widget struct {
	title    string
	source   <-chan activation.Signals
	signals  activation.Signals
	keys     KeyMap
	help     help.Model
	progress ProgressIndicator
	spinner  spinner.Model
	spinning bool
	rng      *rand.Rand

	bursts []*Burst
	pulse  int

	open     bool
	cursor   int
	expanded string
	width    int
}

// WidgetOption configures a Widget.
type WidgetOption func(*Widget)

// WithRand sets the random source used for confetti.
func WithRand(rng *rand.Rand) WidgetOption {
	return func(w *Widget) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// WithInitialSignals sets the state shown before the first update arrives.
func WithInitialSignals(s activation.Signals) WidgetOption {
	return func(w *Widget) {
		w.signals = s
		w.pulse = s.Pulse
	}
}

// WithOpen starts the widget with the popover open.
func WithOpen(open bool) WidgetOption {
	return func(w *Widget) {
		w.open = open
	}
}

// NewWidget creates a widget titled title that renders the states received
// from source. The program quits when source is closed.
func NewWidget(title string, source <-chan activation.Signals, opts ...WidgetOption) Widget {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	w := Widget{
		title:    title,
		source:   source,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: NewProgressIndicator(ProgressBarWidth),
		spinner:  s,
		spinning: true,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// Init starts listening for signals and the loading spinner.
func (w Widget) Init() tea.Cmd {
	return tea.Batch(waitForSignals(w.source), w.spinner.Tick)
}

// Update handles signals, animation frames and key presses.
func (w Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signalsMsg:
		cmd := w.applySignals(activation.Signals(msg))
		return w, tea.Batch(cmd, waitForSignals(w.source))

	case signalsClosedMsg:
		return w, tea.Quit

	case frameMsg:
		return w.advanceConfetti()

	case spinner.TickMsg:
		if w.signals.Loaded {
			w.spinning = false
			return w, nil
		}
		w.spinning = true
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.help.Width = msg.Width
		return w, nil

	case tea.KeyMsg:
		return w.handleKey(msg)
	}

	return w, nil
}

func (w *Widget) applySignals(s activation.Signals) tea.Cmd {
	wasLoaded := w.signals.Loaded
	w.signals = s
	w.clampCursor()

	var cmds []tea.Cmd
	if s.Pulse != w.pulse {
		w.pulse = s.Pulse
		if s.Animating {
			if len(w.bursts) == 0 {
				cmds = append(cmds, nextFrame())
			}
			w.bursts = []*Burst{
				NewBurst(DefaultConfettiConfig(LeftBurstAngle), w.rng),
				NewBurst(DefaultConfettiConfig(RightBurstAngle), w.rng),
			}
		}
	}

	if wasLoaded && !s.Loaded && !w.spinning {
		w.spinning = true
		cmds = append(cmds, w.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (w Widget) advanceConfetti() (tea.Model, tea.Cmd) {
	if len(w.bursts) == 0 {
		return w, nil
	}

	done := true
	for _, b := range w.bursts {
		b.Step(FrameInterval)
		done = done && b.Done()
	}
	if done {
		w.bursts = nil
		return w, nil
	}
	return w, nextFrame()
}

func (w Widget) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Quit):
		return w, tea.Quit
	case !w.signals.Visible:
		return w, nil
	case key.Matches(msg, w.keys.Toggle):
		w.open = !w.open
	case !w.open:
		return w, nil
	case key.Matches(msg, w.keys.Close):
		w.open = false
	case key.Matches(msg, w.keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(msg, w.keys.Down):
		if w.cursor < len(w.signals.Steps)-1 {
			w.cursor++
		}
	case key.Matches(msg, w.keys.Expand):
		if w.cursor < len(w.signals.Steps) {
			id := w.signals.Steps[w.cursor].ID
			if w.expanded == id {
				w.expanded = ""
			} else {
				w.expanded = id
			}
		}
	}
	return w, nil
}

func (w *Widget) clampCursor() {
	if w.cursor >= len(w.signals.Steps) {
		w.cursor = max(0, len(w.signals.Steps)-1)
	}
}

// View renders the widget. A hidden widget renders nothing.
func (w Widget) View() string {
	if !w.signals.Visible {
		return ""
	}

	label := buttonStyle.Render(ButtonLabel)
	if w.signals.Animating {
		label = animatedButtonStyle.Render(ButtonLabel)
	}
	sections := []string{label + "  " + w.progress.View(w.signals.Percentage)}

	if w.animating() {
		width := w.width
		if width <= 0 {
			width = PopoverWidth
		}
		sections = append(sections, RenderConfetti(width, ConfettiRows,
			PlacedBurst{Burst: w.bursts[0], Column: 0},
			PlacedBurst{Burst: w.bursts[1], Column: lipgloss.Width(label)},
		))
	}

	if w.open {
		sections = append(sections, w.popoverView())
	}

	sections = append(sections, w.help.ShortHelpView(w.keys.ShortHelp(w.open)))
	return strings.Join(sections, "\n")
}

func (w Widget) popoverView() string {
	header := RenderHeader(w.title, w.signals.Percentage)

	var body string
	if w.signals.Loaded {
		body = RenderChecklist(ChecklistView{
			Steps:      w.signals.Steps,
			Completion: w.signals.Completion,
			Cursor:     w.cursor,
			Expanded:   w.expanded,
			Width:      PopoverWidth - 4,
		})
	} else {
		body = w.spinner.View() + " " + LoadingLabel
	}

	return popoverStyle.Width(PopoverWidth).Render(header + "\n\n" + body)
}

func (w Widget) animating() bool {
	return len(w.bursts) == 2
}

// Open reports whether the popover is open.
func (w Widget) Open() bool { return w.open }

// Expanded returns the id of the expanded step, if any.
func (w Widget) Expanded() string { return w.expanded }

// Signals returns the last state received.
func (w Widget) Signals() activation.Signals { return w.signals }

func waitForSignals(source <-chan activation.Signals) tea.Cmd {
	if source == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-source
		if !ok {
			return signalsClosedMsg{}
		}
		return signalsMsg(s)
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// NewSignalsMsg wraps a state so it can be sent to a running widget program.
func NewSignalsMsg(s activation.Signals) tea.Msg {
	return signalsMsg(s)
}
