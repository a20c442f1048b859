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
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/deployah-dev/activation/internal/activation"
)

// Burst directions, in degrees counter-clockwise from the positive x axis.
// Both point downwards, away from the button line.
const (
	LeftBurstAngle  = 210
	RightBurstAngle = 330
)

const (
	// physicsTick is the step the particle physics is defined for.
	physicsTick = time.Second / 60
	// gravity is the downward pull per physics tick, in pixels.
	gravity = 3.0
	// cellWidth and cellHeight convert pixels to terminal cells.
	cellWidth  = 8.0
	cellHeight = 16.0
)

var confettiGlyphs = []string{"▪", "•", "◆", "✦", "▴"}

// ConfettiConfig describes one confetti burst.
type ConfettiConfig struct {
	Angle         float64
	Spread        float64
	StartVelocity float64
	ElementCount  int
	DragFriction  float64
	Duration      time.Duration
	// Delay is how long the burst waits before launching.
	Delay  time.Duration
	Colors []string
}

// DefaultConfettiConfig returns the widget's burst configuration for angle.
func DefaultConfettiConfig(angle float64) ConfettiConfig {
	return ConfettiConfig{
		Angle:         angle,
		Spread:        68,
		StartVelocity: 12,
		ElementCount:  81,
		DragFriction:  0.09,
		Duration:      activation.AnimationDuration,
		Delay:         20 * time.Millisecond,
		Colors:        []string{"#a864fd", "#29cdff", "#78ff44", "#ff718d", "#fdff6a"},
	}
}

type particle struct {
	x, y     float64
	angle    float64
	velocity float64
	color    string
	glyph    string
}

// Burst is a set of particles launched from a single origin.
type Burst struct {
	cfg       ConfettiConfig
	particles []particle
	elapsed   time.Duration
	simulated time.Duration
}

// NewBurst launches a burst. rng decides each particle's direction, speed and glyph.
func NewBurst(cfg ConfettiConfig, rng *rand.Rand) *Burst {
	angle := cfg.Angle * math.Pi / 180
	spread := cfg.Spread * math.Pi / 180

	particles := make([]particle, cfg.ElementCount)
	for i := range particles {
		p := particle{
			angle:    angle + (0.5*spread - rng.Float64()*spread),
			velocity: cfg.StartVelocity/2 + rng.Float64()*cfg.StartVelocity,
			glyph:    confettiGlyphs[rng.IntN(len(confettiGlyphs))],
		}
		if len(cfg.Colors) > 0 {
			p.color = cfg.Colors[i%len(cfg.Colors)]
		}
		particles[i] = p
	}

	return &Burst{cfg: cfg, particles: particles}
}

// Step advances the burst by dt.
func (b *Burst) Step(dt time.Duration) {
	b.elapsed += dt
	for b.simulated+physicsTick <= b.elapsed-b.cfg.Delay {
		b.simulated += physicsTick
		for i := range b.particles {
			p := &b.particles[i]
			p.x += math.Cos(p.angle) * p.velocity
			p.y -= math.Sin(p.angle) * p.velocity
			p.velocity -= p.velocity * b.cfg.DragFriction
			p.y += gravity
		}
	}
}

// Launched reports whether the launch delay has passed.
func (b *Burst) Launched() bool {
	return b.elapsed >= b.cfg.Delay
}

// Done reports whether the burst has run for its full duration.
func (b *Burst) Done() bool {
	return b.elapsed >= b.cfg.Delay+b.cfg.Duration
}

// progress is the share of the burst's duration already played.
func (b *Burst) progress() float64 {
	if b.cfg.Duration <= 0 {
		return 1
	}
	return math.Min(1, float64(b.elapsed-b.cfg.Delay)/float64(b.cfg.Duration))
}

// PlacedBurst is a burst anchored at a column of the confetti area.
type PlacedBurst struct {
	Burst  *Burst
	Column int
}

// RenderConfetti draws the bursts into a width x height area whose top row
// sits directly below the burst origins.
func RenderConfetti(width, height int, bursts ...PlacedBurst) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]string, height)
	for row := range grid {
		grid[row] = make([]string, width)
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	for _, placed := range bursts {
		b := placed.Burst
		if b == nil || !b.Launched() || b.Done() {
			continue
		}
		// Particles fade over the last third of the burst.
		faint := b.progress() > 2.0/3
		for _, p := range b.particles {
			col := placed.Column + int(math.Round(p.x/cellWidth))
			row := int(math.Round(p.y / cellHeight))
			if row < 0 || row >= height || col < 0 || col >= width {
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.color)).Faint(faint)
			grid[row][col] = style.Render(p.glyph)
		}
	}

	lines := make([]string, height)
	for row, cells := range grid {
		lines[row] = strings.Join(cells, "")
	}
	return strings.Join(lines, "\n")
}
