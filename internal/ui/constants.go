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

// Package ui renders the activation widget and the supporting terminal output.
package ui

import "time"

// Labels
const (
	ButtonLabel        = "Get started"
	HeaderInProgress   = "Almost there!"
	HeaderWelcome      = "Welcome to %s"
	HeaderInstructions = "Complete the steps below to finish onboarding!"
	LoadingLabel       = "Loading checklist"
)

// Layout
const (
	// ProgressBarWidth is the width of the progress indicator, without the percentage.
	ProgressBarWidth = 12

	// PopoverWidth is the width of the checklist panel.
	PopoverWidth = 56

	// ConfettiRows is the height of the area confetti falls into.
	ConfettiRows = 6

	// TableMaxWidth is the maximum width for table displays.
	TableMaxWidth = 120
)

// Timing
const (
	// FrameInterval is the confetti frame rate.
	FrameInterval = time.Second / 30

	// SpinnerRefreshRate is how often to refresh spinner animations.
	SpinnerRefreshRate = 100 * time.Millisecond
)

// Colors
const (
	ColorBrightCyan  = "14"
	ColorRed         = "9"
	ColorYellow      = "11"
	ColorGreen       = "10"
	ColorGray        = "7"
	ColorBrightGray  = "8"
	ColorBrightWhite = "15"

	ColorProgressStart = "#29cdff"
	ColorProgressEnd   = "#a864fd"
)
