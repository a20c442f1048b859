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


package runtime

import (
	"time"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/provider"
)

// Runtime Defaults
const (
	// DefaultDuration is the default length of one celebration pulse
	DefaultDuration = activation.AnimationDuration

	// DefaultDebounce is the default quiet period before the completion file is re-read
	DefaultDebounce = provider.DefaultDebounce
)

// Animation bounds
const (
	// DurationMin is the shortest pulse accepted from --duration
	DurationMin = 250 * time.Millisecond

	// DurationMax is the longest pulse accepted from --duration
	DurationMax = 30 * time.Second
)

// Environment Variables
const (
	// ChecklistEnvVar overrides the checklist file path
	ChecklistEnvVar = "ACTIVATION_CHECKLIST"

	// StateEnvVar overrides the completion file path
	StateEnvVar = "ACTIVATION_STATE"

	// EnvFileEnvVar overrides the .env file used for variable substitution
	EnvFileEnvVar = "ACTIVATION_ENV_FILE"

	// LogLevelEnvVar overrides the default log level
	LogLevelEnvVar = "ACTIVATION_LOG_LEVEL"
)

// ValidateDuration ensures a pulse duration is within acceptable bounds.
func ValidateDuration(d time.Duration) bool {
	return d >= DurationMin && d <= DurationMax
}
