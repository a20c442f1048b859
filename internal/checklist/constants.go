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

// Package checklist loads onboarding checklists and their completion state.
package checklist

// File and path constants
const (
	// DefaultChecklistPath is the default path of the checklist file.
	DefaultChecklistPath = ".activation.yaml"

	// ConfigDir holds activation files that are not meant to be edited by hand.
	ConfigDir = ".activation"

	// DefaultStatePath is the default path of the completion file.
	DefaultStatePath = ConfigDir + "/state.yaml"

	// DefaultEnvFile is the default environment file name.
	DefaultEnvFile = ".env"

	// DefaultTitle is used when a checklist has no title and none is set by its schema.
	DefaultTitle = "Sourcegraph"
)

// Environment variables
const (
	// EnvVarPrefix marks OS and .env variables that are exposed to checklist substitution.
	EnvVarPrefix = "ACTIVATION_VAR_"
)

// Validation constants
const (
	// MaxStepIDLength is the maximum allowed length of a step id.
	MaxStepIDLength = 63

	// StepIDPattern is the pattern step ids must match.
	StepIDPattern = "^[a-z0-9][a-z0-9_-]*$"
)
