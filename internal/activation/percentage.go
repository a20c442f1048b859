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

package activation

// PercentageDone returns the share of steps completed, in [0, 100].
// The boolean is false when the completion has not been loaded: an unknown
// percentage is not the same as 0%. With no steps the percentage is 0.
func PercentageDone(steps []Step, completion Completion) (float64, bool) {
	if completion == nil {
		return 0, false
	}
	if len(steps) == 0 {
		return 0, true
	}

	done := 0
	for _, step := range steps {
		if completion[step.ID] {
			done++
		}
	}

	return float64(done) / float64(len(steps)) * 100, true
}

// DisplayPercentage is PercentageDone with the undefined case mapped to 0,
// for indicators that always need a number.
func DisplayPercentage(steps []Step, completion Completion) float64 {
	pct, _ := PercentageDone(steps, completion)
	return pct
}

// IsVisible derives widget visibility from controller state and host inputs.
func IsVisible(forceShow, sticky, animating bool, pct float64, loaded bool) bool {
	return forceShow || sticky || animating || (loaded && pct < 100)
}
