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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/runtime"
	"github.com/deployah-dev/activation/internal/ui"
)

func sampleChecklist() *checklist.Checklist {
	return &checklist.Checklist{
		APIVersion: "v1",
		Title:      "Acme",
		Steps: []activation.Step{
			{ID: "connect", Title: "Connect a code host", Detail: "Add GitHub"},
			{ID: "search", Title: "Run a search"},
			{ID: "invite", Title: "Invite a teammate"},
			{ID: "extension", Title: "Install the browser extension"},
		},
	}
}

func TestBuildStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no state", func(t *testing.T) {
		vm := BuildStatus(sampleChecklist(), nil, now)

		assert.Nil(t, vm.Percentage)
		assert.Equal(t, 4, vm.Total)
		assert.Zero(t, vm.Done)
		for _, s := range vm.Steps {
			assert.Equal(t, ui.StatusUnknown, s.Status)
		}
		assert.Contains(t, vm.Summary(), "no progress recorded yet")
	})

	t.Run("partial progress", func(t *testing.T) {
		state := &checklist.State{
			Completed: map[string]bool{"connect": true, "search": true, "ghost": true},
			UpdatedAt: now.Add(-2 * time.Hour),
		}
		vm := BuildStatus(sampleChecklist(), state, now)

		require.NotNil(t, vm.Percentage)
		assert.InDelta(t, 50.0, *vm.Percentage, 1e-9)
		assert.Equal(t, 2, vm.Done)
		assert.Equal(t, "2025-01-01T10:00:00Z", vm.UpdatedAt)
		assert.Equal(t, "2 hours ago", vm.Age)

		statuses := map[string]string{}
		for _, s := range vm.Steps {
			statuses[s.ID] = s.Status
		}
		assert.Equal(t, map[string]string{
			"connect":   ui.StatusDone,
			"search":    ui.StatusDone,
			"invite":    ui.StatusPending,
			"extension": ui.StatusPending,
		}, statuses)

		summary := vm.Summary()
		assert.Contains(t, summary, "(2/4)")
		assert.Contains(t, summary, "updated 2 hours ago")
	})

	t.Run("rows follow checklist order", func(t *testing.T) {
		vm := BuildStatus(sampleChecklist(), &checklist.State{Completed: map[string]bool{}}, now)
		rows := vm.Rows()
		require.Len(t, rows, 4)
		assert.Equal(t, "connect", rows[0]["id"])
		assert.Equal(t, "Add GitHub", rows[0]["detail"])
		assert.Equal(t, ui.StatusPending, rows[3]["status"])
	})
}

func TestGetTableColumns(t *testing.T) {
	visible := func(cols []ui.Column) []string {
		var keys []string
		for _, c := range cols {
			if c.Condition {
				keys = append(keys, c.Key)
			}
		}
		return keys
	}

	assert.Equal(t, []string{"id", "title", "status"}, visible(GetTableColumns(false)))
	assert.Equal(t, []string{"id", "title", "status", "detail"}, visible(GetTableColumns(true)))
}

func TestValidateOutputFormat(t *testing.T) {
	assert.NoError(t, ValidateOutputFormat(OutputFormatTable))
	assert.NoError(t, ValidateOutputFormat(OutputFormatJSON))
	assert.NoError(t, ValidateOutputFormat(OutputFormatSummary))
	assert.ErrorContains(t, ValidateOutputFormat("xml"), "invalid output format")
}

func TestColorizeJSONWithChroma(t *testing.T) {
	out, err := ColorizeJSONWithChroma([]byte(`{"title":"Acme"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
}

func TestGetRuntime(t *testing.T) {
	_, err := GetRuntime(context.Background())
	assert.ErrorContains(t, err, "runtime not initialized")

	rt := runtime.New()
	got, err := GetRuntime(runtime.WithRuntime(context.Background(), rt))
	require.NoError(t, err)
	assert.Same(t, rt, got)
}
