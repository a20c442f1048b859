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

package provider

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSink struct {
	mu     sync.Mutex
	pushes []activation.Completion
}

func (r *recordingSink) Push(_ context.Context, c activation.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, c)
	return nil
}

func (r *recordingSink) snapshot() []activation.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activation.Completion(nil), r.pushes...)
}

func (r *recordingSink) last() activation.Completion {
	pushes := r.snapshot()
	if len(pushes) == 0 {
		return nil
	}
	return pushes[len(pushes)-1]
}

func testChecklist() *checklist.Checklist {
	return &checklist.Checklist{
		APIVersion: "v1",
		Steps:      []activation.Step{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
	}
}

func TestWatcher_PushesInitialAndChangedSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".activation", "state.yaml")
	store := checklist.NewStore(path, nil)
	sink := &recordingSink{}

	w, err := NewWatcher(path, store, sink, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	pushes := sink.snapshot()
	require.Len(t, pushes, 1, "initial snapshot is pushed on start")
	assert.Nil(t, pushes[0], "missing file means not loaded")

	_, err = store.MarkSteps(testChecklist(), []string{"a"}, true)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sink.last().Done("a")
	}, 2*time.Second, 10*time.Millisecond)

	_, err = store.MarkSteps(testChecklist(), []string{"b"}, true)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		last := sink.last()
		return last.Done("a") && last.Done("b")
	}, 2*time.Second, 10*time.Millisecond)

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Events, 2)
	assert.Equal(t, len(sink.snapshot()), stats.Snapshots)
}

func TestWatcher_RefreshSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	store := checklist.NewStore(path, nil)
	sink := &recordingSink{}

	w, err := NewWatcher(path, store, sink)
	require.NoError(t, err)
	defer w.Stop()

	ctx := context.Background()
	require.NoError(t, w.Refresh(ctx))
	require.NoError(t, w.Refresh(ctx))
	assert.Len(t, sink.snapshot(), 1)

	require.NoError(t, store.Reset())
	require.NoError(t, w.Refresh(ctx))
	pushes := sink.snapshot()
	require.Len(t, pushes, 2, "empty but loaded differs from not loaded")
	assert.NotNil(t, pushes[1])
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	w, err := NewWatcher(path, checklist.NewStore(path, nil), &recordingSink{})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestWatcher_FeedsController(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	store := checklist.NewStore(path, nil)
	require.NoError(t, store.Reset())

	list := testChecklist()
	controller := activation.New(list.Steps, activation.WithDuration(time.Hour))
	defer controller.Close()

	w, err := NewWatcher(path, store, controller, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.Eventually(t, func() bool { return controller.Signals().Loaded }, time.Second, 5*time.Millisecond)
	assert.False(t, controller.Signals().Animating)

	_, err = store.MarkSteps(list, []string{"a"}, true)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s := controller.Signals()
		return s.Animating && s.Sticky && s.Percentage == 50
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBurstOnFakeClock(t *testing.T) {
	const debounce = 100 * time.Millisecond

	path := filepath.Join(t.TempDir(), "state.yaml")
	store := checklist.NewStore(path, nil)
	sink := &recordingSink{}
	clk := clocktesting.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	w, err := NewWatcher(path, store, sink, WithDebounce(debounce), WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.Eventually(t, clk.HasWaiters, time.Second, 5*time.Millisecond, "debounce ticker is registered")
	require.Len(t, sink.snapshot(), 1)

	list := testChecklist()
	_, err = store.MarkSteps(list, []string{"a"}, true)
	require.NoError(t, err)
	_, err = store.MarkSteps(list, []string{"b"}, true)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return w.Stats().Events >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, sink.snapshot(), 1, "nothing is re-read while the clock stands still")

	clk.Step(debounce / 2)
	assert.Never(t, func() bool { return len(sink.snapshot()) > 1 }, 100*time.Millisecond, 5*time.Millisecond,
		"file is not re-read before it has been quiet for the debounce period")

	clk.Step(debounce / 2)
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)

	last := sink.last()
	assert.True(t, last.Done("a"))
	assert.True(t, last.Done("b"))
	assert.Equal(t, 2, w.Stats().Snapshots)
}
