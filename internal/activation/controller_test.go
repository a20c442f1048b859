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

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var abc = []Step{
	{ID: "a", Title: "Step A"},
	{ID: "b", Title: "Step B"},
	{ID: "c", Title: "Step C"},
}

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

func newTestController(t *testing.T, steps []Step, opts ...Option) (*Controller, *clocktesting.FakeClock) {
	t.Helper()
	clk := clocktesting.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := New(steps, append([]Option{WithClock(clk)}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

func push(t *testing.T, c *Controller, completion Completion) {
	t.Helper()
	require.NoError(t, c.Push(context.Background(), completion))
}

func waitUntil(t *testing.T, c *Controller, cond func(Signals) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(c.Signals()) }, waitFor, tick, msg)
}

func TestController_IncreaseStartsPulseImmediately(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{}))

	push(t, c, Completion{"a": true})

	s := c.Signals()
	assert.True(t, s.Animating)
	assert.True(t, s.Sticky)
	assert.True(t, s.Visible)
	assert.Equal(t, 1, s.Pulse)
	assert.InDelta(t, 100.0/3, s.Percentage, 0.001)

	clk.Step(AnimationDuration - time.Millisecond)
	assert.True(t, c.Signals().Animating, "pulse must last the full duration")

	clk.Step(time.Millisecond)
	waitUntil(t, c, func(s Signals) bool { return !s.Animating }, "pulse should end")
	assert.True(t, c.Signals().Sticky)
	assert.False(t, clk.HasWaiters())
}

func TestController_NoPulseWithoutStrictIncrease(t *testing.T) {
	tests := []struct {
		name    string
		initial Completion
		next    Completion
	}{
		{name: "unchanged", initial: Completion{"a": true}, next: Completion{"a": true}},
		{name: "decrease", initial: Completion{"a": true, "b": true}, next: Completion{"a": true}},
		{name: "new ids outside checklist", initial: Completion{}, next: Completion{"z": true}},
		{name: "undefined baseline", initial: nil, next: Completion{"a": true}},
		{name: "unload", initial: Completion{"a": true}, next: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clk := newTestController(t, abc, WithInitialCompletion(tt.initial))

			push(t, c, tt.next)

			s := c.Signals()
			assert.False(t, s.Animating)
			assert.False(t, s.Sticky)
			assert.Zero(t, s.Pulse)
			assert.False(t, clk.HasWaiters())
		})
	}
}

func TestController_StickyKeepsCompletedWidgetVisible(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{"a": true, "b": true}))

	push(t, c, Completion{"a": true, "b": true, "c": true})
	clk.Step(AnimationDuration)
	waitUntil(t, c, func(s Signals) bool { return !s.Animating }, "pulse should end")

	s := c.Signals()
	assert.Equal(t, 100.0, s.Percentage)
	assert.True(t, s.Sticky)
	assert.True(t, s.Visible)

	// A later decrease does not clear the latch.
	push(t, c, Completion{"a": true})
	assert.True(t, c.Signals().Sticky)
}

func TestController_VisibilityWithoutSticky(t *testing.T) {
	tests := []struct {
		name       string
		steps      []Step
		initial    Completion
		forceShow  bool
		wantLoaded bool
		want       bool
	}{
		{name: "not loaded", steps: abc, initial: nil, want: false},
		{name: "zero percent", steps: abc, initial: Completion{}, wantLoaded: true, want: true},
		{name: "partial", steps: abc, initial: Completion{"a": true}, wantLoaded: true, want: true},
		{name: "fully complete on mount", steps: abc, initial: Completion{"a": true, "b": true, "c": true}, wantLoaded: true, want: false},
		{name: "forced while complete", steps: abc, initial: Completion{"a": true, "b": true, "c": true}, forceShow: true, wantLoaded: true, want: true},
		{name: "forced while not loaded", steps: abc, initial: nil, forceShow: true, want: true},
		{name: "empty steps", steps: nil, initial: Completion{}, wantLoaded: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t, tt.steps, WithInitialCompletion(tt.initial), WithForceShow(tt.forceShow))

			s := c.Signals()
			assert.Equal(t, tt.want, s.Visible)
			assert.Equal(t, tt.wantLoaded, s.Loaded)
			assert.Equal(t, tt.forceShow, s.ForceShow)
		})
	}
}

func TestController_EmptyStepsPercentageIsZero(t *testing.T) {
	c, _ := newTestController(t, nil, WithInitialCompletion(Completion{}))
	push(t, c, Completion{"a": true})

	s := c.Signals()
	assert.Equal(t, 0.0, s.Percentage)
	assert.True(t, s.Loaded)
	assert.False(t, s.Animating)
}

func TestController_BackToBackIncreasesSerializePulses(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{}))

	push(t, c, Completion{"a": true})
	clk.Step(100 * time.Millisecond)
	push(t, c, Completion{"a": true, "b": true})

	s := c.Signals()
	assert.True(t, s.Animating)
	assert.Equal(t, 1, s.Pulse, "second pulse waits for the first")

	clk.Step(AnimationDuration - 100*time.Millisecond)
	waitUntil(t, c, func(s Signals) bool { return s.Pulse == 2 }, "queued pulse should start when the first ends")
	assert.True(t, c.Signals().Animating)

	clk.Step(AnimationDuration - time.Millisecond)
	assert.True(t, c.Signals().Animating, "second pulse lasts the full duration")

	clk.Step(time.Millisecond)
	waitUntil(t, c, func(s Signals) bool { return !s.Animating }, "second pulse should end")
	assert.Equal(t, 2, c.Signals().Pulse)
	assert.False(t, clk.HasWaiters())
}

func TestController_Scenario(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{}))
	require.True(t, c.Signals().Visible)

	push(t, c, Completion{"a": true})
	s := c.Signals()
	assert.True(t, s.Animating)
	assert.True(t, s.Sticky)
	assert.InDelta(t, 33.33, s.Percentage, 0.01)

	push(t, c, Completion{"a": true, "b": true, "c": true})
	assert.Equal(t, 100.0, c.Signals().Percentage)
	assert.Equal(t, 1, c.Signals().Pulse)

	clk.Step(AnimationDuration)
	waitUntil(t, c, func(s Signals) bool { return s.Pulse == 2 && s.Animating }, "second pulse")

	clk.Step(AnimationDuration)
	waitUntil(t, c, func(s Signals) bool { return !s.Animating }, "all pulses done")

	s = c.Signals()
	assert.True(t, s.Visible, "sticky keeps the completed widget on screen")
	assert.Equal(t, 2, s.Pulse)
}

func TestController_SetForceShowAndSteps(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{"a": true, "b": true, "c": true}))
	require.False(t, c.Signals().Visible)

	require.NoError(t, c.SetForceShow(true))
	assert.True(t, c.Signals().Visible)
	require.NoError(t, c.SetForceShow(false))
	assert.False(t, c.Signals().Visible)

	// Adding a step lowers the percentage without counting as a decrease event.
	require.NoError(t, c.SetSteps(append(abc, Step{ID: "d"})))
	s := c.Signals()
	assert.Equal(t, 75.0, s.Percentage)
	assert.True(t, s.Visible)
	assert.False(t, s.Animating)
	assert.Len(t, s.Steps, 4)
	assert.False(t, clk.HasWaiters())
}

func TestController_PushCopiesCompletion(t *testing.T) {
	c, _ := newTestController(t, abc, WithInitialCompletion(Completion{}))

	in := Completion{"a": true}
	push(t, c, in)
	in["b"] = true

	assert.False(t, c.Signals().Completion.Done("b"))
}

func TestController_Subscribe(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{}))

	ch := c.Subscribe()
	first := <-ch
	assert.False(t, first.Animating)

	push(t, c, Completion{"a": true})
	got := <-ch
	assert.True(t, got.Animating)
	assert.Equal(t, 1, got.Pulse)

	clk.Step(AnimationDuration)
	got = <-ch
	assert.False(t, got.Animating)

	require.NoError(t, c.Close())
	_, ok := <-ch
	assert.False(t, ok, "subscription should be closed")

	late := c.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestController_SlowSubscriberKeepsLatest(t *testing.T) {
	c, _ := newTestController(t, abc, WithInitialCompletion(Completion{}))
	ch := c.Subscribe()

	for i := 0; i < subscriberBuffer*2; i++ {
		require.NoError(t, c.SetForceShow(i%2 == 0))
	}
	require.NoError(t, c.SetForceShow(true))

	var last Signals
	for len(ch) > 0 {
		last = <-ch
	}
	assert.True(t, last.ForceShow)
}

func TestController_CloseStopsPendingPulse(t *testing.T) {
	c, clk := newTestController(t, abc, WithInitialCompletion(Completion{}))

	push(t, c, Completion{"a": true})
	push(t, c, Completion{"a": true, "b": true})
	require.True(t, clk.HasWaiters())

	before := c.Signals()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")
	assert.False(t, clk.HasWaiters(), "pending timer is stopped")

	clk.Step(10 * AnimationDuration)
	assert.Equal(t, before, c.Signals(), "no state change after close")

	err := c.Push(context.Background(), Completion{"a": true, "b": true, "c": true})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.SetForceShow(true), ErrClosed)
}

func TestController_PushHonorsContext(t *testing.T) {
	c, _ := newTestController(t, abc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The loop may still accept the request, so either outcome is valid.
	err := c.Push(ctx, Completion{})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestController_ConcurrentPushes(t *testing.T) {
	c, _ := newTestController(t, abc, WithInitialCompletion(Completion{}))

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Push(context.Background(), Completion{id: true}))
		}()
	}
	wg.Wait()

	s := c.Signals()
	assert.True(t, s.Sticky)
	assert.True(t, s.Loaded)
}

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (r *recordingMetrics) Metric(_ context.Context, name string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name] += value
}

func TestController_Metrics(t *testing.T) {
	metrics := &recordingMetrics{counts: map[string]float64{}}
	c, _ := newTestController(t, abc, WithInitialCompletion(Completion{}), WithMetrics(metrics))

	push(t, c, Completion{"a": true})
	push(t, c, Completion{"a": true})

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, 2.0, metrics.counts["activation.snapshots.count"])
	assert.Equal(t, 1.0, metrics.counts["activation.pulses.count"])
}
