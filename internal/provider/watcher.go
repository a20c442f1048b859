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

// Package provider feeds completion snapshots from the completion file into
// the activation controller.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"k8s.io/utils/clock"

	"github.com/deployah-dev/activation/internal/activation"
)

// DefaultDebounce is how long the completion file must stay quiet before it
// is re-read.
const DefaultDebounce = 150 * time.Millisecond

// Source returns the current completion.
type Source interface {
	Completion() (activation.Completion, error)
}

// Sink receives completion snapshots.
type Sink interface {
	Push(ctx context.Context, completion activation.Completion) error
}

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Snapshots int
	Errors    int
	LastEvent time.Time
}

// Watcher watches the completion file and pushes a snapshot into the sink
// whenever the file settles after a change.
type Watcher struct {
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	source   Source
	sink     Sink
	clock    clock.WithTicker
	logger   *log.Logger
	debounce time.Duration

	dirty     bool
	lastEvent time.Time
	last      activation.Completion
	pushed    bool
	stats     Stats

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	running  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the file is re-read.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithClock sets the clock used for debouncing.
func WithClock(clk clock.WithTicker) Option {
	return func(w *Watcher) {
		if clk != nil {
			w.clock = clk
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for the completion file at path.
func NewWatcher(path string, source Source, sink Sink, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		dir:      filepath.Dir(abs),
		source:   source,
		sink:     sink,
		clock:    clock.RealClock{},
		logger:   log.New(io.Discard),
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start pushes the current snapshot and begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// The directory must exist to be watched; the file itself may not.
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.setRunning(false)
		return fmt.Errorf("failed to create %s: %w", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.setRunning(false)
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Debug("Watching completion file", "path", w.path)

	if err := w.Refresh(ctx); err != nil {
		w.logger.Warn("Initial completion read failed", "err", err)
	}

	go w.run(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit. The watcher
// cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.stopCh)
		if wasRunning {
			<-w.doneCh
		}
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Failed to close file watcher", "err", err)
		}
	})
}

func (w *Watcher) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
}

// Refresh reads the completion file and pushes it to the sink unless it is
// unchanged since the last push.
func (w *Watcher) Refresh(ctx context.Context) error {
	completion, err := w.source.Completion()
	if err != nil {
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	if w.pushed && sameCompletion(w.last, completion) {
		w.mu.Unlock()
		return nil
	}
	w.last = completion
	w.pushed = true
	w.stats.Snapshots++
	w.mu.Unlock()

	if err := w.sink.Push(ctx, completion); err != nil {
		return fmt.Errorf("failed to push completion: %w", err)
	}
	return nil
}

// Stats returns a copy of the watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := w.clock.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C():
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("Completion file changed", "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = true
	w.lastEvent = w.clock.Now()
	w.stats.Events++
	w.stats.LastEvent = w.lastEvent
}

// flush re-reads the file once it has been quiet for the debounce period.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	settled := w.dirty && w.clock.Since(w.lastEvent) >= w.debounce
	if settled {
		w.dirty = false
	}
	w.mu.Unlock()

	if !settled {
		return
	}

	if err := w.Refresh(ctx); err != nil {
		if errors.Is(err, activation.ErrClosed) {
			w.logger.Debug("Controller closed, dropping snapshot")
			return
		}
		w.logger.Warn("Failed to refresh completion", "err", err)
	}
}

func sameCompletion(a, b activation.Completion) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return maps.Equal(a, b)
}
