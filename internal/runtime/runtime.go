package runtime

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"

	"github.com/deployah-dev/activation/internal/checklist"
)

// runtimeKey is a private context key for storing the Runtime in context
type runtimeKey struct{}

// Runtime holds per-invocation state and lazily loaded resources.
// It implements the RuntimeProvider interface for dependency injection.
type Runtime struct {
	checklistPath string
	statePath     string
	envFile       string

	duration time.Duration
	debounce time.Duration

	logger    LoggerProvider
	clock     clock.WithTicker
	loader    ChecklistLoader
	checklist *checklist.Checklist
	store     StateStore
	mu        sync.Mutex

	// Factory for the completion store (enables testing)
	storeFactory func(*Runtime) (StateStore, error)
}

// Option defines a functional option for configuring Runtime.
type Option func(*Runtime)

// WithChecklistPath sets the checklist file path.
func WithChecklistPath(path string) Option {
	return func(r *Runtime) {
		r.checklistPath = path
	}
}

// WithStatePath sets the completion file path.
func WithStatePath(path string) Option {
	return func(r *Runtime) {
		r.statePath = path
	}
}

// WithEnvFile sets an explicit .env file for variable substitution.
func WithEnvFile(path string) Option {
	return func(r *Runtime) {
		r.envFile = path
	}
}

// WithDuration sets the pulse duration handed to the controller.
func WithDuration(d time.Duration) Option {
	return func(r *Runtime) {
		r.duration = d
	}
}

// WithDebounce sets the watcher debounce.
func WithDebounce(d time.Duration) Option {
	return func(r *Runtime) {
		r.debounce = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger LoggerProvider) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithClock sets the clock used for timers and timestamps.
func WithClock(c clock.WithTicker) Option {
	return func(r *Runtime) {
		r.clock = c
	}
}

// WithLoader sets a custom checklist loader for testing.
func WithLoader(loader ChecklistLoader) Option {
	return func(r *Runtime) {
		r.loader = loader
	}
}

// WithStoreFactory sets a custom completion store factory for testing.
func WithStoreFactory(factory func(*Runtime) (StateStore, error)) Option {
	return func(r *Runtime) {
		r.storeFactory = factory
	}
}

func defaultStoreFactory(r *Runtime) (StateStore, error) {
	return checklist.NewStore(r.StatePath(), r.clock), nil
}

// New constructs a Runtime with functional options.
func New(options ...Option) *Runtime {
	r := &Runtime{
		checklistPath: checklist.DefaultChecklistPath,
		statePath:     checklist.DefaultStatePath,
		duration:      DefaultDuration,
		debounce:      DefaultDebounce,
		clock:         clock.RealClock{},
		loader:        fileLoader{},
		storeFactory:  defaultStoreFactory,
	}

	for _, option := range options {
		option(r)
	}

	if r.logger == nil {
		r.logger = NewLoggerAdapter(log.New(io.Discard))
	}

	return r
}

// WithRuntime returns a new context carrying the provided runtime.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// FromRuntime extracts a Runtime from the command context, or nil if absent.
func FromRuntime(ctx context.Context) *Runtime {
	if v := ctx.Value(runtimeKey{}); v != nil {
		if rt, ok := v.(*Runtime); ok {
			return rt
		}
	}
	return nil
}

// Checklist loads and memoizes the checklist at the configured path.
func (r *Runtime) Checklist(ctx context.Context) (*checklist.Checklist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checklist != nil {
		return r.checklist, nil
	}
	if r.checklistPath == "" {
		return nil, fmt.Errorf("checklist path must be set")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := r.loader.Load(r.checklistPath, r.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}
	r.logger.Debug("Checklist loaded", "file", r.checklistPath, "steps", len(c.Steps))
	r.checklist = c
	return c, nil
}

// SaveChecklist writes c to the configured checklist path and memoizes it.
func (r *Runtime) SaveChecklist(c *checklist.Checklist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loader.Save(c, r.checklistPath); err != nil {
		return fmt.Errorf("failed to save checklist: %w", err)
	}
	r.checklist = c
	return nil
}

// Store returns the memoized completion store.
func (r *Runtime) Store() (StateStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}

	s, err := r.storeFactory(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion store (path=%q): %w", r.statePath, err)
	}
	r.store = s
	return s, nil
}

// Close performs cleanup of resources held by the runtime.
// It's safe to call multiple times.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checklist = nil
	r.store = nil
	return nil
}

// ChecklistPath returns the configured checklist path.
func (r *Runtime) ChecklistPath() string { return r.checklistPath }

// StatePath returns the configured completion file path, or the default if none is set.
func (r *Runtime) StatePath() string {
	if r.statePath != "" {
		return r.statePath
	}
	return checklist.DefaultStatePath
}

// Duration returns the pulse duration.
func (r *Runtime) Duration() time.Duration { return r.duration }

// Debounce returns the watcher debounce.
func (r *Runtime) Debounce() time.Duration { return r.debounce }

// Clock returns the runtime clock.
func (r *Runtime) Clock() clock.WithTicker { return r.clock }

// Logger returns the runtime logger.
func (r *Runtime) Logger() LoggerProvider { return r.logger }
