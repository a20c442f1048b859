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


package logging

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"
)

// ObservabilityHook is attached to an ObservableLogger and sees every log line,
// error and custom metric that passes through it.
type ObservabilityHook interface {
	// OnLog is called whenever a log event occurs
	OnLog(ctx context.Context, level log.Level, msg string, keyvals []any)

	// OnError is called whenever an error-level log occurs
	OnError(ctx context.Context, msg string, err error, keyvals []any)

	// OnMetric is called to record custom metrics
	OnMetric(ctx context.Context, name string, value float64, tags map[string]string)

	// Close cleans up resources used by the hook
	Close() error
}

// MetricsCollector aggregates counters from log events and controller metrics.
type MetricsCollector struct {
	mu      sync.RWMutex
	clock   clock.PassiveClock
	metrics map[string]*Metric
	hooks   []MetricsHook
}

// Metric represents a collected metric with its metadata.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Count     int64             `json:"count"`
}

// MetricsHook defines an interface for metrics exporters.
type MetricsHook interface {
	// Export exports collected metrics to an external system
	Export(ctx context.Context, metrics []*Metric) error

	// Close cleans up resources
	Close() error
}

// CollectorOption configures a MetricsCollector.
type CollectorOption func(*MetricsCollector)

// WithCollectorClock sets the clock used to timestamp metrics.
func WithCollectorClock(c clock.PassiveClock) CollectorOption {
	return func(mc *MetricsCollector) {
		mc.clock = c
	}
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(opts ...CollectorOption) *MetricsCollector {
	mc := &MetricsCollector{
		clock:   clock.RealClock{},
		metrics: make(map[string]*Metric),
		hooks:   make([]MetricsHook, 0),
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// AddHook adds a metrics export hook.
func (mc *MetricsCollector) AddHook(hook MetricsHook) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.hooks = append(mc.hooks, hook)
}

// OnLog implements ObservabilityHook.
func (mc *MetricsCollector) OnLog(ctx context.Context, level log.Level, _ string, _ []any) {
	mc.recordMetric(ctx, MetricLogsCount, 1, map[string]string{
		"level": level.String(),
	})
}

// OnError implements ObservabilityHook.
func (mc *MetricsCollector) OnError(ctx context.Context, _ string, _ error, keyvals []any) {
	tags := map[string]string{
		"component": "unknown",
	}

	for i := 0; i < len(keyvals)-1; i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		switch key {
		case "component", "operation", "cmd":
			if value, ok := keyvals[i+1].(string); ok {
				tags[key] = value
			}
		}
	}

	mc.recordMetric(ctx, MetricErrorsCount, 1, tags)
}

// OnMetric implements ObservabilityHook.
func (mc *MetricsCollector) OnMetric(ctx context.Context, name string, value float64, tags map[string]string) {
	mc.recordMetric(ctx, name, value, tags)
}

func (mc *MetricsCollector) recordMetric(_ context.Context, name string, value float64, tags map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.metrics == nil {
		return
	}

	key := buildMetricKey(name, tags)
	now := mc.clock.Now()
	if existing, exists := mc.metrics[key]; exists {
		existing.Value += value
		existing.Count++
		existing.Timestamp = now
		return
	}

	mc.metrics[key] = &Metric{
		Name:      name,
		Value:     value,
		Tags:      maps.Clone(tags),
		Timestamp: now,
		Count:     1,
	}
}

// buildMetricKey creates a stable key for a metric from its name and sorted tags.
func buildMetricKey(name string, tags map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		b.WriteString(":" + k + "=" + tags[k])
	}
	return b.String()
}

// Snapshot returns copies of all collected metrics ordered by key.
func (mc *MetricsCollector) Snapshot() []*Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(mc.metrics))
	out := make([]*Metric, 0, len(keys))
	for _, k := range keys {
		m := *mc.metrics[k]
		m.Tags = maps.Clone(m.Tags)
		out = append(out, &m)
	}
	return out
}

// Value sums a metric across all of its tag combinations.
func (mc *MetricsCollector) Value(name string) float64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var total float64
	for _, m := range mc.metrics {
		if m.Name == name {
			total += m.Value
		}
	}
	return total
}

// ExportMetrics exports all collected metrics to registered hooks.
// Every hook is attempted; failures are joined.
func (mc *MetricsCollector) ExportMetrics(ctx context.Context) error {
	metrics := mc.Snapshot()

	mc.mu.RLock()
	hooks := slices.Clone(mc.hooks)
	mc.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook.Export(ctx, metrics); err != nil {
			errs = append(errs, fmt.Errorf("export metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close implements ObservabilityHook.
func (mc *MetricsCollector) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var errs []error
	for _, hook := range mc.hooks {
		if err := hook.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	mc.hooks = nil
	mc.metrics = nil
	return errors.Join(errs...)
}

// LogExporter writes exported metrics to a logger at debug level.
type LogExporter struct {
	logger *log.Logger
}

// NewLogExporter creates a MetricsHook that logs every metric.
func NewLogExporter(logger *log.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// Export implements MetricsHook.
func (le *LogExporter) Export(_ context.Context, metrics []*Metric) error {
	for _, m := range metrics {
		keyvals := []any{"value", m.Value, "count", m.Count}
		for _, k := range slices.Sorted(maps.Keys(m.Tags)) {
			keyvals = append(keyvals, k, m.Tags[k])
		}
		le.logger.Debug(m.Name, keyvals...)
	}
	return nil
}

// Close implements MetricsHook.
func (le *LogExporter) Close() error { return nil }

// ObservableLogger wraps a logger with observability hooks.
type ObservableLogger struct {
	logger *log.Logger
	hooks  []ObservabilityHook
	mu     sync.RWMutex
}

// NewObservableLogger creates a new observable logger.
func NewObservableLogger(logger *log.Logger) *ObservableLogger {
	return &ObservableLogger{
		logger: logger,
		hooks:  make([]ObservabilityHook, 0),
	}
}

// Logger returns the wrapped logger.
func (ol *ObservableLogger) Logger() *log.Logger {
	return ol.logger
}

// AddHook adds an observability hook.
func (ol *ObservableLogger) AddHook(hook ObservabilityHook) {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	ol.hooks = append(ol.hooks, hook)
}

// Debug logs a debug message and notifies hooks.
func (ol *ObservableLogger) Debug(msg string, keyvals ...any) {
	ol.logger.Debug(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.DebugLevel, msg, keyvals)
}

// Info logs an info message and notifies hooks.
func (ol *ObservableLogger) Info(msg string, keyvals ...any) {
	ol.logger.Info(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.InfoLevel, msg, keyvals)
}

// Warn logs a warning message and notifies hooks.
func (ol *ObservableLogger) Warn(msg string, keyvals ...any) {
	ol.logger.Warn(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.WarnLevel, msg, keyvals)
}

// Error logs an error message and notifies hooks.
func (ol *ObservableLogger) Error(msg string, keyvals ...any) {
	ol.logger.Error(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.ErrorLevel, msg, keyvals)

	var err error
	for i := 0; i < len(keyvals)-1; i += 2 {
		if key, ok := keyvals[i].(string); ok && key == "err" {
			if e, ok := keyvals[i+1].(error); ok {
				err = e
				break
			}
		}
	}

	ol.notifyErrorHooks(context.Background(), msg, err, keyvals)
}

// With returns a new logger with additional key-value pairs sharing the parent's hooks.
func (ol *ObservableLogger) With(keyvals ...any) *ObservableLogger {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	return &ObservableLogger{
		logger: ol.logger.With(keyvals...),
		hooks:  slices.Clone(ol.hooks),
	}
}

// Metric records a custom metric.
func (ol *ObservableLogger) Metric(ctx context.Context, name string, value float64, tags map[string]string) {
	for _, hook := range ol.snapshotHooks() {
		hook.OnMetric(ctx, name, value, tags)
	}
}

func (ol *ObservableLogger) snapshotHooks() []ObservabilityHook {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	return slices.Clone(ol.hooks)
}

func (ol *ObservableLogger) notifyHooks(ctx context.Context, level log.Level, msg string, keyvals []any) {
	if level < ol.logger.GetLevel() {
		return
	}
	for _, hook := range ol.snapshotHooks() {
		hook.OnLog(ctx, level, msg, keyvals)
	}
}

func (ol *ObservableLogger) notifyErrorHooks(ctx context.Context, msg string, err error, keyvals []any) {
	for _, hook := range ol.snapshotHooks() {
		hook.OnError(ctx, msg, err, keyvals)
	}
}

// Close closes all observability hooks.
func (ol *ObservableLogger) Close() error {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	var errs []error
	for _, hook := range ol.hooks {
		if err := hook.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	ol.hooks = nil
	return errors.Join(errs...)
}
