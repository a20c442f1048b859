package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerKey is a private context key for storing the logger
type loggerKey struct{}

// observableLoggerKey is a private context key for storing the observable logger
type observableLoggerKey struct{}

// metricsKey is a private context key for storing the metrics collector
type metricsKey struct{}

// WithLogger returns a child context that carries the provided logger
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithObservableLogger returns a child context that carries the provided observable logger
// together with the plain logger it wraps.
func WithObservableLogger(ctx context.Context, logger *ObservableLogger) context.Context {
	ctx = WithLogger(ctx, logger.logger)
	return context.WithValue(ctx, observableLoggerKey{}, logger)
}

// WithMetricsCollector returns a child context that carries the collector
func WithMetricsCollector(ctx context.Context, mc *MetricsCollector) context.Context {
	return context.WithValue(ctx, metricsKey{}, mc)
}

// From extracts a logger from the context, or nil if absent
func From(ctx context.Context) *log.Logger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*log.Logger); ok {
			return lgr
		}
	}
	return nil
}

// FromObservable extracts an observable logger from the context, or nil if absent
func FromObservable(ctx context.Context) *ObservableLogger {
	if v := ctx.Value(observableLoggerKey{}); v != nil {
		if lgr, ok := v.(*ObservableLogger); ok {
			return lgr
		}
	}
	return nil
}

// MetricsFrom extracts the metrics collector from the context, or nil if absent
func MetricsFrom(ctx context.Context) *MetricsCollector {
	if v := ctx.Value(metricsKey{}); v != nil {
		if mc, ok := v.(*MetricsCollector); ok {
			return mc
		}
	}
	return nil
}
