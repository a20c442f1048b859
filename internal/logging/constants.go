package logging

import "time"

// Logger defaults
const (
	// DefaultLogLevel is the level used when no --log-level flag or environment override is given
	DefaultLogLevel = "info"

	// LogPrefix is prepended to every log line
	LogPrefix = "✨ activation"

	// LogTimeFormat is the timestamp layout for log lines
	LogTimeFormat = time.Kitchen
)

// Metric names recorded by the collector
const (
	MetricLogsCount      = "activation.logs.count"
	MetricErrorsCount    = "activation.errors.count"
	MetricPulsesCount    = "activation.pulses.count"
	MetricSnapshotsCount = "activation.snapshots.count"
)
