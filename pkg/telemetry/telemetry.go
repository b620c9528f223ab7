// Package telemetry provides a thin metrics abstraction over
// OpenTelemetry so Cairn components can record measurements without
// depending on the SDK directly.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Telemetry is the metrics surface components record against.
type Telemetry interface {
	// RecordCounter records a counter increment with optional attributes.
	RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue)

	// RecordHistogram records a histogram value with optional attributes.
	RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue)

	// Shutdown flushes pending measurements and releases the provider.
	Shutdown(ctx context.Context) error
}

// ComponentMetrics is a marker interface for component-specific metrics
// interfaces; each component defines its own interface extending this.
type ComponentMetrics interface {
	// Close releases any resources held by the metrics implementation.
	Close() error
}

// NoopTelemetry discards all measurements.
type NoopTelemetry struct{}

// NewNoop creates a no-operation telemetry instance.
func NewNoop() Telemetry {
	return &NoopTelemetry{}
}

// RecordCounter is a no-op.
func (n *NoopTelemetry) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) {
}

// RecordHistogram is a no-op.
func (n *NoopTelemetry) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
}

// Shutdown is a no-op.
func (n *NoopTelemetry) Shutdown(ctx context.Context) error {
	return nil
}

// RecordDuration records the elapsed time since start in a histogram,
// in seconds.
func RecordDuration(ctx context.Context, tel Telemetry, name string, start time.Time, attrs ...attribute.KeyValue) {
	tel.RecordHistogram(ctx, name, time.Since(start).Seconds(), attrs...)
}

// Attribute keys shared across components for consistent naming.
const (
	AttrComponent     = "component"
	AttrOperationType = "operation.type"
	AttrStatus        = "status"
	AttrErrorType     = "error.type"
	AttrFileID        = "file.id"
)

// Common attribute values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	ComponentWAL  = "wal"
	ComponentSink = "sink"
)
