package wal

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/CairnDB/cairn/pkg/telemetry"
)

// WriterMetrics defines the telemetry surface of the log writer. All
// metrics are optional; implementations can safely be no-op.
type WriterMetrics interface {
	telemetry.ComponentMetrics

	// RecordAppend records one AddRecord call: its duration, the
	// logical payload size, how many physical records it produced and
	// whether every fragment reached the sink.
	RecordAppend(ctx context.Context, duration time.Duration, bytes int64, fragments int, success bool)

	// RecordPadding records zero bytes written as block trailers.
	RecordPadding(ctx context.Context, bytes int64)
}

// writerMetrics implements WriterMetrics on the telemetry facade.
type writerMetrics struct {
	tel telemetry.Telemetry
}

// NewWriterMetrics creates a WriterMetrics implementation backed by
// tel. If tel is nil a no-op implementation is returned.
func NewWriterMetrics(tel telemetry.Telemetry) WriterMetrics {
	if tel == nil {
		return &noopWriterMetrics{}
	}
	return &writerMetrics{tel: tel}
}

// NewNoopWriterMetrics creates a no-op WriterMetrics, used as the
// writer's default and in tests.
func NewNoopWriterMetrics() WriterMetrics {
	return &noopWriterMetrics{}
}

func (m *writerMetrics) RecordAppend(ctx context.Context, duration time.Duration, bytes int64, fragments int, success bool) {
	status := telemetry.StatusSuccess
	if !success {
		status = telemetry.StatusError
	}

	m.tel.RecordHistogram(ctx, "cairn.wal.append.duration", duration.Seconds(),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentWAL),
		attribute.Bool("fragmented", fragments > 1),
	)

	m.tel.RecordCounter(ctx, "cairn.wal.append.bytes", bytes,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentWAL),
	)

	m.tel.RecordCounter(ctx, "cairn.wal.append.fragments", int64(fragments),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentWAL),
	)

	m.tel.RecordCounter(ctx, "cairn.wal.operations.total", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentWAL),
		attribute.String(telemetry.AttrStatus, status),
	)
}

func (m *writerMetrics) RecordPadding(ctx context.Context, bytes int64) {
	m.tel.RecordCounter(ctx, "cairn.wal.padding.bytes", bytes,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentWAL),
	)
}

// Close releases any resources held by the metrics implementation.
func (m *writerMetrics) Close() error {
	return nil
}

// noopWriterMetrics discards all measurements.
type noopWriterMetrics struct{}

func (n *noopWriterMetrics) RecordAppend(ctx context.Context, duration time.Duration, bytes int64, fragments int, success bool) {
}

func (n *noopWriterMetrics) RecordPadding(ctx context.Context, bytes int64) {
}

func (n *noopWriterMetrics) Close() error {
	return nil
}
