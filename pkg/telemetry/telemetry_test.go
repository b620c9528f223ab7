package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

func TestNoopTelemetry(t *testing.T) {
	tel := NewNoop()
	ctx := context.Background()

	// All operations must be safe and side-effect free.
	tel.RecordCounter(ctx, "test.counter", 1)
	tel.RecordHistogram(ctx, "test.histogram", 0.5,
		attribute.String(AttrComponent, ComponentWAL))

	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("noop Shutdown returned error: %v", err)
	}
}

func TestDisabledConfigReturnsNoop(t *testing.T) {
	tel, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New with disabled config: %v", err)
	}
	if _, ok := tel.(*NoopTelemetry); !ok {
		t.Errorf("expected NoopTelemetry for disabled config, got %T", tel)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty service name")
	}

	cfg.ServiceName = "cairn-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestRecordDuration(t *testing.T) {
	capture := NewCapture()
	start := time.Now().Add(-time.Second)

	RecordDuration(context.Background(), capture, "test.duration", start)

	histograms := capture.Histograms()
	if len(histograms) != 1 {
		t.Fatalf("expected 1 histogram, got %d", len(histograms))
	}
	if histograms[0].Name != "test.duration" {
		t.Errorf("unexpected name %q", histograms[0].Name)
	}
	if histograms[0].Value < 0.9 {
		t.Errorf("duration %f seconds, expected about 1", histograms[0].Value)
	}
}

func TestCapture(t *testing.T) {
	capture := NewCapture()
	ctx := context.Background()

	capture.RecordCounter(ctx, "ops", 2)
	capture.RecordCounter(ctx, "ops", 3)
	capture.RecordCounter(ctx, "other", 10)

	if got := capture.CounterTotal("ops"); got != 5 {
		t.Errorf("CounterTotal(ops) = %d, want 5", got)
	}
	if got := len(capture.Counters()); got != 3 {
		t.Errorf("expected 3 recorded increments, got %d", got)
	}
}
