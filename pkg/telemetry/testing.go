package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

// Measurement is one recorded counter increment or histogram value.
type Measurement struct {
	Name  string
	Value float64
	Attrs []attribute.KeyValue
}

// Capture is a Telemetry implementation that records measurements in
// memory for test assertions.
type Capture struct {
	mu         sync.Mutex
	counters   []Measurement
	histograms []Measurement
}

// NewCapture creates a capturing telemetry instance for tests.
func NewCapture() *Capture {
	return &Capture{}
}

// RecordCounter stores the increment.
func (c *Capture) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = append(c.counters, Measurement{Name: name, Value: float64(value), Attrs: attrs})
}

// RecordHistogram stores the value.
func (c *Capture) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histograms = append(c.histograms, Measurement{Name: name, Value: value, Attrs: attrs})
}

// Shutdown is a no-op.
func (c *Capture) Shutdown(ctx context.Context) error {
	return nil
}

// Counters returns a copy of the recorded counter increments.
func (c *Capture) Counters() []Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Measurement(nil), c.counters...)
}

// Histograms returns a copy of the recorded histogram values.
func (c *Capture) Histograms() []Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Measurement(nil), c.histograms...)
}

// CounterTotal sums all recorded increments for the named counter.
func (c *Capture) CounterTotal(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, m := range c.counters {
		if m.Name == name {
			total += int64(m.Value)
		}
	}
	return total
}
