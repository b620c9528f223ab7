package stats

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// AtomicCollector implements Collector using atomic counters. Mutexes
// guard only the creation of new map entries, not the hot counting
// path.
type AtomicCollector struct {
	counts   map[OperationType]*atomic.Uint64
	countsMu sync.RWMutex

	lastOpTime   map[OperationType]time.Time
	lastOpTimeMu sync.RWMutex

	totalBytesWritten atomic.Uint64

	errors   map[string]*atomic.Uint64
	errorsMu sync.RWMutex

	latencies   map[OperationType]*LatencyTracker
	latenciesMu sync.RWMutex
}

// LatencyTracker maintains running statistics about operation latencies.
type LatencyTracker struct {
	count atomic.Uint64
	sum   atomic.Uint64 // nanoseconds
	max   atomic.Uint64 // nanoseconds
	min   atomic.Uint64 // nanoseconds, ^uint64(0) until first sample
}

// NewAtomicCollector creates a new statistics collector.
func NewAtomicCollector() *AtomicCollector {
	return &AtomicCollector{
		counts:     make(map[OperationType]*atomic.Uint64),
		lastOpTime: make(map[OperationType]time.Time),
		errors:     make(map[string]*atomic.Uint64),
		latencies:  make(map[OperationType]*LatencyTracker),
	}
}

// TrackOperation increments the counter for the specified operation type.
func (c *AtomicCollector) TrackOperation(op OperationType) {
	c.getOrCreateCounter(op).Add(1)

	c.lastOpTimeMu.Lock()
	c.lastOpTime[op] = time.Now()
	c.lastOpTimeMu.Unlock()
}

// TrackOperationWithLatency tracks an operation and its latency.
func (c *AtomicCollector) TrackOperationWithLatency(op OperationType, latencyNs uint64) {
	c.getOrCreateCounter(op).Add(1)

	c.lastOpTimeMu.Lock()
	c.lastOpTime[op] = time.Now()
	c.lastOpTimeMu.Unlock()

	tracker := c.getOrCreateLatencyTracker(op)
	tracker.count.Add(1)
	tracker.sum.Add(latencyNs)

	for {
		current := tracker.max.Load()
		if latencyNs <= current || tracker.max.CompareAndSwap(current, latencyNs) {
			break
		}
	}
	for {
		current := tracker.min.Load()
		if latencyNs >= current || tracker.min.CompareAndSwap(current, latencyNs) {
			break
		}
	}
}

// TrackError increments the counter for the specified error type.
func (c *AtomicCollector) TrackError(errorType string) {
	c.errorsMu.RLock()
	counter, ok := c.errors[errorType]
	c.errorsMu.RUnlock()

	if !ok {
		c.errorsMu.Lock()
		if counter, ok = c.errors[errorType]; !ok {
			counter = &atomic.Uint64{}
			c.errors[errorType] = counter
		}
		c.errorsMu.Unlock()
	}
	counter.Add(1)
}

// TrackBytes adds bytes to the written counter.
func (c *AtomicCollector) TrackBytes(bytes uint64) {
	c.totalBytesWritten.Add(bytes)
}

// GetStats returns all statistics as a flat map.
func (c *AtomicCollector) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})

	c.countsMu.RLock()
	for op, counter := range c.counts {
		stats[fmt.Sprintf("ops_%s", op)] = counter.Load()
	}
	c.countsMu.RUnlock()

	c.lastOpTimeMu.RLock()
	for op, ts := range c.lastOpTime {
		stats[fmt.Sprintf("last_%s_time", op)] = ts
	}
	c.lastOpTimeMu.RUnlock()

	stats["total_bytes_written"] = c.totalBytesWritten.Load()

	c.errorsMu.RLock()
	for errType, counter := range c.errors {
		stats[fmt.Sprintf("errors_%s", errType)] = counter.Load()
	}
	c.errorsMu.RUnlock()

	c.latenciesMu.RLock()
	for op, tracker := range c.latencies {
		count := tracker.count.Load()
		if count == 0 {
			continue
		}
		stats[fmt.Sprintf("latency_%s_avg_ns", op)] = tracker.sum.Load() / count
		stats[fmt.Sprintf("latency_%s_min_ns", op)] = tracker.min.Load()
		stats[fmt.Sprintf("latency_%s_max_ns", op)] = tracker.max.Load()
	}
	c.latenciesMu.RUnlock()

	return stats
}

// GetStatsFiltered returns statistics whose keys start with prefix.
func (c *AtomicCollector) GetStatsFiltered(prefix string) map[string]interface{} {
	filtered := make(map[string]interface{})
	for key, value := range c.GetStats() {
		if strings.HasPrefix(key, prefix) {
			filtered[key] = value
		}
	}
	return filtered
}

func (c *AtomicCollector) getOrCreateCounter(op OperationType) *atomic.Uint64 {
	c.countsMu.RLock()
	counter, ok := c.counts[op]
	c.countsMu.RUnlock()

	if !ok {
		c.countsMu.Lock()
		if counter, ok = c.counts[op]; !ok {
			counter = &atomic.Uint64{}
			c.counts[op] = counter
		}
		c.countsMu.Unlock()
	}
	return counter
}

func (c *AtomicCollector) getOrCreateLatencyTracker(op OperationType) *LatencyTracker {
	c.latenciesMu.RLock()
	tracker, ok := c.latencies[op]
	c.latenciesMu.RUnlock()

	if !ok {
		c.latenciesMu.Lock()
		if tracker, ok = c.latencies[op]; !ok {
			tracker = &LatencyTracker{}
			tracker.min.Store(^uint64(0))
			c.latencies[op] = tracker
		}
		c.latenciesMu.Unlock()
	}
	return tracker
}
