// Package stats collects operation counters and latency figures for
// the log layer with minimal contention.
package stats

// OperationType defines the type of operation being tracked.
type OperationType string

// Operations of the log-writing path.
const (
	OpAppend OperationType = "append"
	OpEmit   OperationType = "emit"
	OpPad    OperationType = "pad"
	OpFlush  OperationType = "flush"
)

// Provider is implemented by components that expose statistics.
type Provider interface {
	// GetStats returns all statistics
	GetStats() map[string]interface{}

	// GetStatsFiltered returns statistics whose keys start with prefix
	GetStatsFiltered(prefix string) map[string]interface{}
}

// Collector accumulates statistics.
type Collector interface {
	Provider

	// TrackOperation records a single operation
	TrackOperation(op OperationType)

	// TrackOperationWithLatency records an operation with its latency
	TrackOperationWithLatency(op OperationType, latencyNs uint64)

	// TrackError increments the counter for the specified error type
	TrackError(errorType string)

	// TrackBytes adds bytes to the written counter
	TrackBytes(bytes uint64)
}

// Ensure AtomicCollector implements the Collector interface
var _ Collector = (*AtomicCollector)(nil)
