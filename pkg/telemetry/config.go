package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrInvalidConfig = errors.New("invalid telemetry config")

// Config controls how the telemetry provider is built.
type Config struct {
	// Enabled toggles telemetry; when false New returns a no-op.
	Enabled bool

	// ServiceName identifies this process in exported metrics.
	ServiceName string

	// Registry receives the exported metrics. When nil a private
	// registry is created; retrieve it from the provider for scraping.
	Registry *prometheus.Registry
}

// DefaultConfig returns a disabled config with the standard service name.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		ServiceName: "cairn",
	}
}

// Validate checks the configuration for use with New.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("%w: service name must not be empty", ErrInvalidConfig)
	}
	return nil
}
