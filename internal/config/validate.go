package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: Port must be 1-65535, got %d", c.Port)
	}
	if c.HealthPort < 1 || c.HealthPort > 65535 {
		return fmt.Errorf("config: HealthPort must be 1-65535, got %d", c.HealthPort)
	}
	if c.Port == c.HealthPort {
		return fmt.Errorf("config: Port and HealthPort must differ, both are %d", c.Port)
	}

	if c.InitialNodes < 0 {
		return fmt.Errorf("config: InitialNodes must be >= 0, got %d", c.InitialNodes)
	}
	if !(c.NodeCPU > 0) || math.IsInf(c.NodeCPU, 0) {
		return fmt.Errorf("config: NodeCPU must be > 0, got %g", c.NodeCPU)
	}
	if !(c.NodeMemory > 0) || math.IsInf(c.NodeMemory, 0) {
		return fmt.Errorf("config: NodeMemory must be > 0, got %g", c.NodeMemory)
	}

	if c.ExportURL != "" {
		if c.ExportAPIKey == "" {
			return fmt.Errorf("config: SIMULATOR_EXPORT_API_KEY is required when SIMULATOR_EXPORT_URL is set")
		}
		if !c.AllowInsecure && !strings.HasPrefix(c.ExportURL, "https://") {
			return fmt.Errorf("config: SIMULATOR_EXPORT_URL must use https:// (got %q); set SIMULATOR_ALLOW_INSECURE=true to override", c.ExportURL)
		}
	}

	if c.ExportInterval < time.Second {
		return fmt.Errorf("config: ExportInterval must be >= 1s, got %v", c.ExportInterval)
	}

	if c.CompressionLevel < 1 || c.CompressionLevel > 4 {
		return fmt.Errorf("config: CompressionLevel must be 1-4, got %d", c.CompressionLevel)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MaxRetries must be >= 0, got %d", c.MaxRetries)
	}

	if c.MutationRate < 0 || math.IsNaN(c.MutationRate) {
		return fmt.Errorf("config: MutationRate must be >= 0, got %g", c.MutationRate)
	}
	if c.MutationRate > 0 && c.MutationBurst < 1 {
		return fmt.Errorf("config: MutationBurst must be >= 1 when MutationRate is set, got %d", c.MutationBurst)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("config: MaxBodyBytes must be >= 1, got %d", c.MaxBodyBytes)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LogLevel must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: LogFormat must be text or json, got %q", c.LogFormat)
	}

	return nil
}
