package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds all simulator configuration values.
type Config struct {
	Port       int
	HealthPort int

	// Cluster shape
	InitialNodes    int
	NodeCPU         float64
	NodeMemory      float64
	CapacityChecked bool   // SIMULATOR_CAPACITY_CHECKED, default: false (permissive placement)
	WorkloadSeed    uint64 // SIMULATOR_WORKLOAD_SEED, default: 0 (seed from clock)

	ClusterID         string
	ClusterName       string
	SimulatorVersion  string
	BootstrapManifest string

	// Snapshot export
	ExportURL        string
	ExportAPIKey     string
	ExportInterval   time.Duration
	CompressionLevel int
	MaxRetries       int
	RequestTimeout   time.Duration

	// API surface
	MutationRate  float64  // SIMULATOR_MUTATION_RATE, default: 0 (unlimited)
	MutationBurst int      // SIMULATOR_MUTATION_BURST, default: 10
	MaxBodyBytes  int64    // SIMULATOR_MAX_BODY_BYTES, default: 64 KiB
	CORSOrigins   []string // SIMULATOR_CORS_ORIGINS, comma-separated

	// Security
	AllowInsecure  bool // SIMULATOR_ALLOW_INSECURE, default: false, allows http:// ExportURL
	DebugEndpoints bool // SIMULATOR_DEBUG_ENDPOINTS, default: false, enables pprof/debug on health port

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config
// with defaults applied for any unset values.
func Load() Config {
	cfg := Config{
		Port:              parseInt("SIMULATOR_PORT", 5000),
		HealthPort:        parseInt("SIMULATOR_HEALTH_PORT", 8081),
		InitialNodes:      parseInt("SIMULATOR_INITIAL_NODES", 3),
		NodeCPU:           parseFloat("SIMULATOR_NODE_CPU", 128),
		NodeMemory:        parseFloat("SIMULATOR_NODE_MEMORY", 1500),
		CapacityChecked:   parseBool("SIMULATOR_CAPACITY_CHECKED", false),
		WorkloadSeed:      parseUint64("SIMULATOR_WORKLOAD_SEED", 0),
		ClusterID:         os.Getenv("SIMULATOR_CLUSTER_ID"),
		ClusterName:       envOrDefault("SIMULATOR_CLUSTER_NAME", "openshift-sim"),
		BootstrapManifest: os.Getenv("SIMULATOR_BOOTSTRAP_MANIFEST"),
		ExportURL:         strings.TrimRight(os.Getenv("SIMULATOR_EXPORT_URL"), "/"),
		ExportAPIKey:      os.Getenv("SIMULATOR_EXPORT_API_KEY"),
		ExportInterval:    parseDuration("SIMULATOR_EXPORT_INTERVAL", 60*time.Second),
		CompressionLevel:  parseInt("SIMULATOR_COMPRESSION_LEVEL", 3),
		MaxRetries:        parseInt("SIMULATOR_MAX_RETRIES", 3),
		RequestTimeout:    parseDuration("SIMULATOR_REQUEST_TIMEOUT", 30*time.Second),
		MutationRate:      parseFloat("SIMULATOR_MUTATION_RATE", 0),
		MutationBurst:     parseInt("SIMULATOR_MUTATION_BURST", 10),
		MaxBodyBytes:      parseInt64("SIMULATOR_MAX_BODY_BYTES", 65536),
		CORSOrigins:       parseStringSlice("SIMULATOR_CORS_ORIGINS"),
		LogLevel:          strings.ToLower(envOrDefault("SIMULATOR_LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(envOrDefault("SIMULATOR_LOG_FORMAT", "text")),
	}

	if cfg.ClusterID == "" {
		cfg.ClusterID = uuid.New().String()
	}

	cfg.AllowInsecure = parseBool("SIMULATOR_ALLOW_INSECURE", false)
	cfg.DebugEndpoints = parseBool("SIMULATOR_DEBUG_ENDPOINTS", false)

	return cfg
}

// ExportEnabled reports whether snapshots are sent to a backend.
func (c Config) ExportEnabled() bool {
	return c.ExportURL != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseUint64(key string, defaultVal uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func parseStringSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}
