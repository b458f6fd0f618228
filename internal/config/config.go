// Package config loads engine configuration from the environment, in the
// teacher's style (common/config): a typed struct, getEnv* helpers, and a
// Validate pass. See spec §6 "Environment variables" and "CLI surface".
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tool-server configuration.
type Config struct {
	Server    ServerConfig
	Telemetry TelemetryConfig
	Workflow  WorkflowConfig
	Redis     RedisConfig
}

// ServerConfig holds the Tool Server's transport settings (spec §4.6, §6 CLI).
type ServerConfig struct {
	Transport string // "stdio" | "http"
	Host      string
	Port      int
	LogLevel  string
	LogFormat string
}

// TelemetryConfig controls the optional Prometheus metrics endpoint.
type TelemetryConfig struct {
	EnableMetrics bool
	MetricsPath   string
}

// WorkflowConfig controls the sequencer's persistence and event-pipe
// behavior (spec §6 "Environment variables", "Persisted state layout").
type WorkflowConfig struct {
	StateDir      string // TERMINATOR_STATE_DIR override
	EventPipePath string // MCP_EVENT_PIPE
	MaxIterations int    // infinite-loop guard, default 10000
}

// RedisConfig configures the optional distributed state backend used for
// WorkflowLocked enforcement across multiple Tool Server instances.
type RedisConfig struct {
	Enabled bool
	Addr    string
	DB      int
}

// Load reads configuration from the environment, loading a local .env file
// first if present (ignored if absent — this is a convenience for local dev,
// not a requirement).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Transport: getEnv("TRANSPORT", "stdio"),
			Host:      getEnv("HOST", "127.0.0.1"),
			Port:      getEnvInt("PORT", 3000),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "text"),
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: getEnvBool("ENABLE_METRICS", false),
			MetricsPath:   getEnv("METRICS_PATH", "/metrics"),
		},
		Workflow: WorkflowConfig{
			StateDir:      getEnv("TERMINATOR_STATE_DIR", ""),
			EventPipePath: getEnv("MCP_EVENT_PIPE", ""),
			MaxIterations: getEnvInt("WORKFLOW_MAX_ITERATIONS", 10000),
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("WORKFLOW_REDIS_ENABLED", false),
			Addr:    getEnv("WORKFLOW_REDIS_ADDR", "localhost:6379"),
			DB:      getEnvInt("WORKFLOW_REDIS_DB", 0),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks invariants on the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid transport: %s", c.Server.Transport)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Workflow.MaxIterations <= 0 {
		return fmt.Errorf("workflow max iterations must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
