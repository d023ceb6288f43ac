// Package config reads MCP-UI Bridge configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the bridge process.
type Config struct {
	Port      int
	Version   string
	Telemetry TelemetryConfig
	Client    ClientConfig
	Origin    OriginConfig
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// ClientConfig mirrors the MCP client option table (spec §4.D).
type ClientConfig struct {
	URL                  string
	ConnectTimeout       time.Duration
	RequestTimeout       time.Duration
	AutoReconnect        bool
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	Verbose              bool
}

// OriginConfig controls the postMessage origin whitelist and sandbox policy.
type OriginConfig struct {
	// AllowNullSandbox is read from MCPUI_ALLOW_NULL_ORIGIN but nothing in
	// the bridge consults it: action.ValidateOrigin accepts the "null"
	// origin (srcdoc / sandboxed frame without allow-same-origin) whatever
	// this flag is set to.
	AllowNullSandbox bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("MCPUI_PORT", 8080),
		Version: envStr("MCPUI_VERSION", "0.1.0"),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "mcp-ui-bridge"),
		},
		Client: ClientConfig{
			URL:                  envStr("MCPUI_SERVER_URL", "ws://localhost:8081"),
			ConnectTimeout:       envDuration("MCPUI_CONNECT_TIMEOUT", 5*time.Second),
			RequestTimeout:       envDuration("MCPUI_REQUEST_TIMEOUT", 30*time.Second),
			AutoReconnect:        envBool("MCPUI_AUTO_RECONNECT", true),
			MaxReconnectAttempts: envInt("MCPUI_MAX_RECONNECT_ATTEMPTS", 5),
			ReconnectDelay:       envDuration("MCPUI_RECONNECT_DELAY", 1*time.Second),
			Verbose:              envBool("MCPUI_VERBOSE", false),
		},
		Origin: OriginConfig{
			AllowNullSandbox: envBool("MCPUI_ALLOW_NULL_ORIGIN", true),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
