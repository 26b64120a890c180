package tracing

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/utility/pkg/config"
)

// Config is the declarative form of a Tracing builder, for loading from
// YAML or the environment.
type Config struct {
	Stdout   bool           `koanf:"stdout"`
	File     string         `koanf:"file"`
	Level    string         `koanf:"level"`
	Profiler ProfilerConfig `koanf:"profiler"`
}

// ProfilerConfig controls the profiler sink.
type ProfilerConfig struct {
	Enabled  bool            `koanf:"enabled"`
	Endpoint string          `koanf:"endpoint"`
	Protocol string          `koanf:"protocol"` // "grpc" or "http/protobuf"
	Insecure bool            `koanf:"insecure"` // Use insecure connection (no TLS)
	Settle   config.Duration `koanf:"settle"`
}

// NewDefaultConfig matches Default(): stdout at Info.
func NewDefaultConfig() *Config {
	return &Config{
		Stdout: true,
		Level:  "info",
		Profiler: ProfilerConfig{
			Enabled:  false,
			Endpoint: DefaultProfilerEndpoint,
			Protocol: ProtocolGRPC,
			Insecure: true, // Insecure by default for a local daemon; set false for TLS
			Settle:   config.Duration(DefaultSettle),
		},
	}
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}

	if !c.Profiler.Enabled {
		return nil
	}

	if c.Profiler.Endpoint == "" {
		return fmt.Errorf("profiler.endpoint is required when the profiler is enabled")
	}

	switch c.Profiler.Protocol {
	case "", ProtocolGRPC, ProtocolHTTP:
	default:
		return fmt.Errorf("invalid profiler.protocol %q (must be %q or %q)", c.Profiler.Protocol, ProtocolGRPC, ProtocolHTTP)
	}

	// Security: Prevent insecure connections to remote endpoints
	if c.Profiler.Insecure && !isLocalEndpoint(stripScheme(c.Profiler.Endpoint)) {
		return fmt.Errorf("insecure connections to remote endpoints are not allowed; set insecure=false for TLS or use a local endpoint (localhost/127.0.0.1)")
	}

	if c.Profiler.Settle.Duration() < 0 {
		return fmt.Errorf("profiler.settle must not be negative")
	}

	return nil
}

// FromConfig builds the Tracing described by cfg.
func FromConfig(cfg *Config) (Tracing, error) {
	if err := cfg.Validate(); err != nil {
		return Tracing{}, fmt.Errorf("invalid tracing config: %w", err)
	}

	level, _ := ParseLevel(cfg.Level)
	t := Empty().WithLevel(level)

	if cfg.Stdout {
		t = t.WithStdout()
	}
	if cfg.File != "" {
		t = t.WithFile(cfg.File)
	}
	if cfg.Profiler.Enabled {
		t = t.WithProfiler().
			WithProfilerEndpoint(cfg.Profiler.Endpoint, cfg.Profiler.Insecure).
			WithProfilerProtocol(protocolOrDefault(cfg.Profiler.Protocol)).
			WithProfilerSettle(settleOrDefault(cfg.Profiler.Settle.Duration()))
	}

	return t, nil
}

// isLocalEndpoint checks if the endpoint is a local address.
func isLocalEndpoint(endpoint string) bool {
	host := endpoint

	// Handle IPv6 addresses (may be bracketed like [::1]:4317)
	if strings.HasPrefix(host, "[") {
		if idx := strings.Index(host, "]:"); idx != -1 {
			host = host[1:idx]
		} else if strings.HasSuffix(host, "]") {
			host = host[1 : len(host)-1]
		}
	} else if strings.Count(host, ":") == 1 {
		host = host[:strings.LastIndex(host, ":")]
	}

	return host == "localhost" ||
		host == "::1" ||
		strings.HasPrefix(host, "127.") ||
		strings.HasPrefix(endpoint, "::1")
}

func protocolOrDefault(p string) string {
	if p == "" {
		return ProtocolGRPC
	}
	return p
}

// settleOrDefault treats a zero settle duration as unset.
func settleOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultSettle
	}
	return d
}

// stripScheme removes http:// or https:// from an endpoint URL.
// The OTLP HTTP exporters expect just host:port, not full URLs.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return endpoint
}
