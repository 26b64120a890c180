package tracing

import (
	"testing"
	"time"

	"github.com/fyrsmithlabs/utility/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.True(t, cfg.Stdout)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "info", cfg.Level)
	assert.False(t, cfg.Profiler.Enabled)
	assert.Equal(t, DefaultProfilerEndpoint, cfg.Profiler.Endpoint)
	assert.True(t, cfg.Profiler.Insecure)
	assert.Equal(t, DefaultSettle, cfg.Profiler.Settle.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:    "bad level",
			modify:  func(c *Config) { c.Level = "loud" },
			wantErr: "invalid level",
		},
		{
			name:    "fatal level",
			modify:  func(c *Config) { c.Level = "fatal" },
			wantErr: "invalid level",
		},
		{
			name: "disabled profiler ignores endpoint",
			modify: func(c *Config) {
				c.Profiler.Endpoint = ""
				c.Profiler.Insecure = true
			},
		},
		{
			name: "missing endpoint",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Endpoint = ""
			},
			wantErr: "endpoint is required",
		},
		{
			name: "insecure remote endpoint",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Endpoint = "collector.example.com:4317"
				c.Profiler.Insecure = true
			},
			wantErr: "insecure connections to remote endpoints",
		},
		{
			name: "secure remote endpoint",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Endpoint = "collector.example.com:4317"
				c.Profiler.Insecure = false
			},
		},
		{
			name: "unknown protocol",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Protocol = "carrier-pigeon"
			},
			wantErr: "invalid profiler.protocol",
		},
		{
			name: "insecure http to local endpoint",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Protocol = ProtocolHTTP
				c.Profiler.Endpoint = "http://localhost:4318"
			},
		},
		{
			name: "negative settle",
			modify: func(c *Config) {
				c.Profiler.Enabled = true
				c.Profiler.Settle = config.Duration(-time.Second)
			},
			wantErr: "settle must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want Tracing
	}{
		{
			name: "defaults",
			cfg:  NewDefaultConfig(),
			want: Default(),
		},
		{
			name: "stdout and file at debug",
			cfg:  &Config{Stdout: true, File: "app.log", Level: "debug"},
			want: Stdout().WithFile("app.log").WithLevel(zapcore.DebugLevel),
		},
		{
			name: "nothing",
			cfg:  &Config{Level: "trace"},
			want: Empty().WithLevel(TraceLevel),
		},
		{
			name: "profiler with zero settle",
			cfg: &Config{
				Level: "warn",
				Profiler: ProfilerConfig{
					Enabled:  true,
					Endpoint: "127.0.0.1:4317",
					Insecure: true,
				},
			},
			want: Profiler().
				WithLevel(zapcore.WarnLevel).
				WithProfilerEndpoint("127.0.0.1:4317", true).
				WithProfilerSettle(DefaultSettle),
		},
		{
			name: "profiler over tls",
			cfg: &Config{
				Level: "info",
				Profiler: ProfilerConfig{
					Enabled:  true,
					Endpoint: "collector.example.com:4317",
					Settle:   config.Duration(250 * time.Millisecond),
				},
			},
			want: Profiler().
				WithProfilerEndpoint("collector.example.com:4317", false).
				WithProfilerSettle(250 * time.Millisecond),
		},
		{
			name: "profiler over http",
			cfg: &Config{
				Level: "info",
				Profiler: ProfilerConfig{
					Enabled:  true,
					Endpoint: "localhost:4318",
					Protocol: ProtocolHTTP,
					Insecure: true,
				},
			},
			want: Profiler().
				WithProfilerEndpoint("localhost:4318", true).
				WithProfilerProtocol(ProtocolHTTP),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromConfig(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromConfig_Invalid(t *testing.T) {
	_, err := FromConfig(&Config{Level: "nope"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tracing config")
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.53:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector.example.com:4317", false},
		{"10.0.0.5:4317", false},
		{"localhost.example.com:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, isLocalEndpoint(tt.endpoint))
		})
	}
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "localhost:4318", stripScheme("http://localhost:4318"))
	assert.Equal(t, "collector:4318", stripScheme("https://collector:4318"))
	assert.Equal(t, "localhost:4317", stripScheme("localhost:4317"))
}
