package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

// setupTestHome points HOME at a temporary directory and returns the
// allowed config directory inside it.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "utility")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	return configDir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `tracing:
  stdout: false
  file: /tmp/utility.log
  level: debug
  profiler:
    enabled: true
    endpoint: localhost:4318
    settle: 250ms

telegram:
  token: "123456:secret"
  chat_id: "-100987"
  timeout: 3s
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Tracing.Stdout)
	assert.Equal(t, "/tmp/utility.log", cfg.Tracing.File)
	assert.Equal(t, "debug", cfg.Tracing.Level)
	assert.True(t, cfg.Tracing.Profiler.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Profiler.Endpoint)
	assert.True(t, cfg.Tracing.Profiler.Insecure, "unset keys keep their defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Tracing.Profiler.Settle.Duration())
	assert.Equal(t, "123456:secret", cfg.Telegram.Token.Value())
	assert.Equal(t, "-100987", cfg.Telegram.ChatID)
	assert.Equal(t, 3*time.Second, cfg.Telegram.Timeout.Duration())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `tracing:
  level: warn
  file: from-yaml.log
telegram:
  chat_id: "1"
`, 0600)

	t.Setenv("UTILITY_TRACING_LEVEL", "trace")
	t.Setenv("UTILITY_TRACING_STDOUT", "false")
	t.Setenv("UTILITY_TRACING_PROFILER_SETTLE", "2s")
	t.Setenv("UTILITY_TELEGRAM_CHAT_ID", "2")
	t.Setenv("UTILITY_TELEGRAM_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Tracing.Level)
	assert.False(t, cfg.Tracing.Stdout)
	assert.Equal(t, "from-yaml.log", cfg.Tracing.File)
	assert.Equal(t, 2*time.Second, cfg.Tracing.Profiler.Settle.Duration())
	assert.Equal(t, "2", cfg.Telegram.ChatID)
	assert.Equal(t, "env-token", cfg.Telegram.Token.Value())

	tr, err := tracing.FromConfig(&cfg.Tracing)
	require.NoError(t, err)
	assert.Equal(t, tracing.Empty().WithFile("from-yaml.log").WithLevel(tracing.TraceLevel), tr)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad level", "tracing:\n  level: loud\n", "invalid level"},
		{"negative duration", "telegram:\n  timeout: -1s\n", "failed to unmarshal config"},
		{"bad duration", "tracing:\n  profiler:\n    settle: soon\n", "failed to unmarshal config"},
		{"malformed yaml", "tracing: [\n", "failed to load config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestHome(t)
			path := writeConfig(t, dir, tt.yaml, 0600)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "tracing:\n  level: info\n", 0644)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_ReadOnlyPermissionsAllowed(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "tracing:\n  level: error\n", 0400)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Tracing.Level)
}

func TestLoad_RejectsLargeFile(t *testing.T) {
	dir := setupTestHome(t)
	content := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
	path := writeConfig(t, dir, content, 0600)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}

func TestValidateConfigPath(t *testing.T) {
	dir := setupTestHome(t)

	tests := []struct {
		path    string
		allowed bool
	}{
		{filepath.Join(dir, "config.yaml"), true},
		{filepath.Join(dir, "nested", "config.yaml"), true},
		{"/etc/utility/config.yaml", true},
		{"/etc/passwd", false},
		{"/tmp/config.yaml", false},
		{"/etc/utility-evil/config.yaml", false},
		{filepath.Join(dir, "..", "..", "..", "etc", "passwd"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"UTILITY_TRACING_LEVEL", "tracing.level"},
		{"UTILITY_TRACING_STDOUT", "tracing.stdout"},
		{"UTILITY_TRACING_PROFILER_ENABLED", "tracing.profiler.enabled"},
		{"UTILITY_TRACING_PROFILER_ENDPOINT", "tracing.profiler.endpoint"},
		{"UTILITY_TELEGRAM_CHAT_ID", "telegram.chat_id"},
		{"UTILITY_TELEGRAM_TOKEN", "telegram.token"},
		{"UTILITY_DEBUG", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.env))
		})
	}
}
