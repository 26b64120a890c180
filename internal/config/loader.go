package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix starts every environment variable read by Load.
	EnvPrefix = "UTILITY_"
)

// Load loads configuration from a YAML file, then overrides it with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (UTILITY_TRACING_LEVEL, UTILITY_TELEGRAM_CHAT_ID, etc.)
//  2. YAML config file (~/.config/utility/config.yaml)
//  3. NewDefaultConfig
//
// A missing file is not an error. When configPath is empty the default path
// is used.
//
// # Security Considerations
//
// The file must have 0600 or 0400 permissions, since it may hold the bot
// token, and must be at most 1MB. It must live under ~/.config/utility/ or
// /etc/utility/.
//
// # Environment Variable Mapping
//
//	UTILITY_TRACING_LEVEL             -> tracing.level
//	UTILITY_TRACING_PROFILER_ENDPOINT -> tracing.profiler.endpoint
//	UTILITY_TELEGRAM_CHAT_ID          -> telegram.chat_id
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	// Validate config path (even if file doesn't exist)
	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Open file once and validate using file descriptor to avoid TOCTOU race
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}

		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Keys absent from file and environment keep their default values.
	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultPath is ~/.config/utility/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "utility", "config.yaml"), nil
}

// envKey maps an environment variable to a config key. The first word after
// the prefix is the section and the rest is the field, except that the
// tracing section has a nested profiler section:
//
//	UTILITY_TELEGRAM_CHAT_ID          -> telegram.chat_id
//	UTILITY_TRACING_PROFILER_SETTLE   -> tracing.profiler.settle
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}

	if section == "tracing" {
		if sub, rest, ok := strings.Cut(field, "_"); ok && sub == "profiler" {
			return section + "." + sub + "." + rest
		}
	}

	return section + "." + field
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Resolve symlinks so they cannot point outside the allowed directories.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// The file may not exist yet.
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	allowedDirs := []string{
		filepath.Join(home, ".config", "utility"),
		"/etc/utility",
	}

	for _, dir := range allowedDirs {
		if isWithin(resolvedPath, dir) {
			return nil
		}
		if r, err := filepath.EvalSymlinks(dir); err == nil && isWithin(resolvedPath, r) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/utility/ or /etc/utility/")
}

func isWithin(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// validateConfigFileProperties checks file permissions and size.
// Takes FileInfo from an already-opened file descriptor to avoid TOCTOU race.
func validateConfigFileProperties(info os.FileInfo) error {
	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
